package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/TheMichaelB/pincheck/internal/codec"
	"github.com/TheMichaelB/pincheck/internal/envelope"
	"github.com/TheMichaelB/pincheck/internal/models"
	"github.com/TheMichaelB/pincheck/internal/transport"
)

// ResponseShape selects how the fake service wraps its reply.
type ResponseShape string

const (
	// ShapeJSONField replies {"response":"<wrapped>"}.
	ShapeJSONField ResponseShape = "json_field"
	// ShapeQuoted replies "<wrapped>" as a JSON string.
	ShapeQuoted ResponseShape = "quoted"
	// ShapeBare replies with the wrapped text alone.
	ShapeBare ResponseShape = "bare"
	// ShapeRawBase64 replies with base64 of the plaintext, unencrypted.
	ShapeRawBase64 ResponseShape = "raw_base64"
	// ShapePlain replies with the plaintext JSON.
	ShapePlain ResponseShape = "plain"
)

// Responder answers lookup requests the way the storefront does: it opens
// the request envelope, looks the pincode up and seals the reply.
type Responder struct {
	Sealer    *envelope.Sealer
	Shape     ResponseShape
	Directory map[string]models.Location
}

// NewResponder creates a responder over Directory.
func NewResponder(sealer *envelope.Sealer, shape ResponseShape) *Responder {
	return &Responder{
		Sealer:    sealer,
		Shape:     shape,
		Directory: Directory,
	}
}

// Respond returns the HTTP status and body for payload.
func (r *Responder) Respond(payload models.TransportPayload) (int, string) {
	plaintext, err := r.Sealer.Open(payload.Data)
	if err != nil {
		return http.StatusBadRequest, "cannot open request: " + err.Error()
	}

	var req models.LookupRequest
	if err := json.Unmarshal([]byte(plaintext), &req); err != nil {
		return http.StatusBadRequest, "malformed request"
	}

	var loc *models.Location
	if found, ok := r.Directory[req.Body.Pincode]; ok {
		loc = &found
	}

	reply, err := json.Marshal(MasterBody(loc))
	if err != nil {
		return http.StatusInternalServerError, err.Error()
	}

	body, err := r.shape(reply)
	if err != nil {
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusOK, body
}

func (r *Responder) shape(reply []byte) (string, error) {
	switch r.Shape {
	case ShapePlain:
		return string(reply), nil
	case ShapeRawBase64:
		return codec.Encode(reply), nil
	}

	wrapped, err := r.Sealer.Seal(reply)
	if err != nil {
		return "", err
	}

	switch r.Shape {
	case ShapeBare:
		return wrapped, nil
	case ShapeQuoted:
		return `"` + wrapped + `"`, nil
	case ShapeJSONField, "":
		data, err := json.Marshal(map[string]string{"response": wrapped})
		return string(data), err
	default:
		return "", fmt.Errorf("unknown response shape %q", r.Shape)
	}
}

// MockHandler adapts r to transport.MockTransport.Handler.
func (r *Responder) MockHandler() func(payload interface{}) (*transport.Response, error) {
	return func(payload interface{}) (*transport.Response, error) {
		p, ok := payload.(models.TransportPayload)
		if !ok {
			return nil, fmt.Errorf("unexpected payload type %T", payload)
		}

		status, body := r.Respond(p)
		return &transport.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       body,
		}, nil
	}
}
