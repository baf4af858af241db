// Package transport carries sealed lookup payloads to the lookup endpoint.
package transport

import (
	"context"
	"net/http"

	"github.com/TheMichaelB/pincheck/internal/config"
	"github.com/TheMichaelB/pincheck/internal/events"
)

// Transport posts a JSON payload and returns the raw response.
type Transport interface {
	// PostRaw sends payload as a JSON body. Only a 2xx response is
	// returned; everything else is a *models.TransportError.
	PostRaw(ctx context.Context, payload interface{}) (*Response, error)

	// Endpoint is the URL payloads are posted to.
	Endpoint() string

	// Lifecycle
	Close() error
}

// Response is an undecoded lookup response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// NewTransport creates the HTTP transport.
func NewTransport(cfg *config.APIConfig, logger *events.Logger) Transport {
	return NewHTTPClient(cfg, logger)
}
