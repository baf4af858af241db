package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/TheMichaelB/pincheck/internal/models"
)

// CapturedRequest is a request received by TestServer.
type CapturedRequest struct {
	Header  http.Header
	Payload models.TransportPayload
}

// TestServer provides a fake lookup endpoint for integration tests.
type TestServer struct {
	*httptest.Server
	Responder *Responder

	mu       sync.Mutex
	requests []CapturedRequest
	failures []failure
}

type failure struct {
	status int
	body   string
}

// NewTestServer starts a fake lookup endpoint.
func NewTestServer(responder *Responder) *TestServer {
	ts := &TestServer{Responder: responder}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.handle))
	return ts
}

// FailNext makes the next request fail with status and body.
func (ts *TestServer) FailNext(status int, body string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.failures = append(ts.failures, failure{status: status, body: body})
}

// Requests returns the requests received so far.
func (ts *TestServer) Requests() []CapturedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]CapturedRequest(nil), ts.requests...)
}

func (ts *TestServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload models.TransportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ts.mu.Lock()
	ts.requests = append(ts.requests, CapturedRequest{Header: r.Header.Clone(), Payload: payload})
	var fail *failure
	if len(ts.failures) > 0 {
		fail = &ts.failures[0]
		ts.failures = ts.failures[1:]
	}
	ts.mu.Unlock()

	if fail != nil {
		w.WriteHeader(fail.status)
		_, _ = w.Write([]byte(fail.body))
		return
	}

	status, body := ts.Responder.Respond(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
