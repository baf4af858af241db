package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/TheMichaelB/pincheck/internal/models"
)

// MockEndpoint is the URL reported by MockTransport.
const MockEndpoint = "https://mock.invalid/check-pincode"

// MockTransport provides a mock implementation for testing.
type MockTransport struct {
	mu sync.Mutex

	// Response configuration. Responses are served in order; the last one
	// repeats. Handler, when set, takes precedence.
	Responses []*Response
	Handler   func(payload interface{}) (*Response, error)

	// Error injection
	PostError error

	// Request tracking
	PostRequests []PostRequest

	// State
	served int
	closed bool
}

// PostRequest tracks POST requests.
type PostRequest struct {
	Payload interface{}
}

// NewMockTransport creates a mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		PostRequests: []PostRequest{},
	}
}

// AddResponse queues a response with the given status and body.
func (m *MockTransport) AddResponse(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Responses = append(m.Responses, &Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
	})
}

// PostRaw mocks HTTP POST. Non-2xx responses become transport errors the
// same way the HTTP client reports them.
func (m *MockTransport) PostRaw(ctx context.Context, payload interface{}) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Track request
	m.PostRequests = append(m.PostRequests, PostRequest{Payload: payload})

	if err := ctx.Err(); err != nil {
		return nil, &models.TransportError{URL: MockEndpoint, Err: err}
	}

	// Return configured error
	if m.PostError != nil {
		return nil, m.PostError
	}

	var (
		resp *Response
		err  error
	)
	switch {
	case m.Handler != nil:
		resp, err = m.Handler(payload)
		if err != nil {
			return nil, err
		}
	case len(m.Responses) > 0:
		idx := m.served
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		resp = m.Responses[idx]
		m.served++
	default:
		resp = &Response{StatusCode: http.StatusOK}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.TransportError{
			URL:        MockEndpoint,
			StatusCode: resp.StatusCode,
			Status:     statusLine(resp.StatusCode),
			Preview:    models.Preview(resp.Body),
		}
	}

	return resp, nil
}

// Endpoint returns MockEndpoint.
func (m *MockTransport) Endpoint() string {
	return MockEndpoint
}

// Close mocks close.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// RequestCount returns how many posts were made.
func (m *MockTransport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PostRequests)
}

// IsClosed reports whether Close was called.
func (m *MockTransport) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// statusLine mirrors http.Response.Status, e.g. "503 Service Unavailable".
func statusLine(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}
