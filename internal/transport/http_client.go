package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/TheMichaelB/pincheck/internal/config"
	"github.com/TheMichaelB/pincheck/internal/events"
	"github.com/TheMichaelB/pincheck/internal/models"
)

// MaxBodySize bounds how much of a response is read.
const MaxBodySize = 4 << 20

// ErrResponseTooLarge is returned when a response body exceeds MaxBodySize.
var ErrResponseTooLarge = errors.New("response body too large")

// HTTPClient posts lookup payloads to the configured endpoint.
type HTTPClient struct {
	client    *http.Client
	endpoint  string
	userAgent string
	origin    string
	referer   string
	logger    *events.Logger

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
}

// NewHTTPClient creates an HTTP client.
func NewHTTPClient(cfg *config.APIConfig, logger *events.Logger) *HTTPClient {
	// Create transport with HTTP/2 support
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			NextProtos: []string{"h2", "http/1.1"},
		},
	}

	// Configure HTTP/2
	if err := http2.ConfigureTransport(transport); err != nil {
		logger.WithError(err).Warn("Failed to configure HTTP/2")
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		endpoint:   cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		origin:     cfg.Origin,
		referer:    cfg.Referer,
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
		logger:     logger.WithField("component", "http_client"),
	}
}

// Endpoint returns the URL requests are posted to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// PostRaw sends payload as JSON and returns the response body untouched.
// A non-2xx status or a network failure is a *models.TransportError.
func (c *HTTPClient) PostRaw(ctx context.Context, payload interface{}) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"method": http.MethodPost,
		"url":    c.endpoint,
		"size":   len(body),
	}).Debug("Sending request")

	var result *Response
	err = c.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return permanent(fmt.Errorf("create request: %w", err))
		}
		c.setHeaders(req)

		resp, err := c.client.Do(req)
		if err != nil {
			tErr := &models.TransportError{URL: c.endpoint, Err: err}
			if ctx.Err() != nil {
				return permanent(tErr)
			}
			return tErr
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
		if err != nil {
			return &models.TransportError{URL: c.endpoint, Err: fmt.Errorf("read response: %w", err)}
		}
		if len(data) > MaxBodySize {
			return permanent(&models.TransportError{
				URL: c.endpoint,
				Err: fmt.Errorf("%w: HTTP %s, more than %d bytes", ErrResponseTooLarge, resp.Status, MaxBodySize),
			})
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			tErr := &models.TransportError{
				URL:        c.endpoint,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Preview:    models.Preview(string(data)),
			}
			if c.isRetryable(resp.StatusCode) {
				return tErr
			}
			return permanent(tErr)
		}

		result = &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       string(data),
		}
		return nil
	})
	if err != nil {
		// Backoff interrupted by ctx leaves a bare context error.
		var tErr *models.TransportError
		if !errors.As(err, &tErr) {
			err = &models.TransportError{URL: c.endpoint, Err: err}
		}
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"status":  result.StatusCode,
		"size":    len(result.Body),
		"preview": models.Preview(result.Body),
	}).Debug("Received response")

	return result, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// retry executes a function with exponential backoff.
func (c *HTTPClient) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(map[string]interface{}{
				"attempt": attempt,
				"delay":   delay.String(),
			}).Debug("Retrying request")

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
				delay *= 2 // Exponential backoff
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !c.isRetryableError(err) {
			return unwrapPermanent(err)
		}
	}

	if c.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryable checks if an HTTP status code is retryable.
func (c *HTTPClient) isRetryable(status int) bool {
	return status == http.StatusTooManyRequests ||
		(status >= 500 && status < 600)
}

// isRetryableError checks if an error is retryable. Network failures are;
// anything marked permanent is not.
func (c *HTTPClient) isRetryableError(err error) bool {
	var p *permanentError
	return !errors.As(err, &p)
}

// permanentError stops the retry loop.
type permanentError struct {
	err error
}

func permanent(err error) error {
	return &permanentError{err: err}
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

func unwrapPermanent(err error) error {
	var p *permanentError
	if errors.As(err, &p) {
		return p.err
	}
	return err
}
