package events_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheMichaelB/pincheck/internal/events"
)

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return default logger when none in context
	logger := events.FromContext(ctx)
	assert.NotNil(t, logger)
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	logger := &events.Logger{}

	ctx = events.WithLogger(ctx, logger)
	retrieved := events.FromContext(ctx)

	assert.Equal(t, logger, retrieved)
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := events.WithLogger(context.Background(), events.NewTestLogger(events.InfoLevel, "json", &buf))

	ctx = events.WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", events.GetRequestID(ctx))

	events.FromContext(ctx).Info("tagged")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestWithPincode(t *testing.T) {
	var buf bytes.Buffer
	ctx := events.WithLogger(context.Background(), events.NewTestLogger(events.InfoLevel, "json", &buf))

	ctx = events.WithPincode(ctx, "400001")
	assert.Equal(t, "400001", events.GetPincode(ctx))

	events.FromContext(ctx).Info("tagged")
	assert.Contains(t, buf.String(), `"pincode":"400001"`)
}

func TestGetRequestIDEmpty(t *testing.T) {
	ctx := context.Background()
	id := events.GetRequestID(ctx)
	assert.Empty(t, id)
}

func TestGetPincodeEmpty(t *testing.T) {
	assert.Empty(t, events.GetPincode(context.Background()))
}

func TestSetDefault(t *testing.T) {
	previous := events.Default()
	t.Cleanup(func() { events.SetDefault(previous) })

	customLogger := &events.Logger{}
	events.SetDefault(customLogger)

	ctx := context.Background()
	retrieved := events.FromContext(ctx)

	assert.Equal(t, customLogger, retrieved)
}
