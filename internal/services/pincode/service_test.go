package pincode_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/TheMichaelB/pincheck/internal/metrics"
	"github.com/TheMichaelB/pincheck/internal/models"
	"github.com/TheMichaelB/pincheck/internal/resolver"
	"github.com/TheMichaelB/pincheck/internal/services/pincode"
	"github.com/TheMichaelB/pincheck/internal/state"
	"github.com/TheMichaelB/pincheck/internal/transport"
	"github.com/TheMichaelB/pincheck/test/testutil"
)

type recordedMetrics struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordedMetrics) RecordOperation(_ context.Context, domain, operation, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, domain+"/"+operation+"/"+status)
}

func (r *recordedMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (r *recordedMetrics) has(op string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.ops {
		if o == op {
			return true
		}
	}
	return false
}

type fixture struct {
	service   *pincode.Service
	transport *transport.MockTransport
	history   *state.MockStore
	metrics   *recordedMetrics
}

func newFixture(t *testing.T, shape testutil.ResponseShape, opts ...pincode.Option) *fixture {
	t.Helper()

	sealer := testutil.NewSealer(t)
	mock := transport.NewMockTransport()
	mock.Handler = testutil.NewResponder(sealer, shape).MockHandler()

	f := &fixture{
		transport: mock,
		history:   state.NewMockStore(),
		metrics:   &recordedMetrics{},
	}

	opts = append([]pincode.Option{
		pincode.WithHistory(f.history),
		pincode.WithMetrics(f.metrics),
	}, opts...)

	f.service = pincode.NewService(sealer, mock, resolver.New(sealer), testutil.NewTestLogger(), opts...)
	return f
}

func TestCheck(t *testing.T) {
	tests := []struct {
		shape    testutil.ResponseShape
		strategy string
	}{
		{testutil.ShapeJSONField, resolver.StrategyJSONField},
		{testutil.ShapeQuoted, resolver.StrategyDirectWrapped},
		{testutil.ShapeBare, resolver.StrategyDirectWrapped},
		{testutil.ShapeRawBase64, resolver.StrategyRawBase64},
		{testutil.ShapePlain, resolver.StrategyJSONField},
	}

	for _, tt := range tests {
		t.Run(string(tt.shape), func(t *testing.T) {
			f := newFixture(t, tt.shape)

			lookup, err := f.service.Check(context.Background(), "400001")
			require.NoError(t, err)

			assert.NotEmpty(t, lookup.RequestID)
			assert.Equal(t, "400001", lookup.Pincode)
			assert.Equal(t, tt.strategy, lookup.Result.Strategy)
			assert.False(t, lookup.Result.Raw)
			require.NotNil(t, lookup.Location)
			assert.Equal(t, "Mumbai", lookup.Location.CityName)
			assert.Equal(t, "Maharashtra", lookup.Location.StateName)
			assert.Equal(t, "Mumbai 400001", lookup.Location.Label())
			assert.True(t, lookup.Serviceable())

			assert.Equal(t, 1, f.transport.RequestCount())
			assert.True(t, f.metrics.has("lookup/check/success"))
			assert.True(t, f.metrics.has("envelope/seal/success"))
		})
	}
}

func TestCheckSealsLookupRequest(t *testing.T) {
	f := newFixture(t, testutil.ShapeJSONField)

	_, err := f.service.Check(context.Background(), "110001")
	require.NoError(t, err)

	require.Len(t, f.transport.PostRequests, 1)
	payload, ok := f.transport.PostRequests[0].Payload.(models.TransportPayload)
	require.True(t, ok)

	plaintext, err := testutil.NewSealer(t).Open(payload.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"header":{},"body":{"pincode":"110001"}}`, plaintext)
}

func TestCheckInvalidPincode(t *testing.T) {
	inputs := []string{"12a456", "", "40001", "4000011", " 400001", "४००००१"}

	for _, pin := range inputs {
		t.Run(pin, func(t *testing.T) {
			f := newFixture(t, testutil.ShapeJSONField)

			lookup, err := f.service.Check(context.Background(), pin)

			assert.Nil(t, lookup)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			var vErr *models.ValidationError
			assert.True(t, errors.As(err, &vErr))

			// No crypto or network work happened.
			assert.Zero(t, f.transport.RequestCount())
			assert.Zero(t, f.history.Len())
			assert.False(t, f.metrics.has("envelope/seal/success"))
		})
	}
}

func TestCheckNotServiceable(t *testing.T) {
	f := newFixture(t, testutil.ShapeJSONField)

	lookup, err := f.service.Check(context.Background(), "999999")

	assert.ErrorIs(t, err, models.ErrPincodeNotServiceable)
	assert.Contains(t, err.Error(), "999999")
	require.NotNil(t, lookup)
	assert.Nil(t, lookup.Location)
	assert.False(t, lookup.Serviceable())
	assert.Equal(t, resolver.StrategyJSONField, lookup.Result.Strategy)

	entries, err := f.history.Recent(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "999999", entries[0].Pincode)
	assert.Contains(t, entries[0].Error, "not serviceable")
}

func TestCheckTransportError(t *testing.T) {
	f := newFixture(t, testutil.ShapeJSONField)
	f.transport.Handler = nil
	f.transport.AddResponse(http.StatusServiceUnavailable, "maintenance window")

	lookup, err := f.service.Check(context.Background(), "400001")

	assert.ErrorIs(t, err, models.ErrTransport)
	assert.Contains(t, err.Error(), "Response preview: maintenance window")
	require.NotNil(t, lookup)
	assert.Empty(t, lookup.Result.Strategy)
	assert.True(t, f.metrics.has("lookup/check/error"))
	assert.Equal(t, 1, f.history.Len())
}

func TestCheckRawResponse(t *testing.T) {
	f := newFixture(t, testutil.ShapeJSONField)
	f.transport.Handler = nil
	f.transport.AddResponse(http.StatusOK, "<html>maintenance</html>")

	lookup, err := f.service.Check(context.Background(), "400001")

	require.NoError(t, err)
	assert.True(t, lookup.Result.Raw)
	assert.Equal(t, "<html>maintenance</html>", lookup.Result.Value)
	assert.Nil(t, lookup.Location)
	assert.True(t, f.metrics.has("lookup/check/raw"))
}

func TestCheckHistoryFailureIgnored(t *testing.T) {
	f := newFixture(t, testutil.ShapeJSONField)
	f.history.AppendError = errors.New("disk full")

	lookup, err := f.service.Check(context.Background(), "400001")

	require.NoError(t, err)
	assert.True(t, lookup.Serviceable())
}

func TestCheckWithoutHistory(t *testing.T) {
	sealer := testutil.NewSealer(t)
	mock := transport.NewMockTransport()
	mock.Handler = testutil.NewResponder(sealer, testutil.ShapeBare).MockHandler()

	service := pincode.NewService(sealer, mock, resolver.New(sealer), testutil.NewTestLogger())

	lookup, err := service.Check(context.Background(), "560001")
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", lookup.Location.CityName)
}

func TestCheckMany(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, testutil.ShapeJSONField, pincode.WithConcurrency(3))
	pins := []string{"400001", "999999", "12a456", "110001", "600001"}

	results, err := f.service.CheckMany(context.Background(), pins)
	require.NoError(t, err)
	require.Len(t, results, len(pins))

	for i, pin := range pins {
		assert.Equal(t, pin, results[i].Pincode, "order preserved at %d", i)
	}

	assert.True(t, results[0].Serviceable())
	assert.Equal(t, "Mumbai", results[0].Location.CityName)
	assert.ErrorIs(t, results[1].Err, models.ErrPincodeNotServiceable)
	assert.ErrorIs(t, results[2].Err, models.ErrInvalidInput)
	assert.Equal(t, "New Delhi", results[3].Location.CityName)
	assert.Equal(t, "Chennai", results[4].Location.CityName)

	// The invalid pincode never reached the transport.
	assert.Equal(t, 4, f.transport.RequestCount())
}

func TestCheckManyRateLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, testutil.ShapeBare,
		pincode.WithConcurrency(3),
		pincode.WithRateLimit(20, 1),
	)

	start := time.Now()
	results, err := f.service.CheckMany(context.Background(), []string{"400001", "110001", "560001"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	// Burst of one: the second and third requests wait 50ms each.
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
}

func TestCheckManyCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, testutil.ShapeJSONField, pincode.WithConcurrency(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := f.service.CheckMany(ctx, []string{"400001", "110001", "560001"})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Error(t, r.Err)
		assert.False(t, r.Serviceable())
	}
	assert.Zero(t, f.transport.RequestCount())
}

func TestCheckManyEmpty(t *testing.T) {
	f := newFixture(t, testutil.ShapeJSONField)

	results, err := f.service.CheckMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNoOpMetricsDefault(t *testing.T) {
	sealer := testutil.NewSealer(t)
	mock := transport.NewMockTransport()
	mock.Handler = testutil.NewResponder(sealer, testutil.ShapeJSONField).MockHandler()

	service := pincode.NewService(sealer, mock, resolver.New(sealer), testutil.NewTestLogger(),
		pincode.WithMetrics(nil),
		pincode.WithMetrics(metrics.NewNoOpBusinessMetrics()),
	)

	_, err := service.Check(context.Background(), "400001")
	assert.NoError(t, err)
}
