// Package pincode checks whether the storefront delivers to a pincode.
package pincode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/TheMichaelB/pincheck/internal/events"
	"github.com/TheMichaelB/pincheck/internal/metrics"
	"github.com/TheMichaelB/pincheck/internal/models"
	"github.com/TheMichaelB/pincheck/internal/resolver"
	"github.com/TheMichaelB/pincheck/internal/state"
	"github.com/TheMichaelB/pincheck/internal/transport"
	"github.com/TheMichaelB/pincheck/internal/validation"
)

// Sealer wraps request plaintext into an envelope.
type Sealer interface {
	SealJSON(v any) (string, error)
}

// Resolver recovers a value from a response body.
type Resolver interface {
	Resolve(ctx context.Context, rawText string) resolver.Result
}

// Lookup is the outcome of one pincode check.
type Lookup struct {
	RequestID string           `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Pincode   string           `json:"pincode" yaml:"pincode"`
	Result    resolver.Result  `json:"result" yaml:"result"`
	Location  *models.Location `json:"location,omitempty" yaml:"location,omitempty"`
	Duration  time.Duration    `json:"duration" yaml:"duration"`
	Err       error            `json:"-" yaml:"-"`
}

// Serviceable reports whether a location was found.
func (l *Lookup) Serviceable() bool {
	return l.Err == nil && l.Location != nil
}

// Service runs pincode lookups.
type Service struct {
	sealer    Sealer
	transport transport.Transport
	resolver  Resolver
	history   state.Store
	metrics   metrics.BusinessMetrics
	logger    *events.Logger

	// Batch behavior
	concurrency int
	limiter     *rate.Limiter
}

// Option configures a Service.
type Option func(*Service)

// WithHistory records every lookup in store.
func WithHistory(store state.Store) Option {
	return func(s *Service) {
		s.history = store
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.BusinessMetrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithConcurrency bounds how many lookups CheckMany runs at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRateLimit paces requests to rps per second. Zero disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Service) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewService creates a pincode service.
func NewService(sealer Sealer, t transport.Transport, r Resolver, logger *events.Logger, opts ...Option) *Service {
	s := &Service{
		sealer:      sealer,
		transport:   t,
		resolver:    r,
		metrics:     metrics.NewNoOpBusinessMetrics(),
		logger:      logger.WithField("service", "pincode"),
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Check looks up a single pincode. Invalid input fails before any sealing
// or network work. Whenever validation passes the returned Lookup is
// non-nil, even alongside an error, so callers can see what came back.
func (s *Service) Check(ctx context.Context, pin string) (*Lookup, error) {
	start := time.Now()

	if err := validation.Pincode(pin); err != nil {
		s.metrics.RecordOperation(ctx, metrics.DomainLookup, "validate", metrics.StatusError)
		return nil, err
	}

	lookup := &Lookup{
		RequestID: uuid.NewString(),
		Pincode:   pin,
	}

	ctx = events.WithLogger(ctx, s.logger)
	ctx = events.WithRequestID(ctx, lookup.RequestID)
	ctx = events.WithPincode(ctx, pin)
	logger := events.FromContext(ctx)

	logger.Debug("Checking pincode")

	wrapped, err := s.sealer.SealJSON(models.NewLookupRequest(pin))
	if err != nil {
		s.metrics.RecordOperation(ctx, metrics.DomainEnvelope, "seal", metrics.StatusError)
		return s.finish(ctx, start, lookup, fmt.Errorf("seal request: %w", err))
	}
	s.metrics.RecordOperation(ctx, metrics.DomainEnvelope, "seal", metrics.StatusSuccess)

	resp, err := s.transport.PostRaw(ctx, models.TransportPayload{Data: wrapped})
	if err != nil {
		return s.finish(ctx, start, lookup, fmt.Errorf("check pincode %s: %w", pin, err))
	}

	lookup.Result = s.resolver.Resolve(ctx, resp.Body)

	loc, err := models.ExtractLocation(lookup.Result.Value)
	switch {
	case err == nil:
		lookup.Location = loc
	case errors.Is(err, models.ErrPincodeNotServiceable):
		return s.finish(ctx, start, lookup, fmt.Errorf("pincode %s: %w", pin, err))
	default:
		logger.WithFields(map[string]interface{}{
			"strategy": lookup.Result.Strategy,
			"reason":   err.Error(),
		}).Debug("Response carries no location")
	}

	return s.finish(ctx, start, lookup, nil)
}

// CheckMany looks up pincodes concurrently and returns one Lookup per input,
// in input order. Per-pincode failures stay on each Lookup's Err; the
// returned error is only set when ctx ends the batch early.
func (s *Service) CheckMany(ctx context.Context, pincodes []string) ([]*Lookup, error) {
	results := make([]*Lookup, len(pincodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	s.logger.WithFields(map[string]interface{}{
		"count":       len(pincodes),
		"concurrency": s.concurrency,
	}).Debug("Starting batch")

	for i, pin := range pincodes {
		g.Go(func() error {
			if err := s.wait(gctx); err != nil {
				results[i] = &Lookup{Pincode: pin, Err: err}
				return err
			}

			lookup, err := s.Check(gctx, pin)
			if lookup == nil {
				lookup = &Lookup{Pincode: pin}
			}
			lookup.Err = err
			results[i] = lookup
			return nil
		})
	}

	err := g.Wait()
	for i, r := range results {
		if r == nil {
			results[i] = &Lookup{Pincode: pincodes[i], Err: err}
		}
	}

	return results, err
}

// wait blocks until the rate limiter admits another request.
func (s *Service) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	return s.limiter.Wait(ctx)
}

func (s *Service) finish(ctx context.Context, start time.Time, lookup *Lookup, err error) (*Lookup, error) {
	lookup.Err = err
	lookup.Duration = time.Since(start)

	status := metrics.StatusSuccess
	switch {
	case err != nil:
		status = metrics.StatusError
	case lookup.Result.Raw:
		status = metrics.StatusRaw
	}
	s.metrics.RecordOperation(ctx, metrics.DomainLookup, "check", status)
	s.metrics.RecordDuration(ctx, metrics.DomainLookup, "check", lookup.Duration, status)

	s.record(ctx, lookup)

	logger := events.FromContext(ctx).WithFields(map[string]interface{}{
		"strategy":    lookup.Result.Strategy,
		"serviceable": lookup.Serviceable(),
		"duration_ms": lookup.Duration.Milliseconds(),
	})
	if err != nil {
		logger.WithError(err).Warn("Pincode check failed")
	} else {
		logger.Info("Pincode checked")
	}

	return lookup, err
}

// record appends the lookup to history. History failures never fail a check.
func (s *Service) record(ctx context.Context, lookup *Lookup) {
	if s.history == nil {
		return
	}

	entry := &state.Entry{
		RequestID: lookup.RequestID,
		Pincode:   lookup.Pincode,
		Strategy:  lookup.Result.Strategy,
		Raw:       lookup.Result.Raw,
		Time:      time.Now().UTC(),
	}
	if lookup.Location != nil {
		entry.City = lookup.Location.CityName
	}
	if lookup.Err != nil {
		entry.Error = lookup.Err.Error()
	}

	if err := s.history.Append(entry); err != nil {
		events.FromContext(ctx).WithError(err).Warn("Failed to record lookup")
	}
}
