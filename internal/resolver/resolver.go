package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/TheMichaelB/pincheck/internal/events"
	"github.com/TheMichaelB/pincheck/internal/metrics"
)

// Resolver runs strategies in order until one recovers a value.
type Resolver struct {
	strategies []Strategy
	metrics    metrics.BusinessMetrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMetrics records every attempt outcome.
func WithMetrics(m metrics.BusinessMetrics) Option {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithStrategies replaces the default chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) {
		r.strategies = strategies
	}
}

// New creates a resolver that opens envelopes with opener.
func New(opener Opener, opts ...Option) *Resolver {
	r := &Resolver{
		strategies: DefaultStrategies(opener),
		metrics:    metrics.NewNoOpBusinessMetrics(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Strategies returns the names of the configured strategies in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve recovers the best value it can from rawText. Empty input and
// exhaustion both return rawText unchanged with Raw set.
func (r *Resolver) Resolve(ctx context.Context, rawText string) Result {
	start := time.Now()
	logger := events.FromContext(ctx).WithField("component", "resolver")

	if strings.TrimSpace(rawText) == "" {
		logger.Debug("Empty response body")
		return r.finish(ctx, start, Result{Value: rawText, Strategy: StrategyEmpty, Raw: true})
	}

	working := rawText
	for _, s := range r.strategies {
		value, err := s.Attempt(working)
		if err == nil {
			r.metrics.RecordOperation(ctx, metrics.DomainResolver, s.Name(), metrics.StatusSuccess)
			logger.WithField("strategy", s.Name()).Debug("Response resolved")
			return r.finish(ctx, start, Result{Value: value, Strategy: s.Name()})
		}

		status := metrics.StatusError
		var cont *ContinueError
		if errors.As(err, &cont) {
			working = cont.Next
			err = cont.Cause
			status = metrics.StatusContinue
		}
		r.metrics.RecordOperation(ctx, metrics.DomainResolver, s.Name(), status)

		if err != nil && !errors.Is(err, ErrNotApplicable) {
			logger.WithFields(map[string]interface{}{
				"strategy": s.Name(),
				"error":    err.Error(),
			}).Debug("Strategy failed")
		}
	}

	logger.WithField("size", len(rawText)).Debug("All strategies failed, returning raw body")
	return r.finish(ctx, start, Result{Value: rawText, Strategy: StrategyExhausted, Raw: true})
}

func (r *Resolver) finish(ctx context.Context, start time.Time, res Result) Result {
	status := metrics.StatusSuccess
	if res.Raw {
		status = metrics.StatusRaw
	}
	r.metrics.RecordDuration(ctx, metrics.DomainResolver, "resolve", time.Since(start), status)
	return res
}
