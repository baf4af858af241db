// Package client assembles the lookup pipeline from configuration.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/TheMichaelB/pincheck/internal/config"
	"github.com/TheMichaelB/pincheck/internal/crypto"
	"github.com/TheMichaelB/pincheck/internal/envelope"
	"github.com/TheMichaelB/pincheck/internal/events"
	"github.com/TheMichaelB/pincheck/internal/metrics"
	"github.com/TheMichaelB/pincheck/internal/resolver"
	"github.com/TheMichaelB/pincheck/internal/services/pincode"
	"github.com/TheMichaelB/pincheck/internal/state"
	"github.com/TheMichaelB/pincheck/internal/transport"
)

// Client provides the high-level API for pincheck operations.
type Client struct {
	Pincode  *pincode.Service
	Sealer   *envelope.Sealer
	Resolver *resolver.Resolver
	History  state.Store // nil when history is disabled

	config    *config.Config
	logger    *events.Logger
	transport transport.Transport
	metrics   *metrics.Provider
}

// Option overrides a collaborator, mostly for tests.
type Option func(*options)

type options struct {
	transport transport.Transport
	history   state.Store
}

// WithTransport replaces the HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithHistory replaces the configured history store.
func WithHistory(store state.Store) Option {
	return func(o *options) {
		o.history = store
	}
}

// New creates a pincheck client.
func New(cfg *config.Config, logger *events.Logger, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create sealer
	sealer, err := envelope.NewSealer(
		crypto.NewProvider(),
		cfg.Crypto.Passphrase,
		envelope.WithKeySize(cfg.Crypto.KeySizeBits),
		envelope.WithIterations(cfg.Crypto.Iterations),
		envelope.WithMaxIterations(cfg.Crypto.MaxIterations),
	)
	if err != nil {
		return nil, fmt.Errorf("create sealer: %w", err)
	}

	c := &Client{
		Sealer: sealer,
		config: cfg,
		logger: logger,
	}

	// Create metrics
	business := metrics.NewNoOpBusinessMetrics()
	if cfg.Metrics.Enabled {
		provider, err := metrics.NewProvider()
		if err != nil {
			return nil, fmt.Errorf("create metrics provider: %w", err)
		}
		business, err = metrics.NewBusinessMetrics(provider.MeterProvider(), cfg.Metrics.Namespace)
		if err != nil {
			_ = provider.Shutdown(context.Background())
			return nil, fmt.Errorf("create business metrics: %w", err)
		}
		c.metrics = provider
	}

	c.Resolver = resolver.New(sealer, resolver.WithMetrics(business))

	// Create transport
	c.transport = o.transport
	if c.transport == nil {
		c.transport = transport.NewTransport(&cfg.API, logger)
	}

	// Create history store
	c.History = o.history
	if c.History == nil && cfg.History.Enabled {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
		store, err := state.Open(&cfg.History, logger)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		c.History = store
	}

	serviceOpts := []pincode.Option{
		pincode.WithMetrics(business),
		pincode.WithConcurrency(cfg.Lookup.Concurrency),
		pincode.WithRateLimit(cfg.Lookup.RateLimit, cfg.Lookup.Burst),
	}
	if c.History != nil {
		serviceOpts = append(serviceOpts, pincode.WithHistory(c.History))
	}
	c.Pincode = pincode.NewService(sealer, c.transport, c.Resolver, logger, serviceOpts...)

	return c, nil
}

// Config returns the configuration the client was built from.
func (c *Client) Config() *config.Config {
	return c.config
}

// MetricsEnabled reports whether metrics are being collected.
func (c *Client) MetricsEnabled() bool {
	return c.metrics != nil
}

// WriteMetrics dumps collected metrics in Prometheus text format. It writes
// nothing when metrics are disabled.
func (c *Client) WriteMetrics(w io.Writer) error {
	if c.metrics == nil {
		return nil
	}
	return c.metrics.WriteText(w)
}

// Close releases the transport, history and metrics provider.
func (c *Client) Close() error {
	var errs []error

	if err := c.transport.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close transport: %w", err))
	}

	if c.History != nil {
		if err := c.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}

	if c.metrics != nil {
		if err := c.metrics.Shutdown(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}
