package checkout

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-checkout/internal/config"
	"github.com/noah-isme/backend-checkout/internal/events"
	"github.com/noah-isme/backend-checkout/internal/obs"
)

// Runtime holds the logger, metrics, event bus and tracer shared by checkout sessions.
type Runtime struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *obs.Metrics
	Bus     *events.Bus

	shutdown func(context.Context) error
}

// LoadRuntime builds a Runtime from the environment.
func LoadRuntime(ctx context.Context) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewRuntime(ctx, cfg, nil)
}

// NewRuntime builds a Runtime from cfg. Metrics are registered on reg, or the default
// registerer when reg is nil.
func NewRuntime(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("checkout runtime: config is required")
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	return newRuntime(ctx, cfg, logger, reg), nil
}

func newRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer) *Runtime {
	rt := &Runtime{
		Config: cfg,
		Logger: logger,
		Bus:    &events.Bus{},
	}
	rt.Bus.Subscribe(events.LogNotifier{Logger: logger})

	if cfg.MetricsEnabled {
		rt.Metrics = obs.NewMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), reg)
	}

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "checkout",
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			rt.shutdown = shutdown
		}
	}
	return rt
}

// NewCheckout starts a session wired to the runtime. opts are applied after the runtime defaults.
func (r *Runtime) NewCheckout(opts ...Option) *Checkout {
	base := []Option{
		WithLogger(r.Logger),
		WithMetrics(r.Metrics),
		WithEventBus(r.Bus),
		WithOfferPolicy(OfferPolicy(r.Config.DuplicateOfferPolicy)),
	}
	return New(append(base, opts...)...)
}

// Shutdown flushes the tracer provider if tracing was initialised.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil || r.shutdown == nil {
		return nil
	}
	if err := r.shutdown(ctx); err != nil {
		r.Logger.Error().Err(err).Msg("shutdown tracer")
		return err
	}
	return nil
}
