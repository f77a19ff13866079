package checkout

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-checkout/internal/config"
	"github.com/noah-isme/backend-checkout/internal/events"
	"github.com/noah-isme/backend-checkout/internal/obs"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:               "test",
		LogFormat:            "json",
		LogLevel:             "debug",
		MetricsNamespace:     "runtime_test",
		MetricsEnabled:       true,
		MetricsBuckets:       "100,200",
		DuplicateOfferPolicy: config.OfferPolicyReject,
	}
}

func TestRuntimeWiresSessions(t *testing.T) {
	var buf bytes.Buffer
	registry := prometheus.NewRegistry()
	rt := newRuntime(context.Background(), testConfig(), obs.NewLoggerTo(&buf, "json", "debug"), registry)
	journal := &events.Journal{}
	rt.Bus.Subscribe(journal)

	co := rt.NewCheckout()
	require.NoError(t, co.AddSpecialOfferRule(&SpecialOffer{SKU: "A", Quantity: 3, SpecialPrice: 130}))
	require.ErrorIs(t, co.AddSpecialOfferRule(&SpecialOffer{SKU: "A", Quantity: 2, SpecialPrice: 90}), ErrDuplicateOffer)
	require.NoError(t, co.ScanProduct(&Product{SKU: "A", UnitPrice: 50}))
	require.Equal(t, Money(50), co.GetTotalPrice())

	require.NotNil(t, rt.Metrics)
	require.Equal(t, 1.0, testutil.ToFloat64(rt.Metrics.ScansTotal.WithLabelValues("A")))
	require.Len(t, journal.Events(), 3)
	require.Contains(t, buf.String(), "checkout_event")
	require.Contains(t, buf.String(), co.ID().String())
	require.NoError(t, rt.Shutdown(context.Background()))
}

func TestRuntimeOptionsOverrideDefaults(t *testing.T) {
	rt := newRuntime(context.Background(), testConfig(), obs.NewLoggerTo(&bytes.Buffer{}, "json", "info"), prometheus.NewRegistry())
	co := rt.NewCheckout(WithOfferPolicy(OfferPolicyLastWins))

	offer := SpecialOffer{SKU: "A", Quantity: 3, SpecialPrice: 130}
	require.NoError(t, co.AddSpecialOfferRule(&offer))
	require.NoError(t, co.AddSpecialOfferRule(&offer))
	require.Len(t, co.Offers(), 2)
}

func TestRuntimeWithoutMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	rt := newRuntime(context.Background(), cfg, obs.NewLoggerTo(&bytes.Buffer{}, "json", "info"), prometheus.NewRegistry())
	require.Nil(t, rt.Metrics)

	co := rt.NewCheckout()
	require.NoError(t, co.ScanProduct(&Product{SKU: "A", UnitPrice: 50}))
	require.Equal(t, Money(50), co.GetTotalPrice())
}

func TestRuntimeTracingFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.TracingEnabled = true
	cfg.TracingExporter = "zipkin"

	rt := newRuntime(context.Background(), cfg, obs.NewLoggerTo(&buf, "json", "info"), prometheus.NewRegistry())
	require.Contains(t, buf.String(), "unsupported tracing exporter")
	require.NoError(t, rt.Shutdown(context.Background()))
}

func TestRuntimeTracingNoneExporter(t *testing.T) {
	cfg := testConfig()
	cfg.TracingEnabled = true
	cfg.TracingExporter = "none"

	rt := newRuntime(context.Background(), cfg, obs.NewLoggerTo(&bytes.Buffer{}, "json", "info"), prometheus.NewRegistry())
	co := rt.NewCheckout()
	require.Zero(t, co.GetTotalPrice())
	require.NoError(t, rt.Shutdown(context.Background()))
}

func TestLoadRuntime(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("OBS_LOG_LEVEL", "error")
	t.Setenv("OBS_METRICS_NAMESPACE", "load_runtime_test")
	t.Setenv("OBS_ENABLE_PROMETHEUS", "true")
	t.Setenv("OBS_ENABLE_TRACING", "false")
	t.Setenv("CHECKOUT_DUPLICATE_OFFER_POLICY", "reject")

	rt, err := LoadRuntime(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rt.Shutdown(context.Background())) })
	require.Equal(t, "test", rt.Config.AppEnv)
	require.Equal(t, config.OfferPolicyReject, rt.Config.DuplicateOfferPolicy)
	require.NotNil(t, rt.Metrics)
	require.NotNil(t, rt.Bus)

	scansBefore := testutil.ToFloat64(rt.Metrics.ScansTotal.WithLabelValues("A"))
	journal := &events.Journal{}
	rt.Bus.Subscribe(journal)
	co := rt.NewCheckout()
	offer := SpecialOffer{SKU: "A", Quantity: 3, SpecialPrice: 130}
	require.NoError(t, co.AddSpecialOfferRule(&offer))
	require.ErrorIs(t, co.AddSpecialOfferRule(&offer), ErrDuplicateOffer)
	for i := 0; i < 3; i++ {
		require.NoError(t, co.ScanProduct(&Product{SKU: "A", UnitPrice: 50}))
	}
	require.Equal(t, Money(130), co.GetTotalPrice())
	require.Equal(t, scansBefore+3, testutil.ToFloat64(rt.Metrics.ScansTotal.WithLabelValues("A")))
	require.Len(t, journal.Events(), 5)
}

func TestLoadRuntimeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("CHECKOUT_DUPLICATE_OFFER_POLICY", "first_wins")

	rt, err := LoadRuntime(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "load config")
	require.Nil(t, rt)
}

func TestNewRuntimeRequiresConfig(t *testing.T) {
	_, err := NewRuntime(context.Background(), nil, prometheus.NewRegistry())
	require.Error(t, err)
}
