package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Duplicate offer policies accepted by CHECKOUT_DUPLICATE_OFFER_POLICY.
const (
	OfferPolicyLastWins = "last_wins"
	OfferPolicyReject   = "reject"
)

// Config holds checkout configuration loaded from the environment.
type Config struct {
	AppEnv               string
	LogFormat            string
	LogLevel             string
	MetricsNamespace     string
	MetricsEnabled       bool
	MetricsBuckets       string
	TracingEnabled       bool
	TracingExporter      string
	OTLPEndpoint         string
	TracingSamplingRatio float64
	DuplicateOfferPolicy string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:               valueOrDefault(k.String("APP_ENV"), "development"),
		LogFormat:            valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:             valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace:     valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "checkout"),
		MetricsEnabled:       parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsBuckets:       strings.TrimSpace(k.String("OBS_METRICS_BUCKETS")),
		TracingEnabled:       parseBool(k.String("OBS_ENABLE_TRACING"), false),
		TracingExporter:      valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
		OTLPEndpoint:         strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSamplingRatio: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		DuplicateOfferPolicy: strings.ToLower(valueOrDefault(k.String("CHECKOUT_DUPLICATE_OFFER_POLICY"), OfferPolicyLastWins)),
	}

	switch cfg.DuplicateOfferPolicy {
	case OfferPolicyLastWins, OfferPolicyReject:
	default:
		return nil, fmt.Errorf("CHECKOUT_DUPLICATE_OFFER_POLICY must be %q or %q, got %q",
			OfferPolicyLastWins, OfferPolicyReject, cfg.DuplicateOfferPolicy)
	}

	return cfg, nil
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return f
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
