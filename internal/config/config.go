// Package config defines the global configuration structure for the dawn
// patrol service. Configuration is loaded once at process initialization and
// is immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to
// fail immediately on startup.
package config

import (
	"time"

	"dawnpatrol/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// process initialization and never modified. Sub-components receive only the
// specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"dawnpatrol"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server   ServerConfig
	Database DatabaseConfig
	Upstream UpstreamConfig
	AWS      AWSConfig
	Engine   EngineConfig
	Feature  FeatureConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// UpstreamConfig holds the station telemetry and forecast API endpoints and
// the resilience tunables applied to outbound calls.
type UpstreamConfig struct {
	StationBaseURL  string        `envconfig:"STATION_BASE_URL" validate:"required,url"`
	ForecastBaseURL string        `envconfig:"FORECAST_BASE_URL" validate:"required,url"`
	Timeout         time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	UserAgent       string        `envconfig:"UPSTREAM_USER_AGENT" default:"DawnPatrol/1.0"`
	MaxRetries      int           `envconfig:"UPSTREAM_MAX_RETRIES" default:"3"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region           string `envconfig:"AWS_REGION" default:"us-east-1"`
	DecisionQueueURL string `envconfig:"SQS_DECISIONS"`
	MetricNamespace  string `envconfig:"METRIC_NAMESPACE" default:"DawnPatrol"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// EngineConfig holds poller cadence, archive location, and the decision band
// edges applied when evaluating sites.
type EngineConfig struct {
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"5m"`
	ArchiveDir      string        `envconfig:"ARCHIVE_DIR" default:"/var/lib/dawnpatrol/archive"`
	GoProbability   float64       `envconfig:"BAND_GO_PROBABILITY" default:"60"`
	GoConfidence    float64       `envconfig:"BAND_GO_CONFIDENCE" default:"60"`
	SkipProbability float64       `envconfig:"BAND_SKIP_PROBABILITY" default:"40"`
}

// FeatureConfig holds emergency kill switches for system capabilities.
type FeatureConfig struct {
	EnablePublish bool `envconfig:"FEATURE_ENABLE_PUBLISH" default:"true"`
	EnableMetrics bool `envconfig:"FEATURE_ENABLE_METRICS" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
