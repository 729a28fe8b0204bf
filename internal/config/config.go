// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Remote backends selectable with REMOTE_BACKEND.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Cascade modes selectable with CASCADE_MODE.
const (
	CascadeBestEffort = "best_effort"
	CascadeStrict     = "strict"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// Env is the application environment ("development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// RemoteBackend selects the Remote Data Gateway: rest, postgres or memory.
	RemoteBackend string `mapstructure:"REMOTE_BACKEND"`
	// RemoteURL is the hosted store base URL; the PostgREST API lives under /rest/v1.
	RemoteURL string `mapstructure:"REMOTE_URL"`
	// RemoteToken is the public API key sent with every hosted store request.
	RemoteToken string `mapstructure:"REMOTE_TOKEN"`
	// DatabaseURL is the Postgres DSN for the postgres backend, migrations and seeding.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// AdminPassword is the shared admin credential.
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	// AdminPasswordHash is a bcrypt hash of the admin credential; takes precedence over AdminPassword.
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	// SessionSecret signs session tokens. A random secret is generated per process when empty outside production.
	SessionSecret   string `mapstructure:"SESSION_SECRET"`
	SessionTTLRaw   string `mapstructure:"SESSION_TTL"`
	SessionIssuer   string `mapstructure:"SESSION_ISSUER"`
	SessionAudience string `mapstructure:"SESSION_AUDIENCE"`

	// CascadeMode is best_effort or strict.
	CascadeMode string `mapstructure:"CASCADE_MODE"`

	OTelEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelInsecure    bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// AuditKafkaBrokersRaw is a comma-separated broker list. Audit events are also published to Kafka when set.
	AuditKafkaBrokersRaw string `mapstructure:"AUDIT_KAFKA_BROKERS"`
	AuditKafkaTopic      string `mapstructure:"AUDIT_KAFKA_TOPIC"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Env vars override .env.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read builds Config like Load without validating it. Commands that need only a subset of the
// settings (migrate, seed) use Read and check what they need.
func Read() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REMOTE_BACKEND", BackendREST)
	v.SetDefault("REMOTE_URL", "")
	v.SetDefault("REMOTE_TOKEN", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_ISSUER", "admin-panel")
	v.SetDefault("SESSION_AUDIENCE", "admin-panel-api")
	v.SetDefault("CASCADE_MODE", CascadeBestEffort)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "admin-panel")
	v.SetDefault("AUDIT_KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "admin.audit")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the server needs to start.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if err := c.ValidateRemote(); err != nil {
		return err
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return errors.New("config: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
	if c.SessionSecret == "" && c.IsProduction() {
		return errors.New("config: SESSION_SECRET must be set when APP_ENV=production")
	}
	if c.CascadeMode != CascadeBestEffort && c.CascadeMode != CascadeStrict {
		return fmt.Errorf("config: CASCADE_MODE %q is not one of best_effort, strict", c.CascadeMode)
	}
	return nil
}

// ValidateRemote checks the settings of the selected remote backend.
func (c *Config) ValidateRemote() error {
	switch c.RemoteBackend {
	case BackendREST:
		if c.RemoteURL == "" || c.RemoteToken == "" {
			return errors.New("config: REMOTE_URL and REMOTE_TOKEN must be set for the rest backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: REMOTE_BACKEND %q is not one of rest, postgres, memory", c.RemoteBackend)
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StrictCascade reports whether CASCADE_MODE is strict.
func (c *Config) StrictCascade() bool {
	return c.CascadeMode == CascadeStrict
}

// AuditKafkaBrokers splits AuditKafkaBrokersRaw, dropping empty entries.
func (c *Config) AuditKafkaBrokers() []string {
	var out []string
	for _, b := range strings.Split(c.AuditKafkaBrokersRaw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// SessionTTL parses SessionTTLRaw. Returns 12h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTLRaw)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}
