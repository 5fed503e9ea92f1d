package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Provider abstracts read access to application configuration so consumers
// can be tested with lightweight fakes instead of a fully loaded Config.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration
	GetManifestPath() string
	GetHooksDir() string
	GetTracingEnabled() bool
	GetZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr          string `validate:"required"`
	AppBaseURL       string `validate:"required,url"`
	SessionSecret    string `validate:"required"`
	DBUrl            string `validate:"required,url"`
	DBUser           string
	DBPass           string
	DBNs             string `validate:"required"`
	DBDb             string `validate:"required"`
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration
	ManifestPath     string `validate:"required"`
	HooksDir         string
	TracingEnabled   bool
	ZipkinURL        string
}

var _ Provider = (*Config)(nil)

// New loads configuration from environment variables, falling back to a
// .env file when present, and validates the result.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	queryTimeout, err := durationEnv("DB_QUERY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	executeTimeout, err := durationEnv("DB_EXECUTE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppAddr:          envOr("REMORA_ADDR", ":8080"),
		AppBaseURL:       envOr("APP_BASE_URL", "http://localhost:8080"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		DBUrl:            os.Getenv("SURREAL_URL"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		DBNs:             os.Getenv("SURREAL_NS"),
		DBDb:             os.Getenv("SURREAL_DB"),
		DBQueryTimeout:   queryTimeout,
		DBExecuteTimeout: executeTimeout,
		ManifestPath:     envOr("MODULES_MANIFEST", "remora.yaml"),
		HooksDir:         envOr("HOOKS_DIR", "hooks"),
		TracingEnabled:   os.Getenv("TRACING_ENABLED") == "true",
		ZipkinURL:        envOr("ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func (c *Config) GetAppAddr() string                 { return c.AppAddr }
func (c *Config) GetAppBaseURL() string              { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string           { return c.SessionSecret }
func (c *Config) GetDBURL() string                   { return c.DBUrl }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetManifestPath() string            { return c.ManifestPath }
func (c *Config) GetHooksDir() string                { return c.HooksDir }
func (c *Config) GetTracingEnabled() bool            { return c.TracingEnabled }
func (c *Config) GetZipkinURL() string               { return c.ZipkinURL }
