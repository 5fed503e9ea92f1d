package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/nfrund/remora/internal/config"
	"github.com/nfrund/remora/internal/logging"
)

// ConfigForTests loads the .env.test file and returns a valid config.Provider.
// This is the definitive way to get configuration for integration tests.
func ConfigForTests(t *testing.T) config.Provider {
	t.Helper()

	// Find the project root by looking for go.mod, so .env.test resolves the
	// same way regardless of which package the test runs from.
	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			break
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}

	env, err := godotenv.Read(filepath.Join(path, ".env.test"))
	if err != nil {
		t.Fatalf("failed to load .env.test file: %v", err)
	}

	// t.Setenv scopes the variables to this test and restores them after.
	for key, value := range env {
		t.Setenv(key, value)
	}

	logging.New()

	cfg, err := config.New()
	if err != nil {
		t.Fatalf("failed to build test configuration: %v", err)
	}
	return cfg
}

// ConfigStub is a config.Provider for unit tests that must not touch the
// environment. The zero value is unusable; construct it with NewConfigStub
// and override fields as needed.
type ConfigStub struct {
	AppAddr        string
	AppBaseURL     string
	SessionSecret  string
	DBUrl          string
	DBUser         string
	DBPass         string
	DBNs           string
	DBDb           string
	QueryTimeout   time.Duration
	ExecuteTimeout time.Duration
	ManifestPath   string
	HooksDir       string
	TracingEnabled bool
	ZipkinURL      string
}

var _ config.Provider = (*ConfigStub)(nil)

// NewConfigStub returns a stub filled with workable defaults.
func NewConfigStub() *ConfigStub {
	return &ConfigStub{
		AppAddr:        ":0",
		AppBaseURL:     "http://localhost:8080",
		SessionSecret:  "test-session-secret",
		DBUrl:          "ws://localhost:8000/rpc",
		DBUser:         "root",
		DBPass:         "root",
		DBNs:           "test",
		DBDb:           "test",
		QueryTimeout:   5 * time.Second,
		ExecuteTimeout: 10 * time.Second,
		ManifestPath:   "remora.yaml",
		HooksDir:       "hooks",
	}
}

func (c *ConfigStub) GetAppAddr() string                 { return c.AppAddr }
func (c *ConfigStub) GetAppBaseURL() string              { return c.AppBaseURL }
func (c *ConfigStub) GetSessionSecret() string           { return c.SessionSecret }
func (c *ConfigStub) GetDBURL() string                   { return c.DBUrl }
func (c *ConfigStub) GetDBUser() string                  { return c.DBUser }
func (c *ConfigStub) GetDBPass() string                  { return c.DBPass }
func (c *ConfigStub) GetDBNs() string                    { return c.DBNs }
func (c *ConfigStub) GetDBDb() string                    { return c.DBDb }
func (c *ConfigStub) GetDBQueryTimeout() time.Duration   { return c.QueryTimeout }
func (c *ConfigStub) GetDBExecuteTimeout() time.Duration { return c.ExecuteTimeout }
func (c *ConfigStub) GetManifestPath() string            { return c.ManifestPath }
func (c *ConfigStub) GetHooksDir() string                { return c.HooksDir }
func (c *ConfigStub) GetTracingEnabled() bool            { return c.TracingEnabled }
func (c *ConfigStub) GetZipkinURL() string               { return c.ZipkinURL }
