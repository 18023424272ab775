package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.App.Env != "development" {
		t.Errorf("Expected env 'development', got %s", cfg.App.Env)
	}
	if cfg.Server.Addr != ServerDefaultAddr {
		t.Errorf("Expected addr '%s', got %s", ServerDefaultAddr, cfg.Server.Addr)
	}
	if cfg.Server.PayloadVar != "__SERVER_LOGS__" {
		t.Errorf("Expected payload var '__SERVER_LOGS__', got %s", cfg.Server.PayloadVar)
	}
	if cfg.Capture.StartPaused {
		t.Error("Expected capture to start unpaused")
	}
	if cfg.Demo.Variant != DemoVariantWithoutCompiler {
		t.Errorf("Expected variant '%s', got %s", DemoVariantWithoutCompiler, cfg.Demo.Variant)
	}
	assert.NoError(t, cfg.Validate())
}

func TestInvalidEnvVars(t *testing.T) {
	t.Setenv("DEMO_INTERVAL_MS", "invalid")
	t.Setenv("RETRY_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("CAPTURE_START_PAUSED", "maybe")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int(DemoStepInterval/time.Millisecond), cfg.Demo.IntervalMs)
	assert.Equal(t, RetryMaxAttempts, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.Capture.StartPaused)
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.Equal(t, ServerDefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultConfig().Viewer, cfg.Viewer)
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
app:
  env: "production"
  log_level: "debug"
capture:
  start_paused: true
  passthrough: slog
server:
  addr: ":9090"
  payload_var: "LOGS"
client:
  page_url: "http://example.test/with-compiler"
viewer:
  max_recent_logs: 50
demo:
  variant: with-compiler
  interactions: 7
retry:
  max_attempts: 5
  initial_delay_ms: 200
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.True(t, cfg.Capture.StartPaused)
	assert.Equal(t, PassthroughSlog, cfg.Capture.Passthrough)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "LOGS", cfg.Server.PayloadVar)
	assert.Equal(t, "http://example.test/with-compiler", cfg.Client.PageURL)
	assert.Equal(t, 50, cfg.Viewer.MaxRecentLogs)
	assert.Equal(t, DemoVariantWithCompiler, cfg.Demo.Variant)
	assert.Equal(t, 7, cfg.Demo.Interactions)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	// untouched keys keep their defaults
	assert.Equal(t, ViewerMaxRowLength, cfg.Viewer.MaxRowLength)
	assert.Equal(t, RetryMultiplier, cfg.Retry.Multiplier)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "ci")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CAPTURE_START_PAUSED", "true")
	t.Setenv("SERVER_ADDR", "0.0.0.0:1234")
	t.Setenv("CLIENT_PAGE_URL", "http://host/")
	t.Setenv("DEMO_VARIANT", DemoVariantWithCompiler)
	t.Setenv("DEMO_INTERVAL_MS", "10")
	t.Setenv("RETRY_MAX_ATTEMPTS", "10")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ci", cfg.App.Env)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.True(t, cfg.Capture.StartPaused)
	assert.Equal(t, "0.0.0.0:1234", cfg.Server.Addr)
	assert.Equal(t, "http://host/", cfg.Client.PageURL)
	assert.Equal(t, DemoVariantWithCompiler, cfg.Demo.Variant)
	assert.Equal(t, 10*time.Millisecond, cfg.GetDemoInterval())
	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "yaml:1"
client:
  page_url: "http://yaml/"
`)
	t.Setenv("SERVER_ADDR", "env:2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env:2", cfg.Server.Addr)
	assert.Equal(t, "http://yaml/", cfg.Client.PageURL)
}

func TestInvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"bad log level", func(c *AppConfig) { c.App.LogLevel = "loud" }},
		{"bad variant", func(c *AppConfig) { c.Demo.Variant = "both" }},
		{"no rows", func(c *AppConfig) { c.Viewer.MaxRecentLogs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("DEMO_VARIANT", "sideways")
	_, err := Load("")
	assert.ErrorContains(t, err, "sideways")
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ShutdownTimeoutMs = 1500
	cfg.Viewer.UIUpdateMs = 100
	cfg.Retry.InitialDelayMs = 20
	cfg.Retry.MaxDelayMs = 400

	assert.Equal(t, 1500*time.Millisecond, cfg.GetShutdownTimeout())
	assert.Equal(t, 100*time.Millisecond, cfg.GetUIUpdateInterval())
	assert.Equal(t, 20*time.Millisecond, cfg.GetInitialRetryDelay())
	assert.Equal(t, 400*time.Millisecond, cfg.GetMaxRetryDelay())

	policy := cfg.RetryPolicy()
	assert.Equal(t, cfg.Retry.MaxAttempts, policy.MaxAttempts)
	assert.Equal(t, 20*time.Millisecond, policy.InitialDelay)
	assert.Equal(t, 400*time.Millisecond, policy.MaxDelay)
	assert.Equal(t, cfg.Retry.Multiplier, policy.Multiplier)
}
