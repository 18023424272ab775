package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbruneau/hookorder/internal/retry"
	"gopkg.in/yaml.v3"
)

// AppConfig is the main configuration structure for the application.
// It aggregates configurations for all subsystems.
type AppConfig struct {
	App     AppSettings   `yaml:"app"`     // General application configuration.
	Capture CaptureConfig `yaml:"capture"` // Console capture behaviour.
	Server  ServerConfig  `yaml:"server"`  // Two-process variant, server side.
	Client  ClientConfig  `yaml:"client"`  // Two-process variant, client side.
	Viewer  ViewerConfig  `yaml:"viewer"`  // Terminal viewer.
	Demo    DemoConfig    `yaml:"demo"`    // Scripted lifecycle emitter.
	Retry   RetryConfig   `yaml:"retry"`   // Retry configuration.
}

// AppSettings contains general application settings.
type AppSettings struct {
	Env      string `yaml:"env"`       // Execution environment (e.g., development, production).
	LogLevel string `yaml:"log_level"` // Operational logging level: debug, info, warn or error.
}

// CaptureConfig controls the console interceptor.
type CaptureConfig struct {
	StartPaused bool   `yaml:"start_paused"` // Start with capture paused.
	Passthrough string `yaml:"passthrough"`  // stdout, stderr, discard, slog or a file path.
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr              string `yaml:"addr"`                // Listen address.
	PayloadVar        string `yaml:"payload_var"`         // Global the embedded payload is assigned to.
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms"` // Graceful shutdown budget in milliseconds.
}

// ClientConfig contains client settings.
type ClientConfig struct {
	PageURL string `yaml:"page_url"` // Page rendered by the server.
}

// ViewerConfig contains terminal viewer settings.
type ViewerConfig struct {
	MaxRecentLogs   int    `yaml:"max_recent_logs"`  // Max recent entries to display.
	UIUpdateMs      int    `yaml:"ui_update_ms"`     // UI refresh period in milliseconds.
	MaxRowLength    int    `yaml:"max_row_length"`   // Rows longer than this are truncated.
	PassthroughFile string `yaml:"passthrough_file"` // Where forwarded console output goes while the TUI owns the terminal.
}

// DemoConfig contains the lifecycle script settings.
type DemoConfig struct {
	Variant      string `yaml:"variant"`      // with-compiler or without-compiler.
	IntervalMs   int    `yaml:"interval_ms"`  // Pause between script steps in milliseconds.
	Interactions int    `yaml:"interactions"` // Number of simulated user interactions after mount.
}

// RetryConfig contains retry model settings.
type RetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts"`     // Maximum number of attempts.
	InitialDelayMs int     `yaml:"initial_delay_ms"` // Initial delay in milliseconds.
	MaxDelayMs     int     `yaml:"max_delay_ms"`     // Maximum delay in milliseconds.
	Multiplier     float64 `yaml:"multiplier"`       // Backoff multiplier.
}

// DefaultConfig returns a configuration with default values.
// These values are used if no external configuration is provided.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		App: AppSettings{
			Env:      DefaultEnv,
			LogLevel: DefaultLogLevel,
		},
		Capture: CaptureConfig{
			StartPaused: CaptureStartPaused,
			Passthrough: CapturePassthrough,
		},
		Server: ServerConfig{
			Addr:              ServerDefaultAddr,
			PayloadVar:        ServerPayloadVar,
			ShutdownTimeoutMs: int(ServerShutdownTimeout / time.Millisecond),
		},
		Client: ClientConfig{
			PageURL: ClientDefaultPageURL,
		},
		Viewer: ViewerConfig{
			MaxRecentLogs:   ViewerMaxRecentLogs,
			UIUpdateMs:      int(ViewerUIUpdateInterval / time.Millisecond),
			MaxRowLength:    ViewerMaxRowLength,
			PassthroughFile: ViewerPassthroughFile,
		},
		Demo: DemoConfig{
			Variant:      DemoDefaultVariant,
			IntervalMs:   int(DemoStepInterval / time.Millisecond),
			Interactions: DemoInteractions,
		},
		Retry: RetryConfig{
			MaxAttempts:    RetryMaxAttempts,
			InitialDelayMs: int(RetryInitialDelay / time.Millisecond),
			MaxDelayMs:     int(RetryMaxDelay / time.Millisecond),
			Multiplier:     RetryMultiplier,
		},
	}
}

// Load loads the configuration from a YAML file, utilizing default values if necessary.
// Environment variables override values from the YAML file. A missing file is
// not an error.
func Load(configPath string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadFromYAML(configPath, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("error loading config file: %w", err)
			}
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromYAML(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing YAML: %w", err)
	}

	return nil
}

// loadFromEnv overrides the configuration with environment variables.
// Unparsable numeric or boolean values are ignored.
func loadFromEnv(cfg *AppConfig) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}

	if v := os.Getenv("CAPTURE_START_PAUSED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Capture.StartPaused = b
		}
	}

	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CLIENT_PAGE_URL"); v != "" {
		cfg.Client.PageURL = v
	}

	if v := os.Getenv("DEMO_VARIANT"); v != "" {
		cfg.Demo.Variant = v
	}
	if v := os.Getenv("DEMO_INTERVAL_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Demo.IntervalMs = i
		}
	}

	if v := os.Getenv("RETRY_MAX_ATTEMPTS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxAttempts = i
		}
	}
}

// Validate rejects values no component can work with.
func (c *AppConfig) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Demo.Variant {
	case DemoVariantWithCompiler, DemoVariantWithoutCompiler:
	default:
		return fmt.Errorf("invalid demo variant %q (want %s or %s)",
			c.Demo.Variant, DemoVariantWithCompiler, DemoVariantWithoutCompiler)
	}
	if c.Viewer.MaxRecentLogs <= 0 {
		return fmt.Errorf("viewer.max_recent_logs must be positive, got %d", c.Viewer.MaxRecentLogs)
	}
	return nil
}

// SlogLevel parses app.log_level.
func (c *AppConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.App.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.App.LogLevel, err)
	}
	return level, nil
}

// GetShutdownTimeout returns the server shutdown budget as a duration.
func (c *AppConfig) GetShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutMs) * time.Millisecond
}

// GetUIUpdateInterval returns the viewer refresh period as a duration.
func (c *AppConfig) GetUIUpdateInterval() time.Duration {
	return time.Duration(c.Viewer.UIUpdateMs) * time.Millisecond
}

// GetDemoInterval returns the pause between script steps as a duration.
func (c *AppConfig) GetDemoInterval() time.Duration {
	return time.Duration(c.Demo.IntervalMs) * time.Millisecond
}

// GetInitialRetryDelay returns the initial retry delay as a duration.
func (c *AppConfig) GetInitialRetryDelay() time.Duration {
	return time.Duration(c.Retry.InitialDelayMs) * time.Millisecond
}

// GetMaxRetryDelay returns the maximum retry delay as a duration.
func (c *AppConfig) GetMaxRetryDelay() time.Duration {
	return time.Duration(c.Retry.MaxDelayMs) * time.Millisecond
}

// RetryPolicy converts the retry section for the retry package.
func (c *AppConfig) RetryPolicy() retry.Config {
	return retry.Config{
		MaxAttempts:  c.Retry.MaxAttempts,
		InitialDelay: c.GetInitialRetryDelay(),
		MaxDelay:     c.GetMaxRetryDelay(),
		Multiplier:   c.Retry.Multiplier,
	}
}
