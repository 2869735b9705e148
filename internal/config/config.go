package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alert-monitor/internal/logger"
)

// Config holds the settings of the alert monitor.
type Config struct {
	// Interval is the delay between two random samples.
	Interval time.Duration `yaml:"interval"`
	// Threshold is the value a sample must exceed to raise an alert.
	Threshold float64 `yaml:"threshold"`
	// QueueSize is the number of readings buffered ahead of the UI context.
	QueueSize int `yaml:"queue_size"`
	// Seed makes the random sequence reproducible; zero picks a random seed.
	Seed uint64 `yaml:"seed"`
	// LogLevel is the minimum level written to the console.
	LogLevel string `yaml:"log_level"`
	// StatusAddress enables the gRPC status endpoint when set.
	StatusAddress string `yaml:"status_addr,omitempty"`
	// ShutdownTimeout bounds how long shutdown waits for background services.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Window holds the main window settings.
	Window Window `yaml:"window"`
}

// Window holds the main window settings.
type Window struct {
	// Title is the window title.
	Title string `yaml:"title"`
	// Greeting is the text shown over the indicator.
	Greeting string `yaml:"greeting"`
	// Width is the initial window width.
	Width float32 `yaml:"width"`
	// Height is the initial window height.
	Height float32 `yaml:"height"`
}

const (
	// DefaultConfigFilename is the default filename for the settings.
	DefaultConfigFilename = "alert-monitor.yaml"

	// DefaultInterval is the default delay between samples.
	DefaultInterval = time.Second

	// DefaultThreshold is the default alert boundary.
	DefaultThreshold = 0.8

	// DefaultQueueSize is the default dispatcher buffer.
	DefaultQueueSize = 1

	// DefaultLogLevel is the default console log level.
	DefaultLogLevel = "info"

	// DefaultShutdownTimeout is the default bound on graceful shutdown.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultWindowTitle is the default main window title.
	DefaultWindowTitle = "alert-monitor"

	// DefaultGreeting is the default text over the indicator.
	DefaultGreeting = "Welcome to alert-monitor!"

	// DefaultWindowWidth is the default main window width.
	DefaultWindowWidth = 480

	// DefaultWindowHeight is the default main window height.
	DefaultWindowHeight = 320

	// DefaultFilePermissions is the permission of saved config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errThresholdOutOfRange is returned when the threshold is outside [0, 1].
	errThresholdOutOfRange = errors.New("threshold must be within [0, 1]")
	// errNegativeQueueSize is returned when the queue size is negative.
	errNegativeQueueSize = errors.New("queue size must not be negative")
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Interval:        DefaultInterval,
		Threshold:       DefaultThreshold,
		QueueSize:       DefaultQueueSize,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		Window: Window{
			Title:    DefaultWindowTitle,
			Greeting: DefaultGreeting,
			Width:    DefaultWindowWidth,
			Height:   DefaultWindowHeight,
		},
	}
}

// Load reads configuration from path and validates it.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	return Parse(contents)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(contents []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills defaults for unset fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}

	if math.IsNaN(cfg.Threshold) || cfg.Threshold < 0 || cfg.Threshold > 1 {
		return fmt.Errorf("%w: got %v", errThresholdOutOfRange, cfg.Threshold)
	}

	if cfg.QueueSize < 0 {
		return errNegativeQueueSize
	}

	if cfg.QueueSize == 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.StatusAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.StatusAddress); err != nil {
			return fmt.Errorf("invalid status address: %w", err)
		}
	}

	validateWindow(&cfg.Window)

	return nil
}

func validateWindow(w *Window) {
	if w.Title == "" {
		w.Title = DefaultWindowTitle
	}

	if w.Greeting == "" {
		w.Greeting = DefaultGreeting
	}

	if w.Width <= 0 {
		w.Width = DefaultWindowWidth
	}

	if w.Height <= 0 {
		w.Height = DefaultWindowHeight
	}
}
