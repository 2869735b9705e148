package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required ranges and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Empty settings pick up defaults.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultInterval, cfg.Interval)
	require.Equal(t, DefaultQueueSize, cfg.QueueSize)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	require.Equal(t, DefaultWindowTitle, cfg.Window.Title)
	require.Zero(t, cfg.Threshold)

	// Threshold out of range.
	require.ErrorIs(t, Validate(&Config{Threshold: 1.5}), errThresholdOutOfRange)
	require.ErrorIs(t, Validate(&Config{Threshold: -0.1}), errThresholdOutOfRange)
	require.ErrorIs(t, Validate(&Config{Threshold: math.NaN()}), errThresholdOutOfRange)

	_, err := Parse([]byte("threshold: .nan\n"))
	require.ErrorIs(t, err, errThresholdOutOfRange)

	// Negative queue.
	require.ErrorIs(t, Validate(&Config{QueueSize: -1}), errNegativeQueueSize)

	// Bad log level.
	require.Error(t, Validate(&Config{LogLevel: "loud"}))

	// Bad status address.
	require.Error(t, Validate(&Config{StatusAddress: "bad:address"}))

	// Okay with status address.
	require.NoError(t, Validate(&Config{StatusAddress: "127.0.0.1:0", Threshold: 0.5}))
}

// TestLoad_MissingFileYieldsDefaults mirrors first launch without a config file.
func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// TestParse_PartialFileKeepsDefaults overrides only the fields present in YAML.
func TestParse_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("interval: 250ms\nthreshold: 0.5\nwindow:\n  title: Demo\n"))
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.Interval)
	require.InDelta(t, 0.5, cfg.Threshold, 1e-9)
	require.Equal(t, "Demo", cfg.Window.Title)
	require.Equal(t, DefaultGreeting, cfg.Window.Greeting)
	require.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)

	_, err = Parse([]byte("threshold: [1, 2]"))
	require.Error(t, err)

	_, err = Parse([]byte("threshold: 3"))
	require.ErrorIs(t, err, errThresholdOutOfRange)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	settings := Default()
	settings.Interval = 2 * time.Second
	settings.Threshold = 0.65
	settings.Seed = 7
	settings.StatusAddress = "127.0.0.1:50061"

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())

	require.Error(t, Save(path, nil))
}
