package desktop

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/require"

	api "github.com/oshokin/alert-monitor/internal/api/grpc/alert"
	"github.com/oshokin/alert-monitor/internal/config"
	"github.com/oshokin/alert-monitor/internal/dispatcher"
	"github.com/oshokin/alert-monitor/internal/host"
	"github.com/oshokin/alert-monitor/internal/service/monitor"
	"github.com/oshokin/alert-monitor/internal/ui/window"
)

var errBrokenSource = errors.New("broken source")

// brokenSource fails on the first sample.
var brokenSource = monitor.SourceFunc(func() (float64, error) {
	return 0, errBrokenSource
})

// buildDesktop builds the application with the fyne executor and a window on a test app.
func buildDesktop(t *testing.T, opts *Options) (*application, fyne.App, *window.Window) {
	t.Helper()

	fyneApp := test.NewTempApp(t)

	cfg, err := loadConfig(&Options{ConfigPath: writeConfig(t, nil)})
	require.NoError(t, err)

	a, err := build(context.Background(), cfg, opts, dispatcher.ExecutorFunc(fyne.Do))
	require.NoError(t, err)

	w := window.New(fyneApp, a.viewModel, window.Config{Title: "test", Width: 200, Height: 100})

	return a, fyneApp, w
}

// writeConfig saves a fast-ticking config into a temp dir.
func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	cfg := config.Default()
	cfg.Interval = 10 * time.Millisecond
	cfg.Seed = 1
	cfg.ShutdownTimeout = 2 * time.Second

	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, cfg))

	return path
}

// TestLoadConfig_Overrides applies CLI overrides on top of the file.
func TestLoadConfig_Overrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, nil)

	cfg, err := loadConfig(&Options{ConfigPath: path, StatusAddress: "127.0.0.1:0", LogLevel: "debug"})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:0", cfg.StatusAddress)
	require.Equal(t, "debug", cfg.LogLevel)

	_, err = loadConfig(&Options{ConfigPath: path, LogLevel: "chatty"})
	require.Error(t, err)
}

// TestBuild_RegistersOptionalServices adds the status endpoint and watcher on demand.
func TestBuild_RegistersOptionalServices(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, nil)

	cfg, err := loadConfig(&Options{ConfigPath: path})
	require.NoError(t, err)

	a, err := build(context.Background(), cfg, &Options{ConfigPath: path}, dispatcher.Inline)
	require.NoError(t, err)
	require.NotEmpty(t, a.instanceID)
	require.Equal(t, host.StateNotStarted, a.host.State())

	cfg.StatusAddress = "127.0.0.1:0"
	a, err = build(context.Background(), cfg, &Options{ConfigPath: path, WatchConfig: true}, dispatcher.Inline)
	require.NoError(t, err)
	require.NoError(t, a.host.Stop(context.Background()))
}

// TestRunHeadless_AppliesReadings drives readings into the view-model and stops on cancel.
func TestRunHeadless_AppliesReadings(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, nil)

	cfg, err := loadConfig(&Options{ConfigPath: path})
	require.NoError(t, err)

	a, err := build(context.Background(), cfg, &Options{}, dispatcher.Inline)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- a.runHeadless(ctx) }()

	require.Eventually(t, func() bool {
		return a.viewModel.Reading().Sequence >= 3
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.Equal(t, host.StateStopped, a.host.State())

	reading := a.viewModel.Reading()
	require.Equal(t, reading.Level.Color(), a.viewModel.AlertColor())
}

// TestRun_HeadlessWithStatusEndpoint runs the full Run path and queries it over gRPC.
func TestRun_HeadlessWithStatusEndpoint(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, nil)
	bound := make(chan net.Addr, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, &Options{
			ConfigPath:    path,
			StatusAddress: "127.0.0.1:0",
			Headless:      true,
			AllowMultiple: true,
			statusBound:   bound,
		})
	}()

	var addr net.Addr
	select {
	case addr = <-bound:
	case <-time.After(5 * time.Second):
		t.Fatal("status endpoint did not bind")
	}

	client, err := api.Dial(addr.String())
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	require.Eventually(t, func() bool {
		snapshot, err := client.GetAlertState(context.Background())
		return err == nil && snapshot.Reading.Sequence > 0 && snapshot.InstanceID != ""
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

// TestRun_InvalidConfig fails before starting anything.
func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 5\n"), 0o600))

	err := Run(context.Background(), &Options{ConfigPath: path, Headless: true, AllowMultiple: true})
	require.Error(t, err)
}

// TestRun_HeadlessStopsOnServiceFailure shuts down as soon as the monitor fails,
// even though the queue and other services are still running.
func TestRun_HeadlessStopsOnServiceFailure(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, nil)
	done := make(chan error, 1)

	go func() {
		done <- Run(context.Background(), &Options{
			ConfigPath:    path,
			Headless:      true,
			AllowMultiple: true,
			source:        brokenSource,
		})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, errBrokenSource)
	case <-time.After(5 * time.Second):
		t.Fatal("application kept running after the monitor failed")
	}
}

// TestApplication_LogLevelOverrideSurvivesReload prefers the command-line level.
func TestApplication_LogLevelOverrideSurvivesReload(t *testing.T) {
	t.Parallel()

	reloaded := config.Default()
	reloaded.LogLevel = "error"

	a := &application{logLevelOverride: "debug"}
	require.Equal(t, "debug", a.logLevel(reloaded))

	a = &application{}
	require.Equal(t, "error", a.logLevel(reloaded))
}

// TestDesktopSession_CloseRequestStopsHost stops the host before the window
// closes when the close intercept fires.
func TestDesktopSession_CloseRequestStopsHost(t *testing.T) {
	a, fyneApp, w := buildDesktop(t, &Options{})

	ctx := context.Background()
	require.NoError(t, a.host.Start(ctx))

	session := newDesktopSession(ctx, a, fyneApp, w)
	w.SetOnClose(session.requestShutdown)

	go session.watch()

	require.Eventually(t, func() bool {
		return a.viewModel.Reading().Sequence >= 2
	}, 5*time.Second, 5*time.Millisecond)

	// The intercept may fire more than once; only the first call acts.
	session.requestShutdown()
	session.requestShutdown()

	require.NoError(t, session.wait())
	require.Equal(t, host.StateStopped, a.host.State())

	require.Eventually(t, func() bool {
		return len(fyneApp.Driver().AllWindows()) == 0
	}, 5*time.Second, 5*time.Millisecond)
}

// TestDesktopSession_ServiceFailureClosesWindow shuts down on a monitor failure
// and reports it.
func TestDesktopSession_ServiceFailureClosesWindow(t *testing.T) {
	a, fyneApp, w := buildDesktop(t, &Options{source: brokenSource})

	ctx := context.Background()
	require.NoError(t, a.host.Start(ctx))

	session := newDesktopSession(ctx, a, fyneApp, w)

	go session.watch()

	select {
	case <-session.stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after the monitor failed")
	}

	err := session.wait()
	require.ErrorIs(t, err, errBrokenSource)
	require.Equal(t, host.StateStopped, a.host.State())
}

// TestRunDesktop_StopsHostWhenEventLoopEnds stops everything once ShowAndRun returns.
func TestRunDesktop_StopsHostWhenEventLoopEnds(t *testing.T) {
	a, fyneApp, _ := buildDesktop(t, &Options{})

	done := make(chan error, 1)

	go func() { done <- a.runDesktop(context.Background(), fyneApp) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runDesktop did not return")
	}

	require.Equal(t, host.StateStopped, a.host.State())
}
