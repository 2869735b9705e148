package desktop

import (
	"context"
	"fmt"
	"net"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/google/uuid"

	api "github.com/oshokin/alert-monitor/internal/api/grpc/alert"
	"github.com/oshokin/alert-monitor/internal/config"
	"github.com/oshokin/alert-monitor/internal/dispatcher"
	"github.com/oshokin/alert-monitor/internal/host"
	"github.com/oshokin/alert-monitor/internal/logger"
	"github.com/oshokin/alert-monitor/internal/platform"
	"github.com/oshokin/alert-monitor/internal/service/monitor"
	"github.com/oshokin/alert-monitor/internal/ui/window"
	"github.com/oshokin/alert-monitor/internal/viewmodel"
)

// AppID is the fyne application identifier.
const AppID = "io.github.oshokin.alert-monitor"

// Options controls the alert-monitor process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// StatusAddress overrides the status endpoint address from the config.
	StatusAddress string
	// LogLevel overrides the log level from the config.
	LogLevel string
	// Headless runs without a window.
	Headless bool
	// WatchConfig reloads interval and threshold when the config file changes.
	WatchConfig bool
	// AllowMultiple skips the single-instance check.
	AllowMultiple bool

	// statusBound receives the status endpoint address; used by tests.
	statusBound chan<- net.Addr
	// source replaces the random source; used by tests.
	source monitor.Source
}

// application is everything Run builds before choosing a front end.
type application struct {
	cfg        *config.Config
	viewModel  *viewmodel.MainWindow
	queue      *dispatcher.Queue
	monitor    *monitor.Service
	host       *host.Host
	instanceID string
	// logLevelOverride is the --log-level flag; it outlives config reloads.
	logLevelOverride string
}

// Run loads the configuration, builds the components and blocks until
// ctx is cancelled, the window is closed, or a background service fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alert-monitor")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return err
	}

	if !opts.AllowMultiple {
		if err = platform.CheckSingleInstance(); err != nil {
			return fmt.Errorf("single instance: %w", err)
		}
	}

	if opts.Headless {
		a, err := build(ctx, cfg, opts, dispatcher.Inline)
		if err != nil {
			return err
		}

		return a.runHeadless(ctx)
	}

	fyneApp := app.NewWithID(AppID)

	a, err := build(ctx, cfg, opts, dispatcher.ExecutorFunc(fyne.Do))
	if err != nil {
		return err
	}

	return a.runDesktop(ctx, fyneApp)
}

func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.StatusAddress != "" {
		cfg.StatusAddress = opts.StatusAddress
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return cfg, nil
}

// build constructs the singletons and registers the hosted services.
func build(ctx context.Context, cfg *config.Config, opts *Options, executor dispatcher.Executor) (*application, error) {
	a := &application{
		cfg:              cfg,
		instanceID:       uuid.NewString(),
		logLevelOverride: opts.LogLevel,
	}

	source := opts.source
	if source == nil {
		source = monitor.NewRandomSource(cfg.Seed)
	}

	a.viewModel = viewmodel.NewMainWindow(ctx, cfg.Window.Greeting)
	a.queue = dispatcher.NewQueue(cfg.QueueSize, a.viewModel.ApplyReading, dispatcher.WithExecutor(executor))
	a.monitor = monitor.New(a.queue, source, monitor.Options{
		Interval:  cfg.Interval,
		Threshold: cfg.Threshold,
	})

	services := []host.Service{a.queue, a.monitor}

	if cfg.StatusAddress != "" {
		listener := api.NewListener(cfg.StatusAddress, api.NewServer(a.viewModel, a.instanceID))
		if opts.statusBound != nil {
			listener.NotifyBound(opts.statusBound)
		}

		services = append(services, listener)
	}

	if opts.WatchConfig {
		watcher, err := config.NewWatcher(opts.ConfigPath, a.applyConfig)
		if err != nil {
			return nil, fmt.Errorf("config watcher: %w", err)
		}

		services = append(services, watcher)
	}

	a.host = host.New(services...)

	return a, nil
}

// applyConfig pushes reloaded settings into the running components.
func (a *application) applyConfig(ctx context.Context, cfg *config.Config) {
	a.monitor.UpdateOptions(monitor.Options{
		Interval:  cfg.Interval,
		Threshold: cfg.Threshold,
	})

	if parsed, ok := logger.ParseLogLevel(a.logLevel(cfg)); ok && parsed != logger.Level() {
		logger.SetLevel(parsed)
	}

	logger.InfoKV(ctx, "Monitor options updated", "interval", cfg.Interval.String(), "threshold", cfg.Threshold)
}

// logLevel returns the command-line level if one was given, else the file's.
func (a *application) logLevel(cfg *config.Config) string {
	if a.logLevelOverride != "" {
		return a.logLevelOverride
	}

	return cfg.LogLevel
}

func (a *application) runHeadless(ctx context.Context) error {
	if err := a.host.Start(ctx); err != nil {
		return fmt.Errorf("start host: %w", err)
	}

	logger.InfoKV(ctx, "Running headless", "instance_id", a.instanceID)

	select {
	case <-ctx.Done():
	case <-a.host.Failed():
	case <-a.host.Done():
	}

	return a.shutdown(ctx)
}

func (a *application) runDesktop(ctx context.Context, fyneApp fyne.App) error {
	mainWindow := window.New(fyneApp, a.viewModel, window.Config{
		Title:  a.cfg.Window.Title,
		Width:  a.cfg.Window.Width,
		Height: a.cfg.Window.Height,
	})

	if err := a.host.Start(ctx); err != nil {
		return fmt.Errorf("start host: %w", err)
	}

	logger.InfoKV(ctx, "Running with main window", "instance_id", a.instanceID)

	session := newDesktopSession(ctx, a, fyneApp, mainWindow)
	mainWindow.SetOnClose(session.requestShutdown)

	go session.watch()

	mainWindow.ShowAndRun()

	// The event loop may also end without the close intercept, e.g. on
	// an OS logout; make sure the services are stopped either way.
	return session.wait()
}

// desktopSession ties the window lifetime to the host.
type desktopSession struct {
	ctx     context.Context //nolint:containedctx // Shutdown runs from UI callbacks that carry no context.
	app     *application
	fyneApp fyne.App
	window  *window.Window

	once    sync.Once
	stopped chan struct{}
	err     error
}

func newDesktopSession(ctx context.Context, a *application, fyneApp fyne.App, w *window.Window) *desktopSession {
	return &desktopSession{
		ctx:     ctx,
		app:     a,
		fyneApp: fyneApp,
		window:  w,
		stopped: make(chan struct{}),
	}
}

// requestShutdown stops the host off the UI goroutine so the event loop
// keeps draining, then closes the window and quits. Only the first call acts.
func (s *desktopSession) requestShutdown() {
	s.once.Do(func() {
		go func() {
			s.err = s.app.shutdown(s.ctx)
			close(s.stopped)

			fyne.Do(func() {
				s.window.Close()
				s.fyneApp.Quit()
			})
		}()
	})
}

// watch requests a shutdown when ctx ends or a background service fails.
func (s *desktopSession) watch() {
	select {
	case <-s.ctx.Done():
	case <-s.app.host.Failed():
	case <-s.app.host.Done():
	case <-s.stopped:
		return
	}

	s.requestShutdown()
}

// wait requests a shutdown if none is running and returns its result.
func (s *desktopSession) wait() error {
	s.requestShutdown()
	<-s.stopped

	return s.err
}

// shutdown stops the host within the configured timeout and reports a
// background service failure, if any.
func (a *application) shutdown(ctx context.Context) error {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()

	logger.Info(ctx, "Shutdown requested")

	if err := a.host.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop host: %w", err)
	}

	if err := a.host.Err(); err != nil {
		return fmt.Errorf("background service failed: %w", err)
	}

	logger.Info(ctx, "Stopped")

	return nil
}
