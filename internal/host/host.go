package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/alert-monitor/internal/logger"
)

// Service is a long-running unit of work owned by a Host.
type Service interface {
	// Name identifies the service in logs.
	Name() string
	// Run blocks until ctx is cancelled or the service fails.
	// Returning nil after cancellation is a normal stop.
	Run(ctx context.Context) error
}

// State is a Host lifecycle phase.
type State int

const (
	// StateNotStarted is the initial phase.
	StateNotStarted State = iota
	// StateRunning means services have been launched.
	StateRunning
	// StateStopping means cancellation has been signalled.
	StateStopping
	// StateStopped is the terminal phase.
	StateStopped
)

// String returns the phase name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrAlreadyStarted is returned by Start on anything but a fresh Host.
var ErrAlreadyStarted = errors.New("host already started")

// Host owns a fixed set of services.
type Host struct {
	// services are launched in registration order.
	services []Service

	// mu protects state, cancel and errs.
	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	errs   []error

	// done is closed once every service has returned.
	done chan struct{}
	// failed is closed on the first service error.
	failed     chan struct{}
	failedOnce sync.Once
	// stopped is closed when the Host reaches StateStopped.
	stopped chan struct{}
}

// New creates a Host for the given services. Nil services are skipped.
func New(services ...Service) *Host {
	h := &Host{
		done:    make(chan struct{}),
		failed:  make(chan struct{}),
		stopped: make(chan struct{}),
	}

	for _, svc := range services {
		if svc != nil {
			h.services = append(h.services, svc)
		}
	}

	return h
}

// State returns the current lifecycle phase.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.state
}

// Done is closed once every service has returned, whether stopped or failed.
func (h *Host) Done() <-chan struct{} {
	return h.done
}

// Failed is closed as soon as any service returns an error. The other
// services keep running until Stop.
func (h *Host) Failed() <-chan struct{} {
	return h.failed
}

// Err returns the joined errors of services that failed.
func (h *Host) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return errors.Join(h.errs...)
}

// Start launches every service. Services inherit the values of ctx but
// not its cancellation; only Stop cancels them.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateNotStarted {
		return ErrAlreadyStarted
	}

	ctx = logger.WithName(ctx, "host")
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	h.cancel = cancel
	h.state = StateRunning

	var wg sync.WaitGroup

	for _, svc := range h.services {
		wg.Go(func() {
			h.run(runCtx, svc)
		})
	}

	go func() {
		wg.Wait()
		close(h.done)
	}()

	logger.InfoKV(ctx, "Host started", "services", len(h.services))

	return nil
}

// Stop cancels the services and waits until they return or ctx ends.
// Stopping a Host that was never started moves it straight to stopped.
// Concurrent calls wait for the same completion.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()

	switch h.state {
	case StateNotStarted:
		h.state = StateStopped
		close(h.done)
		close(h.stopped)
		h.mu.Unlock()

		return nil
	case StateRunning:
		h.state = StateStopping
		h.cancel()
		logger.Info(logger.WithName(ctx, "host"), "Host stopping")

		go h.markStopped()
	case StateStopping, StateStopped:
	}

	h.mu.Unlock()

	select {
	case <-h.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for services to stop: %w", ctx.Err())
	}
}

func (h *Host) markStopped() {
	<-h.done

	h.mu.Lock()
	h.state = StateStopped
	h.mu.Unlock()

	close(h.stopped)
}

func (h *Host) run(ctx context.Context, svc Service) {
	ctx = logger.WithKV(ctx, "service", svc.Name())
	logger.Debug(ctx, "Service starting")

	if err := svc.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Service failed", "error", err)

		h.mu.Lock()
		h.errs = append(h.errs, fmt.Errorf("%s: %w", svc.Name(), err))
		h.mu.Unlock()

		h.failedOnce.Do(func() {
			close(h.failed)
		})

		return
	}

	logger.Debug(ctx, "Service stopped")
}
