package monitor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/oshokin/alert-monitor/internal/domain/alert"
	"github.com/oshokin/alert-monitor/internal/logger"
)

const (
	// DefaultInterval is the delay between two samples.
	DefaultInterval = time.Second
	// DefaultThreshold is the value a sample must exceed to raise an alert.
	DefaultThreshold = 0.8
)

// Publisher delivers readings to the UI context.
type Publisher interface {
	Publish(ctx context.Context, reading alert.Reading) error
}

// Options controls the sampling loop.
type Options struct {
	// Interval is the delay before every sample.
	Interval time.Duration
	// Threshold is the alert boundary; samples above it raise an alert.
	Threshold float64
}

// withDefaults fills zero fields.
func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}

	if math.IsNaN(o.Threshold) || o.Threshold < 0 || o.Threshold > 1 {
		o.Threshold = DefaultThreshold
	}

	return o
}

// Service is the random monitor hosted service.
type Service struct {
	// publisher receives every reading.
	publisher Publisher
	// source produces samples.
	source Source

	// mu protects options, which may be swapped while Run is active.
	mu      sync.RWMutex
	options Options
}

// New creates a monitor publishing to publisher. A nil source falls back
// to a randomly seeded RandomSource.
func New(publisher Publisher, source Source, opts Options) *Service {
	if source == nil {
		source = NewRandomSource(0)
	}

	return &Service{
		publisher: publisher,
		source:    source,
		options:   opts.withDefaults(),
	}
}

// Name identifies the monitor as a hosted service.
func (s *Service) Name() string {
	return "random-monitor"
}

// Options returns the options in effect.
func (s *Service) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.options
}

// UpdateOptions replaces interval and threshold. The change applies from
// the next iteration.
func (s *Service) UpdateOptions(opts Options) {
	s.mu.Lock()
	s.options = opts.withDefaults()
	s.mu.Unlock()
}

// Run samples until ctx is cancelled. Cancellation is not an error;
// a failing source, an out-of-range sample or a failed publish ends the
// loop with an error.
func (s *Service) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, s.Name())

	opts := s.Options()
	logger.InfoKV(ctx, "Random monitor started",
		"interval", opts.Interval.String(),
		"threshold", opts.Threshold,
	)

	timer := time.NewTimer(opts.Interval)
	defer timer.Stop()

	var (
		sequence  uint64
		lastLevel = alert.LevelNormal
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Random monitor stopped")
			return nil
		case <-timer.C:
		}

		// Both channels may have been ready; cancellation wins.
		if ctx.Err() != nil {
			logger.Info(ctx, "Random monitor stopped")
			return nil
		}

		value, err := s.source.Float64()
		if err != nil {
			return fmt.Errorf("generate value: %w", err)
		}

		opts = s.Options()
		sequence++

		reading, err := alert.NewReading(sequence, value, opts.Threshold, time.Now())
		if err != nil {
			return fmt.Errorf("classify value: %w", err)
		}

		logger.DebugKV(ctx, "Random value generated", "value", value, "sequence", sequence)

		if reading.Level != lastLevel {
			logger.InfoKV(ctx, "Alert level changed", "from", lastLevel, "to", reading.Level, "value", value)
			lastLevel = reading.Level
		}

		if err = s.publisher.Publish(ctx, reading); err != nil {
			// The consumer stops together with us on shutdown.
			if ctx.Err() != nil {
				logger.Info(ctx, "Random monitor stopped")
				return nil
			}

			return fmt.Errorf("publish reading: %w", err)
		}

		timer.Reset(opts.Interval)
	}
}
