package viewmodel

import (
	"context"
	"image/color"
	"sync"

	"github.com/oshokin/alert-monitor/internal/domain/alert"
	"github.com/oshokin/alert-monitor/internal/logger"
)

// Property names a bindable MainWindow field.
type Property string

const (
	// PropertyAlertColor changes when the indicator brush changes.
	PropertyAlertColor Property = "AlertColor"
	// PropertyAlertLevel changes when the alert level changes.
	PropertyAlertLevel Property = "AlertLevel"
	// PropertyReading changes on every applied reading.
	PropertyReading Property = "Reading"
	// PropertyGreeting changes when the greeting text changes.
	PropertyGreeting Property = "Greeting"
)

// DefaultGreeting is shown until something replaces it.
const DefaultGreeting = "Welcome to alert-monitor!"

// Listener is notified after a property has changed.
type Listener func(Property)

// MainWindow is the view-model of the main window.
type MainWindow struct {
	// mu protects every field below.
	mu sync.RWMutex

	// level is the current alert level.
	level alert.Level
	// alertColor is the brush bound to the indicator.
	alertColor color.NRGBA
	// reading is the last applied sample.
	reading alert.Reading
	// greeting is the text bound to the greeting label.
	greeting string

	// listeners are keyed so that unsubscribe can drop them.
	listeners map[uint64]Listener
	// nextListener is the key of the next subscription.
	nextListener uint64
}

// NewMainWindow creates a view-model in the normal state.
func NewMainWindow(ctx context.Context, greeting string) *MainWindow {
	if greeting == "" {
		greeting = DefaultGreeting
	}

	vm := &MainWindow{
		level:      alert.LevelNormal,
		alertColor: alert.LevelNormal.Color(),
		greeting:   greeting,
		listeners:  make(map[uint64]Listener),
	}

	logger.Info(logger.WithName(ctx, "view-model"), "Main window view model initialized")

	return vm
}

// AlertColor returns the indicator brush.
func (vm *MainWindow) AlertColor() color.NRGBA {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	return vm.alertColor
}

// AlertLevel returns the current alert level.
func (vm *MainWindow) AlertLevel() alert.Level {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	return vm.level
}

// Reading returns the last applied sample.
func (vm *MainWindow) Reading() alert.Reading {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	return vm.reading
}

// Greeting returns the greeting text.
func (vm *MainWindow) Greeting() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	return vm.greeting
}

// ApplyReading records a sample and derives the alert state from it.
// Must be called on the UI context.
func (vm *MainWindow) ApplyReading(reading alert.Reading) {
	vm.mu.Lock()

	changed := []Property{PropertyReading}

	vm.reading = reading

	if vm.level != reading.Level {
		vm.level = reading.Level
		changed = append(changed, PropertyAlertLevel)
	}

	if brush := reading.Level.Color(); vm.alertColor != brush {
		vm.alertColor = brush
		changed = append(changed, PropertyAlertColor)
	}

	listeners := vm.snapshotListenersLocked()
	vm.mu.Unlock()

	notify(listeners, changed...)
}

// SetGreeting replaces the greeting text. Must be called on the UI context.
func (vm *MainWindow) SetGreeting(greeting string) {
	vm.mu.Lock()
	if vm.greeting == greeting {
		vm.mu.Unlock()
		return
	}

	vm.greeting = greeting
	listeners := vm.snapshotListenersLocked()
	vm.mu.Unlock()

	notify(listeners, PropertyGreeting)
}

// OnPropertyChanged registers a listener and returns a function removing it.
func (vm *MainWindow) OnPropertyChanged(listener Listener) (unsubscribe func()) {
	if listener == nil {
		return func() {}
	}

	vm.mu.Lock()
	id := vm.nextListener
	vm.nextListener++
	vm.listeners[id] = listener
	vm.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			vm.mu.Lock()
			delete(vm.listeners, id)
			vm.mu.Unlock()
		})
	}
}

func (vm *MainWindow) snapshotListenersLocked() []Listener {
	// Subscription order is the key order.
	listeners := make([]Listener, 0, len(vm.listeners))
	for id := uint64(0); id < vm.nextListener; id++ {
		if l, ok := vm.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}

	return listeners
}

func notify(listeners []Listener, properties ...Property) {
	for _, property := range properties {
		for _, l := range listeners {
			l(property)
		}
	}
}
