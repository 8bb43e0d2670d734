package env

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/forgecore/engine/internal/elog"
)

// Lifecycle is implemented by services that own a background goroutine
// or other running resource (job.System, streamio.Reader,
// copyqueue.Queue, ...). Environment starts registered lifecycles in
// registration order and stops them in reverse, matching
// ApplicationFramework's create -> register -> run -> shutdown order.
type Lifecycle interface {
	Start()
	Stop()
}

// Environment is the thin root service locator from spec.md §6:
// Register/Resolve by type, with create -> register -> run -> shutdown
// lifecycle. It does not construct the services it holds; callers build
// each subsystem with its dependencies explicit and only register the
// finished instance.
type Environment struct {
	log *slog.Logger

	mu         sync.RWMutex
	services   map[reflect.Type]any
	lifecycles []Lifecycle

	exitCode int
}

// New creates an empty Environment.
func New(logger *slog.Logger) *Environment {
	return &Environment{
		log:      elog.Named(logger, "env"),
		services: make(map[reflect.Type]any),
	}
}

// Register installs instance under type T. It panics if T is already
// registered, matching the original ServiceLocator's "couldn't register
// twice" assertion. If instance implements Lifecycle, it is started
// immediately and queued for reverse-order Stop at Shutdown.
func Register[T any](e *Environment, instance T) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	e.mu.Lock()
	if _, exists := e.services[t]; exists {
		e.mu.Unlock()
		panic(fmt.Sprintf("env: %s registered twice", t))
	}
	e.services[t] = instance
	var lc Lifecycle
	if l, ok := any(instance).(Lifecycle); ok {
		lc = l
		e.lifecycles = append(e.lifecycles, l)
	}
	e.mu.Unlock()

	e.log.Debug("registered service", "type", t)
	if lc != nil {
		lc.Start()
	}
}

// Resolve returns the instance registered under type T, and false if
// none was registered.
func Resolve[T any](e *Environment) (T, bool) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()

	e.mu.RLock()
	v, ok := e.services[t]
	e.mu.RUnlock()
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// MustResolve is Resolve, panicking if T was never registered. Intended
// for wiring code in cmd/engineloop where a missing dependency is a
// programming error, not a recoverable condition.
func MustResolve[T any](e *Environment) T {
	v, ok := Resolve[T](e)
	if !ok {
		var zero T
		t := reflect.TypeOf(zero)
		panic(fmt.Sprintf("env: %s was never registered", t))
	}
	return v
}

// ExitCode returns the code set by RequestStop, 0 until RequestStop is
// called.
func (e *Environment) ExitCode() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.exitCode
}

// RequestStop records exitCode for ExitCode to return once the caller's
// main loop observes it and calls Shutdown. It does not itself stop
// anything; the main loop is expected to check a stop condition each
// iteration (mirroring ApplicationFramework's ShouldStop/Stop split).
func (e *Environment) RequestStop(exitCode int) {
	e.mu.Lock()
	e.exitCode = exitCode
	e.mu.Unlock()
}

// Shutdown stops every registered Lifecycle in the reverse of its
// registration order, so a service never outlives one it depends on.
func (e *Environment) Shutdown() {
	e.mu.Lock()
	lifecycles := make([]Lifecycle, len(e.lifecycles))
	copy(lifecycles, e.lifecycles)
	e.lifecycles = nil
	e.mu.Unlock()

	for i := len(lifecycles) - 1; i >= 0; i-- {
		lifecycles[i].Stop()
	}
	e.log.Debug("shutdown complete", "stopped", len(lifecycles))
}
