// Package manager implements the unit manager and its event bus: the
// registry of loaded jigs, scenarios, tests, and interfaces; the
// lifecycle state machine each one moves through; the control channel
// that serializes inbound commands; and the scenario runner and status
// projector that sit on top of it.
//
// Exactly one goroutine — the one running Manager.Run — ever mutates a
// registry or a singleton slot. Every exported method that touches
// manager state (Load*, Select, Activate, Deactivate, Deselect, Unload)
// submits a closure to that goroutine and blocks for its result,
// instead of taking a lock; this is the Go rendering of "a single task
// owns the manager" from the design this package implements.
package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/exclave-go/exclave/internal/broadcaster"
	"github.com/exclave-go/exclave/internal/config"
	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/execx"
	"github.com/exclave-go/exclave/internal/log"
	"github.com/exclave-go/exclave/internal/unit"
)

// Manager is the unit manager: the registries, the singleton jig/
// scenario slots, the control channel, and the dispatch logic that
// reacts to broadcast events.
type Manager struct {
	cfg    *config.Config
	logger log.Logger
	runner execx.Runner

	bus *broadcaster.Broadcaster

	jigs       *registry[Jig]
	scenarios  *registry[Scenario]
	tests      *registry[Test]
	interfaces *registry[Interface]

	currentJig      *unit.Name
	currentScenario *unit.Name

	control chan event.ManagerControlMessage
	ops     chan func()

	runningScenarios map[unit.Name]context.CancelFunc
}

// New constructs a Manager. Call Run to start its owning goroutine
// before issuing any other call.
func New(cfg *config.Config, logger log.Logger, runner execx.Runner) *Manager {
	return &Manager{
		cfg:              cfg,
		logger:           logger,
		runner:           runner,
		bus:              broadcaster.New(),
		jigs:             newRegistry[Jig](),
		scenarios:        newRegistry[Scenario](),
		tests:            newRegistry[Test](),
		interfaces:       newRegistry[Interface](),
		control:          make(chan event.ManagerControlMessage, 64),
		ops:              make(chan func()),
		runningScenarios: make(map[unit.Name]context.CancelFunc),
	}
}

// Broadcaster returns the event bus, for components (interfaces, the
// scenario runner, CLI observers) that need to subscribe directly.
func (m *Manager) Broadcaster() *broadcaster.Broadcaster { return m.bus }

// ControlChannel returns the producer side of the inbound control
// channel (component E). Every interface and every running test/
// scenario subprocess reader posts here.
func (m *Manager) ControlChannel() chan<- event.ManagerControlMessage { return m.control }

// Config returns the manager's configuration.
func (m *Manager) Config() *config.Config { return m.cfg }

// Run drives the manager's owning goroutine until ctx is canceled or a
// Shutdown event is broadcast. It must be called exactly once, and
// every other Manager method must be called only after Run has started
// (they block until Run is draining m.ops).
func (m *Manager) Run(ctx context.Context) error {
	sub := m.bus.Subscribe()
	defer sub.Close()

	go m.drainControl(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case fn := <-m.ops:
			fn()

		case e := <-sub.Events():
			if e.Kind == event.KindShutdown {
				m.handleShutdown()
				return nil
			}
			m.processMessage(e)
		}
	}
}

// drainControl is the control channel's dedicated consumer (component
// E): it re-publishes every inbound ManagerControlMessage as a
// UnitEvent on the broadcaster, which the manager goroutine then
// observes like any other subscriber.
func (m *Manager) drainControl(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-m.control:
			m.bus.Broadcast(event.NewManagerRequest(msg))
		}
	}
}

// submit runs fn on the manager's owning goroutine and returns its
// result, blocking the caller until it completes. Every exported
// mutating method is built on this so registries and singleton slots
// are never touched from more than one goroutine.
func submit[R any](m *Manager, fn func() (R, error)) (R, error) {
	type result struct {
		v   R
		err error
	}
	done := make(chan result, 1)
	m.ops <- func() {
		v, err := fn()
		done <- result{v, err}
	}
	r := <-done
	return r.v, r.err
}

// submitVoid is submit for operations with no useful return value.
func submitVoid(m *Manager, fn func() error) error {
	_, err := submit(m, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (m *Manager) log(level event.LogLevel, source unit.Name, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	switch level {
	case event.LevelError:
		m.logger.Error(text, "source", source.String())
	case event.LevelDebug:
		m.logger.Debug(text, "source", source.String())
	default:
		m.logger.Info(text, "source", source.String())
	}
	m.bus.Broadcast(event.NewLog(event.LogEntry{Source: source, Level: level, Text: text, Timestamp: nowOrZero()}))
}

// nowOrZero isolates the one wall-clock read in this package so tests
// can reason about it without the package depending on a clock
// abstraction throughout.
func nowOrZero() time.Time { return time.Now() }
