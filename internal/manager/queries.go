package manager

import (
	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

// JigIsLoaded reports whether name is present in the jig registry.
func (m *Manager) JigIsLoaded(name unit.Name) bool { return m.jigs.has(name) }

// GetJigNamed returns the named jig, or nil if not loaded.
func (m *Manager) GetJigNamed(name unit.Name) *Jig { return m.jigs.get(name) }

// GetTestNamed returns the named test, or nil if not loaded.
func (m *Manager) GetTestNamed(name unit.Name) *Test { return m.tests.get(name) }

// GetScenarioNamed returns the named scenario, or nil if not loaded.
func (m *Manager) GetScenarioNamed(name unit.Name) *Scenario { return m.scenarios.get(name) }

// GetInterfaceNamed returns the named interface, or nil if not loaded.
func (m *Manager) GetInterfaceNamed(name unit.Name) *Interface { return m.interfaces.get(name) }

// GetTests returns every loaded test name, order unspecified.
func (m *Manager) GetTests() []unit.Name { return m.tests.names() }

// GetScenarios returns every loaded scenario name, order unspecified.
func (m *Manager) GetScenarios() []unit.Name { return m.scenarios.names() }

// GetJigs returns every loaded jig name, order unspecified.
func (m *Manager) GetJigs() []unit.Name { return m.jigs.names() }

// GetInterfaces returns every loaded interface name, order unspecified.
func (m *Manager) GetInterfaces() []unit.Name { return m.interfaces.names() }

// CurrentJig returns the current jig's name and true, or the zero Name
// and false if none is current.
func (m *Manager) CurrentJig() (unit.Name, bool) {
	v, _ := submit(m, func() (unit.Name, error) {
		if m.currentJig == nil {
			return unit.Name{}, nil
		}
		return *m.currentJig, nil
	})
	return v, !v.IsZero()
}

// CurrentScenario returns the current scenario's name and true, or the
// zero Name and false if none is current.
func (m *Manager) CurrentScenario() (unit.Name, bool) {
	v, _ := submit(m, func() (unit.Name, error) {
		if m.currentScenario == nil {
			return unit.Name{}, nil
		}
		return *m.currentScenario, nil
	})
	return v, !v.IsZero()
}

// RequestRescan broadcasts a RescanRequest event for the external unit
// watcher to observe.
func (m *Manager) RequestRescan() {
	m.bus.Broadcast(event.NewRescanRequest())
}

// Shutdown broadcasts a Shutdown event, causing Run to wind the
// manager down (§5): deactivate the current scenario and jig, close
// every interface, then return.
func (m *Manager) Shutdown() {
	m.bus.Broadcast(event.NewShutdown())
}

func (m *Manager) handleShutdown() {
	if m.currentScenario != nil {
		m.deactivateScenarioLocked(*m.currentScenario, "shutting down")
	}
	if m.currentJig != nil {
		m.deactivateJigLocked(*m.currentJig, "shutting down")
	}
	for _, name := range m.interfaces.names() {
		m.deactivateInterfaceLocked(name, "shutting down")
	}
}
