package manager

import (
	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

// Select admits name as a candidate for activation. For a Jig or an
// Interface this collapses into Activate (there is no interesting
// intermediate state for either — the source only ever calls
// activate_jig/activate_interface, never a distinct select_jig/
// select_interface); for a Scenario it is the distinct select described
// in §4.D. Tests have no top-level select.
func (m *Manager) Select(name unit.Name) error {
	return submitVoid(m, func() error { return m.selectLocked(name) })
}

func (m *Manager) selectLocked(name unit.Name) error {
	switch name.Kind() {
	case unit.Jig:
		return m.activateJigLocked(name)
	case unit.Scenario:
		return m.selectScenarioLocked(name)
	case unit.Interface:
		return m.activateInterfaceLocked(name)
	default:
		return &InvalidTransitionError{Name: name, To: "selected"}
	}
}

// Activate transitions name to running/live.
func (m *Manager) Activate(name unit.Name) error {
	return submitVoid(m, func() error { return m.activateLocked(name) })
}

func (m *Manager) activateLocked(name unit.Name) error {
	switch name.Kind() {
	case unit.Jig:
		return m.activateJigLocked(name)
	case unit.Scenario:
		if err := m.selectScenarioLocked(name); err != nil {
			return err
		}
		return m.activateScenarioLocked(name)
	case unit.Interface:
		return m.activateInterfaceLocked(name)
	default:
		return &InvalidTransitionError{Name: name, To: "active"}
	}
}

// Deactivate steps name back from Active to Selected and runs its
// kind-specific teardown. It never propagates a teardown failure as an
// error to the caller: failures are reported as a DeactivateFailure
// status event (§7).
func (m *Manager) Deactivate(name unit.Name, reason string) error {
	return submitVoid(m, func() error { m.deactivateLocked(name, reason); return nil })
}

func (m *Manager) deactivateLocked(name unit.Name, reason string) {
	switch name.Kind() {
	case unit.Jig:
		m.deactivateJigLocked(name, reason)
	case unit.Scenario:
		m.deactivateScenarioLocked(name, reason)
	case unit.Interface:
		m.deactivateInterfaceLocked(name, reason)
	default:
		// Tests have no independent activation; nothing to tear down.
	}
}

// Deselect releases name's claim to its singleton slot, if it holds
// one, and returns it to Loaded.
func (m *Manager) Deselect(name unit.Name) error {
	return submitVoid(m, func() error { m.deselectLocked(name); return nil })
}

func (m *Manager) deselectLocked(name unit.Name) {
	switch name.Kind() {
	case unit.Jig:
		m.deselectJigLocked(name)
	case unit.Scenario:
		m.deselectScenarioLocked(name)
	}
}

// Unload deselects name (see Deselect) and removes it from its
// registry. Silent on an absent name.
func (m *Manager) Unload(name unit.Name) error {
	return submitVoid(m, func() error {
		if m.stateLocked(name) == unit.Active {
			m.deactivateLocked(name, "unloading")
		}
		m.deselectLocked(name)
		switch name.Kind() {
		case unit.Jig:
			m.jigs.remove(name)
			m.bus.Broadcast(event.NewCategory(unit.Jig, m.jigs.count()))
		case unit.Scenario:
			m.scenarios.remove(name)
			m.bus.Broadcast(event.NewCategory(unit.Scenario, m.scenarios.count()))
		case unit.Test:
			m.tests.remove(name)
			m.bus.Broadcast(event.NewCategory(unit.Test, m.tests.count()))
		case unit.Interface:
			m.interfaces.remove(name)
			m.bus.Broadcast(event.NewCategory(unit.Interface, m.interfaces.count()))
		}
		return nil
	})
}

func (m *Manager) stateLocked(name unit.Name) unit.State {
	switch name.Kind() {
	case unit.Jig:
		if j := m.jigs.get(name); j != nil {
			return j.State()
		}
	case unit.Scenario:
		if s := m.scenarios.get(name); s != nil {
			return s.State()
		}
	case unit.Test:
		if t := m.tests.get(name); t != nil {
			return t.State()
		}
	case unit.Interface:
		if i := m.interfaces.get(name); i != nil {
			return i.State()
		}
	}
	return unit.Unloaded
}

// --- Jig ---

func (m *Manager) activateJigLocked(name unit.Name) error {
	j := m.jigs.get(name)
	if j == nil {
		return &UnitNotFoundError{Name: name}
	}

	if m.currentJig != nil && *m.currentJig != name {
		m.deactivateJigLocked(*m.currentJig, "switching to a different jig")
	}

	j.setState(unit.Active)
	m.currentJig = &name
	m.bus.Broadcast(event.NewActive(name))

	if defaultScenario, ok := j.DefaultScenario(); ok {
		if m.scenarios.has(defaultScenario) {
			if err := m.activateLocked(defaultScenario); err != nil {
				// The cascade failure propagates as this operation's
				// error, but the jig itself stays current (§4.D).
				m.bus.Broadcast(event.NewActiveFailed(name, err.Error()))
				return &ActivateFailedError{Name: name, Reason: err.Error()}
			}
		}
	}
	return nil
}

func (m *Manager) deselectJigLocked(name unit.Name) {
	if m.currentJig == nil || *m.currentJig != name {
		return
	}
	j := m.jigs.get(name)
	if j == nil {
		m.currentJig = nil
		return
	}
	if defaultScenario, ok := j.DefaultScenario(); ok {
		m.deselectScenarioLocked(defaultScenario)
	}
	m.currentJig = nil
	j.setState(unit.Loaded)
	m.bus.Broadcast(event.NewDeselected(name, "jig deselected"))
}

func (m *Manager) deactivateJigLocked(name unit.Name, reason string) {
	j := m.jigs.get(name)
	if j == nil {
		return
	}
	j.setState(unit.Selected)
	m.bus.Broadcast(event.NewDeactivateSuccess(name, reason))
}

// --- Scenario ---

func (m *Manager) selectScenarioLocked(name unit.Name) error {
	if m.currentScenario != nil && *m.currentScenario == name {
		return nil
	}

	s := m.scenarios.get(name)
	if s == nil {
		return &UnitNotFoundError{Name: name}
	}

	for _, testName := range s.Tests() {
		if !m.tests.has(testName) {
			return &DependencyMissingError{Owner: name, Dependency: testName}
		}
	}

	if m.currentScenario != nil {
		m.deselectScenarioLocked(*m.currentScenario)
	}

	s.setState(unit.Selected)
	m.currentScenario = &name
	m.bus.Broadcast(event.NewActive(name))
	return nil
}

func (m *Manager) activateScenarioLocked(name unit.Name) error {
	s := m.scenarios.get(name)
	if s == nil {
		return &UnitNotFoundError{Name: name}
	}
	m.currentScenario = &name
	s.setState(unit.Active)
	return nil
}

func (m *Manager) deselectScenarioLocked(name unit.Name) {
	if m.currentScenario == nil || *m.currentScenario != name {
		return
	}
	m.currentScenario = nil
	if s := m.scenarios.get(name); s != nil {
		s.setState(unit.Loaded)
	}
	m.bus.Broadcast(event.NewDeselected(name, "scenario deselected"))
}

func (m *Manager) deactivateScenarioLocked(name unit.Name, reason string) {
	s := m.scenarios.get(name)
	if s == nil {
		return
	}
	if cancel, ok := m.runningScenarios[name]; ok {
		cancel()
		delete(m.runningScenarios, name)
	}
	// Terminal transition: the scenario returns to Selected;
	// current_scenario is unchanged (§4.F step 8).
	s.setState(unit.Selected)
	m.bus.Broadcast(event.NewDeactivateSuccess(name, reason))
}

// --- Interface ---

func (m *Manager) activateInterfaceLocked(name unit.Name) error {
	i := m.interfaces.get(name)
	if i == nil {
		return &UnitNotFoundError{Name: name}
	}
	if i.Transport() == nil {
		return &ActivateFailedError{Name: name, Reason: "no transport attached"}
	}
	i.setState(unit.Active)
	go func() {
		m.control <- event.NewControlMessage(name, event.ContentsInitialGreeting())
	}()
	return nil
}

func (m *Manager) deactivateInterfaceLocked(name unit.Name, reason string) {
	i := m.interfaces.get(name)
	if i == nil {
		return
	}
	i.setState(unit.Selected)
	if t := i.Transport(); t != nil {
		if err := t.Close(); err != nil {
			m.bus.Broadcast(event.NewDeactivateFailure(name, err.Error()))
			return
		}
	}
	m.bus.Broadcast(event.NewDeactivateSuccess(name, reason))
}
