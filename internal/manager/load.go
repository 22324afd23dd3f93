package manager

import (
	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

// loadUnit is the generic core of every load_<kind> operation: if a
// prior entry occupies name, purge it (deactivate + deselect); build
// the new runtime unit from its description; on success insert it and
// broadcast Status::Loaded, on failure broadcast
// Status::UnitIncompatible and return a LoadError. It runs only on the
// manager's owning goroutine, called from inside a submit closure.
func loadUnit[U any](m *Manager, reg *registry[U], name unit.Name, purge func(unit.Name), build func() (*U, error)) (unit.Name, error) {
	if reg.has(name) {
		purge(name)
	}

	v, err := build()
	if err != nil {
		m.bus.Broadcast(event.NewUnitIncompatible(name, err.Error()))
		return unit.Name{}, &LoadError{Name: name, Reason: err.Error()}
	}

	reg.insert(name, v)
	m.bus.Broadcast(event.NewLoaded(name))
	m.bus.Broadcast(event.NewCategory(name.Kind(), reg.count()))
	return name, nil
}

// LoadJig parses and inserts a [Jig] unit description.
func (m *Manager) LoadJig(desc *JigDescription) (unit.Name, error) {
	return submit(m, func() (unit.Name, error) {
		name, err := unit.NewNameWithKind(desc.ID, unit.Jig)
		if err != nil {
			return unit.Name{}, &LoadError{Reason: err.Error()}
		}
		return loadUnit(m, m.jigs, name,
			func(n unit.Name) { m.deactivateLocked(n, "reloading"); m.deselectJigLocked(n) },
			func() (*Jig, error) { return desc.Build(m) },
		)
	})
}

// LoadScenario parses and inserts a [Scenario] unit description.
func (m *Manager) LoadScenario(desc *ScenarioDescription) (unit.Name, error) {
	return submit(m, func() (unit.Name, error) {
		name, err := unit.NewNameWithKind(desc.ID, unit.Scenario)
		if err != nil {
			return unit.Name{}, &LoadError{Reason: err.Error()}
		}
		return loadUnit(m, m.scenarios, name,
			func(n unit.Name) { m.deactivateLocked(n, "reloading"); m.deselectScenarioLocked(n) },
			func() (*Scenario, error) { return desc.Build(m) },
		)
	})
}

// LoadTest parses and inserts a [Test] unit description. Tests have no
// select/activate semantics of their own (§4.D); purge on reload is
// just a registry replace.
func (m *Manager) LoadTest(desc *TestDescription) (unit.Name, error) {
	return submit(m, func() (unit.Name, error) {
		name, err := unit.NewNameWithKind(desc.ID, unit.Test)
		if err != nil {
			return unit.Name{}, &LoadError{Reason: err.Error()}
		}
		return loadUnit(m, m.tests, name,
			func(unit.Name) {},
			func() (*Test, error) { return desc.Build(m) },
		)
	})
}

// LoadInterface parses and inserts an [Interface] unit description,
// attaching the transport the accepting listener supplies. It does not
// activate the interface; call Activate to send its InitialGreeting.
func (m *Manager) LoadInterface(desc *InterfaceDescription, transport InterfaceTransport) (unit.Name, error) {
	return submit(m, func() (unit.Name, error) {
		name, err := unit.NewNameWithKind(desc.ID, unit.Interface)
		if err != nil {
			return unit.Name{}, &LoadError{Reason: err.Error()}
		}
		return loadUnit(m, m.interfaces, name,
			func(n unit.Name) { m.deactivateLocked(n, "reloading") },
			func() (*Interface, error) {
				iface, err := desc.Build(m)
				if err != nil {
					return nil, err
				}
				iface.setTransport(transport)
				return iface, nil
			},
		)
	})
}
