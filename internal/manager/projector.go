package manager

import (
	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

// projectJig implements §4.G's jig triple: identity, Name Describe,
// Description Describe, broadcast to every interface.
func (m *Manager) projectJig(name unit.Name) {
	j := m.jigs.get(name)
	if j == nil {
		return
	}
	m.broadcastToInterfaces(event.Jig(name))
	m.broadcastToInterfaces(event.Describe(unit.Jig, event.FieldName, name.ID(), j.DisplayName()))
	m.broadcastToInterfaces(event.Describe(unit.Jig, event.FieldDescription, name.ID(), j.Summary()))
}

// projectScenario implements §4.G's scenario projection: the identity
// triple, then one Name+Description pair per test in sequence, then
// the full Tests list.
func (m *Manager) projectScenario(name unit.Name) {
	s := m.scenarios.get(name)
	if s == nil {
		return
	}
	m.broadcastToInterfaces(event.ScenarioSome(name))
	m.broadcastToInterfaces(event.Describe(unit.Scenario, event.FieldName, name.ID(), s.DisplayName()))
	m.broadcastToInterfaces(event.Describe(unit.Scenario, event.FieldDescription, name.ID(), s.Summary()))

	testNames := s.Tests()
	for _, tn := range testNames {
		if t := m.tests.get(tn); t != nil {
			m.broadcastToInterfaces(event.Describe(unit.Test, event.FieldName, tn.ID(), t.DisplayName()))
			m.broadcastToInterfaces(event.Describe(unit.Test, event.FieldDescription, tn.ID(), t.Summary()))
		}
	}
	m.broadcastToInterfaces(event.Tests(name, testNames))
}
