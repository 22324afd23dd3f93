package manager

import (
	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

// processMessage is the central dispatch of component D: it reacts to
// every event observed off the broadcaster except Shutdown, which Run
// handles directly. It executes on the manager's owning goroutine.
func (m *Manager) processMessage(e event.UnitEvent) {
	switch e.Kind {
	case event.KindStatus:
		m.observeStatus(e.Status)
	case event.KindLog:
		m.broadcastToInterfaces(event.Log(e.Log))
	case event.KindManagerRequest:
		m.handleControlMessage(e.Request)
	case event.KindRescanRequest, event.KindCategory:
		// Consumed by external collaborators (the unit watcher, CLI
		// reporting); the core has nothing to do here.
	}
}

// observeStatus implements §4.G's trigger: an Active transition of a
// Jig or Scenario drives the status projector.
func (m *Manager) observeStatus(s event.UnitStatusEvent) {
	if s.Status != event.StatusActive {
		return
	}
	switch s.Name.Kind() {
	case unit.Jig:
		m.projectJig(s.Name)
	case unit.Scenario:
		m.projectScenario(s.Name)
	}
}

func (m *Manager) handleControlMessage(msg event.ManagerControlMessage) {
	sender := msg.Sender
	c := msg.Contents

	switch c.Verb {
	case event.VerbJig:
		m.sendJigIdentity(sender)

	case event.VerbScenarios:
		m.sendScenarioList(sender)

	case event.VerbScenario:
		if !m.scenarios.has(c.ScenarioName) {
			m.log(event.LevelError, sender, "scenario %s is not loaded", c.ScenarioName)
			return
		}
		if err := m.activateLocked(c.ScenarioName); err != nil {
			m.log(event.LevelError, sender, "activate %s: %v", c.ScenarioName, err)
		}

	case event.VerbTests:
		m.sendTestSequence(sender, c)

	case event.VerbLog:
		m.log(event.LevelInfo, sender, "%s", c.Text)

	case event.VerbLogError, event.VerbError:
		m.log(event.LevelError, sender, "%s", c.Text)

	case event.VerbInitialGreeting:
		m.sendInitialGreeting(sender)

	case event.VerbChildExited:
		m.bus.Broadcast(event.NewActiveFailed(sender, "unit unexpectedly exited"))

	case event.VerbUnimplemented:
		m.log(event.LevelError, sender, "unimplemented control verb %q %q", c.UnimplementedVerb, c.UnimplementedRest)

	case event.VerbStart:
		m.handleStart(sender, c)

	case event.VerbScenarioFinished:
		m.handleScenarioFinished(sender, c)
	}
}

func (m *Manager) handleStart(sender unit.Name, c event.ManagerControlMessageContents) {
	target := c.ScenarioName
	if !c.HasScenarioName {
		if m.currentScenario == nil {
			m.log(event.LevelError, sender, "no scenario selected to start")
			return
		}
		target = *m.currentScenario
	}
	s := m.scenarios.get(target)
	if s == nil {
		m.log(event.LevelError, sender, "scenario %s is not loaded", target)
		return
	}
	m.startScenarioLocked(s)
}

func (m *Manager) handleScenarioFinished(sender unit.Name, c event.ManagerControlMessageContents) {
	level := event.LevelInfo
	if c.ScenarioFinishedCode != 0 {
		level = event.LevelError
	}
	m.log(level, sender, "scenario finished: %s", c.ScenarioFinishedSummary)
	m.deactivateScenarioLocked(sender, c.ScenarioFinishedSummary)
}

func (m *Manager) sendJigIdentity(to unit.Name) {
	name := unit.Name{}
	if m.currentJig != nil {
		name = *m.currentJig
	}
	m.outputMessage(to, event.Jig(name))
}

func (m *Manager) sendScenarioList(to unit.Name) {
	names := m.scenarios.names()
	m.outputMessage(to, event.Scenarios(names))
	for _, n := range names {
		m.describeUnit(to, n)
	}
}

func (m *Manager) sendTestSequence(to unit.Name, c event.ManagerControlMessageContents) {
	target := c.ScenarioName
	if !c.HasScenarioName {
		if m.currentScenario == nil {
			m.log(event.LevelError, to, "no scenario selected")
			return
		}
		target = *m.currentScenario
	}
	s := m.scenarios.get(target)
	if s == nil {
		m.log(event.LevelError, to, "scenario %s is not loaded", target)
		return
	}
	m.outputMessage(to, event.Tests(target, s.Tests()))
}

// sendInitialGreeting sends Hello, Jig, Scenarios, and then a Scenario
// message naming the current scenario (or an empty Scenario message when
// none is current), in that fixed order.
func (m *Manager) sendInitialGreeting(to unit.Name) {
	m.outputMessage(to, event.Hello(m.cfg.GetServerID()))
	m.sendJigIdentity(to)
	m.sendScenarioList(to)
	if m.currentScenario != nil {
		m.outputMessage(to, event.ScenarioSome(*m.currentScenario))
	} else {
		m.outputMessage(to, event.ScenarioNone())
	}
}

func (m *Manager) describeUnit(to unit.Name, n unit.Name) {
	switch n.Kind() {
	case unit.Jig:
		if j := m.jigs.get(n); j != nil {
			m.outputMessage(to, event.Describe(unit.Jig, event.FieldName, n.ID(), j.DisplayName()))
			m.outputMessage(to, event.Describe(unit.Jig, event.FieldDescription, n.ID(), j.Summary()))
		}
	case unit.Scenario:
		if s := m.scenarios.get(n); s != nil {
			m.outputMessage(to, event.Describe(unit.Scenario, event.FieldName, n.ID(), s.DisplayName()))
			m.outputMessage(to, event.Describe(unit.Scenario, event.FieldDescription, n.ID(), s.Summary()))
		}
	case unit.Test:
		if t := m.tests.get(n); t != nil {
			m.outputMessage(to, event.Describe(unit.Test, event.FieldName, n.ID(), t.DisplayName()))
			m.outputMessage(to, event.Describe(unit.Test, event.FieldDescription, n.ID(), t.Summary()))
		}
	}
}

// outputMessage sends msg to the named interface's transport. A
// transport error deactivates that interface only; every other
// interface is unaffected (§4.D).
func (m *Manager) outputMessage(to unit.Name, msg event.ManagerStatusMessage) {
	i := m.interfaces.get(to)
	if i == nil || i.State() != unit.Active {
		return
	}
	t := i.Transport()
	if t == nil {
		return
	}
	if err := t.Send(msg); err != nil {
		m.deactivateInterfaceLocked(to, "communication error: "+err.Error())
	}
}

// broadcastToInterfaces sends msg to every currently active interface.
func (m *Manager) broadcastToInterfaces(msg event.ManagerStatusMessage) {
	for _, n := range m.interfaces.names() {
		m.outputMessage(n, msg)
	}
}
