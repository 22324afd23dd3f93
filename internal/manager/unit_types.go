package manager

import (
	"sync"
	"time"

	"github.com/exclave-go/exclave/internal/unit"
)

// Jig is the runtime instance of a loaded [Jig] unit. At most one Jig
// is ever current; see Manager.currentJig.
type Jig struct {
	mu sync.RWMutex

	name            unit.Name
	displayName     string
	summary         string
	defaultScenario *unit.Name
	state           unit.State
}

func (j *Jig) Name() unit.Name        { return j.name }
func (j *Jig) DisplayName() string    { j.mu.RLock(); defer j.mu.RUnlock(); return j.displayName }
func (j *Jig) Summary() string        { j.mu.RLock(); defer j.mu.RUnlock(); return j.summary }
func (j *Jig) State() unit.State      { j.mu.RLock(); defer j.mu.RUnlock(); return j.state }
func (j *Jig) setState(s unit.State)  { j.mu.Lock(); j.state = s; j.mu.Unlock() }

// DefaultScenario returns the jig's declared default scenario, if any.
func (j *Jig) DefaultScenario() (unit.Name, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.defaultScenario == nil {
		return unit.Name{}, false
	}
	return *j.defaultScenario, true
}

// Scenario is the runtime instance of a loaded [Scenario] unit.
type Scenario struct {
	mu sync.RWMutex

	name        unit.Name
	displayName string
	summary     string
	tests       []unit.Name
	execStop    string
	timeout     time.Duration
	state       unit.State
}

func (s *Scenario) Name() unit.Name       { return s.name }
func (s *Scenario) DisplayName() string   { s.mu.RLock(); defer s.mu.RUnlock(); return s.displayName }
func (s *Scenario) Summary() string       { s.mu.RLock(); defer s.mu.RUnlock(); return s.summary }
func (s *Scenario) ExecStop() string      { s.mu.RLock(); defer s.mu.RUnlock(); return s.execStop }
func (s *Scenario) Timeout() time.Duration { s.mu.RLock(); defer s.mu.RUnlock(); return s.timeout }
func (s *Scenario) State() unit.State     { s.mu.RLock(); defer s.mu.RUnlock(); return s.state }
func (s *Scenario) setState(st unit.State) { s.mu.Lock(); s.state = st; s.mu.Unlock() }

// Tests returns the scenario's declared test sequence, in order.
func (s *Scenario) Tests() []unit.Name {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]unit.Name, len(s.tests))
	copy(out, s.tests)
	return out
}

// Test is the runtime instance of a loaded [Test] unit.
type Test struct {
	mu sync.RWMutex

	name        unit.Name
	displayName string
	summary     string
	execStart   string
	state       unit.State
}

func (t *Test) Name() unit.Name       { return t.name }
func (t *Test) DisplayName() string   { t.mu.RLock(); defer t.mu.RUnlock(); return t.displayName }
func (t *Test) Summary() string       { t.mu.RLock(); defer t.mu.RUnlock(); return t.summary }
func (t *Test) ExecStart() string     { t.mu.RLock(); defer t.mu.RUnlock(); return t.execStart }
func (t *Test) State() unit.State     { t.mu.RLock(); defer t.mu.RUnlock(); return t.state }
func (t *Test) setState(s unit.State) { t.mu.Lock(); t.state = s; t.mu.Unlock() }

// Interface is the runtime instance of a loaded [Interface] unit: a
// live client connection that both consumes status and posts control
// messages. Its transport is attached at load time by whichever
// transport (TCP, WebSocket, ...) accepted the connection.
type Interface struct {
	mu sync.RWMutex

	name        unit.Name
	displayName string
	summary     string
	state       unit.State
	transport   InterfaceTransport
}

func (i *Interface) Name() unit.Name     { return i.name }
func (i *Interface) DisplayName() string { i.mu.RLock(); defer i.mu.RUnlock(); return i.displayName }
func (i *Interface) Summary() string     { i.mu.RLock(); defer i.mu.RUnlock(); return i.summary }
func (i *Interface) State() unit.State   { i.mu.RLock(); defer i.mu.RUnlock(); return i.state }
func (i *Interface) setState(s unit.State) { i.mu.Lock(); i.state = s; i.mu.Unlock() }

func (i *Interface) Transport() InterfaceTransport {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.transport
}

func (i *Interface) setTransport(t InterfaceTransport) {
	i.mu.Lock()
	i.transport = t
	i.mu.Unlock()
}
