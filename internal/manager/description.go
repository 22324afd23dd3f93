package manager

import (
	"time"

	"github.com/exclave-go/exclave/internal/unit"
)

// JigDescription is the parsed form of a [Jig] unit file section, as
// produced by the external unit file parser.
type JigDescription struct {
	ID              string
	DisplayName     string
	Summary         string
	DefaultScenario string // empty if none declared
}

// ScenarioDescription is the parsed form of a [Scenario] unit file
// section.
type ScenarioDescription struct {
	ID          string
	DisplayName string
	Summary     string
	Tests       []string // bare ids, kind "test" implied
	ExecStop    string   // empty if none declared
	Timeout     time.Duration
}

// TestDescription is the parsed form of a [Test] unit file section.
type TestDescription struct {
	ID          string
	DisplayName string
	Summary     string
	ExecStart   string
}

// InterfaceDescription is the parsed form of an [Interface] unit file
// section. The transport a given interface instance talks over is
// supplied separately by whichever transport accepted the connection,
// not by the unit file.
type InterfaceDescription struct {
	ID          string
	DisplayName string
	Summary     string
}

// Build validates d and constructs the runtime Jig it describes.
// Whether DefaultScenario is loaded is not checked here: activating the
// jig activates its default scenario if that scenario is loaded and
// skips it, without error, if it is not.
func (d *JigDescription) Build(m *Manager) (*Jig, error) {
	name, err := unit.NewNameWithKind(d.ID, unit.Jig)
	if err != nil {
		return nil, err
	}

	j := &Jig{
		name:        name,
		displayName: d.DisplayName,
		summary:     d.Summary,
		state:       unit.Loaded,
	}
	if d.DefaultScenario != "" {
		scenarioName, err := unit.NewNameWithKind(d.DefaultScenario, unit.Scenario)
		if err != nil {
			return nil, err
		}
		j.defaultScenario = &scenarioName
	}
	return j, nil
}

// Build validates d and constructs the runtime Scenario it describes.
// The test sequence is recorded as names to re-resolve against the
// tests registry at select time (§3: "every referenced test name must
// be loaded at scenario-select time"), not eagerly checked here.
func (d *ScenarioDescription) Build(m *Manager) (*Scenario, error) {
	name, err := unit.NewNameWithKind(d.ID, unit.Scenario)
	if err != nil {
		return nil, err
	}

	tests := make([]unit.Name, 0, len(d.Tests))
	for _, id := range d.Tests {
		tn, err := unit.NewNameWithKind(id, unit.Test)
		if err != nil {
			return nil, err
		}
		tests = append(tests, tn)
	}

	return &Scenario{
		name:        name,
		displayName: d.DisplayName,
		summary:     d.Summary,
		tests:       tests,
		execStop:    d.ExecStop,
		timeout:     d.Timeout,
		state:       unit.Loaded,
	}, nil
}

// Build validates d and constructs the runtime Test it describes.
func (d *TestDescription) Build(m *Manager) (*Test, error) {
	name, err := unit.NewNameWithKind(d.ID, unit.Test)
	if err != nil {
		return nil, err
	}
	return &Test{
		name:        name,
		displayName: d.DisplayName,
		summary:     d.Summary,
		execStart:   d.ExecStart,
		state:       unit.Loaded,
	}, nil
}

// Build validates d and constructs the runtime Interface it describes.
// Its transport is attached by LoadInterface, not by Build, since the
// unit file has no notion of which connection it will serve.
func (d *InterfaceDescription) Build(m *Manager) (*Interface, error) {
	name, err := unit.NewNameWithKind(d.ID, unit.Interface)
	if err != nil {
		return nil, err
	}
	return &Interface{
		name:        name,
		displayName: d.DisplayName,
		summary:     d.Summary,
		state:       unit.Loaded,
	}, nil
}
