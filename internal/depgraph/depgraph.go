// Package depgraph builds a whole-library reference graph over loaded
// units (jig -> default scenario, scenario -> test) and reports
// diagnostics for dangling references, mirroring the validation a
// "validate" CLI subcommand runs before anyone tries to select a
// scenario and discovers a missing test the hard way.
package depgraph

import (
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/exclave-go/exclave/internal/manager"
	"github.com/exclave-go/exclave/internal/unit"
)

// Graph is a directed, acyclic reference graph over unit names. An edge
// A -> B means A references B (a jig naming its default scenario, a
// scenario naming one of its tests).
type Graph struct {
	g graph.Graph[string, string]
}

// New returns an empty reference graph.
func New() *Graph {
	return &Graph{g: graph.New(graph.StringHash, graph.Directed(), graph.Acyclic())}
}

// AddUnit adds name as a vertex. Adding the same name twice is a no-op.
func (d *Graph) AddUnit(name unit.Name) error {
	err := d.g.AddVertex(name.String())
	if err != nil && err != graph.ErrVertexAlreadyExists {
		return err
	}
	return nil
}

// AddReference records that owner references dependency (a jig's
// default scenario, or a scenario's test). Both names must already be
// vertices (see AddUnit), otherwise the edge is rejected with an error;
// Validate checks that a reference is loaded before adding it.
func (d *Graph) AddReference(owner, dependency unit.Name) error {
	return d.g.AddEdge(owner.String(), dependency.String())
}

// HasCycles reports whether the graph's references form a cycle. The
// domain has no legitimate cycles (tests don't reference scenarios,
// scenarios don't reference jigs), so a true result always indicates a
// malformed unit library.
func (d *Graph) HasCycles() bool {
	_, err := graph.TopologicalSort(d.g)
	return err != nil
}

// TopologicalOrder returns every vertex in an order where each unit
// precedes everything it references (a scenario comes before its tests).
func (d *Graph) TopologicalOrder() ([]string, error) {
	return graph.TopologicalSort(d.g)
}

// Diagnostic reports a single broken or suspicious reference found
// while validating a unit library.
type Diagnostic struct {
	Owner      unit.Name
	Dependency unit.Name
	Reason     string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s -> %s: %s", d.Owner, d.Dependency, d.Reason)
}

// Validate builds a reference graph from every unit currently loaded in
// m and checks that every jig's default scenario and every scenario's
// test sequence names a unit that is actually loaded. It never mutates
// m; it is safe to call against a live manager from a "validate" CLI
// command or a pre-activation sanity check.
func Validate(m *manager.Manager) ([]Diagnostic, error) {
	g := New()

	jigNames := m.GetJigs()
	scenarioNames := m.GetScenarios()
	testNames := m.GetTests()

	for _, n := range jigNames {
		if err := g.AddUnit(n); err != nil {
			return nil, err
		}
	}
	for _, n := range scenarioNames {
		if err := g.AddUnit(n); err != nil {
			return nil, err
		}
	}
	for _, n := range testNames {
		if err := g.AddUnit(n); err != nil {
			return nil, err
		}
	}

	var diagnostics []Diagnostic

	for _, jn := range jigNames {
		j := m.GetJigNamed(jn)
		if j == nil {
			continue
		}
		scenario, ok := j.DefaultScenario()
		if !ok {
			continue
		}
		if m.GetScenarioNamed(scenario) == nil {
			diagnostics = append(diagnostics, Diagnostic{
				Owner:      jn,
				Dependency: scenario,
				Reason:     "default scenario is not loaded",
			})
			continue
		}
		if err := g.AddReference(jn, scenario); err != nil {
			diagnostics = append(diagnostics, Diagnostic{Owner: jn, Dependency: scenario, Reason: err.Error()})
		}
	}

	for _, sn := range scenarioNames {
		s := m.GetScenarioNamed(sn)
		if s == nil {
			continue
		}
		for _, tn := range s.Tests() {
			if m.GetTestNamed(tn) == nil {
				diagnostics = append(diagnostics, Diagnostic{
					Owner:      sn,
					Dependency: tn,
					Reason:     "test is not loaded",
				})
				continue
			}
			if err := g.AddReference(sn, tn); err != nil {
				diagnostics = append(diagnostics, Diagnostic{Owner: sn, Dependency: tn, Reason: err.Error()})
			}
		}
	}

	if g.HasCycles() {
		diagnostics = append(diagnostics, Diagnostic{Reason: "unit library reference graph contains a cycle"})
	}

	return diagnostics, nil
}
