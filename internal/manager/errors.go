package manager

import (
	"fmt"

	"github.com/exclave-go/exclave/internal/unit"
)

// LoadError reports that a unit file failed validation at load time and
// was never inserted into its registry.
type LoadError struct {
	Name   unit.Name
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s", e.Name, e.Reason)
}

// UnitNotFoundError reports a reference to a unit that is not loaded.
type UnitNotFoundError struct {
	Name unit.Name
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("unit not found: %s", e.Name)
}

// DependencyMissingError reports that a unit names a dependency (a
// default scenario, a scenario's test) that is not loaded.
type DependencyMissingError struct {
	Owner      unit.Name
	Dependency unit.Name
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("%s depends on %s, which is not loaded", e.Owner, e.Dependency)
}

// ActivateFailedError reports that activation of a unit failed, either
// because it was already active in a way that conflicts or its
// kind-specific activation hook returned an error.
type ActivateFailedError struct {
	Name   unit.Name
	Reason string
}

func (e *ActivateFailedError) Error() string {
	return fmt.Sprintf("activate %s: %s", e.Name, e.Reason)
}

// DeactivateFailedError reports that a unit's kind-specific teardown
// returned an error. It is never fatal to the manager: the unit still
// transitions out of Active.
type DeactivateFailedError struct {
	Name   unit.Name
	Reason string
}

func (e *DeactivateFailedError) Error() string {
	return fmt.Sprintf("deactivate %s: %s", e.Name, e.Reason)
}

// CommunicationError reports a failure talking to an interface or a
// running scenario/test subprocess.
type CommunicationError struct {
	Name   unit.Name
	Reason string
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication with %s: %s", e.Name, e.Reason)
}

// InvalidTransitionError reports a request to move a unit to a state
// that its kind has no transition to (e.g. Select or Activate on a Test,
// which has no top-level select/activate). An absent unit is reported
// as UnitNotFoundError instead.
type InvalidTransitionError struct {
	Name unit.Name
	From unit.State
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot go from %s to %s", e.Name, e.From, e.To)
}
