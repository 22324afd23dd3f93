// Package unit provides the namespaced identity shared by every loaded
// unit: its kind, its id, and the lifecycle state the manager tracks for
// it.
package unit

import "strings"

// Kind tags a UnitName with the category of unit it refers to.
type Kind int

// The set of kinds a unit file may declare. Ordering has no dispatch
// significance; it exists only so Kind can be used as a map key and
// sorted deterministically for listing.
const (
	Jig Kind = iota
	Scenario
	Test
	Interface
	Trigger
	Logger
	Internal
)

var kindNames = map[Kind]string{
	Jig:       "jig",
	Scenario:  "scenario",
	Test:      "test",
	Interface: "interface",
	Trigger:   "trigger",
	Logger:    "logger",
	Internal:  "internal",
}

// String renders the kind using its canonical lower-case name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind accepts the case-insensitive set {jig, scenario, test,
// interface, trigger, logger, internal}.
func ParseKind(s string) (Kind, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == lower {
			return k, nil
		}
	}
	return 0, &InvalidKindError{Value: s}
}

// InvalidKindError reports an unparseable kind string.
type InvalidKindError struct {
	Value string
}

func (e *InvalidKindError) Error() string {
	return "invalid unit kind: " + e.Value
}
