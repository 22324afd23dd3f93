package unit

import (
	"strings"
)

// Name is a namespaced unit identity: an id unique within its kind, plus
// the kind itself. Two Names are equal iff both fields match, which
// Go's comparable struct semantics give us for free — Name is safe to
// use directly as a map key.
type Name struct {
	id   string
	kind Kind
}

// InvalidIDError reports an id that is empty or contains whitespace.
type InvalidIDError struct {
	Value string
}

func (e *InvalidIDError) Error() string {
	return "invalid unit id: " + e.Value
}

// NewName validates id and parses kindStr, returning InvalidIDError or
// InvalidKindError on malformed input.
func NewName(id, kindStr string) (Name, error) {
	kind, err := ParseKind(kindStr)
	if err != nil {
		return Name{}, err
	}
	return NewNameWithKind(id, kind)
}

// NewNameWithKind validates id against an already-parsed Kind.
func NewNameWithKind(id string, kind Kind) (Name, error) {
	if id == "" || strings.ContainsAny(id, " \t\r\n") {
		return Name{}, &InvalidIDError{Value: id}
	}
	return Name{id: id, kind: kind}, nil
}

// ID returns the unit's id, without its kind suffix.
func (n Name) ID() string { return n.id }

// Kind returns the unit's kind.
func (n Name) Kind() Kind { return n.kind }

// IsZero reports whether n is the zero Name (used as an empty-id
// placeholder, e.g. when no jig is current).
func (n Name) IsZero() bool { return n.id == "" }

// String renders "id.kind", matching the wire format used by the
// original protocol's unit references.
func (n Name) String() string {
	return n.id + "." + n.kind.String()
}
