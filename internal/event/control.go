package event

import "github.com/exclave-go/exclave/internal/unit"

// ControlVerb discriminates ManagerControlMessageContents. Inbound
// control traffic — from interfaces and from running tests/scenarios —
// is always one of these verbs; anything an interface sends that
// doesn't parse as one of these arrives as VerbUnimplemented instead of
// being rejected.
type ControlVerb int

const (
	// VerbJig asks for the current jig's identity.
	VerbJig ControlVerb = iota
	// VerbScenarios asks for the list of loaded scenarios.
	VerbScenarios
	// VerbScenario selects (and activates) the named scenario.
	VerbScenario
	// VerbTests asks for the test sequence of a named scenario, or the
	// current scenario if HasScenarioName is false.
	VerbTests
	// VerbLog emits an info-level log line attributed to the sender.
	VerbLog
	// VerbLogError emits an error-level log line attributed to the
	// sender.
	VerbLogError
	// VerbError is an alias for VerbLogError used by interfaces
	// reporting their own faults.
	VerbError
	// VerbInitialGreeting asks for Hello+Jig+Scenarios+Scenario, in that
	// order; the Scenario message is empty when no scenario is current.
	VerbInitialGreeting
	// VerbChildExited reports that a unit's owned subprocess exited
	// unexpectedly (outside of the scenario runner's own bookkeeping).
	VerbChildExited
	// VerbUnimplemented carries an inbound verb the sender didn't
	// recognize, preserved for diagnostics.
	VerbUnimplemented
	// VerbStart starts the named scenario, or the current scenario if
	// HasScenarioName is false.
	VerbStart
	// VerbScenarioFinished is posted by the scenario runner when a run
	// completes, successfully or not.
	VerbScenarioFinished
)

// ManagerControlMessageContents is the payload of one inbound control
// message. Only the fields relevant to Verb are populated.
type ManagerControlMessageContents struct {
	Verb ControlVerb

	// ScenarioName is used by VerbScenario (required) and VerbTests/
	// VerbStart (optional — HasScenarioName reports whether it was
	// supplied).
	ScenarioName    unit.Name
	HasScenarioName bool

	// Text carries the message body for VerbLog, VerbLogError, and
	// VerbError.
	Text string

	// UnimplementedVerb and UnimplementedRest carry the raw verb and
	// remainder of an unrecognized inbound line for VerbUnimplemented.
	UnimplementedVerb string
	UnimplementedRest string

	// ScenarioFinishedCode and ScenarioFinishedSummary carry the
	// scenario runner's outcome for VerbScenarioFinished: zero code
	// means success.
	ScenarioFinishedCode    int
	ScenarioFinishedSummary string
}

// ManagerControlMessage pairs a sender identity with its content,
// exactly as produced by an interface session or a running scenario and
// fed into the manager's single inbound control channel.
type ManagerControlMessage struct {
	Sender   unit.Name
	Contents ManagerControlMessageContents
}

// NewControlMessage tags contents with the unit that sent them.
func NewControlMessage(sender unit.Name, contents ManagerControlMessageContents) ManagerControlMessage {
	return ManagerControlMessage{Sender: sender, Contents: contents}
}

// Convenience constructors for each verb, used by transports translating
// wire verbs into control messages and by the scenario runner posting
// its own results.

func ContentsJig() ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbJig}
}

func ContentsScenarios() ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbScenarios}
}

func ContentsScenario(name unit.Name) ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbScenario, ScenarioName: name, HasScenarioName: true}
}

func ContentsTests(name *unit.Name) ManagerControlMessageContents {
	c := ManagerControlMessageContents{Verb: VerbTests}
	if name != nil {
		c.ScenarioName = *name
		c.HasScenarioName = true
	}
	return c
}

func ContentsLog(text string) ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbLog, Text: text}
}

func ContentsLogError(text string) ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbLogError, Text: text}
}

func ContentsError(text string) ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbError, Text: text}
}

func ContentsInitialGreeting() ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbInitialGreeting}
}

func ContentsChildExited() ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbChildExited}
}

func ContentsUnimplemented(verb, rest string) ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbUnimplemented, UnimplementedVerb: verb, UnimplementedRest: rest}
}

func ContentsStart(name *unit.Name) ManagerControlMessageContents {
	c := ManagerControlMessageContents{Verb: VerbStart}
	if name != nil {
		c.ScenarioName = *name
		c.HasScenarioName = true
	}
	return c
}

func ContentsScenarioFinished(code int, summary string) ManagerControlMessageContents {
	return ManagerControlMessageContents{Verb: VerbScenarioFinished, ScenarioFinishedCode: code, ScenarioFinishedSummary: summary}
}
