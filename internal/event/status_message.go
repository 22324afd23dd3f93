package event

import "github.com/exclave-go/exclave/internal/unit"

// FieldType names which descriptive field a Describe status message
// carries.
type FieldType int

const (
	FieldName FieldType = iota
	FieldDescription
)

func (f FieldType) String() string {
	if f == FieldName {
		return "name"
	}
	return "description"
}

// StatusMsgKind discriminates ManagerStatusMessage, the outbound
// message set every interface transport renders onto the wire.
type StatusMsgKind int

const (
	MsgHello StatusMsgKind = iota
	MsgJig
	MsgScenarios
	MsgScenario
	MsgTests
	MsgDescribe
	MsgLog
)

// ManagerStatusMessage is one outbound message destined for an
// interface. Only the fields relevant to Kind are populated.
type ManagerStatusMessage struct {
	Kind StatusMsgKind

	// MsgHello
	ServerID string

	// MsgJig
	JigName unit.Name

	// MsgScenarios
	ScenarioNames []unit.Name

	// MsgScenario
	ScenarioName    unit.Name
	HasScenarioName bool

	// MsgTests
	TestsScenario unit.Name
	TestNames     []unit.Name

	// MsgDescribe
	DescribeKind  unit.Kind
	DescribeField FieldType
	DescribeID    string
	DescribeValue string

	// MsgLog
	LogEntry LogEntry
}

func Hello(serverID string) ManagerStatusMessage {
	return ManagerStatusMessage{Kind: MsgHello, ServerID: serverID}
}

func Jig(name unit.Name) ManagerStatusMessage {
	return ManagerStatusMessage{Kind: MsgJig, JigName: name}
}

func Scenarios(names []unit.Name) ManagerStatusMessage {
	return ManagerStatusMessage{Kind: MsgScenarios, ScenarioNames: names}
}

func ScenarioNone() ManagerStatusMessage {
	return ManagerStatusMessage{Kind: MsgScenario}
}

func ScenarioSome(name unit.Name) ManagerStatusMessage {
	return ManagerStatusMessage{Kind: MsgScenario, ScenarioName: name, HasScenarioName: true}
}

func Tests(scenario unit.Name, tests []unit.Name) ManagerStatusMessage {
	return ManagerStatusMessage{Kind: MsgTests, TestsScenario: scenario, TestNames: tests}
}

func Describe(kind unit.Kind, field FieldType, id, value string) ManagerStatusMessage {
	return ManagerStatusMessage{Kind: MsgDescribe, DescribeKind: kind, DescribeField: field, DescribeID: id, DescribeValue: value}
}

func Log(entry LogEntry) ManagerStatusMessage {
	return ManagerStatusMessage{Kind: MsgLog, LogEntry: entry}
}
