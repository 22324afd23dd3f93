// Package wireproto is the line-oriented text encoding shared by both
// client transports (internal/transport/tcp, internal/transport/websocket),
// so the two only differ in how they move a line across the wire, not in
// what a line means. §6 leaves encoding to "an interface concern"; this
// is this repository's concern, chosen for the same verb/argument line
// shape the §6 banner (`"Jig/20 1.0"`) implies.
package wireproto

import (
	"fmt"
	"strings"

	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

const none = "-"

// EncodeStatus renders an outbound ManagerStatusMessage as one line,
// without a trailing newline.
func EncodeStatus(msg event.ManagerStatusMessage) string {
	switch msg.Kind {
	case event.MsgHello:
		return fmt.Sprintf("HELLO %s", msg.ServerID)
	case event.MsgJig:
		return fmt.Sprintf("JIG %s", encodeName(msg.JigName))
	case event.MsgScenarios:
		return fmt.Sprintf("SCENARIOS %s", encodeNameList(msg.ScenarioNames))
	case event.MsgScenario:
		if !msg.HasScenarioName {
			return fmt.Sprintf("SCENARIO %s", none)
		}
		return fmt.Sprintf("SCENARIO %s", encodeName(msg.ScenarioName))
	case event.MsgTests:
		return fmt.Sprintf("TESTS %s %s", encodeName(msg.TestsScenario), encodeNameList(msg.TestNames))
	case event.MsgDescribe:
		return fmt.Sprintf("DESCRIBE %s %s %s %s", msg.DescribeKind, msg.DescribeField, msg.DescribeID, msg.DescribeValue)
	case event.MsgLog:
		return fmt.Sprintf("LOG %s %s %s", msg.LogEntry.Level, encodeName(msg.LogEntry.Source), msg.LogEntry.Text)
	default:
		return fmt.Sprintf("UNKNOWN %d", msg.Kind)
	}
}

func encodeName(n unit.Name) string {
	if n.IsZero() {
		return none
	}
	return n.String()
}

func encodeNameList(names []unit.Name) string {
	if len(names) == 0 {
		return none
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.String()
	}
	return strings.Join(parts, ",")
}

// DecodeControl parses one inbound line into ManagerControlMessageContents.
// An unrecognized verb never errors; it becomes VerbUnimplemented so the
// manager can log it, matching §6's "unrecognized inbound verbs become
// Unimplemented".
func DecodeControl(line string) event.ManagerControlMessageContents {
	line = strings.TrimRight(line, "\r\n")
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToUpper(verb) {
	case "JIG":
		return event.ContentsJig()
	case "SCENARIOS":
		return event.ContentsScenarios()
	case "SCENARIO":
		name, err := parseName(rest, unit.Scenario)
		if err != nil {
			return event.ContentsUnimplemented(verb, rest)
		}
		return event.ContentsScenario(name)
	case "TESTS":
		return event.ContentsTests(optionalScenarioName(rest))
	case "START":
		return event.ContentsStart(optionalScenarioName(rest))
	case "LOG":
		return event.ContentsLog(rest)
	case "LOGERROR":
		return event.ContentsLogError(rest)
	case "ERROR":
		return event.ContentsError(rest)
	case "INITIALGREETING":
		return event.ContentsInitialGreeting()
	case "CHILDEXITED":
		return event.ContentsChildExited()
	default:
		return event.ContentsUnimplemented(verb, rest)
	}
}

func optionalScenarioName(rest string) *unit.Name {
	if rest == "" || rest == none {
		return nil
	}
	name, err := parseName(rest, unit.Scenario)
	if err != nil {
		return nil
	}
	return &name
}

func parseName(raw string, kind unit.Kind) (unit.Name, error) {
	id := raw
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		id = raw[:idx]
	}
	return unit.NewNameWithKind(id, kind)
}

// parseQualifiedName parses the "id.kind" form encodeName produces,
// recovering the actual kind instead of assuming one from context —
// needed for LOG lines, whose source may be any unit kind.
func parseQualifiedName(raw string) (unit.Name, error) {
	idx := strings.LastIndexByte(raw, '.')
	if idx < 0 {
		return unit.Name{}, fmt.Errorf("malformed unit reference %q", raw)
	}
	return unit.NewName(raw[:idx], raw[idx+1:])
}

// EncodeControl renders one inbound ManagerControlMessageContents as a
// line, the direction a CLI client (e.g. `exclave status`) uses to
// drive the manager the same way any other interface does.
func EncodeControl(c event.ManagerControlMessageContents) string {
	switch c.Verb {
	case event.VerbJig:
		return "JIG"
	case event.VerbScenarios:
		return "SCENARIOS"
	case event.VerbScenario:
		return fmt.Sprintf("SCENARIO %s", c.ScenarioName.ID())
	case event.VerbTests:
		return withOptionalScenario("TESTS", c)
	case event.VerbStart:
		return withOptionalScenario("START", c)
	case event.VerbLog:
		return fmt.Sprintf("LOG %s", c.Text)
	case event.VerbLogError:
		return fmt.Sprintf("LOGERROR %s", c.Text)
	case event.VerbError:
		return fmt.Sprintf("ERROR %s", c.Text)
	case event.VerbInitialGreeting:
		return "INITIALGREETING"
	case event.VerbChildExited:
		return "CHILDEXITED"
	default:
		return c.UnimplementedVerb
	}
}

func withOptionalScenario(verb string, c event.ManagerControlMessageContents) string {
	if !c.HasScenarioName {
		return verb
	}
	return fmt.Sprintf("%s %s", verb, c.ScenarioName.ID())
}

// DecodeStatus parses one outbound line, as produced by EncodeStatus,
// back into a ManagerStatusMessage. It is the inverse used by a CLI
// client that connects as a plain interface rather than running the
// manager in-process.
func DecodeStatus(line string) (event.ManagerStatusMessage, error) {
	line = strings.TrimRight(line, "\r\n")
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToUpper(verb) {
	case "HELLO":
		return event.Hello(rest), nil
	case "JIG":
		name, err := parseName(rest, unit.Jig)
		if err != nil {
			return event.ManagerStatusMessage{}, nil
		}
		return event.Jig(name), nil
	case "SCENARIOS":
		if rest == "" || rest == none {
			return event.Scenarios(nil), nil
		}
		var names []unit.Name
		for _, raw := range strings.Split(rest, ",") {
			if n, err := parseName(raw, unit.Scenario); err == nil {
				names = append(names, n)
			}
		}
		return event.Scenarios(names), nil
	case "SCENARIO":
		if rest == "" || rest == none {
			return event.ScenarioNone(), nil
		}
		name, err := parseName(rest, unit.Scenario)
		if err != nil {
			return event.ManagerStatusMessage{}, err
		}
		return event.ScenarioSome(name), nil
	case "TESTS":
		scenarioRaw, testsRaw, _ := strings.Cut(rest, " ")
		scenario, err := parseName(scenarioRaw, unit.Scenario)
		if err != nil {
			return event.ManagerStatusMessage{}, err
		}
		var tests []unit.Name
		if testsRaw != "" && testsRaw != none {
			for _, raw := range strings.Split(testsRaw, ",") {
				if n, err := parseName(raw, unit.Test); err == nil {
					tests = append(tests, n)
				}
			}
		}
		return event.Tests(scenario, tests), nil
	case "DESCRIBE":
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) < 3 {
			return event.ManagerStatusMessage{}, fmt.Errorf("malformed DESCRIBE line %q", line)
		}
		kind, err := unit.ParseKind(parts[0])
		if err != nil {
			return event.ManagerStatusMessage{}, err
		}
		idAndValue := strings.SplitN(parts[2], " ", 2)
		field := event.FieldDescription
		if parts[1] == "name" {
			field = event.FieldName
		}
		value := ""
		if len(idAndValue) == 2 {
			value = idAndValue[1]
		}
		return event.Describe(kind, field, idAndValue[0], value), nil
	case "LOG":
		level, nameAndText, _ := strings.Cut(rest, " ")
		nameRaw, text, _ := strings.Cut(nameAndText, " ")
		name, _ := parseQualifiedName(nameRaw)
		entry := event.LogEntry{Source: name, Text: text}
		switch level {
		case "error":
			entry.Level = event.LevelError
		case "debug":
			entry.Level = event.LevelDebug
		default:
			entry.Level = event.LevelInfo
		}
		return event.Log(entry), nil
	default:
		return event.ManagerStatusMessage{}, fmt.Errorf("unrecognized status line %q", line)
	}
}
