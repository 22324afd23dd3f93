package wireproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

func mustName(t *testing.T, id, kind string) unit.Name {
	t.Helper()
	n, err := unit.NewName(id, kind)
	require.NoError(t, err)
	return n
}

func TestEncodeStatusHello(t *testing.T) {
	assert.Equal(t, "HELLO Jig/20 1.0", EncodeStatus(event.Hello("Jig/20 1.0")))
}

func TestEncodeStatusScenarioNone(t *testing.T) {
	assert.Equal(t, "SCENARIO -", EncodeStatus(event.ScenarioNone()))
}

func TestEncodeStatusScenarioSome(t *testing.T) {
	name := mustName(t, "three", "scenario")
	assert.Equal(t, "SCENARIO three.scenario", EncodeStatus(event.ScenarioSome(name)))
}

func TestEncodeStatusTests(t *testing.T) {
	scenario := mustName(t, "three", "scenario")
	tests := []unit.Name{mustName(t, "a", "test"), mustName(t, "b", "test")}
	assert.Equal(t, "TESTS three.scenario a.test,b.test", EncodeStatus(event.Tests(scenario, tests)))
}

func TestEncodeStatusLog(t *testing.T) {
	source := mustName(t, "a", "test")
	msg := event.Log(event.NewInfoEntry(source, "hello world"))
	assert.Equal(t, "LOG info a.test hello world", EncodeStatus(msg))
}

func TestDecodeControlKnownVerbs(t *testing.T) {
	assert.Equal(t, event.VerbJig, DecodeControl("JIG").Verb)
	assert.Equal(t, event.VerbScenarios, DecodeControl("SCENARIOS").Verb)
	assert.Equal(t, event.VerbInitialGreeting, DecodeControl("INITIALGREETING").Verb)

	c := DecodeControl("SCENARIO three")
	require.Equal(t, event.VerbScenario, c.Verb)
	assert.Equal(t, "three", c.ScenarioName.ID())

	c = DecodeControl("LOG hello there")
	require.Equal(t, event.VerbLog, c.Verb)
	assert.Equal(t, "hello there", c.Text)
}

func TestDecodeControlStartWithoutScenarioIsOptional(t *testing.T) {
	c := DecodeControl("START")
	require.Equal(t, event.VerbStart, c.Verb)
	assert.False(t, c.HasScenarioName)

	c = DecodeControl("START three")
	require.Equal(t, event.VerbStart, c.Verb)
	require.True(t, c.HasScenarioName)
	assert.Equal(t, "three", c.ScenarioName.ID())
}

func TestDecodeControlUnknownVerbIsUnimplemented(t *testing.T) {
	c := DecodeControl("FROBNICATE extra args here")
	require.Equal(t, event.VerbUnimplemented, c.Verb)
	assert.Equal(t, "FROBNICATE", c.UnimplementedVerb)
	assert.Equal(t, "extra args here", c.UnimplementedRest)
}

func TestEncodeControlRoundTripsWithDecodeControl(t *testing.T) {
	scenario := mustName(t, "three", "scenario")
	cases := []event.ManagerControlMessageContents{
		event.ContentsJig(),
		event.ContentsScenarios(),
		event.ContentsScenario(scenario),
		event.ContentsStart(&scenario),
		event.ContentsStart(nil),
		event.ContentsLog("hello there"),
		event.ContentsInitialGreeting(),
	}
	for _, c := range cases {
		line := EncodeControl(c)
		decoded := DecodeControl(line)
		assert.Equal(t, c.Verb, decoded.Verb)
	}
}

func TestDecodeStatusRoundTripsWithEncodeStatus(t *testing.T) {
	scenario := mustName(t, "three", "scenario")
	tests := []unit.Name{mustName(t, "a", "test"), mustName(t, "b", "test")}

	cases := []event.ManagerStatusMessage{
		event.Hello("Jig/20 1.0"),
		event.ScenarioNone(),
		event.ScenarioSome(scenario),
		event.Tests(scenario, tests),
		event.Log(event.NewInfoEntry(mustName(t, "a", "test"), "hello world")),
	}
	for _, msg := range cases {
		line := EncodeStatus(msg)
		decoded, err := DecodeStatus(line)
		require.NoError(t, err)
		assert.Equal(t, msg.Kind, decoded.Kind)
	}
}

func TestDecodeStatusDescribe(t *testing.T) {
	line := EncodeStatus(event.Describe(unit.Jig, event.FieldName, "generic", "Generic Jig"))
	decoded, err := DecodeStatus(line)
	require.NoError(t, err)
	assert.Equal(t, unit.Jig, decoded.DescribeKind)
	assert.Equal(t, event.FieldName, decoded.DescribeField)
	assert.Equal(t, "generic", decoded.DescribeID)
	assert.Equal(t, "Generic Jig", decoded.DescribeValue)
}
