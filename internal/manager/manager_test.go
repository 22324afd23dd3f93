package manager

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclave-go/exclave/internal/config"
	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/execx"
	"github.com/exclave-go/exclave/internal/log"
	"github.com/exclave-go/exclave/internal/unit"
)

func newTestManager(t *testing.T) (*Manager, *broadcasterRecorder) {
	t.Helper()
	cfg := &config.Config{}
	m := New(cfg, log.Nop(), execx.NewRealRunner())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rec := newRecorder(m)

	go func() { _ = m.Run(ctx) }()

	return m, rec
}

// broadcasterRecorder collects every UnitEvent broadcast, for
// assertions that care about ordering.
type broadcasterRecorder struct {
	mu     sync.Mutex
	events []event.UnitEvent
}

func newRecorder(m *Manager) *broadcasterRecorder {
	r := &broadcasterRecorder{}
	sub := m.Broadcaster().Subscribe()
	go func() {
		for e := range sub.Events() {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
		}
	}()
	return r
}

func (r *broadcasterRecorder) snapshot() []event.UnitEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.UnitEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestLoadSanity(t *testing.T) {
	m, rec := newTestManager(t)

	name, err := m.LoadJig(&JigDescription{ID: "generic", DisplayName: "GENERIC_JIG"})
	require.NoError(t, err)

	assert.True(t, m.JigIsLoaded(name))

	m.RequestRescan()

	assert.Eventually(t, func() bool {
		for _, e := range rec.snapshot() {
			if e.Kind == event.KindStatus && e.Status.Status == event.StatusLoaded && e.Status.Name == name {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestThreeTestScenario(t *testing.T) {
	m, rec := newTestManager(t)

	for _, id := range []string{"test1", "test2", "test3"} {
		_, err := m.LoadTest(&TestDescription{ID: id, ExecStart: "echo " + id + "-start; echo " + id + "-end; exit 0"})
		require.NoError(t, err)
	}

	scenario, err := m.LoadScenario(&ScenarioDescription{
		ID:      "three",
		Tests:   []string{"test1", "test2", "test3"},
		Timeout: 200 * time.Second,
	})
	require.NoError(t, err)

	require.NoError(t, m.Select(scenario))
	require.NoError(t, m.Activate(scenario))

	m.ControlChannel() <- event.NewControlMessage(scenario, event.ContentsStart(nil))

	expected := []string{
		"test1-start", "test1-end",
		"test2-start", "test2-end",
		"test3-start", "test3-end",
	}

	assert.Eventually(t, func() bool {
		return countFinished(rec, scenario) > 0
	}, 5*time.Second, 20*time.Millisecond)

	var lines []string
	for _, e := range rec.snapshot() {
		if e.Kind == event.KindLog && e.Log.Source.Kind() == unit.Test {
			lines = append(lines, e.Log.Text)
		}
	}
	assert.Equal(t, expected, lines)

	code, ok := scenarioFinishedCode(rec, scenario)
	require.True(t, ok)
	assert.Equal(t, 0, code)
}

func TestExecStopRuns(t *testing.T) {
	m, rec := newTestManager(t)

	_, err := m.LoadTest(&TestDescription{ID: "simpletest", ExecStart: "echo begin; echo end"})
	require.NoError(t, err)

	scenario, err := m.LoadScenario(&ScenarioDescription{
		ID:       "execstop",
		Tests:    []string{"simpletest"},
		ExecStop: "echo cmd-starting; sleep 1; echo cmd-ending",
	})
	require.NoError(t, err)

	require.NoError(t, m.Select(scenario))
	require.NoError(t, m.Activate(scenario))
	m.ControlChannel() <- event.NewControlMessage(scenario, event.ContentsStart(nil))

	assert.Eventually(t, func() bool {
		for _, e := range rec.snapshot() {
			if e.Kind == event.KindLog && e.Log.Source == scenario && e.Log.Text == "cmd-ending" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
}

func TestFailingTestStopsScenario(t *testing.T) {
	m, rec := newTestManager(t)

	_, err := m.LoadTest(&TestDescription{ID: "a", ExecStart: "exit 0"})
	require.NoError(t, err)
	_, err = m.LoadTest(&TestDescription{ID: "b", ExecStart: "exit 7"})
	require.NoError(t, err)
	_, err = m.LoadTest(&TestDescription{ID: "c", ExecStart: "echo c-ran; exit 0"})
	require.NoError(t, err)

	scenario, err := m.LoadScenario(&ScenarioDescription{ID: "ord", Tests: []string{"a", "b", "c"}})
	require.NoError(t, err)

	require.NoError(t, m.Select(scenario))
	require.NoError(t, m.Activate(scenario))
	m.ControlChannel() <- event.NewControlMessage(scenario, event.ContentsStart(nil))

	assert.Eventually(t, func() bool {
		return countFinished(rec, scenario) > 0
	}, 5*time.Second, 20*time.Millisecond)

	for _, e := range rec.snapshot() {
		if e.Kind == event.KindLog {
			assert.NotEqual(t, "c-ran", e.Log.Text, "c's ExecStart must never run")
		}
	}

	code, summary := mustScenarioFinished(t, rec, scenario)
	assert.NotEqual(t, 0, code)
	assert.Contains(t, summary, "b")
}

func TestTimeoutPreemption(t *testing.T) {
	m, rec := newTestManager(t)

	_, err := m.LoadTest(&TestDescription{ID: "slow", ExecStart: "sleep 10"})
	require.NoError(t, err)

	scenario, err := m.LoadScenario(&ScenarioDescription{ID: "slowscenario", Tests: []string{"slow"}, Timeout: time.Second})
	require.NoError(t, err)

	require.NoError(t, m.Select(scenario))
	require.NoError(t, m.Activate(scenario))
	m.ControlChannel() <- event.NewControlMessage(scenario, event.ContentsStart(nil))

	assert.Eventually(t, func() bool {
		return countFinished(rec, scenario) > 0
	}, 3*time.Second, 20*time.Millisecond)

	code, summary := mustScenarioFinished(t, rec, scenario)
	assert.NotEqual(t, 0, code)
	assert.Contains(t, strings.ToLower(summary), "timed out")
}

func countFinished(rec *broadcasterRecorder, scenario unit.Name) int {
	n := 0
	for _, e := range rec.snapshot() {
		if e.Kind == event.KindManagerRequest &&
			e.Request.Contents.Verb == event.VerbScenarioFinished &&
			e.Request.Sender == scenario {
			n++
		}
	}
	return n
}

func scenarioFinishedCode(rec *broadcasterRecorder, scenario unit.Name) (int, bool) {
	for _, e := range rec.snapshot() {
		if e.Kind == event.KindManagerRequest &&
			e.Request.Contents.Verb == event.VerbScenarioFinished &&
			e.Request.Sender == scenario {
			return e.Request.Contents.ScenarioFinishedCode, true
		}
	}
	return 0, false
}

func mustScenarioFinished(t *testing.T, rec *broadcasterRecorder, scenario unit.Name) (int, string) {
	t.Helper()
	for _, e := range rec.snapshot() {
		if e.Kind == event.KindManagerRequest &&
			e.Request.Contents.Verb == event.VerbScenarioFinished &&
			e.Request.Sender == scenario {
			return e.Request.Contents.ScenarioFinishedCode, e.Request.Contents.ScenarioFinishedSummary
		}
	}
	t.Fatal("no ScenarioFinished observed")
	return 0, ""
}
