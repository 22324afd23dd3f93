package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/execx"
	"github.com/exclave-go/exclave/internal/unit"
)

// forceKillGrace is the pause between the timeout's graceful signal
// and a forceful kill of whatever subprocess is still running (§4.F).
const forceKillGrace = 1 * time.Second

// startScenarioLocked is the scenario runner's entry point (component
// F), invoked from handleStart on the manager's owning goroutine. It
// snapshots the scenario and hands the run off to a dedicated
// goroutine; that goroutine talks back to the manager only through the
// control channel, preserving the single-writer invariant.
func (m *Manager) startScenarioLocked(s *Scenario) {
	name := s.Name()
	if _, running := m.runningScenarios[name]; running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	if timeout := s.Timeout(); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else if floor := m.cfg.GetDefaultScenarioTimeout(); floor > 0 {
		ctx, cancel = context.WithTimeout(ctx, floor)
	}
	m.runningScenarios[name] = cancel

	tests := s.Tests()
	execStop := s.ExecStop()

	m.bus.Broadcast(event.NewActive(name))

	go m.runScenario(ctx, cancel, name, tests, execStop)
}

// runScenario executes tests strictly in order, streaming their output
// as Log control messages, then runs ExecStop regardless of outcome,
// then posts ScenarioFinished. It never mutates manager state: besides
// reading the tests registry, it talks to the manager only through the
// control channel.
func (m *Manager) runScenario(ctx context.Context, cancel context.CancelFunc, name unit.Name, tests []unit.Name, execStop string) {
	defer cancel()

	var current struct {
		mu   sync.Mutex
		proc *execx.Process
	}

	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			current.mu.Lock()
			p := current.proc
			current.mu.Unlock()
			if p != nil {
				_ = p.Terminate(forceKillGrace)
			}
		case <-watchDone:
		}
	}()
	defer close(watchDone)

	code := 0
	summary := "all tests passed"

	for _, tn := range tests {
		t := m.tests.get(tn)
		if t == nil {
			code = 1
			summary = fmt.Sprintf("test %s is not loaded", tn)
			break
		}
		if ctx.Err() != nil {
			code = 1
			summary = fmt.Sprintf("scenario timed out before %s ran", tn)
			break
		}

		proc, err := m.runner.Start(ctx, t.ExecStart())
		if err != nil {
			code = 1
			summary = fmt.Sprintf("%s failed to start: %v", tn, err)
			break
		}
		current.mu.Lock()
		current.proc = proc
		current.mu.Unlock()

		for line := range proc.Lines() {
			m.control <- event.NewControlMessage(tn, event.ContentsLog(line))
		}

		err = proc.Wait()
		current.mu.Lock()
		current.proc = nil
		current.mu.Unlock()

		if err != nil {
			code = 1
			if ctx.Err() != nil {
				summary = fmt.Sprintf("scenario timed out during %s", tn)
			} else {
				summary = fmt.Sprintf("test %s failed: %v", tn, err)
			}
			break
		}
	}

	if execStop != "" {
		if proc, err := m.runner.Start(context.Background(), execStop); err == nil {
			for line := range proc.Lines() {
				m.control <- event.NewControlMessage(name, event.ContentsLog(line))
			}
			_ = proc.Wait()
		}
	}

	m.control <- event.NewControlMessage(name, event.ContentsScenarioFinished(code, summary))
}
