package execx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRunner_CombinedOutput(t *testing.T) {
	runner := NewRealRunner()
	ctx := context.Background()

	t.Run("successful command execution", func(t *testing.T) {
		output, err := runner.CombinedOutput(ctx, "echo", "hello", "world")
		require.NoError(t, err)
		assert.Contains(t, string(output), "hello world")
	})

	t.Run("command not found", func(t *testing.T) {
		_, err := runner.CombinedOutput(ctx, "nonexistent-command-12345")
		assert.Error(t, err)
	})

	t.Run("command with error exit code", func(t *testing.T) {
		_, err := runner.CombinedOutput(ctx, "sh", "-c", "exit 1")
		assert.Error(t, err)
	})
}

func TestRealRunner_Start_StreamsLines(t *testing.T) {
	runner := NewRealRunner()
	ctx := context.Background()

	proc, err := runner.Start(ctx, "echo one; echo two")
	require.NoError(t, err)

	var lines []string
	for line := range proc.Lines() {
		lines = append(lines, line)
	}

	require.NoError(t, proc.Wait())
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestRealRunner_Start_ExitError(t *testing.T) {
	runner := NewRealRunner()
	ctx := context.Background()

	proc, err := runner.Start(ctx, "exit 3")
	require.NoError(t, err)

	for range proc.Lines() {
	}
	assert.Error(t, proc.Wait())
}

func TestProcess_Terminate_ForceKillsWhenUnresponsive(t *testing.T) {
	runner := NewRealRunner()
	ctx := context.Background()

	proc, err := runner.Start(ctx, "trap '' TERM; sleep 30")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for range proc.Lines() {
		}
		close(done)
	}()

	err = proc.Terminate(100 * time.Millisecond)
	assert.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("process did not exit after forceful kill")
	}
}
