package sandbox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execbox/execbox/sandbox/launcher"
)

func TestClassify(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		att := newAttempt("python")
		att.run = &launcher.Outcome{ExitCode: 0, Stdout: "5"}

		res := classify(att)
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, "5", res.Stdout)
		require.NotNil(t, res.ExitCode)
		assert.Equal(t, 0, *res.ExitCode)
	})

	t.Run("RuntimeErrorOnBadExit", func(t *testing.T) {
		att := newAttempt("python")
		att.run = &launcher.Outcome{ExitCode: 1, Stderr: "Traceback"}

		res := classify(att)
		assert.Equal(t, StatusRuntimeError, res.Status)
		assert.Equal(t, "Traceback", res.Stderr)
		require.NotNil(t, res.ExitCode)
		assert.Equal(t, 1, *res.ExitCode)
	})

	t.Run("RuntimeErrorOnFatalSignal", func(t *testing.T) {
		att := newAttempt("cpp")
		att.run = &launcher.Outcome{ExitCode: -1, Signal: 11}

		res := classify(att)
		assert.Equal(t, StatusRuntimeError, res.Status)
	})

	t.Run("CompileErrorCarriesDiagnostics", func(t *testing.T) {
		att := newAttempt("cpp")
		att.compile = &launcher.Outcome{ExitCode: 1, Stderr: "main.cpp:1: error: expected ';'"}

		res := classify(att)
		assert.Equal(t, StatusCompileError, res.Status)
		assert.Contains(t, res.CompileOutput, "expected ';'")
		// The program never ran, so there is no exit code.
		assert.Nil(t, res.ExitCode)
		assert.Empty(t, res.Stdout)
	})

	t.Run("CompileDiagnosticsFallBackToStdout", func(t *testing.T) {
		att := newAttempt("cpp")
		att.compile = &launcher.Outcome{ExitCode: 1, Stdout: "error on stdout"}

		res := classify(att)
		assert.Equal(t, StatusCompileError, res.Status)
		assert.Equal(t, "error on stdout", res.CompileOutput)
	})

	t.Run("TimeoutFromRunPhase", func(t *testing.T) {
		att := newAttempt("python")
		att.run = &launcher.Outcome{ExitCode: -1, Signal: 9, TimedOut: true, Stdout: "partial"}

		res := classify(att)
		assert.Equal(t, StatusTimeout, res.Status)
		// Partial output is preserved.
		assert.Equal(t, "partial", res.Stdout)
	})

	t.Run("TimeoutFromCompilePhase", func(t *testing.T) {
		att := newAttempt("cpp")
		att.compile = &launcher.Outcome{ExitCode: -1, Signal: 9, TimedOut: true}

		res := classify(att)
		assert.Equal(t, StatusTimeout, res.Status)
	})

	t.Run("TimeoutWhenCompileExhaustsBudget", func(t *testing.T) {
		att := newAttempt("cpp")
		att.compile = &launcher.Outcome{ExitCode: 0}
		att.markTimedOut()

		res := classify(att)
		assert.Equal(t, StatusTimeout, res.Status)
	})

	t.Run("TimeoutBeatsTruncation", func(t *testing.T) {
		att := newAttempt("python")
		att.run = &launcher.Outcome{ExitCode: -1, Signal: 9, TimedOut: true, StdoutTruncated: true}

		res := classify(att)
		assert.Equal(t, StatusTimeout, res.Status)
	})

	t.Run("ResourceExceededOnTruncation", func(t *testing.T) {
		att := newAttempt("python")
		att.run = &launcher.Outcome{ExitCode: 0, Stdout: "xxxx", StdoutTruncated: true}

		res := classify(att)
		assert.Equal(t, StatusResourceExceeded, res.Status)
		assert.True(t, res.StdoutTruncated)
	})

	t.Run("ResourceExceededOnCPULimitSignal", func(t *testing.T) {
		att := newAttempt("cpp")
		att.run = &launcher.Outcome{ExitCode: -1, Signal: sigXCPU}

		res := classify(att)
		assert.Equal(t, StatusResourceExceeded, res.Status)
	})

	t.Run("ResourceExceededOnHardKill", func(t *testing.T) {
		att := newAttempt("cpp")
		att.run = &launcher.Outcome{ExitCode: -1, Signal: sigKILL}

		res := classify(att)
		assert.Equal(t, StatusResourceExceeded, res.Status)
	})

	t.Run("InternalErrorPreservesCause", func(t *testing.T) {
		att := newAttempt("python")
		att.fail(errors.New("create workspace: disk full"))

		res := classify(att)
		assert.Equal(t, StatusInternalError, res.Status)
		assert.Contains(t, res.Stderr, "disk full")
	})

	t.Run("InternalErrorBeatsEverything", func(t *testing.T) {
		att := newAttempt("python")
		att.run = &launcher.Outcome{ExitCode: 0, Stderr: "guest stderr", TimedOut: true}
		att.internalErr = errors.New("launcher crashed")

		res := classify(att)
		assert.Equal(t, StatusInternalError, res.Status)
		// The guest's own stderr wins over the internal cause when present.
		assert.Equal(t, "guest stderr", res.Stderr)
	})

	t.Run("NoOutcomeAtAllIsInternalError", func(t *testing.T) {
		att := newAttempt("python")

		res := classify(att)
		assert.Equal(t, StatusInternalError, res.Status)
	})
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateQueued:           "queued",
		StatePreparing:        "preparing",
		StateCompiling:        "compiling",
		StateRunning:          "running",
		StateCompleted:        "completed",
		StateFailed:           "failed",
		StateTimedOut:         "timed_out",
		StateResourceExceeded: "resource_exceeded",
		StateInternalError:    "internal_error",
		State(99):             "unknown",
	}
	for state, expected := range states {
		assert.Equal(t, expected, state.String())
	}
}

func TestAttemptFinish(t *testing.T) {
	tests := []struct {
		status   Status
		expected State
	}{
		{StatusSuccess, StateCompleted},
		{StatusTimeout, StateTimedOut},
		{StatusResourceExceeded, StateResourceExceeded},
		{StatusCompileError, StateFailed},
		{StatusRuntimeError, StateFailed},
		{StatusInternalError, StateInternalError},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			att := newAttempt("python")
			att.finish(tt.status)
			assert.Equal(t, tt.expected, att.state)
			assert.False(t, att.finishedAt.IsZero())
		})
	}
}
