package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Limits bounds one subprocess launch. WallTime is always enforced;
// CPUTime and AddressSpace apply only where the platform supports them.
// Zero disables an optional limit.
type Limits struct {
	WallTime       time.Duration
	CPUTime        time.Duration
	AddressSpace   int64
	MaxOutputBytes int64
}

// Command describes one subprocess launch.
type Command struct {
	Argv    []string
	Workdir string
	Stdin   string
	Limits  Limits
}

// Outcome is the raw result of a completed launch. A launch that could
// not even start is reported as an error from Run instead.
type Outcome struct {
	ExitCode        int
	Signal          int
	TimedOut        bool
	Stdout          string
	Stderr          string
	StdoutTruncated bool
	StderrTruncated bool
	Duration        time.Duration
}

// Launcher starts guest subprocesses with limits applied.
type Launcher struct {
	logger *zap.Logger
}

// New creates a Launcher.
func New(logger *zap.Logger) *Launcher {
	return &Launcher{logger: logger}
}

// Run starts the command and blocks until it exits, is killed by the
// watchdog, or the context is canceled. The returned error covers only
// launcher-level failures (binary missing, permission denied); guest
// behavior, including timeouts and bad exits, lives in the Outcome.
func (l *Launcher) Run(ctx context.Context, c Command) (Outcome, error) {
	if len(c.Argv) == 0 {
		return Outcome{}, fmt.Errorf("no command provided")
	}
	if c.Limits.MaxOutputBytes <= 0 {
		return Outcome{}, fmt.Errorf("output cap must be positive")
	}

	cmd := exec.Command(c.Argv[0], c.Argv[1:]...) //nolint:gosec // argv comes from the configured toolchain catalog
	cmd.Dir = c.Workdir
	cmd.Env = os.Environ()
	cmd.Stdin = strings.NewReader(c.Stdin)
	cmd.SysProcAttr = sysProcAttr()

	stdout := newCappedBuffer(c.Limits.MaxOutputBytes)
	stderr := newCappedBuffer(c.Limits.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{}, fmt.Errorf("start process: %w", err)
	}

	if err := applyResourceLimits(cmd.Process.Pid, c.Limits); err != nil {
		// Degraded mode: the wall-clock watchdog still bounds the run.
		l.logger.Warn("resource limits not applied",
			zap.Int("pid", cmd.Process.Pid),
			zap.Error(err))
	}

	var timedOut atomic.Bool
	done := make(chan struct{})
	go l.watchdog(ctx, cmd.Process.Pid, c.Limits.WallTime, &timedOut, done)

	waitErr := cmd.Wait()
	close(done)

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Outcome{}, fmt.Errorf("wait for process: %w", waitErr)
		}
	}

	signal, signaled := exitSignal(cmd.ProcessState)
	outcome := Outcome{
		ExitCode:        cmd.ProcessState.ExitCode(),
		TimedOut:        timedOut.Load(),
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		StdoutTruncated: stdout.Truncated(),
		StderrTruncated: stderr.Truncated(),
		Duration:        time.Since(start),
	}
	if signaled {
		outcome.Signal = signal
	}
	return outcome, nil
}

// watchdog kills the whole process tree when the wall-clock budget
// expires or the caller's context is canceled. It disarms on normal
// completion via the done channel.
func (l *Launcher) watchdog(ctx context.Context, pid int, wallTime time.Duration, timedOut *atomic.Bool, done <-chan struct{}) {
	var expiry <-chan time.Time
	if wallTime > 0 {
		timer := time.NewTimer(wallTime)
		defer timer.Stop()
		expiry = timer.C
	}

	select {
	case <-done:
	case <-ctx.Done():
		l.logger.Debug("context canceled, killing process tree", zap.Int("pid", pid))
		killTree(pid)
	case <-expiry:
		timedOut.Store(true)
		l.logger.Debug("wall-clock limit hit, killing process tree",
			zap.Int("pid", pid),
			zap.Duration("wall_time", wallTime))
		killTree(pid)
	}
}
