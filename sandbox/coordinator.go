package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/execbox/execbox/config"
	"github.com/execbox/execbox/sandbox/launcher"
	"github.com/execbox/execbox/sandbox/registry"
	"github.com/execbox/execbox/sandbox/workspace"
)

// ErrOverloaded is returned internally when the worker pool and its
// wait queue are both full; callers see it as StatusOverloaded.
var ErrOverloaded = errors.New("engine overloaded")

// ProcessLauncher abstracts the subprocess launcher so tests can drive
// the coordinator without real toolchains.
type ProcessLauncher interface {
	Run(ctx context.Context, c launcher.Command) (launcher.Outcome, error)
}

// Coordinator is the engine's admission-control front door. It bounds
// concurrently-running attempts to a fixed worker-slot pool, queues
// excess requests up to a bounded depth, and sequences the full
// pipeline for each admitted request: registry lookup, workspace
// creation, optional compile, run under the watchdog, classification,
// and guaranteed workspace release.
type Coordinator struct {
	logger     *zap.Logger
	cfg        config.EngineConfig
	registry   *registry.Registry
	workspaces *workspace.Manager
	launcher   ProcessLauncher

	// slots is the only cross-attempt shared state.
	slots   chan struct{}
	queueMu sync.Mutex
	waiting int
}

// NewCoordinator creates a Coordinator over the given components.
func NewCoordinator(logger *zap.Logger, cfg config.EngineConfig, reg *registry.Registry, workspaces *workspace.Manager, launch ProcessLauncher) *Coordinator {
	return &Coordinator{
		logger:     logger,
		cfg:        cfg,
		registry:   reg,
		workspaces: workspaces,
		launcher:   launch,
		slots:      make(chan struct{}, cfg.PoolSize),
	}
}

// Execute runs one request end to end and blocks until the result is
// ready. Guest failures come back as statuses; the error is non-nil
// only when the caller's context ends before the attempt completes.
func (c *Coordinator) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	tc, err := c.registry.Lookup(req.Language)
	if err != nil {
		c.logger.Info("rejected unsupported language", zap.String("language", req.Language))
		return ExecuteResult{Status: StatusUnsupportedLanguage, Stderr: err.Error()}, nil
	}

	if err := c.admit(ctx); err != nil {
		if errors.Is(err, ErrOverloaded) {
			c.logger.Warn("rejected overloaded request", zap.String("language", tc.Name))
			return ExecuteResult{Status: StatusOverloaded, Stderr: err.Error()}, nil
		}
		return ExecuteResult{}, err
	}
	defer func() { <-c.slots }()

	limits := c.limitsFor(tc, req)

	var res ExecuteResult
	for try := 0; ; try++ {
		var retryable bool
		res, retryable = c.runAttempt(ctx, tc, req, limits)
		if ctx.Err() != nil {
			return ExecuteResult{}, ctx.Err()
		}
		if !retryable || try >= c.cfg.InternalRetries {
			break
		}
		c.logger.Warn("retrying attempt after internal failure",
			zap.String("language", tc.Name),
			zap.Int("try", try+1))
	}
	return res, nil
}

// admit claims a worker slot, waiting in the bounded FIFO queue when
// the pool is busy. Beyond the queue depth it rejects immediately.
// Queue wait time is not charged against the attempt's timeout budget.
func (c *Coordinator) admit(ctx context.Context) error {
	select {
	case c.slots <- struct{}{}:
		return nil
	default:
	}

	c.queueMu.Lock()
	if c.waiting >= c.cfg.QueueDepth {
		c.queueMu.Unlock()
		return ErrOverloaded
	}
	c.waiting++
	c.queueMu.Unlock()

	defer func() {
		c.queueMu.Lock()
		c.waiting--
		c.queueMu.Unlock()
	}()

	select {
	case c.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		// Cancellation of a queued-but-unstarted attempt is a dequeue.
		return ctx.Err()
	}
}

// limitsFor resolves the effective limits: per-language defaults,
// engine-wide fallbacks, request overrides, system caps, in that order.
func (c *Coordinator) limitsFor(tc *registry.Toolchain, req ExecuteRequest) launcher.Limits {
	timeoutMs := tc.DefaultTimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = c.cfg.DefaultTimeoutMs
	}
	if req.TimeoutMs > 0 {
		timeoutMs = req.TimeoutMs
	}
	if timeoutMs > c.cfg.MaxTimeoutMs {
		timeoutMs = c.cfg.MaxTimeoutMs
	}

	outputBytes := tc.DefaultMaxOutputBytes
	if outputBytes <= 0 {
		outputBytes = c.cfg.DefaultMaxOutputBytes
	}
	if req.MaxOutputBytes > 0 {
		outputBytes = req.MaxOutputBytes
	}
	if outputBytes > c.cfg.MaxOutputBytes {
		outputBytes = c.cfg.MaxOutputBytes
	}

	return launcher.Limits{
		WallTime:       time.Duration(timeoutMs) * time.Millisecond,
		CPUTime:        time.Duration(c.cfg.CPUTimeSec) * time.Second,
		AddressSpace:   int64(c.cfg.MemoryMB) * 1024 * 1024,
		MaxOutputBytes: int64(outputBytes),
	}
}

// runAttempt executes one attempt. The second return value reports
// whether the failure was purely infrastructural and worth retrying;
// guest failures and timeouts never are.
func (c *Coordinator) runAttempt(ctx context.Context, tc *registry.Toolchain, req ExecuteRequest, limits launcher.Limits) (ExecuteResult, bool) {
	att := newAttempt(tc.Name)
	att.setState(StatePreparing)

	c.logger.Debug("attempt started",
		zap.String("attempt_id", att.id),
		zap.String("language", tc.Name))

	if !c.registry.Available(tc.Name) {
		att.fail(fmt.Errorf("toolchain for %s is not installed", tc.Name))
		// A missing toolchain will not heal on retry.
		return c.finish(att), false
	}

	ws, err := c.workspaces.Create(att.id)
	if err != nil {
		att.fail(err)
		return c.finish(att), true
	}
	defer ws.Release()

	sourcePath, err := ws.WriteSource(tc.SourceFile, []byte(req.Source))
	if err != nil {
		att.fail(err)
		return c.finish(att), true
	}

	var binaryPath string
	if tc.HasCompilePhase() {
		binaryPath = ws.Join(tc.BinaryFile)
	}

	deadline := time.Now().Add(limits.WallTime)

	if tc.HasCompilePhase() {
		att.setState(StateCompiling)
		compileLimits := limits
		compileLimits.WallTime = time.Until(deadline)
		outcome, err := c.launcher.Run(ctx, launcher.Command{
			Argv:    tc.ExpandCommand(tc.CompileCommand, ws.Path(), sourcePath, binaryPath),
			Workdir: ws.Path(),
			Limits:  compileLimits,
		})
		if err != nil {
			att.fail(fmt.Errorf("launch compiler: %w", err))
			return c.finish(att), true
		}
		att.compile = &outcome
		if outcome.TimedOut || outcome.ExitCode != 0 || outcome.Signal != 0 {
			// Failed compile short-circuits; the artifact is never run.
			return c.finish(att), false
		}
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		att.markTimedOut()
		return c.finish(att), false
	}

	att.setState(StateRunning)
	runLimits := limits
	runLimits.WallTime = remaining
	outcome, err := c.launcher.Run(ctx, launcher.Command{
		Argv:    tc.ExpandCommand(tc.RunCommand, ws.Path(), sourcePath, binaryPath),
		Workdir: ws.Path(),
		Stdin:   req.Stdin,
		Limits:  runLimits,
	})
	if err != nil {
		att.fail(fmt.Errorf("launch program: %w", err))
		return c.finish(att), true
	}
	att.run = &outcome

	return c.finish(att), false
}

// finish classifies the attempt, moves it to its terminal state and
// logs the outcome.
func (c *Coordinator) finish(att *attempt) ExecuteResult {
	res := classify(att)
	att.finish(res.Status)

	c.logger.Info("attempt finished",
		zap.String("attempt_id", att.id),
		zap.String("language", att.language),
		zap.String("state", att.state.String()),
		zap.String("status", string(res.Status)),
		zap.Int64("duration_ms", res.DurationMs))
	if att.internalErr != nil {
		c.logger.Error("attempt internal failure",
			zap.String("attempt_id", att.id),
			zap.Error(att.internalErr))
	}
	return res
}
