package sandbox

import (
	"time"

	"github.com/rs/xid"

	"github.com/execbox/execbox/sandbox/launcher"
)

// State tracks an attempt through its lifecycle.
type State int

const (
	StateQueued State = iota
	StatePreparing
	StateCompiling
	StateRunning
	StateCompleted
	StateFailed
	StateTimedOut
	StateResourceExceeded
	StateInternalError
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StatePreparing:
		return "preparing"
	case StateCompiling:
		return "compiling"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	case StateResourceExceeded:
		return "resource_exceeded"
	case StateInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// attempt is the mutable, engine-internal record of one end-to-end
// execution. It owns its outcome buffers exclusively; nothing here is
// shared across attempts.
type attempt struct {
	id         string
	language   string
	state      State
	startedAt  time.Time
	finishedAt time.Time

	compile     *launcher.Outcome
	run         *launcher.Outcome
	timedOut    bool
	internalErr error
}

func newAttempt(language string) *attempt {
	return &attempt{
		id:        xid.New().String(),
		language:  language,
		state:     StateQueued,
		startedAt: time.Now(),
	}
}

func (a *attempt) setState(s State) {
	a.state = s
}

// fail records an infrastructural failure unrelated to the guest code.
func (a *attempt) fail(err error) {
	a.internalErr = err
	a.finish(StatusInternalError)
}

// markTimedOut records wall-clock exhaustion outside a launch, e.g.
// when the compile phase consumed the whole attempt budget.
func (a *attempt) markTimedOut() {
	a.timedOut = true
}

// finish moves the attempt to the terminal state matching its
// classified status and stamps the end time.
func (a *attempt) finish(status Status) {
	switch status {
	case StatusSuccess:
		a.state = StateCompleted
	case StatusTimeout:
		a.state = StateTimedOut
	case StatusResourceExceeded:
		a.state = StateResourceExceeded
	case StatusCompileError, StatusRuntimeError:
		a.state = StateFailed
	default:
		a.state = StateInternalError
	}
	if a.finishedAt.IsZero() {
		a.finishedAt = time.Now()
	}
}

func (a *attempt) duration() time.Duration {
	end := a.finishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(a.startedAt)
}
