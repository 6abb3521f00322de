package sandbox

// Signal numbers used for classification. The launcher only reports
// signals on unix hosts, where these values are universal.
const (
	sigKILL = 9
	sigXCPU = 24
)

// classify maps an attempt's raw outcome (exit code, signal, timeout
// and truncation flags, compile diagnostics) onto the closed status
// set. It is pure and total: anything it cannot place lands in
// InternalError with the captured output preserved for diagnostics.
func classify(a *attempt) ExecuteResult {
	res := ExecuteResult{
		DurationMs: a.duration().Milliseconds(),
	}

	if a.compile != nil {
		res.CompileOutput = compileDiagnostics(a.compile.Stderr, a.compile.Stdout)
	}
	if a.run != nil {
		res.Stdout = a.run.Stdout
		res.Stderr = a.run.Stderr
		res.StdoutTruncated = a.run.StdoutTruncated
		res.StderrTruncated = a.run.StderrTruncated
		code := a.run.ExitCode
		res.ExitCode = &code
	}

	switch {
	case a.internalErr != nil:
		res.Status = StatusInternalError
		if res.Stderr == "" {
			res.Stderr = a.internalErr.Error()
		}
	case a.timedOut,
		a.compile != nil && a.compile.TimedOut,
		a.run != nil && a.run.TimedOut:
		res.Status = StatusTimeout
	case a.compile != nil && (a.compile.ExitCode != 0 || a.compile.Signal != 0):
		res.Status = StatusCompileError
	case a.run == nil:
		// No run outcome and no recorded cause; surface rather than drop.
		res.Status = StatusInternalError
	case a.run.StdoutTruncated, a.run.StderrTruncated, resourceSignal(a.run.Signal):
		res.Status = StatusResourceExceeded
	case a.run.ExitCode != 0, a.run.Signal != 0:
		res.Status = StatusRuntimeError
	default:
		res.Status = StatusSuccess
	}

	return res
}

// resourceSignal reports signals delivered by OS-level resource
// enforcement: SIGXCPU from the CPU rlimit, SIGKILL from its hard cap
// or the kernel OOM killer. Watchdog kills carry the timeout flag and
// are classified before signals are consulted.
func resourceSignal(sig int) bool {
	return sig == sigXCPU || sig == sigKILL
}

// compileDiagnostics picks the compiler's diagnostics stream;
// compilers write errors to stderr, a few report on stdout only.
func compileDiagnostics(stderr, stdout string) string {
	if stderr != "" {
		return stderr
	}
	return stdout
}
