package sandbox

// Status classifies the outcome of one execution request.
type Status string

// The closed set of result statuses. UnsupportedLanguage and Overloaded
// are request-time rejections issued before any worker slot or
// workspace is consumed; the rest describe a finished attempt.
const (
	StatusSuccess             Status = "Success"
	StatusCompileError        Status = "CompileError"
	StatusRuntimeError        Status = "RuntimeError"
	StatusTimeout             Status = "Timeout"
	StatusResourceExceeded    Status = "ResourceExceeded"
	StatusInternalError       Status = "InternalError"
	StatusUnsupportedLanguage Status = "UnsupportedLanguage"
	StatusOverloaded          Status = "Overloaded"
)

// ExecuteRequest represents the parameters for one code execution.
// It is created once per call and never mutated. Zero values for the
// overrides select the per-language or engine-wide defaults; non-zero
// overrides are capped by the configured maxima.
type ExecuteRequest struct {
	Language       string
	Source         string
	Stdin          string
	TimeoutMs      int
	MaxOutputBytes int
}

// ExecuteResult is the immutable projection of a finished attempt
// returned to the caller. ExitCode is nil until a run phase exited.
type ExecuteResult struct {
	Status          Status `json:"status"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	CompileOutput   string `json:"compile_output,omitempty"`
	ExitCode        *int   `json:"exit_code,omitempty"`
	StdoutTruncated bool   `json:"stdout_truncated,omitempty"`
	StderrTruncated bool   `json:"stderr_truncated,omitempty"`
	DurationMs      int64  `json:"duration_ms"`
}
