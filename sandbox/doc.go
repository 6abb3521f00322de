// Package sandbox provides the sandboxed code execution engine.
//
// The sandbox package ties the language registry, workspace manager and
// process launcher together behind the Coordinator: a bounded-concurrency
// front door that admits execution requests, sequences the
// compile-and-run pipeline for each attempt, classifies the raw outcome
// into a closed status set, and guarantees workspace cleanup on every
// exit path.
//
// Guest-program failures (bad exits, timeouts, output overruns) are
// expected outcomes and are returned as statuses on the result, never as
// errors. Errors from Execute cover only caller-context cancellation.
//
// Usage:
//
//	coord := sandbox.NewCoordinator(logger, cfg.Engine, reg, workspaces, launch)
//	result, err := coord.Execute(ctx, sandbox.ExecuteRequest{
//	    Language: "python",
//	    Source:   "print('Hello, World!')",
//	})
package sandbox
