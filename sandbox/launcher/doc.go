// Package launcher starts guest subprocesses with resource limits and
// guaranteed wall-clock termination.
//
// Each launch wires stdin/stdout/stderr through pipes, captures output
// incrementally into size-capped buffers, and arms a watchdog that
// kills the entire process tree on timeout or context cancellation.
// CPU-time and address-space limits are applied where the host platform
// exposes them (Linux prlimit); elsewhere the launcher degrades to
// timeout-only enforcement. Guest processes always run in their own
// process group (or the platform's equivalent), so helper subprocesses
// spawned by compilers and interpreters never survive a kill.
package launcher
