//go:build linux

package launcher

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// sysProcAttr puts the guest in its own process group so the whole tree
// can be killed at once, and ties its life to the engine process.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

// applyResourceLimits installs CPU-time and address-space rlimits on an
// already-started process before it reaches guest code. prlimit targets
// the child directly, so the engine's own limits are untouched.
func applyResourceLimits(pid int, limits Limits) error {
	if limits.CPUTime > 0 {
		sec := uint64((limits.CPUTime + time.Second - 1) / time.Second)
		rl := unix.Rlimit{Cur: sec, Max: sec + 1}
		if err := unix.Prlimit(pid, unix.RLIMIT_CPU, &rl, nil); err != nil {
			return fmt.Errorf("set cpu limit: %w", err)
		}
	}
	if limits.AddressSpace > 0 {
		rl := unix.Rlimit{Cur: uint64(limits.AddressSpace), Max: uint64(limits.AddressSpace)}
		if err := unix.Prlimit(pid, unix.RLIMIT_AS, &rl, nil); err != nil {
			return fmt.Errorf("set address-space limit: %w", err)
		}
	}
	return nil
}

// killTree kills the guest's entire process group.
func killTree(pid int) {
	if pid <= 0 {
		return
	}
	_ = unix.Kill(-pid, unix.SIGKILL)
}

// exitSignal extracts the terminating signal, if any.
func exitSignal(state *os.ProcessState) (int, bool) {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}
	return int(ws.Signal()), true
}
