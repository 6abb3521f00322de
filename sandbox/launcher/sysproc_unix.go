//go:build unix && !linux

package launcher

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr puts the guest in its own process group so the whole tree
// can be killed at once.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// applyResourceLimits reports that OS-level limiting is unavailable;
// only the wall-clock watchdog bounds the guest here.
func applyResourceLimits(_ int, limits Limits) error {
	if limits.CPUTime > 0 || limits.AddressSpace > 0 {
		return fmt.Errorf("cpu/memory limits not supported on this platform")
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
