//go:build windows

package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"golang.org/x/sys/windows"
)

// sysProcAttr starts the guest in a new process group and suppresses
// the console window when the engine runs as a background service.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}
}

// applyResourceLimits reports that OS-level limiting is unavailable;
// only the wall-clock watchdog bounds the guest here.
func applyResourceLimits(_ int, limits Limits) error {
	if limits.CPUTime > 0 || limits.AddressSpace > 0 {
		return fmt.Errorf("cpu/memory limits not supported on windows")
	}
	return nil
}

// killTree terminates the guest and every descendant via taskkill /T.
func killTree(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}

// exitSignal extracts the terminating signal; Windows has none.
func exitSignal(_ *os.ProcessState) (int, bool) {
	return 0, false
}
