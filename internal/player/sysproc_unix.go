//go:build !windows

package player

import (
	"os/exec"
	"syscall"
)

// sysProcAttr puts mpv in its own process group so terminal signals sent to
// jellywaves do not reach it.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcess kills mpv and anything it spawned.
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	return cmd.Process.Kill()
}
