//go:build !windows

package proctree

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Prepare places the command in a new process group led by the child.
func Prepare(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

var (
	killTree = func(pid int) error {
		return unix.Kill(-pid, unix.SIGKILL)
	}
	killProcess = func(pid int) error {
		return unix.Kill(pid, unix.SIGKILL)
	}
)
