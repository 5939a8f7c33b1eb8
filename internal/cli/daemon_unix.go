//go:build !windows

package cli

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr detaches the background server from the terminal's session
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
