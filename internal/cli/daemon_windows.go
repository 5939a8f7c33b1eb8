//go:build windows

package cli

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr starts the background server without a console window
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow: true,
	}
}
