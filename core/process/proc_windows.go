//go:build windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

const createNoWindow = 0x08000000

// setProcAttr hides the console window of the server.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: createNoWindow,
		HideWindow:    true,
	}
}

func kill(p *os.Process) error {
	return p.Kill()
}
