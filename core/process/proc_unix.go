//go:build !windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcAttr puts the server in its own process group so that kill reaches its children.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func kill(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return p.Kill()
}
