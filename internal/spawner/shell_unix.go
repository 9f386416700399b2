//go:build !windows

package spawner

import (
	"os/exec"
	"syscall"
)

// getShellCommand returns a shell command for Unix systems
func getShellCommand(script string) *exec.Cmd {
	// #nosec G204
	return exec.Command("/bin/sh", "-c", script)
}

// detach starts the child in a new session so it has no controlling
// terminal and survives the guard's exit and any hangup sent to its group.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
