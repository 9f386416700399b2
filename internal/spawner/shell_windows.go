//go:build windows

package spawner

import (
	"os/exec"
	"syscall"
)

// detachedProcess is the DETACHED_PROCESS creation flag, which syscall does not export.
const detachedProcess = 0x00000008

// getShellCommand returns a shell command for Windows systems
func getShellCommand(script string) *exec.Cmd {
	// #nosec G204
	return exec.Command("cmd", "/c", script)
}

// detach keeps the child off the guard's console and process group.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess}
}
