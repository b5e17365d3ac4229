//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// detachProcess puts the server in its own process group so it survives the CLI
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
