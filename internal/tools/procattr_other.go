//go:build !windows

package tools

import "syscall"

// detachedProcAttr puts the child in its own process group so terminal
// signals aimed at workerctl do not reach it.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
