package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
)

// CommandRunner abstracts synchronous command execution.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// ProcessStarter abstracts detached process start.
type ProcessStarter interface {
	Start(name string, args ...string) (int, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// Run executes name to completion and returns stdout, stderr and exit code.
func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = 127
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

// Start launches name without stdio, in its own process group (or hidden
// window on Windows), and returns its PID without waiting for it to exit.
func (r ExecRunner) Start(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", name, err)
	}
	pid := cmd.Process.Pid
	// reap in the background; nobody observes the exit status
	go func() {
		_ = cmd.Wait()
	}()
	return pid, nil
}
