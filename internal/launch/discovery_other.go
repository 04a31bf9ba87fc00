//go:build !linux

package launch

import (
	"runtime"

	"github.com/danmuck/workerctl/internal/tools"
)

// DefaultLister returns the process table reader for this platform.
func DefaultLister(runner tools.CommandRunner) Lister {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	if runtime.GOOS == "windows" {
		return TasklistLister{Runner: runner}
	}
	return PSLister{Runner: runner}
}
