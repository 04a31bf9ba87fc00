//go:build linux

package launch

import (
	"fmt"

	"github.com/danmuck/workerctl/internal/tools"
	"github.com/prometheus/procfs"
)

// ProcfsLister reads the process table from /proc.
type ProcfsLister struct {
	MountPoint string
}

func (l ProcfsLister) List() ([]Process, error) {
	mount := l.MountPoint
	if mount == "" {
		mount = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(mount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessEnumeration, err)
	}
	all, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessEnumeration, err)
	}

	procs := make([]Process, 0, len(all))
	for _, p := range all {
		comm, err := p.Comm()
		if err != nil {
			// exited between the directory scan and the read
			continue
		}
		procs = append(procs, Process{PID: p.PID, Name: comm})
	}
	return procs, nil
}

// DefaultLister returns the process table reader for this platform.
func DefaultLister(_ tools.CommandRunner) Lister {
	return ProcfsLister{}
}
