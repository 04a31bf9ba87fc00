package launch

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/danmuck/workerctl/internal/tools"
)

// ErrProcessEnumeration wraps every failure to read the OS process table.
var ErrProcessEnumeration = errors.New("launch: could not enumerate worker processes")

// Process is one row of the OS process table.
type Process struct {
	PID  int
	Name string
}

// Lister reads the OS process table.
type Lister interface {
	List() ([]Process, error)
}

// MatchPIDs returns, in ascending order, the PIDs whose executable name
// contains match (case-insensitive). This is a name heuristic: it also reports
// unrelated processes with a matching name.
func MatchPIDs(procs []Process, match string) []int {
	needle := strings.ToLower(strings.TrimSpace(match))
	pids := make([]int, 0)
	if needle == "" {
		return pids
	}
	for _, p := range procs {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			pids = append(pids, p.PID)
		}
	}
	sort.Ints(pids)
	return pids
}

// TasklistLister reads `tasklist /FO CSV /NH` output on Windows.
type TasklistLister struct {
	Runner tools.CommandRunner
}

func (l TasklistLister) List() ([]Process, error) {
	stdout, stderr, code, err := l.Runner.Run("tasklist", "/FO", "CSV", "/NH")
	if err != nil {
		return nil, fmt.Errorf("%w: tasklist exit=%d: %v: %s", ErrProcessEnumeration, code, err, strings.TrimSpace(string(stderr)))
	}
	procs, err := parseTasklistCSV(stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessEnumeration, err)
	}
	return procs, nil
}

// PSLister reads `ps -axo pid=,comm=` output on Unix hosts without /proc.
type PSLister struct {
	Runner tools.CommandRunner
}

func (l PSLister) List() ([]Process, error) {
	stdout, stderr, code, err := l.Runner.Run("ps", "-axo", "pid=,comm=")
	if err != nil {
		return nil, fmt.Errorf("%w: ps exit=%d: %v: %s", ErrProcessEnumeration, code, err, strings.TrimSpace(string(stderr)))
	}
	return parsePS(stdout), nil
}

// parseTasklistCSV reads rows shaped like
// "node.exe","1234","Console","1","45,000 K". Rows whose PID column is not
// numeric (the "INFO: No tasks" banner) are skipped.
func parseTasklistCSV(out []byte) ([]Process, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	procs := make([]Process, 0)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse tasklist: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: strings.TrimSpace(rec[0])})
	}
	return procs, nil
}

// parsePS reads "<pid> <command>" lines; commands may contain spaces.
func parsePS(out []byte) []Process {
	procs := make([]Process, 0)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: strings.Join(fields[1:], " ")})
	}
	return procs
}
