package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danmuck/workerctl/internal/command"
)

// Print writes the human-readable run summary.
func (r Result) Print(w io.Writer) {
	fmt.Fprintf(w, "script written: %s\n", r.ScriptPath)
	if !r.Report.Executed {
		fmt.Fprintln(w, "no eligible workers; script not executed")
		return
	}
	fmt.Fprintf(w, "script interpreter started: pid %d\n", r.Report.ScriptPID)
	if r.Report.EnumerationErr != nil {
		fmt.Fprintf(w, "could not enumerate worker processes: %v\n", r.Report.EnumerationErr)
		return
	}
	if len(r.Report.WorkerPIDs) == 0 {
		fmt.Fprintln(w, "worker processes: none detected")
		return
	}
	fmt.Fprintf(w, "worker processes: %s\n", joinPIDs(r.Report.WorkerPIDs))
}

// PrintPlan writes one line per synthesized command and one per skipped
// worker.
func PrintPlan(w io.Writer, plan command.Plan) {
	for _, cmd := range plan.Commands {
		fmt.Fprintf(w, "%s: %s\n", cmd.Name, cmd.Line())
	}
	for _, skip := range plan.Skipped {
		fmt.Fprintf(w, "%s: skipped (%s)\n", skip.Name, skip.Reason)
	}
	if len(plan.Commands) == 0 {
		fmt.Fprintln(w, "no eligible workers")
	}
}

func joinPIDs(pids []int) string {
	parts := make([]string, 0, len(pids))
	for _, pid := range pids {
		parts = append(parts, strconv.Itoa(pid))
	}
	return strings.Join(parts, ", ")
}
