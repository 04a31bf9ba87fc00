package launch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/workerctl/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSettle = 2 * time.Second
	DefaultMatch  = "node"
)

var ErrStartFailed = errors.New("launch: script interpreter failed to start")

// Interpreter resolves the program that runs a script file.
type Interpreter interface {
	Interpreter(scriptPath string) (string, []string)
}

// InterpreterFunc adapts a function to Interpreter.
type InterpreterFunc func(scriptPath string) (string, []string)

func (f InterpreterFunc) Interpreter(scriptPath string) (string, []string) {
	return f(scriptPath)
}

// Report is the outcome of one launch attempt.
type Report struct {
	ScriptPath string
	// Executed is false when there was nothing to launch.
	Executed   bool
	ScriptPID  int
	WorkerPIDs []int
	Settled    time.Duration
	// EnumerationErr is set when the process table could not be read. The
	// launch itself still counts as done.
	EnumerationErr error
}

// Coordinator runs a launch script and observes the processes it started.
type Coordinator struct {
	Interpreter Interpreter
	Starter     tools.ProcessStarter
	Lister      Lister
	// Settle is an upper bound on the wait between starting the script and
	// reading the process table.
	Settle time.Duration
	Match  string
}

// Launch starts the interpreter on scriptPath unless commandCount is zero,
// waits out the settling interval, and collects worker PIDs by name match.
// Only an interpreter start failure is returned as an error.
func (c *Coordinator) Launch(ctx context.Context, scriptPath string, commandCount int) (Report, error) {
	report := Report{ScriptPath: scriptPath}
	if commandCount == 0 {
		log.Info().Str("script", scriptPath).Msg("launch.Coordinator.Launch no eligible workers")
		return report, nil
	}

	name, args := c.Interpreter.Interpreter(scriptPath)
	pid, err := c.Starter.Start(name, args...)
	if err != nil {
		log.Error().Err(err).Str("interpreter", name).Str("script", scriptPath).Msg("launch.Coordinator.Launch start failed")
		return report, fmt.Errorf("%w: %v", ErrStartFailed, err)
	}
	report.Executed = true
	report.ScriptPID = pid
	log.Info().Int("pid", pid).Str("interpreter", name).Str("script", scriptPath).Msg("launch.Coordinator.Launch interpreter started")

	report.Settled = c.settle(ctx)

	procs, err := c.Lister.List()
	if err != nil {
		if !errors.Is(err, ErrProcessEnumeration) {
			err = fmt.Errorf("%w: %v", ErrProcessEnumeration, err)
		}
		log.Warn().Err(err).Msg("launch.Coordinator.Launch process enumeration failed")
		report.EnumerationErr = err
		return report, nil
	}

	report.WorkerPIDs = MatchPIDs(procs, c.match())
	log.Info().
		Str("match", c.match()).
		Ints("pids", report.WorkerPIDs).
		Int("scanned", len(procs)).
		Msg("launch.Coordinator.Launch discovered workers")
	return report, nil
}

func (c *Coordinator) match() string {
	if c.Match == "" {
		return DefaultMatch
	}
	return c.Match
}

// settle waits up to Settle and returns how long it actually waited; ctx
// cancellation ends the wait early.
func (c *Coordinator) settle(ctx context.Context) time.Duration {
	if c.Settle <= 0 {
		return 0
	}
	start := time.Now()
	timer := time.NewTimer(c.Settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("launch.Coordinator.settle interrupted")
	case <-timer.C:
	}
	return time.Since(start)
}
