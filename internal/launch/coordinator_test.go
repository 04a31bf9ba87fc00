package launch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danmuck/workerctl/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStarter struct {
	pid   int
	err   error
	calls [][]string
}

func (f *fakeStarter) Start(name string, args ...string) (int, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.pid, f.err
}

type fakeLister struct {
	procs []Process
	err   error
	calls int
}

func (f *fakeLister) List() ([]Process, error) {
	f.calls++
	return f.procs, f.err
}

func shellInterpreter(path string) (string, []string) {
	return "/bin/sh", []string{path}
}

func TestLaunchSkipsWhenNothingToRun(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 42}
	lister := &fakeLister{}
	c := &Coordinator{
		Interpreter: InterpreterFunc(shellInterpreter),
		Starter:     starter,
		Lister:      lister,
		Settle:      time.Hour,
	}

	report, err := c.Launch(context.Background(), "/tmp/run.sh", 0)
	require.NoError(t, err)
	assert.False(t, report.Executed)
	assert.Empty(t, starter.calls)
	assert.Equal(t, 0, lister.calls)
	assert.Equal(t, "/tmp/run.sh", report.ScriptPath)
}

func TestLaunchStartsInterpreterAndMatches(t *testing.T) {
	testlog.Start(t)
	starter := &fakeStarter{pid: 4321}
	lister := &fakeLister{procs: []Process{
		{PID: 1, Name: "init"},
		{PID: 200, Name: "node"},
		{PID: 201, Name: "python3"},
		{PID: 202, Name: "Node.exe"},
	}}
	c := &Coordinator{
		Interpreter: InterpreterFunc(shellInterpreter),
		Starter:     starter,
		Lister:      lister,
		Settle:      time.Millisecond,
	}

	report, err := c.Launch(context.Background(), "/tmp/run.sh", 2)
	require.NoError(t, err)
	assert.True(t, report.Executed)
	assert.Equal(t, 4321, report.ScriptPID)
	assert.Equal(t, []int{200, 202}, report.WorkerPIDs)
	assert.NoError(t, report.EnumerationErr)
	assert.Equal(t, [][]string{{"/bin/sh", "/tmp/run.sh"}}, starter.calls)
	assert.Equal(t, 1, lister.calls)
}

func TestLaunchCustomMatch(t *testing.T) {
	testlog.Start(t)
	c := &Coordinator{
		Interpreter: InterpreterFunc(shellInterpreter),
		Starter:     &fakeStarter{pid: 1},
		Lister:      &fakeLister{procs: []Process{{PID: 5, Name: "node"}, {PID: 6, Name: "uvx"}}},
		Match:       "uv",
	}

	report, err := c.Launch(context.Background(), "run.sh", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, report.WorkerPIDs)
}

func TestLaunchEnumerationFailureIsNotFatal(t *testing.T) {
	testlog.Start(t)
	c := &Coordinator{
		Interpreter: InterpreterFunc(shellInterpreter),
		Starter:     &fakeStarter{pid: 9},
		Lister:      &fakeLister{err: errors.New("permission denied")},
	}

	report, err := c.Launch(context.Background(), "run.sh", 1)
	require.NoError(t, err)
	assert.True(t, report.Executed)
	assert.Equal(t, 9, report.ScriptPID)
	assert.Empty(t, report.WorkerPIDs)
	require.Error(t, report.EnumerationErr)
	assert.True(t, errors.Is(report.EnumerationErr, ErrProcessEnumeration))
}

func TestLaunchStartFailure(t *testing.T) {
	testlog.Start(t)
	lister := &fakeLister{}
	c := &Coordinator{
		Interpreter: InterpreterFunc(shellInterpreter),
		Starter:     &fakeStarter{err: errors.New("exec: not found")},
		Lister:      lister,
	}

	report, err := c.Launch(context.Background(), "run.sh", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStartFailed))
	assert.False(t, report.Executed)
	assert.Equal(t, 0, lister.calls)
}

func TestLaunchSettleHonoursContext(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Coordinator{
		Interpreter: InterpreterFunc(shellInterpreter),
		Starter:     &fakeStarter{pid: 1},
		Lister:      &fakeLister{},
		Settle:      time.Hour,
	}

	start := time.Now()
	report, err := c.Launch(ctx, "run.sh", 1)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Minute)
	assert.Less(t, report.Settled, time.Minute)
}
