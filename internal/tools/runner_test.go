package tools

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerRunExitCodes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	r := ExecRunner{}

	stdout, _, code, err := r.Run("/bin/sh", "-c", "echo ok")
	require.NoError(t, err)
	assert.Equal(t, int32(0), code)
	assert.Equal(t, "ok\n", string(stdout))

	_, stderr, code, err := r.Run("/bin/sh", "-c", "echo bad >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, int32(3), code)
	assert.Equal(t, "bad\n", string(stderr))
}

func TestExecRunnerRunMissingBinary(t *testing.T) {
	_, _, code, err := ExecRunner{}.Run("workerctl-definitely-not-installed")
	require.Error(t, err)
	assert.Equal(t, int32(127), code)
}

func TestExecRunnerStartReturnsPID(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	pid, err := ExecRunner{}.Start("/bin/sh", "-c", "exit 0")
	require.NoError(t, err)
	assert.Greater(t, pid, 0)
}

func TestExecRunnerStartMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Start("workerctl-definitely-not-installed")
	require.Error(t, err)
}
