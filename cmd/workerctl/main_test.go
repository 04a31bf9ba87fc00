package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/workerctl/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlanCommandUsesExampleDefinitions(t *testing.T) {
	testlog.Start(t)
	out, err := execute(t, "plan", "--config", "ex.config.toml")
	require.NoError(t, err)

	assert.Equal(t,
		"events: node events/index.js --port 9100\n"+
			"svc1: node server.js --port 9000\n"+
			"filesystem: skipped (unsupported_transport)\n"+
			"paused: skipped (disabled)\n",
		out)
}

func TestScriptCommandFlagOverrides(t *testing.T) {
	testlog.Start(t)
	out, err := execute(t, "script",
		"--config", "ex.config.toml",
		"--format", "vbscript")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `Set WshShell = CreateObject("WScript.Shell")`))
	assert.Contains(t, out, `WshShell.Run "cmd /c node server.js --port 9000", 0`)
	assert.Contains(t, out, `WshShell.Run "cmd /c node events/index.js --port 9100", 0`)
	assert.Equal(t, 2, strings.Count(out, "WshShell.Run"))
}

func TestLaunchCommandNoEligibleWorkers(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	runtimePath := filepath.Join(dir, "runtime.json")
	launchPath := filepath.Join(dir, "launch.json")
	scriptPath := filepath.Join(dir, "run.sh")
	require.NoError(t, os.WriteFile(runtimePath, []byte(`{"mcpServers": {"a": {"type": "stdio"}}}`), 0o644))
	require.NoError(t, os.WriteFile(launchPath, []byte(`{"mcpServers": {"a": {"command": "node"}}}`), 0o644))

	out, err := execute(t, "launch",
		"--config", "ex.config.toml",
		"--runtime", runtimePath,
		"--launch", launchPath,
		"--script", scriptPath)
	require.NoError(t, err)
	assert.Equal(t,
		"script written: "+scriptPath+"\n"+
			"no eligible workers; script not executed\n",
		out)

	data, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "nohup")
}

func TestLaunchCommandConfigErrorFails(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "run.sh")

	_, err := execute(t, "launch",
		"--config", "ex.config.toml",
		"--runtime", filepath.Join(dir, "missing.json"),
		"--script", scriptPath)
	require.Error(t, err)

	_, statErr := os.Stat(scriptPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInitCommand(t *testing.T) {
	testlog.Start(t)
	target := filepath.Join(t.TempDir(), "workerctl.toml")

	out, err := execute(t, "init", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote launcher template")

	_, err = execute(t, "init", target)
	require.Error(t, err)

	_, err = execute(t, "init", "--force", target)
	require.NoError(t, err)

	cfg, err := loadServiceConfig(target, true)
	require.NoError(t, err)
	assert.Equal(t, "mcp_server_plugin.json", cfg.LaunchConfigPath)
}
