package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWorkerCountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(workersTotal.WithLabelValues(OutcomeLaunched))
	RecordWorker(OutcomeLaunched)
	RecordWorker(OutcomeLaunched)
	RecordWorker("disabled")

	assert.Equal(t, before+2, testutil.ToFloat64(workersTotal.WithLabelValues(OutcomeLaunched)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(workersTotal.WithLabelValues("disabled")), 1.0)
}

func TestRecordLaunch(t *testing.T) {
	RecordLaunch(3, 2*time.Second, false)
	assert.Equal(t, 3.0, testutil.ToFloat64(discoveredProcesses))

	before := testutil.ToFloat64(enumerationFailures)
	RecordLaunch(0, time.Second, true)
	assert.Equal(t, before+1, testutil.ToFloat64(enumerationFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(discoveredProcesses))
}

func TestWriteTextfile(t *testing.T) {
	RecordRun("run-1", time.Unix(1700000000, 0))
	RecordRun("run-2", time.Unix(1700000100, 0))
	path := filepath.Join(t.TempDir(), "workerctl.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "workerctl_last_run_timestamp_seconds")
	assert.Contains(t, text, `run_id="run-2"`)
	assert.NotContains(t, text, `run_id="run-1"`)
}
