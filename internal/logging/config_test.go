package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]struct {
		want zerolog.Level
		ok   bool
	}{
		"":         {zerolog.InfoLevel, false},
		"debug":    {zerolog.DebugLevel, true},
		" WARN ":   {zerolog.WarnLevel, true},
		"warning":  {zerolog.WarnLevel, true},
		"off":      {zerolog.Disabled, true},
		"disabled": {zerolog.Disabled, true},
		"Trace":    {zerolog.TraceLevel, true},
		"fatal":    {zerolog.FatalLevel, true},
		"loud":     {zerolog.InfoLevel, false},
	}
	for raw, tc := range cases {
		got, ok := parseLevel(raw)
		assert.Equal(t, tc.want, got, "level for %q", raw)
		assert.Equal(t, tc.ok, ok, "ok for %q", raw)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)

	assert.Equal(t, zerolog.ErrorLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.True(t, cfg.NoColor)
}

func TestApplyEnvOverridesIgnoresGarbage(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogTimestamp, "maybe")
	t.Setenv(EnvLogNoColor, "")

	cfg := defaultConfig(ProfileTest)
	applyEnvOverrides(&cfg)

	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.False(t, cfg.NoColor)
}
