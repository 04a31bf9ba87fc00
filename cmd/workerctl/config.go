package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/workerctl/internal/script"
	"github.com/danmuck/workerctl/internal/service"
)

const defaultConfigPath = "workerctl.toml"

type fileConfig struct {
	RuntimeConfig   string   `toml:"runtime_config"`
	LaunchConfig    string   `toml:"launch_config"`
	ScriptPath      string   `toml:"script_path"`
	ScriptFormat    string   `toml:"script_format"`
	Interpreter     []string `toml:"interpreter"`
	Settle          string   `toml:"settle"`
	SettleMS        int64    `toml:"settle_ms"`
	ProcessMatch    string   `toml:"process_match"`
	MetricsTextfile string   `toml:"metrics_textfile"`
}

// loadServiceConfig overlays the TOML file at path onto the defaults. A
// missing file is only an error when required is set.
func loadServiceConfig(path string, required bool) (service.Config, error) {
	cfg := service.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return service.Config{}, fmt.Errorf("load workerctl config: %w", err)
	}

	if meta.IsDefined("runtime_config") {
		cfg.RuntimeConfigPath = strings.TrimSpace(raw.RuntimeConfig)
	}

	if meta.IsDefined("launch_config") {
		cfg.LaunchConfigPath = strings.TrimSpace(raw.LaunchConfig)
	}

	if meta.IsDefined("script_path") {
		cfg.ScriptPath = strings.TrimSpace(raw.ScriptPath)
	}

	if meta.IsDefined("script_format") {
		cfg.ScriptFormat = script.Format(strings.TrimSpace(raw.ScriptFormat))
	}

	if meta.IsDefined("interpreter") {
		cfg.Interpreter = normalizeArgs(raw.Interpreter)
	}

	if meta.IsDefined("settle") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Settle))
		if err != nil {
			return service.Config{}, fmt.Errorf("parse settle: %w", err)
		}
		cfg.Settle = d
	}

	if meta.IsDefined("settle_ms") {
		cfg.Settle = time.Duration(raw.SettleMS) * time.Millisecond
	}

	if meta.IsDefined("process_match") {
		cfg.ProcessMatch = strings.TrimSpace(raw.ProcessMatch)
	}

	if meta.IsDefined("metrics_textfile") {
		cfg.MetricsTextfile = strings.TrimSpace(raw.MetricsTextfile)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return service.Config{}, fmt.Errorf("unknown workerctl config keys: %v", undecoded)
	}

	return cfg, nil
}

func normalizeArgs(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, arg := range in {
		v := strings.TrimSpace(arg)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
