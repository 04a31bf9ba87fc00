package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrConfigLoad matches every *LoadError through errors.Is.
var ErrConfigLoad = errors.New("config: load failed")

// LoadStage names the step that failed while loading a definitions file.
type LoadStage string

const (
	StageRead  LoadStage = "read"
	StageParse LoadStage = "parse"
)

// LoadError reports a missing, unreadable or malformed definitions file.
type LoadError struct {
	Path  string
	Stage LoadStage
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %s failed (%s): %v", e.Stage, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrConfigLoad
}

// definitionsFile is the shared outer shape of both definitions files.
type definitionsFile[T any] struct {
	Servers map[string]T `json:"mcpServers" yaml:"mcpServers" toml:"mcpServers"`
}

// LoadRuntimeDefinitions reads the runtime definitions keyed by worker name.
func LoadRuntimeDefinitions(path string) (map[string]RuntimeDefinition, error) {
	defs, err := loadDefinitions[RuntimeDefinition](path)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Int("workers", len(defs)).Msg("config.LoadRuntimeDefinitions")
	return defs, nil
}

// LoadLaunchDefinitions reads the launch definitions keyed by worker name.
func LoadLaunchDefinitions(path string) (map[string]LaunchDefinition, error) {
	defs, err := loadDefinitions[LaunchDefinition](path)
	if err != nil {
		return nil, err
	}
	for name, def := range defs {
		if def.Args == nil {
			def.Args = []string{}
			defs[name] = def
		}
	}
	log.Debug().Str("path", path).Int("workers", len(defs)).Msg("config.LoadLaunchDefinitions")
	return defs, nil
}

func loadDefinitions[T any](path string) (map[string]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: StageRead, Err: err}
	}

	var file definitionsFile[T]
	if err := decode(path, data, &file); err != nil {
		return nil, &LoadError{Path: path, Stage: StageParse, Err: err}
	}
	if file.Servers == nil {
		file.Servers = make(map[string]T)
	}
	return file.Servers, nil
}

func decode(path string, data []byte, out any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	case ".toml":
		return toml.Unmarshal(data, out)
	default:
		return decodeJSON(data, out)
	}
}

// decodeJSON rejects anything but whitespace after the top-level value,
// stray closing delimiters included.
func decodeJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected content after top-level value (offset %d)", dec.InputOffset())
	}
	return nil
}
