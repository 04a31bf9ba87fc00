package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TransportType is the communication mode a worker declares.
type TransportType string

const (
	TransportHTTP           TransportType = "http"
	TransportSSE            TransportType = "sse"
	TransportStreamableHTTP TransportType = "streamablehttp"
	TransportUnsupported    TransportType = ""
)

// ParseTransport maps a raw `type` value onto a supported network transport,
// ignoring case and surrounding space. Anything else (stdio included) is
// TransportUnsupported.
func ParseTransport(raw string) TransportType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "http":
		return TransportHTTP
	case "sse", "server-sent-events":
		return TransportSSE
	case "streamablehttp", "streamable-http", "streamable_http":
		return TransportStreamableHTTP
	default:
		return TransportUnsupported
	}
}

// Network reports whether t is one of the launchable network transports.
func (t TransportType) Network() bool {
	return t != TransportUnsupported
}

// RuntimeDefinition describes how a worker is reached once running.
type RuntimeDefinition struct {
	Type     string `json:"type" yaml:"type" toml:"type"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty" toml:"url"`
}

func (d RuntimeDefinition) Transport() TransportType {
	return ParseTransport(d.Type)
}

func (d RuntimeDefinition) Enabled() bool {
	return !d.Disabled
}

// Launchable is true iff the transport is a network transport and the worker
// is enabled.
func (d RuntimeDefinition) Launchable() bool {
	return d.Transport().Network() && d.Enabled()
}

// LaunchDefinition describes how to start a worker process. Scalar args
// (numbers, booleans) are kept as their literal text.
type LaunchDefinition struct {
	Command string   `json:"command" yaml:"command" toml:"command"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty" toml:"args"`
}

func (d *LaunchDefinition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Command string            `json:"command"`
		Args    []json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	def := LaunchDefinition{Command: raw.Command}
	if raw.Args != nil {
		def.Args = make([]string, 0, len(raw.Args))
	}
	for i, item := range raw.Args {
		arg, err := jsonScalar(item)
		if err != nil {
			return fmt.Errorf("args[%d]: %w", i, err)
		}
		def.Args = append(def.Args, arg)
	}
	*d = def
	return nil
}

func (d *LaunchDefinition) UnmarshalTOML(data any) error {
	table, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("launch definition: expected table, got %T", data)
	}

	var def LaunchDefinition
	if v, ok := table["command"]; ok {
		command, ok := v.(string)
		if !ok {
			return fmt.Errorf("command: expected string, got %T", v)
		}
		def.Command = command
	}
	if v, ok := table["args"]; ok {
		list, ok := v.([]any)
		if !ok {
			return fmt.Errorf("args: expected array, got %T", v)
		}
		def.Args = make([]string, 0, len(list))
		for i, item := range list {
			arg, err := tomlScalar(item)
			if err != nil {
				return fmt.Errorf("args[%d]: %w", i, err)
			}
			def.Args = append(def.Args, arg)
		}
	}
	*d = def
	return nil
}

func jsonScalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("empty value")
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return string(raw), nil
	case bytes.Equal(raw, []byte("true")), bytes.Equal(raw, []byte("false")):
		return string(raw), nil
	default:
		return "", fmt.Errorf("expected string, number or boolean, got %s", raw)
	}
}

func tomlScalar(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("expected string, number or boolean, got %T", v)
	}
}
