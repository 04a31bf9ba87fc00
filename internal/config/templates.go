package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "launcher":
		return launcherTemplate, nil
	case "runtime":
		return runtimeTemplate, nil
	case "launch":
		return launchTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const launcherTemplate = `# workerctl launcher settings
runtime_config = "mcp_config.json"
launch_config = "mcp_server_plugin.json"

# auto | vbscript | sh
script_format = "auto"
# defaults to run_mcp_all_silent.vbs or run_mcp_all_silent.sh by format
# script_path = "run_mcp_all_silent.vbs"

# interpreter = ["wscript"]
settle = "2s"
process_match = "node"

# metrics_textfile = "/var/lib/node_exporter/textfile/workerctl.prom"
`

const runtimeTemplate = `{
  "mcpServers": {
    "svc1": {
      "type": "http",
      "url": "http://localhost:9000/mcp"
    }
  }
}
`

const launchTemplate = `{
  "mcpServers": {
    "svc1": {
      "command": "node",
      "args": ["server.js", "--port", "3000"]
    }
  }
}
`
