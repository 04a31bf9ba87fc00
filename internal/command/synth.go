package command

import (
	"sort"
	"strings"

	"github.com/danmuck/workerctl/internal/config"
	"github.com/rs/zerolog/log"
)

const portFlag = "--port"

// SkipReason explains why a worker produced no command.
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipUnknown   SkipReason = "no_runtime_definition"
	SkipTransport SkipReason = "unsupported_transport"
	SkipDisabled  SkipReason = "disabled"
	SkipNoLaunch  SkipReason = "no_launch_definition"
)

// Command is one synthesized worker invocation.
type Command struct {
	Name       string
	Executable string
	Args       []string
}

// Line joins executable and arguments with single spaces. Tokens are not
// quoted, so an argument holding spaces or shell metacharacters is split or
// interpreted by the shell that runs the line.
func (c Command) Line() string {
	if len(c.Args) == 0 {
		return c.Executable
	}
	return c.Executable + " " + strings.Join(c.Args, " ")
}

// Skip records a worker that was not turned into a command.
type Skip struct {
	Name   string
	Reason SkipReason
}

// Plan is the ordered outcome of synthesizing every runtime definition.
type Plan struct {
	Commands []Command
	Skipped  []Skip
}

// Lines returns the command lines in plan order.
func (p Plan) Lines() []string {
	lines := make([]string, 0, len(p.Commands))
	for _, cmd := range p.Commands {
		lines = append(lines, cmd.Line())
	}
	return lines
}

// Synthesize merges the runtime and launch definitions for name.
func Synthesize(
	name string,
	runtimeDefs map[string]config.RuntimeDefinition,
	launchDefs map[string]config.LaunchDefinition,
) (Command, SkipReason) {
	rt, ok := runtimeDefs[name]
	if !ok {
		return Command{}, SkipUnknown
	}
	if !rt.Transport().Network() {
		return Command{}, SkipTransport
	}
	if !rt.Enabled() {
		return Command{}, SkipDisabled
	}
	launch, ok := launchDefs[name]
	if !ok {
		return Command{}, SkipNoLaunch
	}

	port, hasPort := ExtractPort(rt.URL)
	return Command{
		Name:       name,
		Executable: launch.Command,
		Args:       rewritePort(launch.Args, port, hasPort),
	}, SkipNone
}

// SynthesizeAll walks runtime definitions in name order so repeated runs over
// the same inputs yield the same plan.
func SynthesizeAll(
	runtimeDefs map[string]config.RuntimeDefinition,
	launchDefs map[string]config.LaunchDefinition,
) Plan {
	names := make([]string, 0, len(runtimeDefs))
	for name := range runtimeDefs {
		names = append(names, name)
	}
	sort.Strings(names)

	plan := Plan{Commands: make([]Command, 0, len(names))}
	for _, name := range names {
		cmd, reason := Synthesize(name, runtimeDefs, launchDefs)
		if reason != SkipNone {
			log.Debug().Str("worker", name).Str("reason", string(reason)).Msg("command.SynthesizeAll skip")
			plan.Skipped = append(plan.Skipped, Skip{Name: name, Reason: reason})
			continue
		}
		log.Debug().Str("worker", name).Str("line", cmd.Line()).Msg("command.SynthesizeAll synthesized")
		plan.Commands = append(plan.Commands, cmd)
	}
	return plan
}

// rewritePort copies args in order, placing the port flag at most once. A
// resolved port replaces the value following --port; without one the original
// value is kept. A resolved port with no flag present is appended.
func rewritePort(args []string, port string, hasPort bool) []string {
	out := make([]string, 0, len(args)+2)
	portSet := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == portFlag:
			hasValue := i+1 < len(args)
			switch {
			case portSet:
				// duplicate flag, dropped with its value
			case hasPort:
				out = append(out, portFlag, port)
				portSet = true
			case hasValue:
				out = append(out, portFlag, args[i+1])
				portSet = true
			default:
				out = append(out, portFlag)
			}
			if hasValue {
				i++
			}
		case strings.HasPrefix(arg, portFlag+"="):
			if portSet {
				continue
			}
			if hasPort {
				arg = portFlag + "=" + port
			}
			out = append(out, arg)
			portSet = true
		default:
			out = append(out, arg)
		}
	}

	if hasPort && !portSet {
		out = append(out, portFlag, port)
	}
	return out
}
