package script

import "strings"

// Shell emits a POSIX sh script that backgrounds each line under nohup with
// output discarded, so workers outlive the interpreter.
type Shell struct{}

func (Shell) Format() Format { return FormatShell }

func (Shell) Extension() string { return ".sh" }

func (Shell) Interpreter(scriptPath string) (string, []string) {
	return "/bin/sh", []string{scriptPath}
}

func (Shell) Emit(lines []string) string {
	return render(
		[]string{"#!/bin/sh", ""},
		shellRun,
		[]string{"", "exit 0"},
		lines,
	)
}

// shellRun hands the unquoted line to a child sh so it is word-split the same
// way cmd /c splits it.
func shellRun(line string) string {
	return "nohup sh -c " + shellEscape(line) + " >/dev/null 2>&1 &"
}

func shellEscape(value string) string {
	if value == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
