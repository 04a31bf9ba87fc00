package script

import "strings"

// VBScript emits a Windows Script Host file that runs each line through
// `cmd /c` with window style 0 (hidden) and without waiting.
type VBScript struct{}

func (VBScript) Format() Format { return FormatVBScript }

func (VBScript) Extension() string { return ".vbs" }

func (VBScript) Interpreter(scriptPath string) (string, []string) {
	return "wscript", []string{scriptPath}
}

func (VBScript) Emit(lines []string) string {
	return render(
		[]string{`Set WshShell = CreateObject("WScript.Shell")`, ""},
		vbsRun,
		[]string{"Set WshShell = Nothing"},
		lines,
	)
}

// vbsRun doubles embedded quotes so the line stays one VBScript literal.
func vbsRun(line string) string {
	return `WshShell.Run "cmd /c ` + strings.ReplaceAll(line, `"`, `""`) + `", 0`
}
