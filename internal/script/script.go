// Package script renders synthesized worker command lines into a script that
// starts every worker as a detached, windowless background process.
//
// Every script has the same three parts: a header that acquires the host
// automation handle, one fire-and-forget spawn statement per command line, and
// a trailer that releases the handle. An empty command list still renders the
// header and trailer.
package script

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var ErrUnknownFormat = errors.New("script: unknown format")

// Format names a script dialect.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatVBScript Format = "vbscript"
	FormatShell    Format = "sh"
)

// Emitter renders command lines into script text for one dialect.
type Emitter interface {
	Format() Format
	// Extension is the conventional file suffix, including the dot.
	Extension() string
	Emit(lines []string) string
	// Interpreter returns the program and arguments that run scriptPath.
	Interpreter(scriptPath string) (string, []string)
}

// ForFormat resolves format to an emitter. FormatAuto picks VBScript on
// windows and POSIX sh elsewhere.
func ForFormat(format Format) (Emitter, error) {
	return forFormatOn(format, runtime.GOOS)
}

func forFormatOn(format Format, goos string) (Emitter, error) {
	switch Format(strings.ToLower(strings.TrimSpace(string(format)))) {
	case "", FormatAuto:
		if goos == "windows" {
			return VBScript{}, nil
		}
		return Shell{}, nil
	case FormatVBScript, "vbs":
		return VBScript{}, nil
	case FormatShell, "shell", "posix":
		return Shell{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// render assembles header, one statement per line, and trailer, joined by
// newlines with no trailing newline.
func render(header []string, spawn func(string) string, trailer []string, lines []string) string {
	out := make([]string, 0, len(header)+len(lines)+len(trailer))
	out = append(out, header...)
	for _, line := range lines {
		out = append(out, spawn(line))
	}
	out = append(out, trailer...)
	return strings.Join(out, "\n")
}
