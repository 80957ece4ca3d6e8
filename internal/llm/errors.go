package llm

import (
	"fmt"
	"strings"
)

// CommandError reports a process that could not start or exited abnormally
// without usable output.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int // -1 when the process never ran or was killed
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	b.WriteString(e.Command)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " exited %d", e.ExitCode)
	} else {
		b.WriteString(" failed")
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// CommandLine renders the command and its arguments for diagnostics.
func (e *CommandError) CommandLine() string {
	return strings.Join(append([]string{e.Command}, e.Args...), " ")
}
