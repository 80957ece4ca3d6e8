// Package llm runs the codex CLI as an external process.
//
// The package knows nothing about sessions or prompts: it executes a named
// command with an argument list and hands back the captured output text.
// Whether a failed process with usable output counts as success is decided
// here, so callers only ever see a Result or an error.
package llm

import (
	"context"
	"time"
)

// Result is the captured output of a single process run.
type Result struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration,omitempty"`

	// Partial is set when the process failed or its output was cut at the
	// buffer cap, but stdout still held something usable.
	Partial bool `json:"partial,omitempty"`
}

// Runner executes an external command once and returns its output.
type Runner interface {
	Run(ctx context.Context, command string, args []string) (*Result, error)
}
