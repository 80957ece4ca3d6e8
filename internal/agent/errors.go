package agent

import "fmt"

// ValidationError reports a malformed request. It is raised before codex is
// invoked and never wraps an invocation failure.
type ValidationError struct {
	Tool    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for tool %q: %s", e.Tool, e.Message)
}

// ExecutionError reports a tool operation that could not complete, usually
// because the codex process failed.
type ExecutionError struct {
	Tool    string
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to execute tool %q: %s", e.Tool, e.Message)
	}
	return fmt.Sprintf("failed to execute tool %q: %s: %v", e.Tool, e.Message, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
