package llm

import (
	"context"
	"slices"
	"sync"
)

// MockCall records one invocation seen by MockRunner.
type MockCall struct {
	Command string
	Args    []string
}

// MockRunner is a test double for Runner.
type MockRunner struct {
	RunFunc func(ctx context.Context, command string, args []string) (*Result, error)

	mu    sync.Mutex
	calls []MockCall
}

func (m *MockRunner) Run(ctx context.Context, command string, args []string) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Command: command, Args: slices.Clone(args)})
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, command, args)
	}
	return &Result{Stdout: "mock response"}, nil
}

// Calls returns a copy of every recorded invocation.
func (m *MockRunner) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// CallCount returns how many times Run was called.
func (m *MockRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent invocation.
func (m *MockRunner) LastCall() (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return MockCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}
