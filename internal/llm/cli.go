package llm

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/yimingll/codex-mcp-server/internal/logging"
)

// DefaultMaxOutputBytes caps each of stdout and stderr.
const DefaultMaxOutputBytes = 10 * 1024 * 1024

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren
// after the process itself has exited or been killed.
const waitDelay = 5 * time.Second

// ExecConfig configures an ExecRunner.
type ExecConfig struct {
	// Timeout bounds a single run. Zero means the caller's context alone
	// decides.
	Timeout time.Duration

	// MaxOutputBytes caps each captured stream. Zero or negative means
	// DefaultMaxOutputBytes.
	MaxOutputBytes int

	// Env is added to the inherited environment of the child process.
	Env map[string]string
}

// ExecRunner runs commands directly with os/exec. Arguments are passed as an
// argv vector and never through a shell.
type ExecRunner struct {
	cfg ExecConfig
	log *logging.Logger
}

// NewExecRunner creates a process runner.
func NewExecRunner(cfg ExecConfig, log *logging.Logger) *ExecRunner {
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return &ExecRunner{cfg: cfg, log: log.Sub("llm.exec")}
}

// Run executes command with args and waits for it to finish.
//
// A process that exits non-zero but wrote to stdout is reported as a
// partial success. A run that was cancelled or timed out is always an
// error, whatever it printed.
func (r *ExecRunner) Run(ctx context.Context, command string, args []string) (*Result, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	r.log.Debug().
		Str("cmd", command).
		Strs("args", args).
		Msg("executing")

	start := time.Now()

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.WaitDelay = waitDelay
	if len(r.cfg.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), r.cfg.Env)
	}

	stdout := newCappedBuffer(r.cfg.MaxOutputBytes)
	stderr := newCappedBuffer(r.cfg.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()

	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if res.Stderr != "" {
		r.log.Debug().Str("cmd", command).Str("stderr", res.Stderr).Msg("command stderr")
	}
	if stdout.Truncated() {
		r.log.Warn().
			Str("cmd", command).
			Int("limit", r.cfg.MaxOutputBytes).
			Msg("stdout exceeded buffer cap, output truncated")
		res.Partial = true
	}

	if runErr == nil {
		r.log.Debug().
			Str("cmd", command).
			Int("stdoutBytes", len(res.Stdout)).
			Dur("duration", res.Duration).
			Msg("command done")
		return res, nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	res.ExitCode = exitCode

	if ctxErr := ctx.Err(); ctxErr != nil {
		r.log.Warn().
			Str("cmd", command).
			Dur("duration", res.Duration).
			Err(ctxErr).
			Msg("command cancelled")
		return nil, &CommandError{
			Command:  command,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   res.Stderr,
			Err:      ctxErr,
		}
	}

	if exitCode >= 0 && res.Stdout != "" {
		r.log.Warn().
			Str("cmd", command).
			Int("exitCode", exitCode).
			Msg("command failed but produced output, using stdout")
		res.Partial = true
		return res, nil
	}

	r.log.Error().
		Str("cmd", command).
		Int("exitCode", exitCode).
		Err(runErr).
		Msg("command failed")
	return nil, &CommandError{
		Command:  command,
		Args:     args,
		ExitCode: exitCode,
		Stderr:   res.Stderr,
		Err:      runErr,
	}
}

// mergeEnv appends extra variables after base. os/exec keeps the last value
// for duplicate keys, so extra wins.
func mergeEnv(base []string, extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	env := slices.Clone(base)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

// cappedBuffer keeps at most limit bytes and silently discards the rest, so
// a chatty child never blocks on a full pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	room := c.limit - c.buf.Len()
	if room <= 0 {
		if len(p) > 0 {
			c.truncated = true
		}
		return len(p), nil
	}
	if len(p) > room {
		c.buf.Write(p[:room])
		c.truncated = true
		return len(p), nil
	}
	c.buf.Write(p)
	return len(p), nil
}

func (c *cappedBuffer) String() string { return c.buf.String() }

func (c *cappedBuffer) Truncated() bool { return c.truncated }

// CLIExists checks whether a CLI command is available in PATH.
func CLIExists(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

// CommandPath resolves command the way exec would, for status output.
func CommandPath(command string) (string, bool) {
	p, err := exec.LookPath(command)
	if err != nil {
		return "", false
	}
	return p, true
}
