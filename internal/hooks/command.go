package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/yimingll/codex-mcp-server/internal/config"
)

// DefaultCommandTimeout bounds a shell hook that sets no timeout.
const DefaultCommandTimeout = 10 * time.Second

// EnvEvent names the event in a shell hook's environment.
const EnvEvent = "CODEX_MCP_EVENT"

// CommandHandler returns a Handler that runs command through `sh -c` with
// the JSON payload on stdin. Its output is captured and only reported on
// failure; it never reaches the server's stdout.
func CommandHandler(command string, timeout time.Duration) Handler {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return func(ctx context.Context, p Payload) error {
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Stdin = bytes.NewReader(body)
		cmd.Env = append(os.Environ(), EnvEvent+"="+p.Event)

		out, err := cmd.CombinedOutput()
		if err != nil {
			if msg := strings.TrimSpace(string(out)); msg != "" {
				return fmt.Errorf("hook command %q: %w: %s", command, err, msg)
			}
			return fmt.Errorf("hook command %q: %w", command, err)
		}
		return nil
	}
}

// RegisterCommands registers the shell hooks declared in cfg and returns
// how many were added.
func RegisterCommands(m *Manager, cfg config.HooksConfig) int {
	sets := []struct {
		event   string
		entries []config.HookEntry
	}{
		{EventSessionCreated, cfg.SessionCreated},
		{EventSessionDeleted, cfg.SessionDeleted},
		{EventRunCompleted, cfg.RunCompleted},
		{EventRunFailed, cfg.RunFailed},
		{EventServerStart, cfg.ServerStart},
		{EventServerStop, cfg.ServerStop},
	}

	n := 0
	for _, set := range sets {
		for i, h := range set.entries {
			name := fmt.Sprintf("config:%s[%d]", set.event, i)
			m.On(set.event, name, CommandHandler(h.Command, time.Duration(h.Timeout)*time.Millisecond))
			n++
		}
	}
	return n
}
