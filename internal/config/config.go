package config

import (
	"fmt"
	"time"
)

// Default values applied to zero-valued fields.
const (
	DefaultServerName     = "codex-mcp-server"
	DefaultCommand        = "codex"
	DefaultMaxSessions    = 100
	DefaultIdleMinutes    = 24 * 60
	DefaultHistoryTurns   = 2
	DefaultMaxOutputBytes = 10 * 1024 * 1024
)

// DefaultExtraArgs lets codex run outside a git repository.
var DefaultExtraArgs = []string{"--skip-git-repo-check"}

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Name: DefaultServerName,
		},
		Codex: CodexConfig{
			Command:        DefaultCommand,
			ExtraArgs:      append([]string(nil), DefaultExtraArgs...),
			MaxOutputBytes: DefaultMaxOutputBytes,
		},
		Session: SessionConfig{
			MaxSessions:  DefaultMaxSessions,
			IdleMinutes:  DefaultIdleMinutes,
			HistoryTurns: DefaultHistoryTurns,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// IdleTTL returns the session idle expiry as a duration.
func (c SessionConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleMinutes) * time.Minute
}

// Timeout returns the per-run codex timeout, or zero for none.
func (c CodexConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
