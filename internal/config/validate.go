package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if strings.TrimSpace(cfg.Codex.Command) == "" {
		issues = append(issues, ValidationIssue{
			Path:    "codex.command",
			Message: "command is required",
		})
	}
	if cfg.Codex.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "codex.timeoutSeconds",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Codex.TimeoutSeconds),
		})
	}
	if cfg.Codex.MaxOutputBytes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "codex.maxOutputBytes",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Codex.MaxOutputBytes),
		})
	}
	for i, arg := range cfg.Codex.ExtraArgs {
		if arg == "" {
			issues = append(issues, ValidationIssue{
				Path:    fmt.Sprintf("codex.extraArgs[%d]", i),
				Message: "argument must not be empty",
			})
		}
	}

	// Session validation
	if cfg.Session.MaxSessions < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "session.maxSessions",
			Message: fmt.Sprintf("must be >= 1, got %d", cfg.Session.MaxSessions),
		})
	}
	if cfg.Session.IdleMinutes < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "session.idleMinutes",
			Message: fmt.Sprintf("must be >= 1, got %d", cfg.Session.IdleMinutes),
		})
	}
	if cfg.Session.HistoryTurns < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.historyTurns",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Session.HistoryTurns),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	// Hooks validation
	hookSets := map[string][]HookEntry{
		"hooks.sessionCreated": cfg.Hooks.SessionCreated,
		"hooks.sessionDeleted": cfg.Hooks.SessionDeleted,
		"hooks.runCompleted":   cfg.Hooks.RunCompleted,
		"hooks.runFailed":      cfg.Hooks.RunFailed,
		"hooks.serverStart":    cfg.Hooks.ServerStart,
		"hooks.serverStop":     cfg.Hooks.ServerStop,
	}
	names := make([]string, 0, len(hookSets))
	for name := range hookSets {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for i, h := range hookSets[name] {
			if strings.TrimSpace(h.Command) == "" {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].command", name, i),
					Message: "command is required",
				})
			}
			if h.Timeout < 0 {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].timeout", name, i),
					Message: fmt.Sprintf("must be >= 0, got %d", h.Timeout),
				})
			}
		}
	}

	return issues
}
