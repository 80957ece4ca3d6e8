package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by applyEnvOverrides.
const (
	EnvDefaultModel = "CODEX_DEFAULT_MODEL"
	EnvCommand      = "CODEX_MCP_COMMAND"
	EnvLogLevel     = "CODEX_MCP_LOG_LEVEL"
	EnvMaxSessions  = "CODEX_MCP_MAX_SESSIONS"
	EnvIdleMinutes  = "CODEX_MCP_IDLE_MINUTES"
	EnvTimeout      = "CODEX_MCP_TIMEOUT_SECONDS"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandCodexEnv resolves ${VAR} references in the codex child environment,
// so API keys can stay out of the config file.
func expandCodexEnv(cfg *Config) {
	for k, v := range cfg.Codex.Env {
		cfg.Codex.Env[k] = expandEnvVars(v)
	}
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandCodexEnv(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = DefaultServerName
	}
	if cfg.Codex.Command == "" {
		cfg.Codex.Command = DefaultCommand
	}
	if cfg.Codex.MaxOutputBytes == 0 {
		cfg.Codex.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = DefaultMaxSessions
	}
	if cfg.Session.IdleMinutes == 0 {
		cfg.Session.IdleMinutes = DefaultIdleMinutes
	}
	if cfg.Session.HistoryTurns == 0 {
		cfg.Session.HistoryTurns = DefaultHistoryTurns
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads CODEX_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvDefaultModel); v != "" {
		cfg.Codex.DefaultModel = v
	}
	if v := os.Getenv(EnvCommand); v != "" {
		cfg.Codex.Command = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMaxSessions); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.MaxSessions = n
		}
	}
	if v := os.Getenv(EnvIdleMinutes); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.IdleMinutes = n
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Codex.TimeoutSeconds = n
		}
	}
}
