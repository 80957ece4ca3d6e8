package config

// Config is the root configuration for codex-mcp-server.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Codex   CodexConfig   `yaml:"codex,omitempty"`
	Session SessionConfig `yaml:"session,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Hooks   HooksConfig   `yaml:"hooks,omitempty"`
}

// ServerConfig controls how the MCP server identifies itself.
type ServerConfig struct {
	Name string `yaml:"name,omitempty"`
}

// CodexConfig controls how the codex CLI is invoked.
type CodexConfig struct {
	Command string `yaml:"command,omitempty"` // binary name or path, default "codex"

	// DefaultModel is passed as --model when a request names none.
	// Empty lets codex pick its own default. CODEX_DEFAULT_MODEL overrides it.
	DefaultModel string `yaml:"defaultModel,omitempty"`

	// ExtraArgs are appended after the model/effort flags on every run.
	ExtraArgs []string `yaml:"extraArgs,omitempty"`

	TimeoutSeconds int               `yaml:"timeoutSeconds,omitempty"` // 0 = no timeout
	MaxOutputBytes int               `yaml:"maxOutputBytes,omitempty"`
	Env            map[string]string `yaml:"env,omitempty"` // extra environment, ${VAR} expanded
}

// SessionConfig defines conversation session limits.
type SessionConfig struct {
	MaxSessions  int `yaml:"maxSessions,omitempty"`
	IdleMinutes  int `yaml:"idleMinutes,omitempty"`
	HistoryTurns int `yaml:"historyTurns,omitempty"` // turns replayed when codex cannot resume
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// HooksConfig maps lifecycle events to shell commands.
type HooksConfig struct {
	SessionCreated []HookEntry `yaml:"sessionCreated,omitempty"`
	SessionDeleted []HookEntry `yaml:"sessionDeleted,omitempty"`
	RunCompleted   []HookEntry `yaml:"runCompleted,omitempty"`
	RunFailed      []HookEntry `yaml:"runFailed,omitempty"`
	ServerStart    []HookEntry `yaml:"serverStart,omitempty"`
	ServerStop     []HookEntry `yaml:"serverStop,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}
