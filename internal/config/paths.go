package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".codex-mcp-server"

// EnvHome overrides the base directory.
const EnvHome = "CODEX_MCP_HOME"

// Paths holds resolved filesystem paths for codex-mcp-server data.
type Paths struct {
	Base   string // ~/.codex-mcp-server
	Config string // ~/.codex-mcp-server/config.yaml
	Logs   string // ~/.codex-mcp-server/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If CODEX_MCP_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv(EnvHome)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// LogFile returns the default log file path.
func (p Paths) LogFile() string {
	return filepath.Join(p.Logs, DefaultServerName+".log")
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
