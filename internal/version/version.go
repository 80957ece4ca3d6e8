package version

import (
	"fmt"
	"runtime"
)

// Name is the binary and MCP server name.
const Name = "codex-mcp-server"

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/yimingll/codex-mcp-server/internal/version.Version=1.0.0
//	  -X github.com/yimingll/codex-mcp-server/internal/version.Commit=abc123
//	  -X github.com/yimingll/codex-mcp-server/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s, %s/%s)",
		Name, Version, short(Commit), Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
