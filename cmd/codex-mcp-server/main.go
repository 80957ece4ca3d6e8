package main

import (
	"fmt"
	"os"

	"github.com/yimingll/codex-mcp-server/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "codex-mcp-server:", err)
		os.Exit(1)
	}
}
