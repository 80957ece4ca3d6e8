package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yimingll/codex-mcp-server/internal/config"
	"github.com/yimingll/codex-mcp-server/internal/llm"
	"github.com/yimingll/codex-mcp-server/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show codex-mcp-server status and configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (commit %s)\n\n", version.Name, version.Version, version.Commit)

			fmt.Fprintf(out, "Config:  %s", paths.Config)
			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprint(out, " (not found, using defaults)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Logs:    %s\n\n", paths.Logs)

			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}

			if p, ok := llm.CommandPath(cfg.Codex.Command); ok {
				fmt.Fprintf(out, "Codex:   %s\n", p)
			} else {
				fmt.Fprintf(out, "Codex:   %s (not found on PATH)\n", cfg.Codex.Command)
			}

			model := cfg.Codex.DefaultModel
			if model == "" {
				model = "(codex default)"
			}
			timeout := "none"
			if d := cfg.Codex.Timeout(); d > 0 {
				timeout = d.String()
			}
			fmt.Fprintf(out, "Model:   %s\n", model)
			fmt.Fprintf(out, "Args:    %s\n", strings.Join(cfg.Codex.ExtraArgs, " "))
			fmt.Fprintf(out, "Timeout: %s\n", timeout)
			fmt.Fprintf(out, "Session: max=%d idle=%s history=%d\n",
				cfg.Session.MaxSessions, cfg.Session.IdleTTL(), cfg.Session.HistoryTurns)

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}
}
