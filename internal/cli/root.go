package cli

import (
	"github.com/spf13/cobra"
	"github.com/yimingll/codex-mcp-server/internal/config"
	"github.com/yimingll/codex-mcp-server/internal/version"
)

var (
	cfgFile  string
	logLevel string

	// resolved in PersistentPreRunE
	paths config.Paths
)

func newRootCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   version.Name,
		Short: "MCP server for the Codex CLI with conversation sessions",
		Long: "codex-mcp-server exposes the Codex CLI to MCP clients over stdio. " +
			"Sessions keep conversational context across calls by resuming codex's own " +
			"conversation or replaying recent turns. Run without a subcommand to serve.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			return nil
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.codex-mcp-server/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	opts.bind(cmd)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
