package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tillberg/autorestart"
	"github.com/yimingll/codex-mcp-server/internal/agent"
	"github.com/yimingll/codex-mcp-server/internal/config"
	"github.com/yimingll/codex-mcp-server/internal/hooks"
	"github.com/yimingll/codex-mcp-server/internal/llm"
	"github.com/yimingll/codex-mcp-server/internal/logging"
	"github.com/yimingll/codex-mcp-server/internal/server"
	"github.com/yimingll/codex-mcp-server/internal/store"
)

// serveOptions are command-line overrides applied on top of the config file.
type serveOptions struct {
	defaultModel string
	command      string
	watch        bool
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.defaultModel, "default-model", "", "model used when a request names none")
	cmd.Flags().StringVar(&o.command, "command", "", "codex binary name or path")
	cmd.Flags().BoolVar(&o.watch, "watch", false, "re-exec when the binary changes (development)")
}

func (o *serveOptions) apply(cfg *config.Config) {
	if o.defaultModel != "" {
		cfg.Codex.DefaultModel = o.defaultModel
	}
	if o.command != "" {
		cfg.Codex.Command = o.command
	}
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// loadConfig reads the config file and applies the --log-level override.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func runServe(ctx context.Context, opts *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts.apply(&cfg)

	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "config: %s\n", issue)
		}
		return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = paths.LogFile()
	}
	log, err := logging.Open(logging.Options{
		Level:        cfg.Logging.Level,
		File:         logFile,
		ConsoleStyle: cfg.Logging.ConsoleStyle,
	})
	if err != nil {
		return err
	}
	defer log.Close()

	if opts.watch {
		log.Info().Msg("watching binary for changes")
		go autorestart.RestartOnChange()
	}

	a := newApp(cfg, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("config", paths.Config).
		Str("command", cfg.Codex.Command).
		Str("defaultModel", cfg.Codex.DefaultModel).
		Int("hooks", a.hookCount).
		Msg("starting codex mcp server")

	return a.server.Run(ctx)
}

// app is the wired set of components behind the server.
type app struct {
	hooks     *hooks.Manager
	hookCount int
	sessions  *store.SessionStore
	gateway   *llm.ExecRunner
	runner    *agent.Runner
	server    *server.Server
}

func newApp(cfg config.Config, log *logging.Logger) *app {
	hm := hooks.NewManager(log)
	n := hooks.RegisterCommands(hm, cfg.Hooks)

	sessions := store.NewSessionStore(
		store.WithMaxSessions(cfg.Session.MaxSessions),
		store.WithTTL(cfg.Session.IdleTTL()),
		store.WithLogger(log),
	)

	gateway := llm.NewExecRunner(llm.ExecConfig{
		Timeout:        cfg.Codex.Timeout(),
		MaxOutputBytes: cfg.Codex.MaxOutputBytes,
		Env:            cfg.Codex.Env,
	}, log)

	runner := agent.NewRunner(agent.RunnerConfig{
		Command:      cfg.Codex.Command,
		DefaultModel: cfg.Codex.DefaultModel,
		ExtraArgs:    cfg.Codex.ExtraArgs,
		HistoryTurns: cfg.Session.HistoryTurns,
	}, gateway, sessions, hm, log)

	srv := server.New(runner, sessions, log,
		server.WithHooks(hm),
		server.WithName(cfg.Server.Name),
	)

	return &app{
		hooks:     hm,
		hookCount: n,
		sessions:  sessions,
		gateway:   gateway,
		runner:    runner,
		server:    srv,
	}
}
