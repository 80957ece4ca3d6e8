// Package server exposes the codex runner and session store as MCP tools.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yimingll/codex-mcp-server/internal/agent"
	"github.com/yimingll/codex-mcp-server/internal/domain"
	"github.com/yimingll/codex-mcp-server/internal/hooks"
	"github.com/yimingll/codex-mcp-server/internal/logging"
	"github.com/yimingll/codex-mcp-server/internal/version"
)

// DefaultName is the server name announced to MCP clients.
const DefaultName = version.Name

// CodexRunner runs codex requests. *agent.Runner satisfies it.
type CodexRunner interface {
	Run(ctx context.Context, req agent.Request) (*agent.RunResult, error)
	Help(ctx context.Context) (string, error)
}

// Sessions is the session lifecycle surface exposed as tools.
// *store.SessionStore satisfies it.
type Sessions interface {
	CreateSession() string
	Delete(id string) bool
	List() []*domain.Session
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithHooks sets the hook manager for lifecycle events.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// WithName overrides the announced server name.
func WithName(name string) ServerOption {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
	}
}

// WithVersion overrides the announced server version.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// Server is the codex MCP server.
type Server struct {
	name     string
	version  string
	runner   CodexRunner
	sessions Sessions
	hooks    *hooks.Manager
	log      *logging.Logger

	server    *mcp.Server
	startedAt time.Time
}

// New creates a server and registers its tools.
func New(runner CodexRunner, sessions Sessions, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		name:     DefaultName,
		version:  version.Version,
		runner:   runner,
		sessions: sessions,
		log:      log.Sub("server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    s.name,
		Version: s.version,
	}, nil)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server, for in-process transports.
func (s *Server) MCP() *mcp.Server { return s.server }

// Run serves MCP on stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, &mcp.StdioTransport{})
}

// Serve serves MCP over t until the session ends or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, t mcp.Transport) error {
	s.startedAt = time.Now()

	s.log.Info().
		Str("name", s.name).
		Str("version", s.version).
		Int("tools", len(toolNames)).
		Msg("mcp server starting")

	s.emit(ctx, hooks.EventServerStart, map[string]any{
		"name":    s.name,
		"version": s.version,
	})

	err := s.server.Run(ctx, t)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	s.log.Info().Dur("uptime", time.Since(s.startedAt)).Msg("mcp server stopped")
	s.emit(context.Background(), hooks.EventServerStop, map[string]any{
		"uptimeMs": time.Since(s.startedAt).Milliseconds(),
	})
	if s.hooks != nil {
		s.hooks.Wait()
	}
	return err
}

func (s *Server) emit(ctx context.Context, event string, data map[string]any) {
	if s.hooks == nil {
		return
	}
	s.hooks.Emit(ctx, event, data)
}
