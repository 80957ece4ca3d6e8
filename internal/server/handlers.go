package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yimingll/codex-mcp-server/internal/agent"
	"github.com/yimingll/codex-mcp-server/internal/domain"
	"github.com/yimingll/codex-mcp-server/internal/hooks"
)

// Fixed response texts.
const (
	PingDefault      = "pong"
	NoSessionsText   = "No active sessions"
	sessionNotFound  = "Session %s not found"
	sessionDeletedOK = "Session %s deleted"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// toolError renders err as a failed tool result.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.log.Warn().Str("tool", tool).Err(err).Msg("tool call failed")
	res := textResult(fmt.Sprintf("Error in tool %q: %v", tool, err))
	res.IsError = true
	return res
}

func (s *Server) handleCodex(ctx context.Context, _ *mcp.CallToolRequest, args CodexArgs) (*mcp.CallToolResult, any, error) {
	effort, err := agent.ParseReasoningEffort(args.ReasoningEffort)
	if err != nil {
		return s.toolError(ToolCodex, &agent.ValidationError{Tool: ToolCodex, Message: err.Error()}), nil, nil
	}

	res, err := s.runner.Run(ctx, agent.Request{
		Prompt:          args.Prompt,
		SessionID:       args.SessionID,
		ResetSession:    args.ResetSession,
		Model:           args.Model,
		ReasoningEffort: effort,
	})
	if err != nil {
		return s.toolError(ToolCodex, err), nil, nil
	}

	out := textResult(res.Response)
	meta := mcp.Meta{}
	if res.SessionID != "" {
		meta["sessionId"] = res.SessionID
	}
	if res.Model != "" {
		meta["model"] = res.Model
	}
	if len(meta) > 0 {
		out.Meta = meta
	}
	return out, nil, nil
}

func (s *Server) handlePing(_ context.Context, _ *mcp.CallToolRequest, args PingArgs) (*mcp.CallToolResult, any, error) {
	msg := args.Message
	if msg == "" {
		msg = PingDefault
	}
	return textResult(msg), nil, nil
}

func (s *Server) handleHelp(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, any, error) {
	text, err := s.runner.Help(ctx)
	if err != nil {
		return s.toolError(ToolHelp, err), nil, nil
	}
	return textResult(text), nil, nil
}

func (s *Server) handleListSessions(_ context.Context, _ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, any, error) {
	sessions := s.sessions.List()
	if len(sessions) == 0 {
		return textResult(NoSessionsText), nil, nil
	}

	infos := make([]domain.SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info())
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return s.toolError(ToolListSessions, &agent.ExecutionError{
			Tool:    ToolListSessions,
			Message: "failed to list sessions",
			Err:     err,
		}), nil, nil
	}
	return textResult(string(data)), nil, nil
}

func (s *Server) handleCreateSession(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, any, error) {
	id := s.sessions.CreateSession()
	s.log.Info().Str("sessionId", id).Msg("session created")
	s.emitAsync(ctx, hooks.EventSessionCreated, map[string]any{"sessionId": id})

	out := textResult(id)
	out.Meta = mcp.Meta{"sessionId": id}
	return out, nil, nil
}

func (s *Server) handleDeleteSession(ctx context.Context, _ *mcp.CallToolRequest, args DeleteSessionArgs) (*mcp.CallToolResult, any, error) {
	id := strings.TrimSpace(args.SessionID)
	if id == "" {
		return s.toolError(ToolDeleteSession, &agent.ValidationError{
			Tool:    ToolDeleteSession,
			Message: "sessionId is required",
		}), nil, nil
	}

	if !s.sessions.Delete(id) {
		return textResult(fmt.Sprintf(sessionNotFound, id)), nil, nil
	}

	s.log.Info().Str("sessionId", id).Msg("session deleted")
	s.emitAsync(ctx, hooks.EventSessionDeleted, map[string]any{"sessionId": id})
	return textResult(fmt.Sprintf(sessionDeletedOK, id)), nil, nil
}

func (s *Server) emitAsync(ctx context.Context, event string, data map[string]any) {
	if s.hooks == nil {
		return
	}
	s.hooks.EmitAsync(context.WithoutCancel(ctx), event, data)
}
