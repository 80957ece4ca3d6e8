package server

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yimingll/codex-mcp-server/internal/agent"
)

// Tool names.
const (
	ToolCodex         = "codex"
	ToolPing          = "ping"
	ToolHelp          = "help"
	ToolListSessions  = "listSessions"
	ToolCreateSession = "createSession"
	ToolDeleteSession = "deleteSession"
)

var toolNames = []string{
	ToolCodex,
	ToolPing,
	ToolHelp,
	ToolListSessions,
	ToolCreateSession,
	ToolDeleteSession,
}

// CodexArgs is the input of the codex tool.
type CodexArgs struct {
	Prompt          string `json:"prompt" jsonschema:"The coding task, question, or analysis request"`
	SessionID       string `json:"sessionId,omitempty" jsonschema:"Optional session ID for conversational context (from createSession)"`
	ResetSession    bool   `json:"resetSession,omitempty" jsonschema:"Reset the session history before processing this request"`
	Model           string `json:"model,omitempty" jsonschema:"Model to use (defaults to the server's configured model, then codex's own default)"`
	ReasoningEffort string `json:"reasoningEffort,omitempty" jsonschema:"Reasoning effort: minimal, low, medium or high"`
}

// PingArgs is the input of the ping tool.
type PingArgs struct {
	Message string `json:"message,omitempty" jsonschema:"Message to echo back (default: pong)"`
}

// EmptyArgs is the input of tools that take no arguments.
type EmptyArgs struct{}

// DeleteSessionArgs is the input of the deleteSession tool.
type DeleteSessionArgs struct {
	SessionID string `json:"sessionId" jsonschema:"ID of the session to delete"`
}

// codexInputSchema infers the codex schema and pins reasoningEffort to the
// known levels.
func codexInputSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[CodexArgs](nil)
	if err != nil {
		return nil, err
	}
	effort, ok := schema.Properties["reasoningEffort"]
	if !ok {
		return nil, fmt.Errorf("codex schema: reasoningEffort property missing")
	}
	for _, e := range agent.ReasoningEfforts {
		effort.Enum = append(effort.Enum, string(e))
	}
	return schema, nil
}

func boolPtr(b bool) *bool { return &b }

// registerTools adds all tools to the MCP server.
func (s *Server) registerTools() {
	codexSchema, err := codexInputSchema()
	if err != nil {
		// Inferred from a fixed struct; only a programming error gets here.
		panic(err)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolCodex,
		Description: "Execute the Codex CLI non-interactively for AI-assisted coding. " +
			"Pass sessionId to keep conversational context across calls: the server resumes " +
			"codex's own conversation when it can and replays recent turns otherwise. " +
			"Without sessionId every call is stateless.",
		InputSchema: codexSchema,
		Annotations: &mcp.ToolAnnotations{
			Title:         "Run Codex",
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleCodex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolPing,
		Description: "Test MCP server connection. Echoes the message back.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Ping",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, s.handlePing)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolHelp,
		Description: "Get Codex CLI help information.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Codex Help",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, s.handleHelp)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListSessions,
		Description: "List all active conversation sessions with metadata, most recently used first.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Sessions",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, s.handleListSessions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolCreateSession,
		Description: "Create a conversation session and return its ID for use as sessionId in codex calls.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Create Session",
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(false),
		},
	}, s.handleCreateSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolDeleteSession,
		Description: "Delete a conversation session and its history.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Session",
			DestructiveHint: boolPtr(true),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(false),
		},
	}, s.handleDeleteSession)
}
