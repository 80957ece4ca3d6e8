// Package agent turns tool requests into codex invocations and keeps the
// result consistent with session state.
package agent

import (
	"context"
	"time"

	"github.com/yimingll/codex-mcp-server/internal/domain"
	"github.com/yimingll/codex-mcp-server/internal/hooks"
	"github.com/yimingll/codex-mcp-server/internal/llm"
	"github.com/yimingll/codex-mcp-server/internal/logging"
)

// Tool names used in errors raised by the runner.
const (
	ToolCodex = "codex"
	ToolHelp  = "help"
)

// Placeholder responses for empty codex output.
const (
	NoOutputText = "No output from Codex"
	NoHelpText   = "No help information available"
)

// DefaultHistoryTurns is how many recent turns are replayed when codex
// cannot resume a conversation itself.
const DefaultHistoryTurns = 2

// RunnerConfig configures the runner.
type RunnerConfig struct {
	// Command is the codex binary. Defaults to "codex".
	Command string

	// DefaultModel is used when a request names no model. Empty leaves the
	// choice to codex.
	DefaultModel string

	// ExtraArgs are appended before the prompt on every run. Nil means
	// DefaultExtraArgs; an empty non-nil slice adds nothing.
	ExtraArgs []string

	// HistoryTurns is how many turns feed a synthesized prompt.
	HistoryTurns int
}

// Request is one codex tool call.
type Request struct {
	Prompt          string
	SessionID       string
	ResetSession    bool
	Model           string
	ReasoningEffort ReasoningEffort
}

// Validate checks the request shape.
func (req Request) Validate() error {
	if req.ReasoningEffort != "" && !req.ReasoningEffort.Valid() {
		_, err := ParseReasoningEffort(string(req.ReasoningEffort))
		return &ValidationError{Tool: ToolCodex, Message: err.Error()}
	}
	return nil
}

// RunResult is the outcome of one codex run.
type RunResult struct {
	Response       string        `json:"response"`
	SessionID      string        `json:"sessionId,omitempty"`
	Model          string        `json:"model,omitempty"`
	Strategy       Strategy      `json:"strategy"`
	ConversationID string        `json:"conversationId,omitempty"`
	Partial        bool          `json:"partial,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// plan is the invocation decided for a request before codex runs.
type plan struct {
	strategy       Strategy
	sessionID      string
	conversationID string
	prompt         string
	model          string
}

// Runner is the context continuity engine. It runs codex exactly once per
// request.
type Runner struct {
	cfg      RunnerConfig
	gateway  llm.Runner
	sessions SessionStore
	hooks    *hooks.Manager
	log      *logging.Logger
	now      func() time.Time
}

// NewRunner creates a runner. hm may be nil.
func NewRunner(cfg RunnerConfig, gateway llm.Runner, sessions SessionStore, hm *hooks.Manager, log *logging.Logger) *Runner {
	if cfg.Command == "" {
		cfg.Command = "codex"
	}
	if cfg.ExtraArgs == nil {
		cfg.ExtraArgs = DefaultExtraArgs
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = DefaultHistoryTurns
	}
	return &Runner{
		cfg:      cfg,
		gateway:  gateway,
		sessions: sessions,
		hooks:    hm,
		log:      log.Sub("agent"),
		now:      time.Now,
	}
}

// Config returns the effective runner configuration.
func (r *Runner) Config() RunnerConfig { return r.cfg }

// Run executes a codex request.
//
// Without a session id the store is never touched. With one, the session is
// only mutated after codex succeeds: the reset (if asked for), the captured
// conversation id and the new turn are committed together.
func (r *Runner) Run(ctx context.Context, req Request) (*RunResult, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := r.plan(req)
	args := buildArgs(p.conversationID, p.model, req.ReasoningEffort, r.cfg.ExtraArgs, p.prompt)

	r.log.Info().
		Str("sessionId", p.sessionID).
		Str("strategy", string(p.strategy)).
		Str("model", p.model).
		Bool("reset", req.ResetSession).
		Msg("running codex")

	res, err := r.gateway.Run(ctx, r.cfg.Command, args)
	if err != nil {
		r.log.Error().
			Str("sessionId", p.sessionID).
			Str("strategy", string(p.strategy)).
			Err(err).
			Msg("codex run failed")
		r.emit(ctx, hooks.EventRunFailed, map[string]any{
			"sessionId": p.sessionID,
			"strategy":  string(p.strategy),
			"error":     err.Error(),
		})
		return nil, &ExecutionError{Tool: ToolCodex, Message: "failed to execute codex command", Err: err}
	}

	response := res.Stdout
	if response == "" {
		response = NoOutputText
	}

	result := &RunResult{
		Response:  response,
		SessionID: p.sessionID,
		Model:     p.model,
		Strategy:  p.strategy,
		Partial:   res.Partial,
	}

	if p.sessionID != "" {
		update := domain.SessionUpdate{
			Reset: req.ResetSession,
			Turn: domain.Turn{
				Prompt:    req.Prompt,
				Response:  response,
				Timestamp: r.now(),
			},
		}
		// A resumed conversation keeps its id.
		if p.strategy != StrategyResume {
			if id, ok := ExtractConversationID(res.Stderr); ok {
				update.ConversationID = id
				result.ConversationID = id
			}
		}
		if !r.sessions.Apply(p.sessionID, update) {
			r.log.Warn().Str("sessionId", p.sessionID).Msg("session not found, turn not recorded")
		}
	}

	result.Duration = time.Since(start)

	r.log.Info().
		Str("sessionId", p.sessionID).
		Str("strategy", string(p.strategy)).
		Str("conversationId", result.ConversationID).
		Bool("partial", result.Partial).
		Dur("duration", result.Duration).
		Msg("codex run done")

	r.emit(ctx, hooks.EventRunCompleted, map[string]any{
		"sessionId":      p.sessionID,
		"strategy":       string(p.strategy),
		"model":          p.model,
		"conversationId": result.ConversationID,
		"durationMs":     result.Duration.Milliseconds(),
	})

	return result, nil
}

// plan decides the strategy, model and effective prompt for req.
func (r *Runner) plan(req Request) plan {
	p := plan{
		strategy: StrategyStateless,
		prompt:   req.Prompt,
		model:    req.Model,
	}
	if p.model == "" {
		p.model = r.cfg.DefaultModel
	}

	if req.SessionID == "" {
		return p
	}
	p.sessionID = req.SessionID
	p.strategy = StrategySynthesized

	// A reset session starts over: nothing to resume, nothing to replay.
	if req.ResetSession {
		return p
	}

	sess, ok := r.sessions.Get(req.SessionID)
	if !ok {
		return p
	}
	if sess.ConversationID != "" {
		p.strategy = StrategyResume
		p.conversationID = sess.ConversationID
		return p
	}
	p.prompt = BuildContextPrompt(sess.LastTurns(r.cfg.HistoryTurns), req.Prompt)
	return p
}

// Help returns codex's own usage text.
func (r *Runner) Help(ctx context.Context) (string, error) {
	res, err := r.gateway.Run(ctx, r.cfg.Command, []string{"--help"})
	if err != nil {
		return "", &ExecutionError{Tool: ToolHelp, Message: "failed to execute help command", Err: err}
	}
	if res.Stdout == "" {
		return NoHelpText, nil
	}
	return res.Stdout, nil
}

func (r *Runner) emit(ctx context.Context, event string, data map[string]any) {
	if r.hooks == nil {
		return
	}
	r.hooks.EmitAsync(context.WithoutCancel(ctx), event, data)
}
