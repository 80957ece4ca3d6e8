package agent

import (
	"fmt"
	"strings"
)

// ReasoningEffort is the codex model_reasoning_effort setting.
type ReasoningEffort string

// Reasoning effort levels, lowest first.
const (
	EffortMinimal ReasoningEffort = "minimal"
	EffortLow     ReasoningEffort = "low"
	EffortMedium  ReasoningEffort = "medium"
	EffortHigh    ReasoningEffort = "high"
)

// ReasoningEfforts lists the accepted levels in ascending order.
var ReasoningEfforts = []ReasoningEffort{EffortMinimal, EffortLow, EffortMedium, EffortHigh}

// Rank returns the position of e in ReasoningEfforts, or -1 if e is not a
// known level.
func (e ReasoningEffort) Rank() int {
	for i, lvl := range ReasoningEfforts {
		if lvl == e {
			return i
		}
	}
	return -1
}

// Valid reports whether e is a known level.
func (e ReasoningEffort) Valid() bool { return e.Rank() >= 0 }

// ParseReasoningEffort accepts the empty string (no setting) or one of the
// known levels.
func ParseReasoningEffort(s string) (ReasoningEffort, error) {
	if s == "" {
		return "", nil
	}
	e := ReasoningEffort(s)
	if !e.Valid() {
		names := make([]string, len(ReasoningEfforts))
		for i, lvl := range ReasoningEfforts {
			names[i] = string(lvl)
		}
		return "", fmt.Errorf("reasoningEffort must be one of %s, got %q", strings.Join(names, ", "), s)
	}
	return e, nil
}

// Strategy is how a request carries conversational context to codex.
type Strategy string

const (
	// StrategyStateless runs without a session.
	StrategyStateless Strategy = "stateless"
	// StrategySynthesized replays recent turns inside the prompt.
	StrategySynthesized Strategy = "synthesized"
	// StrategyResume resumes codex's own conversation.
	StrategyResume Strategy = "resume"
)

// DefaultExtraArgs are appended when RunnerConfig.ExtraArgs is nil.
var DefaultExtraArgs = []string{"--skip-git-repo-check"}

// buildArgs assembles the codex argument list. The prompt is always last.
func buildArgs(conversationID, model string, effort ReasoningEffort, extra []string, prompt string) []string {
	args := make([]string, 0, 8+len(extra))
	if conversationID != "" {
		args = append(args, "resume", conversationID)
	} else {
		args = append(args, "exec")
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	if effort != "" {
		args = append(args, "-c", "model_reasoning_effort="+string(effort))
	}
	args = append(args, extra...)
	args = append(args, prompt)
	return args
}
