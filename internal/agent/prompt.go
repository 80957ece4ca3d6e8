package agent

import (
	"strings"

	"github.com/yimingll/codex-mcp-server/internal/domain"
)

// Truncation limits for synthesized context lines, in characters.
const (
	codeContextLimit = 200
	textContextLimit = 100
)

// looksLikeCode is the content sniff that picks the context line style.
// It is a plain substring check.
func looksLikeCode(response string) bool {
	return strings.Contains(response, "function") || strings.Contains(response, "def ")
}

// contextLine renders one prior turn as a single line of context.
func contextLine(t domain.Turn) string {
	if looksLikeCode(t.Response) {
		return "Previous code context: " + truncate(t.Response, codeContextLimit) + "..."
	}
	return "Context: " + t.Prompt + " -> " + truncate(t.Response, textContextLimit) + "..."
}

// BuildContextPrompt prefixes prompt with context lines rendered from turns.
// With no turns the prompt is returned unchanged.
func BuildContextPrompt(turns []domain.Turn, prompt string) string {
	if len(turns) == 0 {
		return prompt
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, contextLine(t))
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nTask: ")
	b.WriteString(prompt)
	return b.String()
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
