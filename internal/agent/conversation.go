package agent

import "regexp"

// conversationIDPattern matches the "conversation id: <token>" banner codex
// prints on stderr when a new conversation starts. Case, spacing and a
// "_" or "-" between the two words are tolerated.
var conversationIDPattern = regexp.MustCompile(`(?i)conversation[\s_-]*id\s*:\s*([A-Za-z0-9-]+)`)

// ExtractConversationID finds the first conversation id in codex's
// diagnostic output.
func ExtractConversationID(diagnostics string) (string, bool) {
	m := conversationIDPattern.FindStringSubmatch(diagnostics)
	if m == nil {
		return "", false
	}
	return m[1], true
}
