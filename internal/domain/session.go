package domain

import "time"

// Turn is one completed prompt/response exchange recorded in a session.
type Turn struct {
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a caller-scoped unit of conversational memory.
type Session struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
	Turns          []Turn    `json:"turns,omitempty"`

	// ConversationID is the codex-issued token used with `codex resume`.
	// Empty when the session has no native conversation yet.
	ConversationID string `json:"conversationId,omitempty"`
}

// Clone returns a copy whose turn slice does not alias the original.
func (s *Session) Clone() *Session {
	c := *s
	if s.Turns != nil {
		c.Turns = make([]Turn, len(s.Turns))
		copy(c.Turns, s.Turns)
	}
	return &c
}

// LastTurns returns up to n of the most recent turns, oldest first.
func (s *Session) LastTurns(n int) []Turn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// Info summarises the session for listing.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt.UTC().Format(time.RFC3339Nano),
		LastAccessedAt: s.LastAccessedAt.UTC().Format(time.RFC3339Nano),
		TurnCount:      len(s.Turns),
	}
}

// SessionInfo is the listing shape exposed by the listSessions tool.
type SessionInfo struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"createdAt"`
	LastAccessedAt string `json:"lastAccessedAt"`
	TurnCount      int    `json:"turnCount"`
}

// SessionUpdate is the state change recorded for one successful run on a
// session. It is applied as a single atomic mutation.
type SessionUpdate struct {
	// Reset clears turns and the conversation id before the rest applies.
	Reset bool

	// ConversationID, when non-empty, replaces the stored conversation id.
	ConversationID string

	Turn Turn
}
