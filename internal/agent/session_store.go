package agent

import "github.com/yimingll/codex-mcp-server/internal/domain"

// SessionStore is the part of the session store the runner needs.
// *store.SessionStore satisfies it.
type SessionStore interface {
	// Get returns a copy of the session and refreshes its access time.
	Get(id string) (*domain.Session, bool)

	// Apply records the outcome of one successful run atomically.
	// It reports false when the session no longer exists.
	Apply(id string, u domain.SessionUpdate) bool
}
