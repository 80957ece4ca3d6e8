// Package store holds the in-memory conversation session store.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yimingll/codex-mcp-server/internal/domain"
	"github.com/yimingll/codex-mcp-server/internal/logging"
)

const (
	// DefaultMaxSessions is the session capacity when none is configured.
	DefaultMaxSessions = 100

	// DefaultTTL is how long an untouched session survives.
	DefaultTTL = 24 * time.Hour
)

// Option configures a SessionStore.
type Option func(*SessionStore)

// WithMaxSessions sets the capacity. Values below 1 keep the default.
func WithMaxSessions(n int) Option {
	return func(s *SessionStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithTTL sets the idle expiry. Values below or equal to zero keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) {
		s.now = now
	}
}

// WithLogger attaches a logger for eviction and expiry events.
func WithLogger(log *logging.Logger) Option {
	return func(s *SessionStore) {
		s.log = log.Sub("store")
	}
}

// entry is a stored session plus its insertion sequence, which breaks
// ordering ties between sessions with identical access times.
type entry struct {
	sess *domain.Session
	seq  uint64
}

// SessionStore is a bounded, expiring, concurrency-safe map of sessions.
//
// Every read or write that touches a session refreshes its LastAccessedAt,
// which drives both capacity eviction and idle expiry. Expiry is lazy: it
// runs on CreateSession and List, and Get-style lookups skip expired entries.
// Sessions handed out are clones; callers cannot mutate stored state.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	seq         uint64
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
	log         *logging.Logger
}

// NewSessionStore creates an empty store.
func NewSessionStore(opts ...Option) *SessionStore {
	s := &SessionStore{
		sessions:    make(map[string]*entry),
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultTTL,
		now:         time.Now,
		log:         logging.New(nil, "silent"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxSessions returns the configured capacity.
func (s *SessionStore) MaxSessions() int { return s.maxSessions }

// TTL returns the configured idle expiry.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// CreateSession sweeps expired sessions, inserts a new empty session and
// evicts the least recently accessed sessions beyond capacity.
func (s *SessionStore) CreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	now := s.now()
	s.seq++
	sess := &domain.Session{
		ID:             uuid.New().String(),
		CreatedAt:      now,
		LastAccessedAt: now,
		Turns:          []domain.Turn{},
	}
	s.sessions[sess.ID] = &entry{sess: sess, seq: s.seq}

	s.enforceCapacityLocked()

	s.log.Debug().Str("sessionId", sess.ID).Int("count", len(s.sessions)).Msg("session created")
	return sess.ID
}

// Get returns a copy of the session and refreshes its access time.
// A missing or expired session reports false.
func (s *SessionStore) Get(id string) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveLocked(id)
	if e == nil {
		return nil, false
	}
	e.sess.LastAccessedAt = s.now()
	return e.sess.Clone(), true
}

// Delete removes the session and reports whether it existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	s.log.Debug().Str("sessionId", id).Msg("session deleted")
	return true
}

// List sweeps expired sessions and returns copies of the rest, most
// recently accessed first. Listing does not refresh access times.
func (s *SessionStore) List() []*domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	ordered := s.orderedLocked()
	out := make([]*domain.Session, 0, len(ordered))
	for _, e := range ordered {
		out = append(out, e.sess.Clone())
	}
	return out
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// AddTurn appends a turn to the session. Missing sessions are ignored.
func (s *SessionStore) AddTurn(id string, turn domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveLocked(id)
	if e == nil {
		return
	}
	appendTurn(e.sess, turn)
	e.sess.LastAccessedAt = s.now()
}

// Reset clears the turns and conversation id, keeping identity and
// creation time. Missing sessions are ignored.
func (s *SessionStore) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveLocked(id)
	if e == nil {
		return
	}
	resetSession(e.sess)
	e.sess.LastAccessedAt = s.now()
}

// SetConversationID stores the codex conversation id for the session.
// Missing sessions are ignored.
func (s *SessionStore) SetConversationID(id, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveLocked(id)
	if e == nil {
		return
	}
	e.sess.ConversationID = conversationID
	e.sess.LastAccessedAt = s.now()
}

// ConversationID returns the session's codex conversation id, if any.
func (s *SessionStore) ConversationID(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveLocked(id)
	if e == nil || e.sess.ConversationID == "" {
		return "", false
	}
	e.sess.LastAccessedAt = s.now()
	return e.sess.ConversationID, true
}

// Apply records the outcome of a successful run in one step: optional
// reset, optional conversation id, then the turn. It reports false when the
// session no longer exists.
func (s *SessionStore) Apply(id string, u domain.SessionUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveLocked(id)
	if e == nil {
		return false
	}
	if u.Reset {
		resetSession(e.sess)
	}
	if u.ConversationID != "" {
		e.sess.ConversationID = u.ConversationID
	}
	appendTurn(e.sess, u.Turn)
	e.sess.LastAccessedAt = s.now()
	return true
}

// appendTurn appends to the session's turns, starting a fresh sequence if
// the stored one is unusable.
func appendTurn(sess *domain.Session, turn domain.Turn) {
	if sess.Turns == nil {
		sess.Turns = []domain.Turn{}
	}
	sess.Turns = append(sess.Turns, turn)
}

func resetSession(sess *domain.Session) {
	sess.Turns = []domain.Turn{}
	sess.ConversationID = ""
}

// liveLocked returns the entry for id, dropping it if it has expired.
// Caller must hold mu.
func (s *SessionStore) liveLocked(id string) *entry {
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if s.expiredLocked(e, s.now()) {
		delete(s.sessions, id)
		s.log.Debug().Str("sessionId", id).Msg("session expired")
		return nil
	}
	return e
}

func (s *SessionStore) expiredLocked(e *entry, now time.Time) bool {
	return now.Sub(e.sess.LastAccessedAt) > s.ttl
}

// sweepLocked removes every expired session. Caller must hold mu.
func (s *SessionStore) sweepLocked() {
	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if s.expiredLocked(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Debug().Int("removed", removed).Msg("expired sessions swept")
	}
}

// enforceCapacityLocked evicts exactly len-max sessions, taken from the tail
// of the listing order. Caller must hold mu.
func (s *SessionStore) enforceCapacityLocked() {
	if len(s.sessions) <= s.maxSessions {
		return
	}
	ordered := s.orderedLocked()
	for _, e := range ordered[s.maxSessions:] {
		delete(s.sessions, e.sess.ID)
		s.log.Debug().Str("sessionId", e.sess.ID).Msg("session evicted")
	}
}

// orderedLocked returns entries by LastAccessedAt descending; ties go to
// the more recently created session. Caller must hold mu.
func (s *SessionStore) orderedLocked() []*entry {
	ordered := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.sess.LastAccessedAt.Equal(b.sess.LastAccessedAt) {
			return a.sess.LastAccessedAt.After(b.sess.LastAccessedAt)
		}
		return a.seq > b.seq
	})
	return ordered
}
