package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yimingll/codex-mcp-server/internal/domain"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testStore(t *testing.T, opts ...Option) (*SessionStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewSessionStore(opts...), clock
}

func turn(prompt, response string) domain.Turn {
	return domain.Turn{Prompt: prompt, Response: response, Timestamp: time.Now()}
}

// --- Lifecycle tests ---

func TestNewSessionStore_Defaults(t *testing.T) {
	s := NewSessionStore()
	assert.Equal(t, DefaultMaxSessions, s.MaxSessions())
	assert.Equal(t, DefaultTTL, s.TTL())
	assert.Equal(t, 0, s.Len())
}

func TestNewSessionStore_IgnoresInvalidOptions(t *testing.T) {
	s := NewSessionStore(WithMaxSessions(0), WithTTL(-time.Second))
	assert.Equal(t, DefaultMaxSessions, s.MaxSessions())
	assert.Equal(t, DefaultTTL, s.TTL())
}

func TestCreateSession(t *testing.T) {
	s, clock := testStore(t)

	id := s.CreateSession()
	require.NotEmpty(t, id)

	sess, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, sess.ID)
	assert.Empty(t, sess.Turns)
	assert.Empty(t, sess.ConversationID)
	assert.Equal(t, clock.Now(), sess.CreatedAt)
	assert.Equal(t, clock.Now(), sess.LastAccessedAt)
}

func TestCreateSession_UniqueIDs(t *testing.T) {
	s, _ := testStore(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := s.CreateSession()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGet_NotFound(t *testing.T) {
	s, _ := testStore(t)
	sess, ok := s.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, sess)
}

func TestGet_RefreshesAccessTime(t *testing.T) {
	s, clock := testStore(t)
	id := s.CreateSession()

	clock.Advance(time.Minute)
	sess, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, clock.Now(), sess.LastAccessedAt)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, _ := testStore(t)
	id := s.CreateSession()
	s.AddTurn(id, turn("q", "a"))

	sess, ok := s.Get(id)
	require.True(t, ok)
	sess.Turns[0].Prompt = "mutated"
	sess.Turns = nil
	sess.ConversationID = "mutated"

	again, ok := s.Get(id)
	require.True(t, ok)
	require.Len(t, again.Turns, 1)
	assert.Equal(t, "q", again.Turns[0].Prompt)
	assert.Empty(t, again.ConversationID)
}

func TestDelete(t *testing.T) {
	s, _ := testStore(t)
	id := s.CreateSession()

	assert.True(t, s.Delete(id))
	assert.False(t, s.Delete(id), "second delete is a no-op")

	_, ok := s.Get(id)
	assert.False(t, ok)
}

// --- Turn / reset / conversation id tests ---

func TestAddTurn(t *testing.T) {
	s, clock := testStore(t)
	id := s.CreateSession()

	clock.Advance(time.Second)
	s.AddTurn(id, turn("first", "one"))
	s.AddTurn(id, turn("second", "two"))

	sess, ok := s.Get(id)
	require.True(t, ok)
	require.Len(t, sess.Turns, 2)
	assert.Equal(t, "first", sess.Turns[0].Prompt)
	assert.Equal(t, "two", sess.Turns[1].Response)
}

func TestAddTurn_MissingSession(t *testing.T) {
	s, _ := testStore(t)
	assert.NotPanics(t, func() { s.AddTurn("missing", turn("q", "a")) })
	assert.Equal(t, 0, s.Len())
}

func TestAddTurn_RepairsNilTurns(t *testing.T) {
	s, _ := testStore(t)
	id := s.CreateSession()

	s.mu.Lock()
	s.sessions[id].sess.Turns = nil
	s.mu.Unlock()

	s.AddTurn(id, turn("q", "a"))

	sess, ok := s.Get(id)
	require.True(t, ok)
	assert.Len(t, sess.Turns, 1)
}

func TestReset(t *testing.T) {
	s, clock := testStore(t)
	id := s.CreateSession()
	created, _ := s.Get(id)

	s.AddTurn(id, turn("q", "a"))
	s.SetConversationID(id, "abc-123")

	clock.Advance(time.Minute)
	s.Reset(id)

	sess, ok := s.Get(id)
	require.True(t, ok)
	assert.Empty(t, sess.Turns)
	assert.Empty(t, sess.ConversationID)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, created.CreatedAt, sess.CreatedAt)
}

func TestReset_Idempotent(t *testing.T) {
	s, _ := testStore(t)
	id := s.CreateSession()
	s.AddTurn(id, turn("q", "a"))
	s.SetConversationID(id, "abc-123")

	s.Reset(id)
	once, _ := s.Get(id)
	s.Reset(id)
	twice, _ := s.Get(id)

	assert.Equal(t, once.Turns, twice.Turns)
	assert.Equal(t, once.ConversationID, twice.ConversationID)
	_, ok := s.ConversationID(id)
	assert.False(t, ok)
}

func TestReset_MissingSession(t *testing.T) {
	s, _ := testStore(t)
	assert.NotPanics(t, func() { s.Reset("missing") })
}

func TestConversationID(t *testing.T) {
	s, _ := testStore(t)
	id := s.CreateSession()

	_, ok := s.ConversationID(id)
	assert.False(t, ok)

	s.SetConversationID(id, "abc-123")
	got, ok := s.ConversationID(id)
	require.True(t, ok)
	assert.Equal(t, "abc-123", got)
}

func TestConversationID_MissingSession(t *testing.T) {
	s, _ := testStore(t)
	s.SetConversationID("missing", "abc")
	_, ok := s.ConversationID("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestApply(t *testing.T) {
	s, _ := testStore(t)
	id := s.CreateSession()
	s.AddTurn(id, turn("old", "old"))
	s.SetConversationID(id, "old-conv")

	ok := s.Apply(id, domain.SessionUpdate{
		Reset:          true,
		ConversationID: "new-conv",
		Turn:           turn("new", "answer"),
	})
	require.True(t, ok)

	sess, _ := s.Get(id)
	require.Len(t, sess.Turns, 1)
	assert.Equal(t, "new", sess.Turns[0].Prompt)
	assert.Equal(t, "new-conv", sess.ConversationID)
}

func TestApply_KeepsConversationWhenEmpty(t *testing.T) {
	s, _ := testStore(t)
	id := s.CreateSession()
	s.SetConversationID(id, "conv")

	require.True(t, s.Apply(id, domain.SessionUpdate{Turn: turn("q", "a")}))

	got, ok := s.ConversationID(id)
	require.True(t, ok)
	assert.Equal(t, "conv", got)
}

func TestApply_ResetWithoutNewConversation(t *testing.T) {
	s, _ := testStore(t)
	id := s.CreateSession()
	s.SetConversationID(id, "conv")

	require.True(t, s.Apply(id, domain.SessionUpdate{Reset: true, Turn: turn("q", "a")}))

	_, ok := s.ConversationID(id)
	assert.False(t, ok)
}

func TestApply_MissingSession(t *testing.T) {
	s, _ := testStore(t)
	assert.False(t, s.Apply("missing", domain.SessionUpdate{Turn: turn("q", "a")}))
	assert.Equal(t, 0, s.Len())
}

// --- Listing tests ---

func TestList_OrderedByAccess(t *testing.T) {
	s, clock := testStore(t)

	a := s.CreateSession()
	clock.Advance(time.Second)
	b := s.CreateSession()
	clock.Advance(time.Second)
	c := s.CreateSession()

	clock.Advance(time.Second)
	s.AddTurn(a, turn("q", "a"))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{a, c, b}, ids(list))
}

func TestList_DoesNotRefreshAccess(t *testing.T) {
	s, clock := testStore(t)
	id := s.CreateSession()
	before, _ := s.Get(id)

	clock.Advance(time.Hour)
	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, before.LastAccessedAt, list[0].LastAccessedAt)
}

func TestList_Empty(t *testing.T) {
	s, _ := testStore(t)
	assert.Empty(t, s.List())
}

func TestList_TieBreakIsDeterministic(t *testing.T) {
	s, _ := testStore(t)
	first := s.CreateSession()
	second := s.CreateSession()
	third := s.CreateSession()

	for i := 0; i < 10; i++ {
		assert.Equal(t, []string{third, second, first}, ids(s.List()))
	}
}

// --- Capacity tests ---

func TestCapacity_EvictsLeastRecentlyAccessed(t *testing.T) {
	s, clock := testStore(t, WithMaxSessions(3))

	a := s.CreateSession()
	clock.Advance(time.Second)
	b := s.CreateSession()
	clock.Advance(time.Second)
	c := s.CreateSession()

	clock.Advance(time.Second)
	_, ok := s.Get(a)
	require.True(t, ok)

	clock.Advance(time.Second)
	d := s.CreateSession()

	assert.Equal(t, 3, s.Len())
	_, ok = s.Get(b)
	assert.False(t, ok, "b was least recently accessed")
	assert.ElementsMatch(t, []string{a, c, d}, ids(s.List()))
}

func TestCapacity_NeverExceeded(t *testing.T) {
	s, clock := testStore(t, WithMaxSessions(5))

	var created []string
	for i := 0; i < 20; i++ {
		clock.Advance(time.Millisecond)
		created = append(created, s.CreateSession())
		assert.LessOrEqual(t, s.Len(), 5)
	}

	assert.Equal(t, created[15:], reverse(ids(s.List())))
}

func TestCapacity_DefaultIsHundred(t *testing.T) {
	s, _ := testStore(t)
	for i := 0; i < DefaultMaxSessions+10; i++ {
		s.CreateSession()
	}
	assert.Equal(t, DefaultMaxSessions, s.Len())
}

// --- Expiry tests ---

func TestExpiry_ListSweeps(t *testing.T) {
	s, clock := testStore(t, WithTTL(time.Hour))

	old := s.CreateSession()
	clock.Advance(30 * time.Minute)
	fresh := s.CreateSession()

	clock.Advance(31 * time.Minute)

	assert.Equal(t, []string{fresh}, ids(s.List()))
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(old)
	assert.False(t, ok)
}

func TestExpiry_CreateSweeps(t *testing.T) {
	s, clock := testStore(t, WithTTL(time.Hour))
	s.CreateSession()
	s.CreateSession()

	clock.Advance(2 * time.Hour)
	s.CreateSession()

	assert.Equal(t, 1, s.Len())
}

func TestExpiry_GetHidesExpired(t *testing.T) {
	s, clock := testStore(t, WithTTL(time.Hour))
	id := s.CreateSession()
	s.SetConversationID(id, "conv")

	clock.Advance(time.Hour + time.Second)

	_, ok := s.Get(id)
	assert.False(t, ok)
	_, ok = s.ConversationID(id)
	assert.False(t, ok)
}

func TestExpiry_BoundaryIsInclusive(t *testing.T) {
	s, clock := testStore(t, WithTTL(time.Hour))
	id := s.CreateSession()

	clock.Advance(time.Hour)
	_, ok := s.Get(id)
	assert.True(t, ok, "exactly TTL idle is not yet expired")
}

func TestExpiry_AccessKeepsAlive(t *testing.T) {
	s, clock := testStore(t, WithTTL(time.Hour))
	id := s.CreateSession()

	for i := 0; i < 5; i++ {
		clock.Advance(50 * time.Minute)
		s.AddTurn(id, turn("q", "a"))
	}

	list := s.List()
	require.Len(t, list, 1)
	assert.Len(t, list[0].Turns, 5)
}

// --- Concurrency tests ---

func TestConcurrentTurns(t *testing.T) {
	s := NewSessionStore()
	id := s.CreateSession()

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Apply(id, domain.SessionUpdate{
					ConversationID: fmt.Sprintf("conv-%d", w),
					Turn:           turn(fmt.Sprintf("%d-%d", w, i), "a"),
				})
			}
		}(w)
	}
	wg.Wait()

	sess, ok := s.Get(id)
	require.True(t, ok)
	assert.Len(t, sess.Turns, workers*perWorker)
}

func TestConcurrentCreateAndList(t *testing.T) {
	s := NewSessionStore(WithMaxSessions(10))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := s.CreateSession()
				s.AddTurn(id, turn("q", "a"))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.LessOrEqual(t, len(s.List()), 10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())
}

func ids(sessions []*domain.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.ID)
	}
	return out
}

func reverse(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
