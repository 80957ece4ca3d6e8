package hooks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yimingll/codex-mcp-server/internal/logging"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()

	var called bool
	m.On(EventServerStart, "test", func(_ context.Context, p Payload) error {
		called = true
		assert.Equal(t, EventServerStart, p.Event)
		return nil
	})

	m.Emit(context.Background(), EventServerStart, nil)
	assert.True(t, called)
}

func TestManager_Emit_MultipleHandlers(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventRunCompleted, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.On(EventRunCompleted, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventRunCompleted, nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_Emit_WithData(t *testing.T) {
	m := testManager()

	var gotData map[string]any
	m.On(EventRunCompleted, "test", func(_ context.Context, p Payload) error {
		gotData = p.Data
		return nil
	})

	m.Emit(context.Background(), EventRunCompleted, map[string]any{
		"sessionId": "s-1",
		"strategy":  "resume",
	})

	assert.Equal(t, "s-1", gotData["sessionId"])
	assert.Equal(t, "resume", gotData["strategy"])
}

func TestManager_Emit_HandlerError(t *testing.T) {
	m := testManager()

	var secondCalled bool
	m.On(EventServerStart, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventServerStart, "second", func(_ context.Context, _ Payload) error {
		secondCalled = true
		return nil
	})

	// Should not panic; second handler should still run
	m.Emit(context.Background(), EventServerStart, nil)
	assert.True(t, secondCalled)
}

func TestManager_Emit_NoHandlers(t *testing.T) {
	m := testManager()
	// Should not panic
	m.Emit(context.Background(), EventServerStop, nil)
}

func TestManager_Off(t *testing.T) {
	m := testManager()

	var callCount int
	m.On(EventServerStart, "removable", func(_ context.Context, _ Payload) error {
		callCount++
		return nil
	})

	m.Emit(context.Background(), EventServerStart, nil)
	assert.Equal(t, 1, callCount)

	m.Off(EventServerStart, "removable")
	m.Emit(context.Background(), EventServerStart, nil)
	assert.Equal(t, 1, callCount) // should not have been called again
}

func TestManager_Off_KeepsOthers(t *testing.T) {
	m := testManager()

	var keepCalled int
	m.On(EventServerStart, "remove-me", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventServerStart, "keep-me", func(_ context.Context, _ Payload) error {
		keepCalled++
		return nil
	})

	m.Off(EventServerStart, "remove-me")
	m.Emit(context.Background(), EventServerStart, nil)
	assert.Equal(t, 1, keepCalled)
}

func TestManager_EmitAsync(t *testing.T) {
	m := testManager()

	var count atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)

	m.On(EventRunFailed, "async1", func(_ context.Context, _ Payload) error {
		count.Add(1)
		wg.Done()
		return nil
	})
	m.On(EventRunFailed, "async2", func(_ context.Context, _ Payload) error {
		count.Add(1)
		wg.Done()
		return nil
	})

	m.EmitAsync(context.Background(), EventRunFailed, nil)

	// Wait with timeout
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not complete in time")
	}

	assert.Equal(t, int32(2), count.Load())
}

func TestManager_Count(t *testing.T) {
	m := testManager()

	assert.Equal(t, 0, m.Count(EventServerStart))

	m.On(EventServerStart, "h1", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 1, m.Count(EventServerStart))

	m.On(EventServerStart, "h2", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 2, m.Count(EventServerStart))
}

func TestManager_Events(t *testing.T) {
	m := testManager()

	m.On(EventServerStart, "h1", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventRunCompleted, "h2", func(_ context.Context, _ Payload) error { return nil })

	events := m.Events()
	assert.Len(t, events, 2)
	assert.Contains(t, events, EventServerStart)
	assert.Contains(t, events, EventRunCompleted)
}

func TestAllEvents_NotEmpty(t *testing.T) {
	require.NotEmpty(t, AllEvents)
	assert.Contains(t, AllEvents, EventServerStart)
	assert.Contains(t, AllEvents, EventRunCompleted)
}

func TestManager_Emit_SetsTime(t *testing.T) {
	m := testManager()

	var got Payload
	m.On(EventSessionCreated, "test", func(_ context.Context, p Payload) error {
		got = p
		return nil
	})

	before := time.Now().Add(-time.Second)
	m.Emit(context.Background(), EventSessionCreated, nil)
	assert.True(t, got.Time.After(before))
	assert.Equal(t, time.UTC, got.Time.Location())
}

func TestManager_Wait(t *testing.T) {
	m := testManager()

	var done atomic.Bool
	m.On(EventServerStop, "slow", func(_ context.Context, _ Payload) error {
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
		return nil
	})

	m.EmitAsync(context.Background(), EventServerStop, nil)
	m.Wait()
	assert.True(t, done.Load())
}

func TestAllEvents_Complete(t *testing.T) {
	assert.ElementsMatch(t, []string{
		EventSessionCreated, EventSessionDeleted,
		EventRunCompleted, EventRunFailed,
		EventServerStart, EventServerStop,
	}, AllEvents)
}
