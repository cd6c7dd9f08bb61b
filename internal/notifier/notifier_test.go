package notifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	require.NotNil(t, ch)

	n.mu.RLock()
	assert.Len(t, n.listeners, 1)
	n.mu.RUnlock()

	n.Unsubscribe(ch)

	n.mu.RLock()
	assert.Len(t, n.listeners, 0)
	n.mu.RUnlock()

	// Second unsubscribe must not panic on a closed channel.
	n.Unsubscribe(ch)
}

func TestNotifier_Notify(t *testing.T) {
	n := New()
	fixed := time.Date(2024, 5, 18, 14, 32, 17, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	n.Notify(context.Background(), LevelSuccess, "search", "found 2 matching nodes")

	for _, ch := range []chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, KindNotification, ev.Kind)
			assert.Equal(t, Notification{
				Level:   LevelSuccess,
				Message: "found 2 matching nodes",
				Op:      "search",
				At:      fixed,
			}, ev.Notification)
		case <-time.After(100 * time.Millisecond):
			t.Error("subscriber did not receive notification")
		}
	}
}

func TestNotifier_Broadcast_NonBlocking(t *testing.T) {
	n := New()

	ch := n.SubscribeBuffered(1)
	defer n.Unsubscribe(ch)

	ch <- Event{Kind: KindGraphChanged}

	done := make(chan bool)
	go func() {
		n.GraphChanged()
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("broadcast blocked on full channel")
	}
}

func TestDrain(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.GraphChanged()
	n.Notify(context.Background(), LevelWarning, "path", "no connecting path found")
	n.Notify(context.Background(), LevelError, "path", "path analysis failed")

	events := Drain(ch)
	require.Len(t, events, 3)
	assert.Equal(t, KindGraphChanged, events[0].Kind)

	notes := Notifications(events)
	require.Len(t, notes, 2)
	assert.Equal(t, LevelWarning, notes[0].Level)
	assert.Equal(t, LevelError, notes[1].Level)

	assert.Empty(t, Drain(ch))
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe()
			n.Notify(context.Background(), LevelInfo, "load", "graph loaded")
			n.GraphChanged()
			n.Unsubscribe(ch)
		}()
	}

	wg.Wait()

	n.mu.RLock()
	assert.Len(t, n.listeners, 0)
	n.mu.RUnlock()
}

func TestNotifier_NotifyTagsCall(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.Notify(WithCall(context.Background(), "call-1"), LevelInfo, "load", "graph loaded")
	n.Notify(context.Background(), LevelInfo, "reset", "graph cleared")

	notes := Notifications(Drain(ch))
	require.Len(t, notes, 2)
	assert.Equal(t, "call-1", notes[0].Call)
	assert.Empty(t, notes[1].Call)
	assert.Equal(t, "call-1", CallFrom(WithCall(context.Background(), "call-1")))
}
