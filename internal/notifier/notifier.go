// Package notifier broadcasts session events (user-facing notifications and
// graph change pings) to any number of subscribers.
package notifier

import (
	"context"
	"sync"
	"time"
)

// Level is the severity of a user-facing notification.
type Level string

// Notification levels.
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Kind distinguishes the events carried by the notifier.
type Kind int

const (
	// KindNotification carries a Notification for the user.
	KindNotification Kind = iota
	// KindGraphChanged signals that the resident graph was replaced.
	KindGraphChanged
)

// Notification is a message surfaced to the user after an operation.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Op      string    `json:"op"`
	At      time.Time `json:"at"`

	// Call is the id of the request that raised the notification, if any.
	Call string `json:"-"`
}

// Event is delivered to subscribers.
type Event struct {
	Kind         Kind
	Notification Notification
}

// DefaultBuffer is the channel capacity used by Subscribe.
const DefaultBuffer = 16

// Notifier broadcasts events to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
	now       func() time.Time
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
		now:       time.Now,
	}
}

// Subscribe returns a channel that receives events.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Event {
	return n.SubscribeBuffered(DefaultBuffer)
}

// SubscribeBuffered is Subscribe with an explicit channel capacity.
func (n *Notifier) SubscribeBuffered(size int) chan Event {
	if size < 1 {
		size = 1
	}
	ch := make(chan Event, size)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

type callKey struct{}

// WithCall returns a copy of ctx whose notifications are tagged with call.
func WithCall(ctx context.Context, call string) context.Context {
	return context.WithValue(ctx, callKey{}, call)
}

// CallFrom returns the call id carried by ctx, or "".
func CallFrom(ctx context.Context) string {
	call, _ := ctx.Value(callKey{}).(string)
	return call
}

// Notify broadcasts a notification built from level, op and message,
// tagged with the call id carried by ctx.
func (n *Notifier) Notify(ctx context.Context, level Level, op, message string) {
	n.broadcast(Event{
		Kind: KindNotification,
		Notification: Notification{
			Level:   level,
			Message: message,
			Op:      op,
			At:      n.now(),
			Call:    CallFrom(ctx),
		},
	})
}

// GraphChanged broadcasts a graph change ping.
func (n *Notifier) GraphChanged() {
	n.broadcast(Event{Kind: KindGraphChanged})
}

// broadcast is non-blocking: if a listener's channel is full the event is
// dropped for that listener.
func (n *Notifier) broadcast(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Drain returns every event currently buffered in ch without blocking.
func Drain(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// Notifications filters events down to their notifications.
func Notifications(events []Event) []Notification {
	out := make([]Notification, 0, len(events))
	for _, ev := range events {
		if ev.Kind == KindNotification {
			out = append(out, ev.Notification)
		}
	}
	return out
}
