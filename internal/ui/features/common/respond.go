package common

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ai-bank/kgadmin/internal/notifier"
	"github.com/google/uuid"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// Capture collects the notifications raised by one request. Other requests
// on the same session broadcast through the same notifier; their
// notifications carry a different call id and are left out.
type Capture struct {
	n    *notifier.Notifier
	ch   chan notifier.Event
	call string
}

// StartCapture subscribes to n until Stop is called. Operations must run
// with the returned context for their notifications to be captured.
func StartCapture(ctx context.Context, n *notifier.Notifier) (*Capture, context.Context) {
	c := &Capture{n: n, ch: n.SubscribeBuffered(64), call: uuid.NewString()}
	return c, notifier.WithCall(ctx, c.call)
}

// Stop unsubscribes and returns the captured notifications.
func (c *Capture) Stop() []notifier.Notification {
	events := notifier.Drain(c.ch)
	c.n.Unsubscribe(c.ch)
	out := make([]notifier.Notification, 0, len(events))
	for _, note := range notifier.Notifications(events) {
		if note.Call == c.call {
			out = append(out, note)
		}
	}
	return out
}

// StatusFor maps captured notifications to an HTTP status: 502 when the
// backend call behind them failed.
func StatusFor(notes []notifier.Notification) int {
	for _, n := range notes {
		if n.Level == notifier.LevelError {
			return http.StatusBadGateway
		}
	}
	return http.StatusOK
}
