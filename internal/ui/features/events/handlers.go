// Package events streams session notifications to the browser over SSE.
package events

import (
	"net/http"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/notifier"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/starfederation/datastar-go/datastar"
)

// NotificationSignals is patched for every notification.
type NotificationSignals struct {
	Notification notifier.Notification `json:"notification"`
}

// GraphSignals is patched whenever the resident graph changes.
type GraphSignals struct {
	Stats   graph.Stats `json:"stats"`
	Loading bool        `json:"loading"`
}

// Handlers provides the SSE endpoint.
type Handlers struct {
	session *session.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session) *Handlers {
	return &Handlers{session: sess}
}

// Events is the long-lived SSE endpoint. It sends the current graph stats
// once, then one patch per session event until the client goes away.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	updates := h.session.Notifier().Subscribe()
	defer h.session.Notifier().Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(h.graphSignals()); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			var err error
			switch ev.Kind {
			case notifier.KindGraphChanged:
				err = sse.MarshalAndPatchSignals(h.graphSignals())
			default:
				err = sse.MarshalAndPatchSignals(NotificationSignals{Notification: ev.Notification})
			}
			if err != nil {
				return
			}
		}
	}
}

func (h *Handlers) graphSignals() GraphSignals {
	return GraphSignals{
		Stats:   h.session.Graph().Stats(),
		Loading: h.session.Loading(),
	}
}
