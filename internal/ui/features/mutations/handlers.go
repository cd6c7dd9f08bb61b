// Package mutations provides the workbench handlers that write nodes and
// relationships through the session.
package mutations

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/ai-bank/kgadmin/internal/ui/features/common"
	"github.com/go-chi/chi/v5"
)

// Handlers provides HTTP handlers for node and relationship writes.
type Handlers struct {
	session *session.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session) *Handlers {
	return &Handlers{session: sess}
}

// run executes one session write and reports its outcome. A successful
// write has already refreshed the resident graph.
func (h *Handlers) run(w http.ResponseWriter, r *http.Request, write func(context.Context) bool) {
	capture, ctx := common.StartCapture(r.Context(), h.session.Notifier())
	ok := write(ctx)
	status := http.StatusOK
	if !ok {
		status = http.StatusBadGateway
	}
	common.WriteJSON(w, status, common.OperationResponse{
		OK:            ok,
		Stats:         h.session.Graph().Stats(),
		Notifications: capture.Stop(),
	})
}

func decodeNode(r *http.Request) (kgclient.NodeInput, error) {
	var in kgclient.NodeInput
	if err := common.DecodeJSON(r, &in); err != nil {
		return in, fmt.Errorf("invalid node body: %w", err)
	}
	if err := kgclient.Validate(in); err != nil {
		return in, err
	}
	if err := in.Properties.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

func decodeRelation(r *http.Request) (kgclient.RelationInput, error) {
	var in kgclient.RelationInput
	if err := common.DecodeJSON(r, &in); err != nil {
		return in, fmt.Errorf("invalid relationship body: %w", err)
	}
	if err := kgclient.Validate(in); err != nil {
		return in, err
	}
	if err := in.Properties.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// CreateNode handles POST /api/nodes.
func (h *Handlers) CreateNode(w http.ResponseWriter, r *http.Request) {
	in, err := decodeNode(r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.run(w, r, func(ctx context.Context) bool { return h.session.CreateNode(ctx, in) })
}

// UpdateNode handles PUT /api/nodes/{id}.
func (h *Handlers) UpdateNode(w http.ResponseWriter, r *http.Request) {
	in, err := decodeNode(r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	h.run(w, r, func(ctx context.Context) bool { return h.session.UpdateNode(ctx, id, in) })
}

// DeleteNode handles DELETE /api/nodes/{id}.
func (h *Handlers) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.run(w, r, func(ctx context.Context) bool { return h.session.DeleteNode(ctx, id) })
}

// CreateRelation handles POST /api/relations.
func (h *Handlers) CreateRelation(w http.ResponseWriter, r *http.Request) {
	in, err := decodeRelation(r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.run(w, r, func(ctx context.Context) bool { return h.session.CreateRelation(ctx, in) })
}

// UpdateRelation handles PUT /api/relations/{id}.
func (h *Handlers) UpdateRelation(w http.ResponseWriter, r *http.Request) {
	in, err := decodeRelation(r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	h.run(w, r, func(ctx context.Context) bool { return h.session.UpdateRelation(ctx, id, in) })
}

// DeleteRelation handles DELETE /api/relations/{id}.
func (h *Handlers) DeleteRelation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.run(w, r, func(ctx context.Context) bool { return h.session.DeleteRelation(ctx, id) })
}
