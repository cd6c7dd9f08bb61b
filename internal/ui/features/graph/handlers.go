// Package graph provides the workbench handlers that read and grow the
// resident graph.
package graph

import (
	"net/http"
	"strconv"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/ai-bank/kgadmin/internal/notifier"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/ai-bank/kgadmin/internal/ui/features/common"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the graph feature.
type Handlers struct {
	session      *session.Session
	sessionStore sessions.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session, sessionStore sessions.Store) *Handlers {
	return &Handlers{
		session:      sess,
		sessionStore: sessionStore,
	}
}

// requestFilter returns the filter from the query string, falling back to
// the one saved for this browser.
func (h *Handlers) requestFilter(r *http.Request) common.Filter {
	q := r.URL.Query()
	f := common.Filter{
		NodeTypes:     common.QueryList(q["nodeType"]),
		RelationTypes: common.QueryList(q["relationType"]),
	}
	if f.IsEmpty() {
		return common.LoadFilter(h.sessionStore, r)
	}
	return f
}

// Graph returns the resident graph after filtering.
func (h *Handlers) Graph(w http.ResponseWriter, r *http.Request) {
	f := h.requestFilter(r)
	g := h.session.Filtered(f.NodeTypes, f.RelationTypes).Normalize()
	common.WriteJSON(w, http.StatusOK, common.GraphResponse{
		Nodes:   g.Nodes,
		Edges:   g.Edges,
		Stats:   g.Stats(),
		Filter:  f,
		Loading: h.session.Loading(),
	})
}

// Types returns the node and relation vocabularies of the resident graph.
func (h *Handlers) Types(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, common.Filter{
		NodeTypes:     h.session.NodeTypes(),
		RelationTypes: h.session.RelationTypes(),
	})
}

// Node returns one resident node and the relationships touching it.
func (h *Handlers) Node(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, ok := h.session.Node(id)
	if !ok {
		common.WriteError(w, http.StatusNotFound, "node "+id+" is not in the graph")
		return
	}

	edges := make([]graph.Relationship, 0)
	for _, e := range h.session.Graph().Edges {
		if e.Source == id || e.Target == id {
			edges = append(edges, e)
		}
	}
	common.WriteJSON(w, http.StatusOK, struct {
		graph.Node
		Relationships []graph.Relationship `json:"relationships"`
	}{n, edges})
}

// Refresh replaces the resident graph with the backend's full graph.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	capture, ctx := common.StartCapture(r.Context(), h.session.Notifier())
	ok := h.session.FetchGraphData(ctx)
	h.writeOperation(w, ok, capture)
}

// Expand merges a node's neighbourhood into the resident graph.
func (h *Handlers) Expand(w http.ResponseWriter, r *http.Request) {
	capture, ctx := common.StartCapture(r.Context(), h.session.Notifier())
	ok := h.session.FetchNodeRelations(ctx, chi.URLParam(r, "id"))
	h.writeOperation(w, ok, capture)
}

func (h *Handlers) writeOperation(w http.ResponseWriter, ok bool, capture *common.Capture) {
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

// Search runs a backend search and merges the result.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope, err := graph.ParseSearchScope(q.Get("searchType"))
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := graph.ParseSearchMode(q.Get("searchMode"))
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	params := kgclient.SearchParams{
		Keyword:       q.Get("keyword"),
		SearchType:    scope,
		PropertyField: q.Get("propertyField"),
		SearchMode:    mode,
	}
	if err := kgclient.Validate(params); err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	capture, ctx := common.StartCapture(r.Context(), h.session.Notifier())
	nodes := h.session.SearchNodes(ctx, params)
	notes := capture.Stop()
	common.WriteJSON(w, common.StatusFor(notes), struct {
		Nodes         []graph.Node            `json:"nodes"`
		Notifications []notifier.Notification `json:"notifications"`
	}{nodes, notes})
}

// Find searches the resident graph without contacting the backend.
func (h *Handlers) Find(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope, err := graph.ParseSearchScope(q.Get("scope"))
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := graph.ParseSearchMode(q.Get("mode"))
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	nodes := h.session.FindLocal(q.Get("keyword"), graph.SearchOptions{
		Scope:         scope,
		PropertyField: q.Get("field"),
		Mode:          mode,
	})
	common.WriteJSON(w, http.StatusOK, struct {
		Nodes []graph.Node `json:"nodes"`
	}{nodes})
}

// Path finds the relationships connecting two nodes and merges them.
func (h *Handlers) Path(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := kgclient.PathParams{
		SourceID: q.Get("sourceId"),
		TargetID: q.Get("targetId"),
	}
	if v := q.Get("maxDepth"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, "maxDepth must be an integer")
			return
		}
		params.MaxDepth = depth
	}
	if err := kgclient.Validate(params); err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	capture, ctx := common.StartCapture(r.Context(), h.session.Notifier())
	path := h.session.FindPath(ctx, params).Normalize()
	notes := capture.Stop()
	common.WriteJSON(w, common.StatusFor(notes), struct {
		Nodes         []graph.Node            `json:"nodes"`
		Edges         []graph.Relationship    `json:"edges"`
		Notifications []notifier.Notification `json:"notifications"`
	}{path.Nodes, path.Edges, notes})
}

// SetFilter saves the filter sent as datastar signals and echoes it back.
func (h *Handlers) SetFilter(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var f common.Filter
	if err := datastar.ReadSignals(r, &f); err != nil {
		common.WriteError(w, http.StatusBadRequest, "failed to read signals: "+err.Error())
		return
	}
	if err := common.SaveFilter(h.sessionStore, w, r, f); err != nil {
		common.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.patchFilter(w, r, f)
}

// ClearFilter forgets the saved filter.
func (h *Handlers) ClearFilter(w http.ResponseWriter, r *http.Request) {
	if err := common.SaveFilter(h.sessionStore, w, r, common.Filter{}); err != nil {
		common.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.patchFilter(w, r, common.Filter{})
}

func (h *Handlers) patchFilter(w http.ResponseWriter, r *http.Request, f common.Filter) {
	if f.NodeTypes == nil {
		f.NodeTypes = []string{}
	}
	if f.RelationTypes == nil {
		f.RelationTypes = []string{}
	}
	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(f); err != nil {
		_ = sse.ConsoleError(err)
	}
}
