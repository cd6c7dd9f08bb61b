package mutations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/notifier"
	"github.com/ai-bank/kgadmin/internal/ui/features"
	"github.com/ai-bank/kgadmin/internal/ui/features/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (chi.Router, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, graph.SampleGraph())
	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, fixture.Session))
	return r, fixture
}

func TestWrites_RefreshAfterSuccess(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		wantRoute string
	}{
		{
			name:      "create node",
			method:    http.MethodPost,
			path:      "/api/nodes",
			body:      `{"name":"赵六","nodeType":"Person","properties":{"age":30}}`,
			wantRoute: "POST /knowledge/graph/stepNode",
		},
		{
			name:      "update node",
			method:    http.MethodPut,
			path:      "/api/nodes/3",
			body:      `{"name":"王五","nodeType":"Person"}`,
			wantRoute: "PUT /knowledge/graph/node/3",
		},
		{
			name:      "delete node",
			method:    http.MethodDelete,
			path:      "/api/nodes/3",
			wantRoute: "DELETE /knowledge/graph/node/3",
		},
		{
			name:      "create relation",
			method:    http.MethodPost,
			path:      "/api/relations",
			body:      `{"source":"2","target":"9","relationLabel":"就职于"}`,
			wantRoute: "POST /knowledge/graph/relation",
		},
		{
			name:      "update relation",
			method:    http.MethodPut,
			path:      "/api/relations/e8",
			body:      `{"source":"3","target":"9","relationLabel":"就职于","properties":{"position":"总监"}}`,
			wantRoute: "PUT /knowledge/graph/relation/e8",
		},
		{
			name:      "delete relation",
			method:    http.MethodDelete,
			path:      "/api/relations/e8",
			wantRoute: "DELETE /knowledge/graph/relation/e8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fixture := setupTestRouter(t)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var got common.OperationResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.True(t, got.OK)
			assert.Equal(t, graph.Stats{Nodes: 9, Edges: 8}, got.Stats, "resident graph is refetched")
			assert.Equal(t, []string{tt.wantRoute, "GET /knowledge/graph/data"}, fixture.Backend.Routes())

			require.NotEmpty(t, got.Notifications)
			last := got.Notifications[len(got.Notifications)-1]
			assert.Equal(t, notifier.LevelSuccess, last.Level)
		})
	}
}

func TestCreateNode_SendsBody(t *testing.T) {
	r, fixture := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/nodes",
		strings.NewReader(`{"name":"赵六","nodeType":"Person","properties":{"age":30,"vip":true}}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	reqs := fixture.Backend.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "赵六", reqs[0].Body["name"])
	assert.Equal(t, "Person", reqs[0].Body["nodeType"])
	assert.Equal(t, map[string]any{"age": 30.0, "vip": true}, reqs[0].Body["properties"])
}

func TestWrites_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "malformed json", path: "/api/nodes", body: `{"name":`},
		{name: "missing node type", path: "/api/nodes", body: `{"name":"x"}`},
		{name: "array property", path: "/api/nodes", body: `{"name":"x","nodeType":"T","properties":{"tags":["a"]}}`},
		{name: "missing label", path: "/api/relations", body: `{"source":"1","target":"2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fixture := setupTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			assert.Empty(t, fixture.Backend.Requests(), "rejected input must not reach the backend")
		})
	}
}

func TestWrites_BackendFailureLeavesGraph(t *testing.T) {
	r, fixture := setupTestRouter(t)
	fixture.Session.LoadSample()
	fixture.Backend.Handle("DELETE /knowledge/graph/node/1", map[string]any{"code": 500, "msg": "node is referenced"})

	req := httptest.NewRequest(http.MethodDelete, "/api/nodes/1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var got common.OperationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.OK)
	assert.Equal(t, graph.Stats{Nodes: 9, Edges: 8}, got.Stats)
	assert.Equal(t, []string{"DELETE /knowledge/graph/node/1"}, fixture.Backend.Routes(), "no refetch after a failed write")
	require.Len(t, got.Notifications, 1)
	assert.Equal(t, notifier.LevelError, got.Notifications[0].Level)
	assert.Contains(t, got.Notifications[0].Message, "failed to delete node")
}
