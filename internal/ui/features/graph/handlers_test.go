package graph

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	kg "github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/notifier"
	"github.com/ai-bank/kgadmin/internal/ui/features"
	"github.com/ai-bank/kgadmin/internal/ui/features/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestRouter(t *testing.T, backendGraph kg.Graph) (chi.Router, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, backendGraph)
	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, fixture.Session, fixture.SessionStore))
	return r, fixture
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func nodeIDs(nodes []kg.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

// =============================================================================
// Reads
// =============================================================================

func TestGraph_FilterFromQuery(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.Empty())
	fixture.Session.LoadSample()

	tests := []struct {
		name      string
		query     string
		wantNodes int
		wantEdges int
	}{
		{name: "no filter", query: "", wantNodes: 9, wantEdges: 8},
		{name: "values are taken whole", query: "?nodeType=Person,Company", wantNodes: 0, wantEdges: 0},
		{name: "blank values ignored", query: "?nodeType=&nodeType=Bank", wantNodes: 2, wantEdges: 0},
		{name: "repeated", query: "?nodeType=Person&nodeType=Company", wantNodes: 4, wantEdges: 2},
		{name: "relation only", query: "?relationType=属于", wantNodes: 9, wantEdges: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/graph"+tt.query, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			got := decode[common.GraphResponse](t, rec)
			assert.Len(t, got.Nodes, tt.wantNodes)
			assert.Len(t, got.Edges, tt.wantEdges)
			assert.Equal(t, kg.Stats{Nodes: tt.wantNodes, Edges: tt.wantEdges}, got.Stats)
			assert.False(t, got.Loading)
		})
	}
}

func TestGraph_EmptyEncodesArrays(t *testing.T) {
	r, _ := setupTestRouter(t, kg.Empty())

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/graph", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nodes":[]`)
	assert.Contains(t, rec.Body.String(), `"edges":[]`)
}

func TestTypes(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.Empty())
	fixture.Session.LoadSample()

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/types", nil))

	got := decode[common.Filter](t, rec)
	assert.Equal(t, []string{"Person", "Bank", "Account", "Transaction", "Company"}, got.NodeTypes)
	assert.Equal(t, []string{"拥有", "属于", "发起", "接收", "就职于"}, got.RelationTypes)
}

func TestNode(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.Empty())
	fixture.Session.LoadSample()

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/nodes/9", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		ID            string            `json:"id"`
		Relationships []kg.Relationship `json:"relationships"`
	}](t, rec)
	assert.Equal(t, "9", got.ID)
	assert.Len(t, got.Relationships, 2)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/nodes/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFind(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.Empty())
	fixture.Session.LoadSample()

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/find?keyword=北京分行&scope=name", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Nodes []kg.Node `json:"nodes"`
	}](t, rec)
	assert.Equal(t, []string{"4", "8"}, nodeIDs(got.Nodes))
	assert.Empty(t, fixture.Backend.Requests(), "local search must not reach the backend")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/find?keyword=x&mode=regex", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Backend operations
// =============================================================================

func TestRefresh(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.SampleGraph())

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/graph/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[common.OperationResponse](t, rec)
	assert.True(t, got.OK)
	assert.Equal(t, kg.Stats{Nodes: 9, Edges: 8}, got.Stats)
	require.Len(t, got.Notifications, 1)
	assert.Equal(t, notifier.LevelInfo, got.Notifications[0].Level)
	assert.Equal(t, "loaded 9 nodes and 8 relationships", got.Notifications[0].Message)
	assert.Equal(t, []string{"GET /knowledge/graph/data"}, fixture.Backend.Routes())
}

func TestRefresh_BackendFailureKeepsGraph(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.SampleGraph())
	fixture.Session.LoadSample()
	fixture.Backend.Handle("GET /knowledge/graph/data", map[string]any{"code": 500, "msg": "boom"})

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/graph/refresh", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	got := decode[common.OperationResponse](t, rec)
	assert.False(t, got.OK)
	assert.Equal(t, kg.Stats{Nodes: 9, Edges: 8}, got.Stats)
	require.NotEmpty(t, got.Notifications)
	assert.Equal(t, notifier.LevelError, got.Notifications[0].Level)
}

func TestOverlappingRequestsKeepTheirNotifications(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.SampleGraph())
	fixture.Backend.Handle("GET /knowledge/graph/search", map[string]any{"code": 500, "msg": "boom"})

	const rounds = 10
	var wg sync.WaitGroup
	refreshes := make([]*httptest.ResponseRecorder, rounds)
	searches := make([]*httptest.ResponseRecorder, rounds)
	for i := range rounds {
		wg.Add(3)
		go func() {
			defer wg.Done()
			refreshes[i] = serve(r, httptest.NewRequest(http.MethodPost, "/api/graph/refresh", nil))
		}()
		go func() {
			defer wg.Done()
			searches[i] = serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/search?keyword=x", nil))
		}()
		go func() {
			defer wg.Done()
			fixture.Session.Reset()
		}()
	}
	wg.Wait()

	for i := range rounds {
		assert.Equal(t, http.StatusOK, refreshes[i].Code)
		got := decode[common.OperationResponse](t, refreshes[i])
		require.Len(t, got.Notifications, 1)
		assert.Equal(t, "load", got.Notifications[0].Op)

		assert.Equal(t, http.StatusBadGateway, searches[i].Code)
		found := decode[struct {
			Notifications []notifier.Notification `json:"notifications"`
		}](t, searches[i])
		require.Len(t, found.Notifications, 1)
		assert.Equal(t, "search", found.Notifications[0].Op)
		assert.Equal(t, notifier.LevelError, found.Notifications[0].Level)
	}
}

func TestExpand_MergesNeighbourhood(t *testing.T) {
	neighbourhood := kg.Graph{
		Nodes: []kg.Node{{ID: "5", Name: "acct", NodeType: "Account"}, {ID: "10", Name: "new", NodeType: "Account"}},
		Edges: []kg.Relationship{{Source: "5", Target: "10", RelationLabel: "转账"}},
	}
	r, fixture := setupTestRouter(t, neighbourhood)
	fixture.Session.LoadSample()

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/graph/nodes/5/expand", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[common.OperationResponse](t, rec)
	assert.True(t, got.OK)
	assert.Equal(t, kg.Stats{Nodes: 10, Edges: 9}, got.Stats)
	assert.Equal(t, []string{"GET /knowledge/graph/node/relations/5"}, fixture.Backend.Routes())
}

func TestSearch(t *testing.T) {
	hits := kg.Graph{Nodes: []kg.Node{{ID: "1", Name: "张三", NodeType: "Person"}}}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNodes  []string
	}{
		{name: "ok", query: "?keyword=张三&searchType=name", wantStatus: http.StatusOK, wantNodes: []string{"1"}},
		{name: "missing keyword", query: "?searchType=name", wantStatus: http.StatusBadRequest},
		{name: "bad scope", query: "?keyword=x&searchType=label", wantStatus: http.StatusBadRequest},
		{name: "bad mode", query: "?keyword=x&searchMode=regex", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fixture := setupTestRouter(t, hits)

			rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/search"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Empty(t, fixture.Backend.Requests())
				return
			}
			got := decode[struct {
				Nodes []kg.Node `json:"nodes"`
			}](t, rec)
			assert.Equal(t, tt.wantNodes, nodeIDs(got.Nodes))
			assert.Len(t, fixture.Session.Graph().Nodes, 1)
		})
	}
}

func TestPath(t *testing.T) {
	path := kg.Graph{
		Nodes: []kg.Node{{ID: "1"}, {ID: "5"}},
		Edges: []kg.Relationship{{Source: "1", Target: "5", RelationLabel: "拥有"}},
	}
	r, fixture := setupTestRouter(t, path)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/path?sourceId=1&targetId=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	reqs := fixture.Backend.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Query, "maxDepth=3")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/path?sourceId=1&targetId=5&maxDepth=deep", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/graph/path?sourceId=1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Saved filter
// =============================================================================

func TestFilter_SavedPerBrowser(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.Empty())
	fixture.Session.LoadSample()

	body := strings.NewReader(`{"nodeTypes":["Bank"],"relationTypes":[]}`)
	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/graph/filter", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datastar-patch-signals")
	assert.Contains(t, rec.Body.String(), `"nodeTypes":["Bank"]`)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/graph", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	got := decode[common.GraphResponse](t, serve(r, req))
	assert.Equal(t, []string{"4", "8"}, nodeIDs(got.Nodes))
	assert.Equal(t, []string{"Bank"}, got.Filter.NodeTypes)

	// Another browser has no saved filter.
	got = decode[common.GraphResponse](t, serve(r, httptest.NewRequest(http.MethodGet, "/api/graph", nil)))
	assert.Len(t, got.Nodes, 9)

	// Clearing resets the cookie.
	req = httptest.NewRequest(http.MethodDelete, "/api/graph/filter", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/graph", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	got = decode[common.GraphResponse](t, serve(r, req))
	assert.Len(t, got.Nodes, 9)
}

func TestFilter_TypeNamesWithCommas(t *testing.T) {
	r, fixture := setupTestRouter(t, kg.Empty())
	require.True(t, fixture.Session.Import(kg.Graph{Nodes: []kg.Node{
		{ID: "1", Name: "a", NodeType: "Loan, secured"},
		{ID: "2", Name: "b", NodeType: "Loan"},
		{ID: "3", Name: "c", NodeType: "secured"},
	}}))

	body := strings.NewReader(`{"nodeTypes":["Loan, secured"],"relationTypes":[]}`)
	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/graph/filter", body))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/graph", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	got := decode[common.GraphResponse](t, serve(r, req))
	assert.Equal(t, []string{"1"}, nodeIDs(got.Nodes))
	assert.Equal(t, []string{"Loan, secured"}, got.Filter.NodeTypes)

	q := url.Values{"nodeType": {"Loan, secured", "secured"}}
	got = decode[common.GraphResponse](t, serve(r, httptest.NewRequest(http.MethodGet, "/api/graph?"+q.Encode(), nil)))
	assert.Equal(t, []string{"1", "3"}, nodeIDs(got.Nodes))
}

func TestFilter_InvalidSignals(t *testing.T) {
	r, _ := setupTestRouter(t, kg.Empty())

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/graph/filter", strings.NewReader(`{not json`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
