package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/ai-bank/kgadmin/internal/cli/config"
	"github.com/ai-bank/kgadmin/internal/cli/output"
	clitestutil "github.com/ai-bank/kgadmin/internal/cli/testutil"
	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/ai-bank/kgadmin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shellFixture struct {
	shell    *shell
	renderer *clitestutil.Capture
	help     *bytes.Buffer
	backend  *testutil.Backend
}

func newShellFixture(t *testing.T, g graph.Graph) *shellFixture {
	t.Helper()

	backend := testutil.NewBackend(t, g)
	client, err := kgclient.New(kgclient.Options{BaseURL: backend.URL})
	require.NoError(t, err)

	sess := session.New(session.Options{Fetcher: client})
	tr := clitestutil.NewCapture(output.ModeMarkdown)
	cc := &CommandContext{
		Cfg:      &config.Config{BaseURL: backend.URL},
		Logger:   slog.New(slog.DiscardHandler),
		Renderer: tr.Renderer,
		Client:   client,
		Session:  sess,
		events:   sess.Notifier().SubscribeBuffered(64),
	}
	t.Cleanup(func() { sess.Notifier().Unsubscribe(cc.events) })

	help := new(bytes.Buffer)
	return &shellFixture{shell: newShell(cc, help), renderer: tr, help: help, backend: backend}
}

// run executes one line and returns what it rendered.
func (f *shellFixture) run(t *testing.T, line string) (string, error) {
	t.Helper()
	f.renderer.Reset()
	quit, err := f.shell.exec(context.Background(), line)
	assert.False(t, quit, "%q should not quit", line)
	return f.renderer.Output(), err
}

func TestShell_LoadFilterShow(t *testing.T) {
	f := newShellFixture(t, graph.SampleGraph())

	out, err := f.run(t, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 9 nodes and 8 relationships")

	out, err = f.run(t, "filter --node-type Bank --relation-type 属于")
	require.NoError(t, err)
	assert.Contains(t, out, "filter set (node types: Bank; relation types: 属于)")

	out, err = f.run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Resident graph")
	assert.Contains(t, out, "- **Nodes**: 2")
	assert.Contains(t, out, "- **Relationships**: 0")

	out, err = f.run(t, "filter clear")
	require.NoError(t, err)
	assert.Contains(t, out, "filter cleared")

	out, err = f.run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "- **Nodes**: 9")
}

func TestShell_ExpandGrowsGraph(t *testing.T) {
	f := newShellFixture(t, graph.Graph{
		Nodes: []graph.Node{{ID: "5", NodeType: "Account"}, {ID: "10", Name: "新账户", NodeType: "Account"}},
		Edges: []graph.Relationship{{Source: "5", Target: "10", RelationLabel: "转账"}},
	})
	f.shell.cc.Session.LoadSample()

	out, err := f.run(t, "expand 5")
	require.NoError(t, err)
	assert.Contains(t, out, "expanded node 5: 1 new nodes, 1 new relationships")
	assert.Equal(t, []string{"GET /knowledge/graph/node/relations/5"}, f.backend.Routes())

	out, err = f.run(t, "show 10")
	require.NoError(t, err)
	assert.Contains(t, out, "新账户")
}

func TestShell_FindIsLocal(t *testing.T) {
	f := newShellFixture(t, graph.Empty())
	f.shell.cc.Session.LoadSample()

	out, err := f.run(t, "find 北京分行 --scope name")
	require.NoError(t, err)
	assert.Contains(t, out, "# Matching nodes (2)")
	assert.Contains(t, out, clitestutil.MarkdownRow("ID", "Name", "Type", "Properties"))
	clitestutil.AssertMarkdown(t, out)
	assert.Empty(t, f.backend.Requests())

	_, err = f.run(t, "find x --mode regex")
	assert.Error(t, err)
}

func TestShell_SearchAndPath(t *testing.T) {
	f := newShellFixture(t, graph.Graph{
		Nodes: []graph.Node{{ID: "1", Name: "张三"}, {ID: "9", Name: "阿里巴巴"}},
		Edges: []graph.Relationship{{Source: "1", Target: "9", RelationLabel: "就职于"}},
	})

	out, err := f.run(t, "search 张 --scope name")
	require.NoError(t, err)
	assert.Contains(t, out, "found 2 matching nodes")

	out, err = f.run(t, "path 1 9 --max-depth 4")
	require.NoError(t, err)
	assert.Contains(t, out, "# Path 1 → 9")

	reqs := f.backend.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1].Query, "maxDepth=4")
}

func TestShell_Errors(t *testing.T) {
	f := newShellFixture(t, graph.Empty())

	tests := []struct {
		line    string
		wantErr string
	}{
		{line: "frobnicate", wantErr: "unknown command: frobnicate"},
		{line: "expand", wantErr: "usage: expand"},
		{line: "path 1", wantErr: "usage: path"},
		{line: "search", wantErr: "usage: search"},
		{line: "show missing", wantErr: `node "missing" is not in the graph`},
		{line: "path 1 2 --max-depth many", wantErr: "path:"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := f.run(t, tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Empty(t, f.backend.Requests())
}

func TestShell_ImportAndReset(t *testing.T) {
	f := newShellFixture(t, graph.Empty())
	path := writeFile(t, "fragment.yaml", `nodes:
  - id: a
    name: A
    nodeType: Person
  - id: b
    name: B
    nodeType: Person
edges:
  - source: a
    target: b
    relationLabel: knows
`)

	out, err := f.run(t, "import "+path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 new nodes and 1 new relationships")
	assert.Equal(t, graph.Stats{Nodes: 2, Edges: 1}, f.shell.cc.Session.Graph().Stats())

	_, err = f.run(t, "reset")
	require.NoError(t, err)
	assert.True(t, f.shell.cc.Session.Graph().IsEmpty())
}

func TestShell_QuitAndHelp(t *testing.T) {
	f := newShellFixture(t, graph.Empty())

	quit, err := f.shell.exec(context.Background(), "help")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, f.help.String(), "expand <nodeId>")

	for _, line := range []string{"quit", "EXIT"} {
		quit, err = f.shell.exec(context.Background(), line)
		require.NoError(t, err)
		assert.True(t, quit, line)
	}

	quit, err = f.shell.exec(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, quit)
}
