package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		content   string
		wantNodes int
		wantEdges int
		wantErr   string
	}{
		{
			name: "yaml",
			file: "graph.yaml",
			content: `nodes:
  - id: "10"
    name: 赵六
    nodeType: Person
    properties:
      age: 29
edges:
  - source: "10"
    target: "1"
    relationLabel: 认识
`,
			wantNodes: 1,
			wantEdges: 1,
		},
		{
			name:      "json",
			file:      "graph.json",
			content:   `{"nodes":[{"id":"a","name":"A","nodeType":"T"},{"id":"b","name":"B","nodeType":"T"}]}`,
			wantNodes: 2,
			wantEdges: 0,
		},
		{
			name:    "malformed",
			file:    "bad.yaml",
			content: "nodes: [",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			g, err := ReadFile(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, g.Nodes, tt.wantNodes)
			assert.Len(t, g.Edges, tt.wantEdges)
			assert.NotNil(t, g.Edges)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestReadFile_UnquotedDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`nodes:
  - id: "5"
    name: "6225880137691234"
    nodeType: Account
    properties:
      openDate: 2018-03-15
      quoted: "2019-06-22"
      balance: 58906.25
edges:
  - source: "1"
    target: "5"
    relationLabel: 拥有
    properties:
      since: 2018-03-15
`), 0o600))

	g, err := ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, Properties{"openDate": "2018-03-15", "quoted": "2019-06-22", "balance": 58906.25}, g.Nodes[0].Properties)
	assert.Equal(t, Properties{"since": "2018-03-15"}, g.Edges[0].Properties)
}
