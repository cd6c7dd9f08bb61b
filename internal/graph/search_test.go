package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people() []Node {
	return []Node{
		{ID: "1", Name: "Alice", NodeType: "Person", Properties: Properties{"city": "Paris", "age": 31.0}},
		{ID: "2", Name: "Bob", NodeType: "Person", Properties: Properties{"city": "Berlin", "vip": true}},
		{ID: "3", Label: "Carol", NodeType: "Person", Properties: Properties{"nickname": "alice-in-chains"}},
	}
}

func ids(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestSearchNodes(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		opts    SearchOptions
		want    []string
	}{
		{
			name:    "fuzzy name",
			keyword: "alice",
			opts:    SearchOptions{Scope: ScopeName, PropertyField: AllProperties, Mode: ModeFuzzy},
			want:    []string{"1"},
		},
		{
			name:    "exact name is case-insensitive",
			keyword: "ALICE",
			opts:    SearchOptions{Scope: ScopeName, PropertyField: AllProperties, Mode: ModeExact},
			want:    []string{"1"},
		},
		{
			name:    "name falls back to label",
			keyword: "carol",
			opts:    SearchOptions{Scope: ScopeName, Mode: ModeExact},
			want:    []string{"3"},
		},
		{
			name:    "all scope ORs name and properties",
			keyword: "alice",
			opts:    SearchOptions{Scope: ScopeAll},
			want:    []string{"1", "3"},
		},
		{
			name:    "property scope ignores names",
			keyword: "alice",
			opts:    SearchOptions{Scope: ScopeProperty},
			want:    []string{"3"},
		},
		{
			name:    "named property only",
			keyword: "par",
			opts:    SearchOptions{Scope: ScopeProperty, PropertyField: "nickname"},
			want:    []string{},
		},
		{
			name:    "numeric values are stringified",
			keyword: "31",
			opts:    SearchOptions{Scope: ScopeProperty, PropertyField: "age", Mode: ModeExact},
			want:    []string{"1"},
		},
		{
			name:    "boolean values are stringified",
			keyword: "TRUE",
			opts:    SearchOptions{Scope: ScopeProperty, Mode: ModeExact},
			want:    []string{"2"},
		},
		{
			name:    "exact does not match substrings",
			keyword: "ali",
			opts:    SearchOptions{Scope: ScopeName, Mode: ModeExact},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SearchNodes(people(), tt.keyword, tt.opts)))
		})
	}
}

func TestSearchNodes_NamedPropertySkipsBlankValues(t *testing.T) {
	nodes := []Node{
		{ID: "1", Name: "zero", Properties: Properties{"score": 0.0, "vip": false, "note": ""}},
		{ID: "2", Name: "ten", Properties: Properties{"score": 10.0, "vip": true, "note": "false"}},
		{ID: "3", Name: "int", Properties: Properties{"score": 0}},
	}

	tests := []struct {
		name    string
		keyword string
		opts    SearchOptions
		want    []string
	}{
		{name: "zero score", keyword: "0", opts: SearchOptions{Scope: ScopeProperty, PropertyField: "score"}, want: []string{"2"}},
		{name: "false flag", keyword: "false", opts: SearchOptions{Scope: ScopeProperty, PropertyField: "vip"}, want: []string{}},
		{name: "empty note", keyword: "false", opts: SearchOptions{Scope: ScopeProperty, PropertyField: "note"}, want: []string{"2"}},
		{name: "all properties still see zero", keyword: "0", opts: SearchOptions{Scope: ScopeProperty, Mode: ModeExact}, want: []string{"1", "3"}},
		{name: "all properties still see false", keyword: "false", opts: SearchOptions{Scope: ScopeProperty, Mode: ModeExact}, want: []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SearchNodes(nodes, tt.keyword, tt.opts)))
		})
	}
}

func TestSearchNodes_EmptyKeyword(t *testing.T) {
	for _, scope := range []SearchScope{ScopeName, ScopeProperty, ScopeAll} {
		for _, mode := range []SearchMode{ModeFuzzy, ModeExact} {
			got := SearchNodes(people(), "", SearchOptions{Scope: scope, Mode: mode})
			assert.NotNil(t, got)
			assert.Empty(t, got)
		}
	}
}

func TestSearchNodes_SpecExample(t *testing.T) {
	nodes := []Node{
		{ID: "1", Name: "Alice", NodeType: "Person"},
		{ID: "2", Name: "Bob", NodeType: "Person"},
	}

	got := SearchNodes(nodes, "alice", SearchOptions{Scope: ScopeName, PropertyField: AllProperties, Mode: ModeFuzzy})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got = SearchNodes(nodes, "ALICE", SearchOptions{Scope: ScopeName, PropertyField: AllProperties, Mode: ModeExact})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestSearchNodes_Unicode(t *testing.T) {
	got := SearchNodes(SampleGraph().Nodes, "北京分行", SearchOptions{Scope: ScopeName})
	assert.Equal(t, []string{"4", "8"}, ids(got))
}

func TestParseSearchScope(t *testing.T) {
	s, err := ParseSearchScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, s)

	s, err = ParseSearchScope("Property")
	require.NoError(t, err)
	assert.Equal(t, ScopeProperty, s)

	_, err = ParseSearchScope("label")
	assert.Error(t, err)
}

func TestParseSearchMode(t *testing.T) {
	m, err := ParseSearchMode("EXACT")
	require.NoError(t, err)
	assert.Equal(t, ModeExact, m)

	_, err = ParseSearchMode("regex")
	assert.Error(t, err)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "58906.25", Stringify(58906.25))
	assert.Equal(t, "12500", Stringify(12500.0))
	assert.Equal(t, "false", Stringify(false))
	assert.Equal(t, "null", Stringify(nil))
	assert.Equal(t, `{"a":1}`, Stringify(map[string]any{"a": 1}))
}
