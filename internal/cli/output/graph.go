package output

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/jedib0t/go-pretty/v6/table"
)

// GraphOutput is the JSON shape of a rendered graph.
type GraphOutput struct {
	Title string               `json:"title,omitempty"`
	Stats graph.Stats          `json:"stats"`
	Nodes []graph.Node         `json:"nodes"`
	Edges []graph.Relationship `json:"edges"`
}

// TypesOutput is the JSON shape of the graph vocabularies.
type TypesOutput struct {
	NodeTypes     []string `json:"nodeTypes"`
	RelationTypes []string `json:"relationTypes"`
}

// Graph renders g as node and relationship tables.
func (r *Renderer) Graph(title string, g graph.Graph) error {
	g = g.Normalize()
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(GraphOutput{Title: title, Stats: g.Stats(), Nodes: g.Nodes, Edges: g.Edges})
	case ModeMarkdown:
		if title != "" {
			r.Println(FormatHeader(1, title))
			r.Println("")
		}
		r.Println(FormatKeyValue("Nodes", fmt.Sprintf("%d", len(g.Nodes))))
		r.Println(FormatKeyValue("Relationships", fmt.Sprintf("%d", len(g.Edges))))
		r.Println("")
		if len(g.Nodes) > 0 {
			r.Println(FormatHeader(2, "Nodes"))
			r.Println("")
			nodeTable(r.out, g.Nodes).RenderMarkdown()
			r.Println("")
		}
		if len(g.Edges) > 0 {
			r.Println(FormatHeader(2, "Relationships"))
			r.Println("")
			edgeTable(r.out, g.Nodes, g.Edges).RenderMarkdown()
			r.Println("")
		}
		return nil
	default:
		if title != "" {
			r.Header(1, title)
		}
		if g.IsEmpty() {
			r.Muted("(empty graph)")
			return nil
		}
		if len(g.Nodes) > 0 {
			nodeTable(r.out, g.Nodes).Render()
		}
		if len(g.Edges) > 0 {
			edgeTable(r.out, g.Nodes, g.Edges).Render()
		}
		r.Muted(fmt.Sprintf("%d nodes, %d relationships", len(g.Nodes), len(g.Edges)))
		return nil
	}
}

// Nodes renders a node list such as search results.
func (r *Renderer) Nodes(title string, nodes []graph.Node) error {
	if nodes == nil {
		nodes = []graph.Node{}
	}
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(nodes)
	case ModeMarkdown:
		r.Println(FormatHeader(1, fmt.Sprintf("%s (%d)", title, len(nodes))))
		r.Println("")
		if len(nodes) > 0 {
			nodeTable(r.out, nodes).RenderMarkdown()
		}
		return nil
	default:
		r.Header(1, fmt.Sprintf("%s (%d)", title, len(nodes)))
		if len(nodes) > 0 {
			nodeTable(r.out, nodes).Render()
		}
		return nil
	}
}

// Node renders a single node with its properties and the relationships that
// touch it.
func (r *Renderer) Node(n graph.Node, edges []graph.Relationship) error {
	touching := make([]graph.Relationship, 0)
	for _, e := range edges {
		if e.Source == n.ID || e.Target == n.ID {
			touching = append(touching, e)
		}
	}

	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(struct {
			graph.Node
			Relationships []graph.Relationship `json:"relationships"`
		}{n, touching})
	case ModeMarkdown:
		r.Println(FormatHeader(1, n.DisplayName()))
		r.Println("")
		r.Println(FormatKeyValue("ID", n.ID))
		r.Println(FormatKeyValue("Type", n.NodeType))
		for _, k := range sortedKeys(n.Properties) {
			r.Println(FormatKeyValue(k, graph.Stringify(n.Properties[k])))
		}
		r.Println("")
		if len(touching) > 0 {
			r.Println(FormatHeader(2, "Relationships"))
			r.Println("")
			edgeTable(r.out, nil, touching).RenderMarkdown()
		}
		return nil
	default:
		s := r.styles
		r.Println(s.Header.Render(n.DisplayName()) + " " + s.NodeID.Render("#"+n.ID) + " " + s.NodeType.Render(n.NodeType))
		if len(n.Properties) > 0 {
			t := table.NewWriter()
			t.SetOutputMirror(r.out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Property", "Value"})
			for _, k := range sortedKeys(n.Properties) {
				t.AppendRow(table.Row{k, graph.Stringify(n.Properties[k])})
			}
			t.Render()
		}
		if len(touching) > 0 {
			edgeTable(r.out, nil, touching).Render()
		}
		return nil
	}
}

// Types renders the node and relation vocabularies.
func (r *Renderer) Types(nodeTypes, relationTypes []string) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(TypesOutput{NodeTypes: nonNil(nodeTypes), RelationTypes: nonNil(relationTypes)})
	case ModeMarkdown:
		r.Println(FormatHeader(2, "Node types"))
		r.Println("")
		r.Printf("%s\n", FormatList(nodeTypes))
		r.Println(FormatHeader(2, "Relation types"))
		r.Println("")
		r.Printf("%s", FormatList(relationTypes))
		return nil
	default:
		r.Header(2, "Node types")
		for _, t := range nodeTypes {
			r.Println("  " + r.styles.NodeType.Render(t))
		}
		r.Header(2, "Relation types")
		for _, t := range relationTypes {
			r.Println("  " + r.styles.Relation.Render(t))
		}
		return nil
	}
}

func nodeTable(w io.Writer, nodes []graph.Node) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Type", "Properties"})
	for _, n := range nodes {
		t.AppendRow(table.Row{n.ID, n.DisplayName(), n.NodeType, FormatProperties(n.Properties)})
	}
	return t
}

func edgeTable(w io.Writer, nodes []graph.Node, edges []graph.Relationship) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Source", "Relation", "Target", "Properties"})
	for _, e := range edges {
		t.AppendRow(table.Row{e.ID, endpoint(nodes, e.Source), e.RelationLabel, endpoint(nodes, e.Target), FormatProperties(e.Properties)})
	}
	return t
}

// endpoint labels a relationship end with the node name when it is known.
func endpoint(nodes []graph.Node, id string) string {
	if n, ok := graph.NodeByID(nodes, id); ok && n.DisplayName() != "" {
		return fmt.Sprintf("%s (%s)", n.DisplayName(), id)
	}
	return id
}

// FormatProperties returns props as "k=v" pairs sorted by key.
func FormatProperties(props graph.Properties) string {
	parts := make([]string, 0, len(props))
	for _, k := range sortedKeys(props) {
		parts = append(parts, k+"="+graph.Stringify(props[k]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(props graph.Properties) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// List renders a titled list of strings.
func (r *Renderer) List(title string, items []string) error {
	items = nonNil(items)
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(items)
	case ModeMarkdown:
		r.Println(FormatHeader(1, fmt.Sprintf("%s (%d)", title, len(items))))
		r.Println("")
		r.Printf("%s", FormatList(items))
		return nil
	default:
		r.Header(1, fmt.Sprintf("%s (%d)", title, len(items)))
		for _, it := range items {
			r.Println("  " + it)
		}
		return nil
	}
}

// Records renders property bags as a table whose columns are the union of
// their keys, in first-seen order.
func (r *Renderer) Records(title string, records []graph.Properties) error {
	if records == nil {
		records = []graph.Properties{}
	}
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(records)
	}

	var cols []string
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, k := range sortedKeys(rec) {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, rec := range records {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			row[i] = ""
			if v, ok := rec[c]; ok {
				row[i] = graph.Stringify(v)
			}
		}
		t.AppendRow(row)
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(1, fmt.Sprintf("%s (%d)", title, len(records))))
		r.Println("")
		if len(records) > 0 {
			t.RenderMarkdown()
		}
		return nil
	}
	r.Header(1, fmt.Sprintf("%s (%d)", title, len(records)))
	if len(records) > 0 {
		t.Render()
	}
	return nil
}
