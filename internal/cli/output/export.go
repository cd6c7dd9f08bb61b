package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ai-bank/kgadmin/internal/graph"
	"gopkg.in/yaml.v3"
)

// ExportFormat names a graph serialization.
type ExportFormat string

// Export formats.
const (
	ExportMermaid ExportFormat = "mermaid"
	ExportDOT     ExportFormat = "dot"
	ExportYAML    ExportFormat = "yaml"
	ExportJSON    ExportFormat = "json"
)

// ExportFormats lists every supported export format.
var ExportFormats = []ExportFormat{ExportMermaid, ExportDOT, ExportYAML, ExportJSON}

// ParseExportFormat validates an export format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ExportFormats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want mermaid, dot, yaml or json)", s)
}

// Export writes g to w in format. Relationships whose endpoints are not in
// g are left out of the diagram formats. YAML and JSON output can be read
// back with graph.ReadFile.
func Export(w io.Writer, g graph.Graph, format ExportFormat) error {
	g = g.Normalize()
	switch format {
	case ExportMermaid:
		return writeMermaid(w, g)
	case ExportDOT:
		return writeDOT(w, g)
	case ExportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("failed to encode graph: %w", err)
		}
		return enc.Close()
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func nodeLabel(n graph.Node) string {
	if name := n.DisplayName(); name != "" {
		return name
	}
	return n.ID
}

func writeMermaid(w io.Writer, g graph.Graph) error {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	ids := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, ok := ids[n.ID]; ok {
			continue
		}
		ref := "n" + strconv.Itoa(i)
		ids[n.ID] = ref
		label := mermaidEscape(nodeLabel(n))
		if n.NodeType != "" {
			label += "<br/><i>" + mermaidEscape(n.NodeType) + "</i>"
		}
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", ref, label)
	}
	for _, e := range g.Edges {
		src, srcOK := ids[e.Source]
		dst, dstOK := ids[e.Target]
		if !srcOK || !dstOK {
			continue
		}
		if e.RelationLabel == "" {
			fmt.Fprintf(&b, "  %s --> %s\n", src, dst)
			continue
		}
		fmt.Fprintf(&b, "  %s -->|\"%s\"| %s\n", src, mermaidEscape(e.RelationLabel), dst)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var mermaidReplacer = strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;")

func mermaidEscape(s string) string {
	return mermaidReplacer.Replace(s)
}

func writeDOT(w io.Writer, g graph.Graph) error {
	var b strings.Builder
	b.WriteString("digraph knowledge_graph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	known := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, ok := known[n.ID]; ok {
			continue
		}
		known[n.ID] = struct{}{}
		label := nodeLabel(n)
		if n.NodeType != "" {
			label += "\n" + n.NodeType
		}
		fmt.Fprintf(&b, "  %s [label=%s];\n", strconv.Quote(n.ID), strconv.Quote(label))
	}
	for _, e := range g.Edges {
		_, srcOK := known[e.Source]
		_, dstOK := known[e.Target]
		if !srcOK || !dstOK {
			continue
		}
		fmt.Fprintf(&b, "  %s -> %s", strconv.Quote(e.Source), strconv.Quote(e.Target))
		if e.RelationLabel != "" {
			fmt.Fprintf(&b, " [label=%s]", strconv.Quote(e.RelationLabel))
		}
		b.WriteString(";\n")
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
