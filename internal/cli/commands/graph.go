package commands

import (
	"encoding/json"
	"fmt"

	"github.com/ai-bank/kgadmin/internal/cli/output"
	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/spf13/cobra"
)

// filterOptions holds the type filters shared by graph views.
type filterOptions struct {
	NodeTypes     []string
	RelationTypes []string
}

func (o *filterOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.NodeTypes, "node-type", nil, "Only show nodes of these types (repeatable)")
	cmd.Flags().StringSliceVar(&o.RelationTypes, "relation-type", nil, "Only show relationships with these labels (repeatable)")
}

// NewGraphCommand creates the graph command and its subcommands.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Browse and administer the knowledge graph",
		Long: `Fetch graph fragments from the knowledge-graph backend, merge them into a
deduplicated view and render the result.

Every invocation starts from an empty graph. Use "kgadmin shell" to keep a
graph resident across several operations.`,
		Example: `  # Show the whole graph
  kgadmin graph show

  # Only people and the companies they work for
  kgadmin graph show --node-type Person --node-type Company

  # Neighbourhood of node 5
  kgadmin graph expand 5

  # Path between two nodes as JSON
  kgadmin graph path 1 7 -o json

  # Mermaid diagram of the graph
  kgadmin graph export --format mermaid`,
	}

	cmd.AddCommand(newGraphShowCommand())
	cmd.AddCommand(newGraphTypesCommand())
	cmd.AddCommand(newGraphNodeCommand())
	cmd.AddCommand(newGraphExpandCommand())
	cmd.AddCommand(newGraphSearchCommand())
	cmd.AddCommand(newGraphFindCommand())
	cmd.AddCommand(newGraphPathCommand())
	cmd.AddCommand(newGraphSampleCommand())
	cmd.AddCommand(newGraphRebuildCommand())
	cmd.AddCommand(newGraphClearCommand())
	cmd.AddCommand(newGraphVerifyCommand())
	cmd.AddCommand(newGraphExportCommand())

	return cmd
}

func newGraphShowCommand() *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch and render the full graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraphShow(cmd, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func runGraphShow(cmd *cobra.Command, opts *filterOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ok := cc.Session.FetchGraphData(cmd.Context())
	cc.Flush()
	if !ok {
		return failed("graph show")
	}
	return cc.Renderer.Graph("Knowledge graph", cc.Session.Filtered(opts.NodeTypes, opts.RelationTypes))
}

func newGraphTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the node types and relation labels in the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ok := cc.Session.FetchGraphData(cmd.Context())
			cc.Flush()
			if !ok {
				return failed("graph types")
			}
			return cc.Renderer.Types(cc.Session.NodeTypes(), cc.Session.RelationTypes())
		},
	}
}

func newGraphNodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "node <nodeId>",
		Short: "Show one node with its relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ok := cc.Session.FetchNodeRelations(cmd.Context(), args[0])
			cc.Flush()
			if !ok {
				return failed("graph node")
			}
			n, found := cc.Session.Node(args[0])
			if !found {
				return fmt.Errorf("node %q not found", args[0])
			}
			return cc.Renderer.Node(n, cc.Session.Graph().Edges)
		},
	}
}

func newGraphExpandCommand() *cobra.Command {
	var withGraph bool
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "expand <nodeId>",
		Short: "Merge a node's neighbourhood into the graph",
		Long: `Fetch the relationships of a node and merge its neighbourhood into the
graph. With --with-graph the full graph is loaded first, so the output shows
where the neighbourhood attaches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if withGraph && !cc.Session.FetchGraphData(cmd.Context()) {
				cc.Flush()
				return failed("graph expand")
			}
			ok := cc.Session.FetchNodeRelations(cmd.Context(), args[0])
			cc.Flush()
			if !ok {
				return failed("graph expand")
			}
			return cc.Renderer.Graph("Neighbourhood of "+args[0], cc.Session.Filtered(opts.NodeTypes, opts.RelationTypes))
		},
	}
	cmd.Flags().BoolVar(&withGraph, "with-graph", false, "Load the full graph before expanding")
	opts.register(cmd)
	return cmd
}

func newGraphSearchCommand() *cobra.Command {
	var withGraph bool
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search nodes on the backend",
		Long: `Run a keyword search on the backend. Matching nodes and the relationships
returned with them are merged into the graph; the matching nodes are listed.`,
		Example: `  kgadmin graph search 北京分行 --scope name
  kgadmin graph search CNY --scope property --field currency --mode exact`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params(args[0])
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if withGraph && !cc.Session.FetchGraphData(cmd.Context()) {
				cc.Flush()
				return failed("graph search")
			}
			nodes := cc.Session.SearchNodes(cmd.Context(), params)
			if cc.Flush() {
				return failed("graph search")
			}
			if withGraph {
				return cc.Renderer.Graph("Knowledge graph", cc.Session.Graph())
			}
			return cc.Renderer.Nodes("Search results", nodes)
		},
	}
	cmd.Flags().BoolVar(&withGraph, "with-graph", false, "Load the full graph first and render it after merging")
	opts.register(cmd)
	return cmd
}

func newGraphFindCommand() *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "find <keyword>",
		Short: "Search the fetched graph locally",
		Long: `Fetch the full graph and search its nodes locally. Matching is
case-insensitive; numbers and booleans are compared by their text form.`,
		Example: `  kgadmin graph find alice --scope name --mode exact
  kgadmin graph find 正常 --field status`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			searchOpts, err := opts.options()
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ok := cc.Session.FetchGraphData(cmd.Context())
			cc.Flush()
			if !ok {
				return failed("graph find")
			}
			return cc.Renderer.Nodes("Matching nodes", cc.Session.FindLocal(args[0], searchOpts))
		},
	}
	opts.register(cmd)
	return cmd
}

func newGraphPathCommand() *cobra.Command {
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "path <sourceId> <targetId>",
		Short: "Find the relationships connecting two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			path := cc.Session.FindPath(cmd.Context(), kgclient.PathParams{
				SourceID: args[0],
				TargetID: args[1],
				MaxDepth: maxDepth,
			})
			if cc.Flush() {
				return failed("graph path")
			}
			return cc.Renderer.Graph(fmt.Sprintf("Path %s → %s", args[0], args[1]), path)
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", kgclient.DefaultMaxDepth, "Maximum number of hops")
	return cmd
}

func newGraphSampleCommand() *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Render the built-in sample graph",
		Long:  `Render the built-in banking sample graph. No backend is contacted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContextWithoutBackend(cmd)
			return cc.Renderer.Graph("Sample graph", graph.Filter(graph.SampleGraph(), opts.NodeTypes, opts.RelationTypes))
		},
	}
	opts.register(cmd)
	return cmd
}

func newGraphRebuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Ask the backend to rebuild the graph from its sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.Client.RebuildGraph(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to rebuild graph: %w", err)
			}
			return renderResult(cc.Renderer, "graph rebuilt", res)
		},
	}
}

func newGraphClearCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every node and relationship on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the graph without --yes")
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.Client.ClearGraph(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clear graph: %w", err)
			}
			return renderResult(cc.Renderer, "graph cleared", res)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

func newGraphVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Run the backend consistency check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.Client.VerifyGraph(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to verify graph: %w", err)
			}
			return renderResult(cc.Renderer, "graph verified", res)
		},
	}
}

// renderResult prints a backend acknowledgement and any payload it carried.
func renderResult(r *output.Renderer, done string, res kgclient.Result[json.RawMessage]) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}

	msg := done
	if res.Msg != "" {
		msg += ": " + res.Msg
	}
	r.Success(msg)

	if len(res.Data) == 0 || string(res.Data) == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal(res.Data, &v); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response data: %w", err)
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println("```json")
		r.Println(string(pretty))
		r.Println("```")
		return nil
	}
	r.Println(string(pretty))
	return nil
}
