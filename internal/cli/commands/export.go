package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ai-bank/kgadmin/internal/cli/output"
	"github.com/ai-bank/kgadmin/internal/notifier"
	"github.com/spf13/cobra"
)

// ExportOptions holds options for the graph export command.
type ExportOptions struct {
	filterOptions
	Format string
	Out    string
}

func newGraphExportCommand() *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the graph as a diagram or a reloadable file",
		Long: `Fetch the full graph and write it in one of several formats.

Formats:
  mermaid  Mermaid flowchart, for Markdown documents
  dot      Graphviz digraph
  yaml     graph file accepted by "shell import" and "ui --watch"
  json     same as yaml, encoded as JSON

Backend notifications go to stderr so the export can be piped.`,
		Example: `  # Render accounts and banks with Graphviz
  kgadmin graph export --format dot --node-type Account,Bank | dot -Tsvg > graph.svg

  # Snapshot the graph for the workbench to watch
  kgadmin graph export --format yaml --out graphs/snapshot.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraphExport(cmd, opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", string(output.ExportMermaid), "Export format (mermaid|dot|yaml|json)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write to this file instead of stdout")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		formats := make([]string, 0, len(output.ExportFormats))
		for _, f := range output.ExportFormats {
			formats = append(formats, string(f))
		}
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runGraphExport(cmd *cobra.Command, opts *ExportOptions) error {
	format, err := output.ParseExportFormat(opts.Format)
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ok := cc.Session.FetchGraphData(cmd.Context())
	cc.flushDiagnostics()
	if !ok {
		return failed("graph export")
	}

	var buf bytes.Buffer
	if err := output.Export(&buf, cc.Session.Filtered(opts.NodeTypes, opts.RelationTypes), format); err != nil {
		return err
	}

	if opts.Out == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.Out, buf.Bytes(), 0o644); err != nil { //nolint:gosec // export is meant to be shared
		return fmt.Errorf("failed to write %s: %w", opts.Out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s export to %s\n", format, opts.Out)
	return nil
}

// flushDiagnostics prints pending notifications to stderr, keeping stdout
// for the exported document.
func (c *CommandContext) flushDiagnostics() {
	if c.events == nil {
		return
	}
	for _, n := range notifier.Notifications(notifier.Drain(c.events)) {
		_, _ = fmt.Fprintf(c.Renderer.ErrWriter(), "%s: %s\n", n.Level, n.Message)
	}
}
