package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const shellPrompt = "kg> "

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	var noLoad bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Explore the graph interactively",
		Long: `Start an interactive shell over one resident graph. Fragments fetched by
expand, search and path are merged into it, so the view grows as you explore.

The full graph is loaded on start unless --no-load is given.`,
		Example: `  kgadmin shell
  kgadmin shell --no-load`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, noLoad)
		},
	}
	cmd.Flags().BoolVar(&noLoad, "no-load", false, "Start with an empty graph")
	return cmd
}

func runShell(cmd *cobra.Command, noLoad bool) error {
	ctx := cmd.Context()

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     shellHistoryFile(),
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "kgadmin shell (backend: %s)\n", cc.Client.BaseURL())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type help for commands, quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	sh := newShell(cc, cmd.OutOrStdout())
	if !noLoad {
		_, _ = sh.exec(ctx, "load")
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		quit, err := sh.exec(ctx, line)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		if quit {
			break
		}
	}
	return nil
}

// shell runs one line at a time against a CommandContext.
type shell struct {
	cc     *CommandContext
	help   io.Writer
	filter filterOptions
}

func newShell(cc *CommandContext, help io.Writer) *shell {
	return &shell{cc: cc, help: help}
}

// exec runs one shell line. It reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(args[0]), args[1:]
	defer s.cc.Flush()

	sess := s.cc.Session
	r := s.cc.Renderer

	switch name {
	case "quit", "exit":
		return true, nil

	case "help":
		printShellHelp(s.help)
		return false, nil

	case "load", "refresh":
		sess.FetchGraphData(ctx)
		return false, nil

	case "expand":
		if len(args) != 1 {
			return false, errors.New("usage: expand <nodeId>")
		}
		sess.FetchNodeRelations(ctx, args[0])
		return false, nil

	case "search":
		var opts searchOptions
		rest, err := parseShellFlags("search", args, opts.flags)
		if err != nil {
			return false, err
		}
		if len(rest) == 0 {
			return false, errors.New("usage: search <keyword> [--scope S] [--field F] [--mode M]")
		}
		params, err := opts.params(strings.Join(rest, " "))
		if err != nil {
			return false, err
		}
		nodes := sess.SearchNodes(ctx, params)
		s.cc.Flush()
		if len(nodes) == 0 {
			return false, nil
		}
		return false, r.Nodes("Search results", nodes)

	case "find":
		var opts searchOptions
		rest, err := parseShellFlags("find", args, opts.flags)
		if err != nil {
			return false, err
		}
		if len(rest) == 0 {
			return false, errors.New("usage: find <keyword> [--scope S] [--field F] [--mode M]")
		}
		searchOpts, err := opts.options()
		if err != nil {
			return false, err
		}
		return false, r.Nodes("Matching nodes", sess.FindLocal(strings.Join(rest, " "), searchOpts))

	case "path":
		var maxDepth int
		rest, err := parseShellFlags("path", args, func(fs *pflag.FlagSet) {
			fs.IntVar(&maxDepth, "max-depth", kgclient.DefaultMaxDepth, "")
		})
		if err != nil {
			return false, err
		}
		if len(rest) != 2 {
			return false, errors.New("usage: path <sourceId> <targetId> [--max-depth N]")
		}
		p := sess.FindPath(ctx, kgclient.PathParams{SourceID: rest[0], TargetID: rest[1], MaxDepth: maxDepth})
		s.cc.Flush()
		if len(p.Edges) == 0 {
			return false, nil
		}
		return false, r.Graph(fmt.Sprintf("Path %s → %s", rest[0], rest[1]), p)

	case "filter":
		if len(args) == 1 && args[0] == "clear" {
			s.filter = filterOptions{}
			r.Info("filter cleared")
			return false, nil
		}
		var next filterOptions
		if _, err := parseShellFlags("filter", args, func(fs *pflag.FlagSet) {
			fs.StringSliceVar(&next.NodeTypes, "node-type", nil, "")
			fs.StringSliceVar(&next.RelationTypes, "relation-type", nil, "")
		}); err != nil {
			return false, err
		}
		s.filter = next
		r.Info(s.describeFilter())
		return false, nil

	case "types":
		return false, r.Types(sess.NodeTypes(), sess.RelationTypes())

	case "show":
		if len(args) == 1 {
			n, ok := sess.Node(args[0])
			if !ok {
				return false, fmt.Errorf("node %q is not in the graph", args[0])
			}
			return false, r.Node(n, sess.Graph().Edges)
		}
		return false, r.Graph("Resident graph", sess.Filtered(s.filter.NodeTypes, s.filter.RelationTypes))

	case "sample":
		sess.LoadSample()
		return false, nil

	case "import":
		if len(args) != 1 {
			return false, errors.New("usage: import <file>")
		}
		fragment, err := graph.ReadFile(args[0])
		if err != nil {
			return false, err
		}
		sess.Import(fragment)
		return false, nil

	case "reset":
		sess.Reset()
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type help for commands)", name)
	}
}

func (s *shell) describeFilter() string {
	if len(s.filter.NodeTypes) == 0 && len(s.filter.RelationTypes) == 0 {
		return "no filter"
	}
	parts := make([]string, 0, 2)
	if len(s.filter.NodeTypes) > 0 {
		parts = append(parts, "node types: "+strings.Join(s.filter.NodeTypes, ", "))
	}
	if len(s.filter.RelationTypes) > 0 {
		parts = append(parts, "relation types: "+strings.Join(s.filter.RelationTypes, ", "))
	}
	return "filter set (" + strings.Join(parts, "; ") + ")"
}

// flags registers the search flags on a shell flag set.
func (o *searchOptions) flags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Scope, "scope", string(graph.ScopeAll), "")
	fs.StringVar(&o.Field, "field", graph.AllProperties, "")
	fs.StringVar(&o.Mode, "mode", string(graph.ModeFuzzy), "")
}

// parseShellFlags parses args with the flags registered by define and
// returns the positional arguments.
func parseShellFlags(name string, args []string, define func(*pflag.FlagSet)) ([]string, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	define(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return fs.Args(), nil
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  load                          Replace the graph with the backend's full graph
  expand <nodeId>               Merge a node's neighbourhood
  search <keyword> [flags]      Backend search (--scope, --field, --mode), merged
  find <keyword> [flags]        Search the resident graph only
  path <from> <to> [--max-depth N]
                                Merge the relationships connecting two nodes
  filter [--node-type T,...] [--relation-type R,...]
                                Restrict what show renders (filter clear resets)
  types                         List node types and relation labels
  show [nodeId]                 Render the graph, or one node
  sample                        Replace the graph with the built-in sample
  import <file>                 Merge a graph from a YAML or JSON file
  reset                         Empty the graph
  help                          Show this help message
  quit / exit                   Leave the shell
`
	_, _ = fmt.Fprintln(w, help)
}

func shellCompleter() *readline.PrefixCompleter {
	searchFlags := []readline.PrefixCompleterInterface{
		readline.PcItem("--scope", readline.PcItem("name"), readline.PcItem("property"), readline.PcItem("all")),
		readline.PcItem("--field"),
		readline.PcItem("--mode", readline.PcItem("fuzzy"), readline.PcItem("exact")),
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("load"),
		readline.PcItem("expand"),
		readline.PcItem("search", searchFlags...),
		readline.PcItem("find", searchFlags...),
		readline.PcItem("path", readline.PcItem("--max-depth")),
		readline.PcItem("filter", readline.PcItem("--node-type"), readline.PcItem("--relation-type"), readline.PcItem("clear")),
		readline.PcItem("types"),
		readline.PcItem("show"),
		readline.PcItem("sample"),
		readline.PcItem("import"),
		readline.PcItem("reset"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
		readline.PcItem("exit"),
	)
}

// shellHistoryFile returns a per-user history path, or "" to disable history.
func shellHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "kgadmin")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "shell_history")
}
