package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/ai-bank/kgadmin/internal/journal"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/spf13/cobra"
)

// ErrNoJournal is returned by history when no journal path is configured.
var ErrNoJournal = errors.New("no journal configured\nHint: set journal in kgadmin.yaml, KGADMIN_JOURNAL or --journal")

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Op      string
	Outcome string
	Limit   int
	Prune   time.Duration
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled operations",
		Long: `List the operations recorded in the operation journal, newest first.

Operations are journaled only when a journal file is configured (journal in
kgadmin.yaml, KGADMIN_JOURNAL or --journal). Every command and the workbench
write to it.`,
		Example: `  # Last 20 operations
  kgadmin history --journal ~/.kgadmin/journal.db

  # Failed writes only
  kgadmin history --op delete_node --outcome failure

  # Drop entries older than 30 days, then list
  kgadmin history --prune 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "Only show this operation (e.g. load, search, create_node)")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "Only show this outcome: success, empty or failure")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().DurationVar(&opts.Prune, "prune", 0, "Delete entries older than this before listing")

	_ = cmd.RegisterFlagCompletionFunc("outcome", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(session.OutcomeSuccess), string(session.OutcomeEmpty), string(session.OutcomeFailure)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	c := NewCommandContextWithoutBackend(cmd)
	if c.Cfg.Journal == "" {
		return ErrNoJournal
	}
	switch session.Outcome(opts.Outcome) {
	case "", session.OutcomeSuccess, session.OutcomeEmpty, session.OutcomeFailure:
	default:
		return fmt.Errorf("invalid outcome %q: expected success, empty or failure", opts.Outcome)
	}
	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", opts.Limit)
	}

	store, err := journal.Open(c.Cfg.Journal)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if opts.Prune > 0 {
		removed, err := store.Prune(ctx, time.Now().Add(-opts.Prune))
		if err != nil {
			return err
		}
		c.Renderer.Info(fmt.Sprintf("pruned %d entries older than %s", removed, opts.Prune))
	}

	entries, err := store.List(ctx, journal.Query{Op: opts.Op, Outcome: opts.Outcome, Limit: opts.Limit})
	if err != nil {
		return err
	}
	return c.Renderer.History(entries)
}
