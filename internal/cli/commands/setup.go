package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ai-bank/kgadmin/internal/cli/config"
	"github.com/ai-bank/kgadmin/internal/cli/output"
	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/journal"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/ai-bank/kgadmin/internal/notifier"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/spf13/cobra"
)

// ErrOperationFailed is returned when a session operation reported failure.
// The cause has already been shown to the user as a notification.
var ErrOperationFailed = errors.New("operation failed")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Client   *kgclient.Client
	Session  *session.Session
	// Journal is nil unless a journal path is configured.
	Journal *journal.Store

	events chan notifier.Event
}

// NewCommandContext creates a CommandContext with a backend client and a
// fresh session whose notifications are printed by Flush.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	c := NewCommandContextWithoutBackend(cmd)

	client, err := kgclient.New(kgclient.Options{
		BaseURL: c.Cfg.BaseURL,
		Token:   c.Cfg.Token,
		Timeout: c.Cfg.Timeout,
		Logger:  c.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	c.Client = client

	var page *kgclient.PageQuery
	if c.Cfg.PageSize > 0 {
		page = &kgclient.PageQuery{PageNum: 1, PageSize: c.Cfg.PageSize}
	}
	c.openJournal()
	c.Session = session.New(session.Options{
		Fetcher:  client,
		Logger:   c.Logger,
		Page:     page,
		Observer: c.journalObserver(),
	})
	c.events = c.Session.Notifier().SubscribeBuffered(64)

	cleanup := func() {
		_ = c.Flush()
		c.Session.Notifier().Unsubscribe(c.events)
		c.closeJournal()
	}
	return c, cleanup, nil
}

// openJournal opens the configured journal. A journal that cannot be
// opened is reported and skipped; commands still run without it.
func (c *CommandContext) openJournal() {
	if c.Cfg.Journal == "" || c.Journal != nil {
		return
	}
	store, err := journal.Open(c.Cfg.Journal)
	if err != nil {
		c.Logger.Warn("journal disabled", "path", c.Cfg.Journal, "error", err)
		return
	}
	c.Journal = store
}

// journalObserver returns the session observer for the open journal, or nil.
func (c *CommandContext) journalObserver() session.Observer {
	if c.Journal == nil {
		return nil
	}
	return journal.NewObserver(c.Journal, c.Cfg.Environment, c.Logger)
}

func (c *CommandContext) closeJournal() {
	if c.Journal == nil {
		return
	}
	if err := c.Journal.Close(); err != nil {
		c.Logger.Warn("failed to close journal", "error", err)
	}
	c.Journal = nil
}

// NewCommandContextWithoutBackend creates a CommandContext without a client.
// Useful for commands that work offline.
func NewCommandContextWithoutBackend(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Flush prints every pending session notification and reports whether any
// of them was an error.
func (c *CommandContext) Flush() bool {
	if c.events == nil {
		return false
	}
	hadError := false
	for _, n := range notifier.Notifications(notifier.Drain(c.events)) {
		printNotification(c.Renderer, n)
		if n.Level == notifier.LevelError {
			hadError = true
		}
	}
	return hadError
}

func printNotification(r *output.Renderer, n notifier.Notification) {
	switch n.Level {
	case notifier.LevelSuccess:
		r.Success(n.Message)
	case notifier.LevelWarning:
		r.Warning(n.Message)
	case notifier.LevelError:
		r.Error(n.Message)
	default:
		r.Info(n.Message)
	}
}

func failed(op string) error {
	return fmt.Errorf("%s: %w", op, ErrOperationFailed)
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		BaseURL:      strings.TrimRight(getEnvOrDefault("KGADMIN_BASE_URL", config.DefaultBaseURL), "/"),
		Token:        os.Getenv("KGADMIN_TOKEN"),
		Timeout:      config.DefaultTimeout,
		Environment:  getEnvOrDefault("KGADMIN_ENVIRONMENT", config.DefaultEnv),
		Verbose:      os.Getenv("KGADMIN_VERBOSE") == "true",
		LogLevel:     config.DefaultLogLevel,
		OutputFormat: getEnvOrDefault("KGADMIN_OUTPUT", config.DefaultOutput),
		Journal:      os.Getenv("KGADMIN_JOURNAL"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// parseProperties turns key=value pairs into a property bag. Values are
// read as YAML scalars, so 35 is a number and '35' stays a string.
func parseProperties(pairs []string) (graph.Properties, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	props := make(graph.Properties, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q: expected key=value", p)
		}
		props[key] = graph.ParseScalar(value)
	}
	return props, nil
}

// searchOptions holds the flags shared by search commands.
type searchOptions struct {
	Scope string
	Field string
	Mode  string
}

func (o *searchOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Scope, "scope", string(graph.ScopeAll), "Search scope: name, property or all")
	cmd.Flags().StringVar(&o.Field, "field", graph.AllProperties, "Property to match when the scope includes properties")
	cmd.Flags().StringVar(&o.Mode, "mode", string(graph.ModeFuzzy), "Match mode: fuzzy or exact")

	_ = cmd.RegisterFlagCompletionFunc("scope", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(graph.ScopeName), string(graph.ScopeProperty), string(graph.ScopeAll)}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(graph.ModeFuzzy), string(graph.ModeExact)}, cobra.ShellCompDirectiveNoFileComp
	})
}

func (o *searchOptions) options() (graph.SearchOptions, error) {
	scope, err := graph.ParseSearchScope(o.Scope)
	if err != nil {
		return graph.SearchOptions{}, err
	}
	mode, err := graph.ParseSearchMode(o.Mode)
	if err != nil {
		return graph.SearchOptions{}, err
	}
	return graph.SearchOptions{Scope: scope, PropertyField: o.Field, Mode: mode}, nil
}

func (o *searchOptions) params(keyword string) (kgclient.SearchParams, error) {
	opts, err := o.options()
	if err != nil {
		return kgclient.SearchParams{}, err
	}
	return kgclient.SearchParams{
		Keyword:       keyword,
		SearchType:    opts.Scope,
		PropertyField: opts.PropertyField,
		SearchMode:    opts.Mode,
	}, nil
}
