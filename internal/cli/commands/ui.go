package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/ai-bank/kgadmin/internal/cli/config"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/ai-bank/kgadmin/internal/metrics"
	"github.com/ai-bank/kgadmin/internal/session"
	"github.com/ai-bank/kgadmin/internal/ui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port          int
	SessionSecret string
	Demo          bool
	Open          bool
	NoBrowser     bool
	Watch         string
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the graph workbench server",
		Long: `Start a local server exposing one resident graph session over HTTP.

The workbench provides:
- Graph reads with per-browser type filters
- Node expansion, backend search and path discovery
- Node and relationship writes
- A server-sent event stream of notifications
- Prometheus metrics on /metrics
- Optional re-import of a watched graph file`,
		Example: `  # Start on the default port
  kgadmin ui

  # Start on a custom port with the sample graph
  kgadmin ui --port 3000 --demo

  # Start without opening a browser
  kgadmin ui --no-browser

  # Re-import a local graph file whenever it is saved
  kgadmin ui --demo --watch fraud-ring.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultUIPort))
	cmd.Flags().StringVar(&opts.SessionSecret, "session-secret", "", "Cookie signing secret (default: random per run)")
	cmd.Flags().BoolVar(&opts.Demo, "demo", false, "Start from the sample graph instead of the backend")
	cmd.Flags().BoolVar(&opts.Open, "open", true, "Open the workbench in a browser")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().StringVar(&opts.Watch, "watch", "", "Graph file (YAML or JSON) to import and re-import on change")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cc := NewCommandContextWithoutBackend(cmd)
	cfg, logger := cc.Cfg, cc.Logger

	// Flags were merged into the config by the root command; these cover
	// the fallback config used when it did not run.
	uiCfg := cfg.GetUIConfig()
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	secret := uiCfg.SessionSecret
	if opts.SessionSecret != "" {
		secret = opts.SessionSecret
	}
	if secret == "" {
		// Cookies from earlier runs stop validating; their filters are dropped.
		secret = uuid.NewString()
	}
	demo := uiCfg.Demo || opts.Demo
	autoOpen := uiCfg.AutoOpen
	if cmd.Flags().Changed("open") {
		autoOpen = opts.Open
	}
	if opts.NoBrowser {
		autoOpen = false
	}
	watch := uiCfg.Watch
	if opts.Watch != "" {
		watch = opts.Watch
	}

	client, err := kgclient.New(kgclient.Options{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	var page *kgclient.PageQuery
	if cfg.PageSize > 0 {
		page = &kgclient.PageQuery{PageNum: 1, PageSize: cfg.PageSize}
	}
	collector := metrics.NewCollector()
	cc.openJournal()
	defer cc.closeJournal()
	sess := session.New(session.Options{
		Fetcher:  client,
		Logger:   logger,
		Observer: session.Observers(collector, cc.journalObserver()),
		Page:     page,
	})

	server := ui.NewServer(ui.Config{
		Session:       sess,
		Metrics:       collector,
		Port:          port,
		SessionSecret: secret,
		Demo:          demo,
		WatchFile:     watch,
		Logger:        logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	r := cc.Renderer
	r.Info(fmt.Sprintf("Starting workbench on %s (backend %s)", url, cfg.BaseURL))
	if demo {
		r.Muted("Demo mode: starting from the sample graph")
	}
	if watch != "" {
		r.Muted(fmt.Sprintf("Watching %s for changes", watch))
	}
	if cc.Journal != nil {
		r.Muted(fmt.Sprintf("Journaling operations to %s", cc.Journal.Path()))
	}
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
