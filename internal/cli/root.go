// Package cli provides the command-line interface for kgadmin.
package cli

import (
	"fmt"
	"os"

	"github.com/ai-bank/kgadmin/internal/cli/commands"
	"github.com/ai-bank/kgadmin/internal/cli/config"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kgadmin",
		Short: "kgadmin - Knowledge Graph Administration",
		Long: `kgadmin is a client for a knowledge-graph REST backend.

It keeps a resident copy of the graph in memory, grows it by expanding
nodes, searching and discovering paths, writes nodes and relationships
through the backend, and serves the same session to a local workbench.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration with CLI flags
			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Using backend: %s (%s)\n", cfg.BaseURL, cfg.Environment)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Knowledge graph administration client
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./kgadmin.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "Backend base URL (default: "+config.DefaultBaseURL+")")
	rootCmd.PersistentFlags().String("token", "", "Bearer token sent to the backend")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Backend request timeout (default: "+config.DefaultTimeout.String()+")")
	rootCmd.PersistentFlags().Int("page-size", 0, "Page size for full graph loads (0 loads everything)")
	rootCmd.PersistentFlags().String("env", "", "Environment name selecting a backend block from the config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")
	rootCmd.PersistentFlags().String("journal", "", "SQLite file to journal operations to (default: disabled)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for env flag
	_ = rootCmd.RegisterFlagCompletionFunc("env", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		// Return common environment names
		return []string{"dev", "staging", "prod"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
	}))
	rootCmd.AddCommand(commands.NewGraphCommand())
	rootCmd.AddCommand(commands.NewNodeCommand())
	rootCmd.AddCommand(commands.NewRelationCommand())
	rootCmd.AddCommand(commands.NewProblemCommand())
	rootCmd.AddCommand(commands.NewStepCommand())
	rootCmd.AddCommand(commands.NewShellCommand())
	rootCmd.AddCommand(commands.NewUICommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for kgadmin.

To load completions:

Bash:
  $ source <(kgadmin completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ kgadmin completion bash > /etc/bash_completion.d/kgadmin
  # macOS:
  $ kgadmin completion bash > $(brew --prefix)/etc/bash_completion.d/kgadmin

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ kgadmin completion zsh > "${fpath[1]}/_kgadmin"

Fish:
  $ kgadmin completion fish | source

PowerShell:
  PS> kgadmin completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
