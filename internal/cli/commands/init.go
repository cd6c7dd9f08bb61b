package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ai-bank/kgadmin/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a kgadmin.yaml configuration",
		Long: `Create a kgadmin.yaml configuration file with every setting documented.

Use --example to also create input files for the write commands and a graph
fragment for the workbench's --watch option:
  - graphs/sample.yaml     graph fragment (ui --watch, shell import)
  - problems/problem.yaml  Problem node (node create -f)
  - steps/step.yaml        flow step (step create -f)`,
		Example: `  # Initialize in current directory
  kgadmin init

  # Initialize with example input files
  kgadmin init --example

  # Initialize in a new directory
  kgadmin init ops-workspace --example

  # Force overwrite existing config
  kgadmin init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Also create example graph, problem and step files")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "kgadmin.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("kgadmin.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}

	files, err := listTemplateFiles(template)
	if err != nil {
		return err
	}
	groups := groupTemplateFiles(files)
	for _, group := range []string{"config", "graphs", "problems", "steps"} {
		if len(groups[group]) == 0 {
			continue
		}
		if template != "minimal" {
			r.Header(2, titleCase(group))
		}
		for _, f := range groups[group] {
			r.StatusLine(f, "success", "")
		}
	}

	r.Println("")
	r.Success("kgadmin workspace initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Set base_url in kgadmin.yaml")
	r.Println("  2. Run 'kgadmin doctor' to check the backend")
	r.Println("  3. Run 'kgadmin graph show' or 'kgadmin ui'")

	return nil
}
