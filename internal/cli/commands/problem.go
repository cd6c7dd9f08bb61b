package commands

import (
	"fmt"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/spf13/cobra"
)

// NewProblemCommand creates the problem command.
func NewProblemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "problem",
		Short: "Inspect problem nodes",
		Long: `Problem nodes describe an issue reported against the bank systems. Each
problem owns a chain of step nodes managed with "kgadmin step".`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ids",
		Short: "List the identities of every problem node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.Client.ListProblemIDs(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list problems: %w", err)
			}
			return cc.Renderer.List("Problems", res.Data)
		},
	})
	return cmd
}

// stepOptions holds the flags of step create.
type stepOptions struct {
	File string
	In   kgclient.StepInput
}

// NewStepCommand creates the step command.
func NewStepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Create and list problem steps",
		Long: `Steps are the nodes of a problem's resolution flow. A step file uses the
snake_case property names stored on step nodes (problem_id, step_id,
operation, system_a, table_name, field, condition_sql, reply_content).`,
		Example: `  kgadmin step create --problem-id P001 --step-id S1 --operation query --table t_account
  kgadmin step create -f step.yaml
  kgadmin step list P001`,
	}
	cmd.AddCommand(newStepCreateCommand())
	cmd.AddCommand(newStepListCommand())
	return cmd
}

func newStepCreateCommand() *cobra.Command {
	opts := &stepOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a step node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := opts.input(cmd)
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.Client.CreateStepNode(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create step: %w", err)
			}
			return renderResult(cc.Renderer, "step created", res)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.File, "file", "f", "", "Read the step from a YAML or JSON file")
	f.StringVar(&opts.In.ProblemID, "problem-id", "", "Owning problem id")
	f.StringVar(&opts.In.StepID, "step-id", "", "Step id")
	f.StringVar(&opts.In.Operation, "operation", "", "Operation performed by the step")
	f.StringVar(&opts.In.SystemA, "system", "", "System the step runs against")
	f.StringVar(&opts.In.TableName, "table", "", "Table read by the step")
	f.StringVar(&opts.In.Field, "field", "", "Field read by the step")
	f.StringVar(&opts.In.ConditionSQL, "condition", "", "SQL condition")
	f.StringVar(&opts.In.ReplyContent, "reply", "", "Reply content")
	return cmd
}

// input decodes the step file, if any, then applies the flags that were set.
func (o *stepOptions) input(cmd *cobra.Command) (kgclient.StepInput, error) {
	if o.File == "" {
		return o.In, nil
	}
	var props graph.Properties
	if err := readInputFile(o.File, &props); err != nil {
		return kgclient.StepInput{}, err
	}
	in, err := kgclient.StepFromProperties(props)
	if err != nil {
		return kgclient.StepInput{}, err
	}

	flags := map[string]*string{
		"problem-id": &in.ProblemID,
		"step-id":    &in.StepID,
		"operation":  &in.Operation,
		"system":     &in.SystemA,
		"table":      &in.TableName,
		"field":      &in.Field,
		"condition":  &in.ConditionSQL,
		"reply":      &in.ReplyContent,
	}
	for name, dst := range flags {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	return in, nil
}

func newStepListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <problemId>",
		Short: "List the steps of a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.Client.StepsByProblem(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list steps: %w", err)
			}
			return cc.Renderer.Records("Steps of "+args[0], res.Data)
		},
	}
}
