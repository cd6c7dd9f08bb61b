package commands

import (
	"maps"

	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/spf13/cobra"
)

// relationOptions holds the flags of relation create and update.
type relationOptions struct {
	File       string
	Source     string
	Target     string
	Label      string
	Properties []string
}

func (o *relationOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.File, "file", "f", "", "Read the relationship from a YAML or JSON file")
	cmd.Flags().StringVar(&o.Source, "source", "", "Source node id")
	cmd.Flags().StringVar(&o.Target, "target", "", "Target node id")
	cmd.Flags().StringVar(&o.Label, "label", "", "Relation label")
	cmd.Flags().StringArrayVarP(&o.Properties, "property", "p", nil, "Property as key=value (repeatable)")
}

func (o *relationOptions) input() (kgclient.RelationInput, error) {
	var in kgclient.RelationInput
	if o.File != "" {
		if err := readInputFile(o.File, &in); err != nil {
			return in, err
		}
	}
	if o.Source != "" {
		in.Source = o.Source
	}
	if o.Target != "" {
		in.Target = o.Target
	}
	if o.Label != "" {
		in.RelationLabel = o.Label
	}
	props, err := parseProperties(o.Properties)
	if err != nil {
		return in, err
	}
	if len(props) > 0 {
		if in.Properties == nil {
			in.Properties = props
		} else {
			maps.Copy(in.Properties, props)
		}
	}
	return in, nil
}

// NewRelationCommand creates the relation command.
func NewRelationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relation",
		Aliases: []string{"rel"},
		Short:   "Create, update and delete relationships",
		Long:    `Write relationships between nodes on the knowledge-graph backend.`,
		Example: `  kgadmin relation create --source 1 --target 5 --label 拥有 -p since=2018-03-15
  kgadmin relation update e1 --source 1 --target 6 --label 拥有
  kgadmin relation delete e1`,
	}

	cmd.AddCommand(newRelationCreateCommand())
	cmd.AddCommand(newRelationUpdateCommand())
	cmd.AddCommand(newRelationDeleteCommand())
	return cmd
}

func newRelationCreateCommand() *cobra.Command {
	opts := &relationOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a relationship",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := opts.input()
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cc.Session.CreateRelation(cmd.Context(), in) {
				cc.Flush()
				return failed("relation create")
			}
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newRelationUpdateCommand() *cobra.Command {
	opts := &relationOptions{}
	cmd := &cobra.Command{
		Use:   "update <relationId>",
		Short: "Update a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := opts.input()
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cc.Session.UpdateRelation(cmd.Context(), args[0], in) {
				cc.Flush()
				return failed("relation update")
			}
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newRelationDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <relationId>",
		Short: "Delete a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cc.Session.DeleteRelation(cmd.Context(), args[0]) {
				cc.Flush()
				return failed("relation delete")
			}
			return nil
		},
	}
}
