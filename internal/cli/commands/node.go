package commands

import (
	"fmt"
	"maps"
	"os"

	"github.com/ai-bank/kgadmin/internal/kgclient"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// nodeOptions holds the flags of node create and update.
type nodeOptions struct {
	File       string
	Name       string
	NodeType   string
	Properties []string
}

func (o *nodeOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.File, "file", "f", "", "Read the node from a YAML or JSON file")
	cmd.Flags().StringVar(&o.Name, "name", "", "Node name")
	cmd.Flags().StringVar(&o.NodeType, "type", "", "Node type (Problem nodes use the problem envelope)")
	cmd.Flags().StringArrayVarP(&o.Properties, "property", "p", nil, "Property as key=value (repeatable)")
}

// input merges the file, if any, with the flags. Flags win.
func (o *nodeOptions) input() (kgclient.NodeInput, error) {
	var in kgclient.NodeInput
	if o.File != "" {
		if err := readInputFile(o.File, &in); err != nil {
			return in, err
		}
	}
	if o.Name != "" {
		in.Name = o.Name
	}
	if o.NodeType != "" {
		in.NodeType = o.NodeType
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

// readInputFile decodes a YAML (or JSON) document into v.
func readInputFile(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// NewNodeCommand creates the node command.
func NewNodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Create, update and delete nodes",
		Long: `Write nodes on the knowledge-graph backend.

Nodes of type Problem are sent in the problem envelope: problem_type and
description become top-level fields and every other property is carried as an
attribute. Other nodes are sent as they are.`,
		Example: `  kgadmin node create --name 张三 --type Person -p age=35 -p phone="'13812345678'"
  kgadmin node create -f problem.yaml
  kgadmin node update 42 --name 李四
  kgadmin node delete 42`,
	}

	cmd.AddCommand(newNodeCreateCommand())
	cmd.AddCommand(newNodeUpdateCommand())
	cmd.AddCommand(newNodeDeleteCommand())
	return cmd
}

func newNodeCreateCommand() *cobra.Command {
	opts := &nodeOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a node",
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

			if !cc.Session.CreateNode(cmd.Context(), in) {
				cc.Flush()
				return failed("node create")
			}
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newNodeUpdateCommand() *cobra.Command {
	opts := &nodeOptions{}
	cmd := &cobra.Command{
		Use:   "update <nodeId>",
		Short: "Update a node",
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

			if !cc.Session.UpdateNode(cmd.Context(), args[0], in) {
				cc.Flush()
				return failed("node update")
			}
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newNodeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <nodeId>",
		Short: "Delete a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cc.Session.DeleteNode(cmd.Context(), args[0]) {
				cc.Flush()
				return failed("node delete")
			}
			return nil
		},
	}
}
