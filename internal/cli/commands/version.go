package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the kgadmin version, the commit it was built from and the Go runtime.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, info.Version)
				return
			}
			_, _ = fmt.Fprintf(out, "kgadmin v%s\n", info.Version)
			_, _ = fmt.Fprintln(out, "Knowledge graph administration client")
			_, _ = fmt.Fprintf(out, "  commit: %s\n  built:  %s\n  go:     %s %s/%s\n",
				info.GitCommit, info.BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
