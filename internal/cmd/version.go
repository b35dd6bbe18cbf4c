package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pulumi/cbom-tools/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cbom-tools",
		Run: func(command *cobra.Command, args []string) {
			fmt.Fprintln(command.OutOrStdout(), version.Version)
		},
	}
}
