package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docedit",
		Short:         "Position-addressed document editing tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("pretty", false, "Indent JSON output")

	root.AddCommand(
		newToolsCmd(),
		newMD2NodesCmd(),
		newImportCmd(),
		newExportCmd(),
		newStructureCmd(),
		newRunCmd(),
	)
	return root
}
