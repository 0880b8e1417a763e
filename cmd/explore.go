package cmd

import (
	"github.com/spf13/cobra"
)

var exploreCmd = &cobra.Command{
	Use:   "explore <source>",
	Short: "Browse a metadata document interactively",
	Long: `Launch the interactive terminal explorer for an OData v4 metadata
document. The source may be a file path, an http(s) URL, or "-" for stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExplorer(args[0])
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
