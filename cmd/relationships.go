package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odatascope/odatascope/internal/relationships"
)

var relationshipsJSON bool

var relationshipsCmd = &cobra.Command{
	Use:     "relationships <source>",
	Aliases: []string{"rels"},
	Short:   "List entity relationships",
	Long: `Extract the relationship edges of a metadata document: one edge per
navigation property whose target entity is defined in the document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadEnvironment()
		if err != nil {
			return err
		}

		md, err := acquireMetadata(context.Background(), cfg, args[0])
		if err != nil {
			return err
		}

		rels := relationships.Extract(md)

		if relationshipsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rels)
		}

		for _, r := range rels {
			arrow := "──"
			if r.IsCollection {
				arrow = "─<"
			}
			fmt.Printf("%s %s %s %s\n", r.SourceEntity, arrow, r.NavProperty, r.TargetEntity)
		}
		fmt.Printf("\n%d relationships.\n", len(rels))
		return nil
	},
}

func init() {
	relationshipsCmd.Flags().BoolVar(&relationshipsJSON, "json", false, "emit relationships as JSON")
	rootCmd.AddCommand(relationshipsCmd)
}
