package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odatascope/odatascope/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <source> <query>",
	Short: "Search entities across names, properties, and navigations",
	Long: `Search a metadata document for entities whose name, namespace,
properties, property types, navigation properties, or keys contain the
query. Matches are grouped by namespace; entities matched through a
field other than their name carry a hint naming that field.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadEnvironment()
		if err != nil {
			return err
		}

		md, err := acquireMetadata(context.Background(), cfg, args[0])
		if err != nil {
			return err
		}
		query := args[1]

		matches := search.Filter(md, query)
		if len(matches) == 0 {
			fmt.Printf("No entities match %q.\n", query)
			return nil
		}

		groups := search.GroupByNamespace(matches)
		for _, ns := range search.SortedNamespaces(groups) {
			fmt.Printf("%s:\n", ns)
			for _, e := range groups[ns] {
				line := "  " + e.Name
				if hint := search.MatchHint(e, query); hint != "" {
					line += "  (" + hint + ")"
				}
				fmt.Println(line)
			}
		}
		fmt.Printf("\n%d of %d entities match.\n", len(matches), len(md.AllEntities))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
