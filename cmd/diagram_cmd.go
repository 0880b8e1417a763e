package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/odatascope/odatascope/internal/diagram"
)

var (
	diagramRoot   string
	diagramExpand []string
	diagramJSON   bool
)

var diagramCmd = &cobra.Command{
	Use:   "diagram <source>",
	Short: "Build a relationship diagram from a root entity",
	Long: `Build the bounded expansion graph rooted at an entity. By default
only the root is expanded; --expand adds further expanded nodes. The
laid-out graph is printed per depth level, or as JSON with --json.`,
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

		root := md.EntityByName(diagramRoot)
		if root == nil {
			return fmt.Errorf("root entity not found: %s", diagramRoot)
		}

		expanded := map[string]bool{root.Name: true}
		for _, id := range diagramExpand {
			expanded[id] = true
		}

		dcfg := diagramConfig(cfg)
		builder := diagram.NewBuilder(dcfg)
		graph := builder.Build(md, root, root, expanded)
		diagram.Layout(graph.Nodes, dcfg.Layout)

		if diagramJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(graph)
		}

		printGraph(graph)
		return nil
	},
}

func printGraph(graph *diagram.Graph) {
	byDepth := make(map[int][]*diagram.Node)
	for _, n := range graph.Nodes {
		byDepth[n.Depth] = append(byDepth[n.Depth], n)
	}
	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	for _, d := range depths {
		row := byDepth[d]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		fmt.Printf("depth %d:", d)
		for _, n := range row {
			marker := ""
			if n.IsRoot {
				marker = "*"
			}
			fmt.Printf("  [%s%s]", n.DisplayName, marker)
		}
		fmt.Println()
	}

	if len(graph.Links) > 0 {
		fmt.Println()
		for _, l := range graph.Links {
			arrow := "──"
			if l.IsCollection {
				arrow = "─<"
			}
			suffix := ""
			if l.IsNested {
				suffix = " (nested)"
			}
			fmt.Printf("%s %s %s %s%s\n", l.Source, arrow, l.NavProperty, l.Target, suffix)
		}
	}
}

func init() {
	diagramCmd.Flags().StringVarP(&diagramRoot, "root", "r", "", "root entity name (required)")
	diagramCmd.Flags().StringSliceVar(&diagramExpand, "expand", nil, "additional node IDs to expand")
	diagramCmd.Flags().BoolVar(&diagramJSON, "json", false, "emit the laid-out graph as JSON")
	diagramCmd.MarkFlagRequired("root")
	rootCmd.AddCommand(diagramCmd)
}
