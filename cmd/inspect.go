package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	inspectOutput string
	inspectEntity string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <source>",
	Short: "Parse a metadata document and print a summary",
	Long: `Parse an OData v4 metadata document and print a summary of its
schemas, entities, complex types, and enums. With --output the full
normalized model is written as YAML; with --entity a single entity's
definition is printed instead.`,
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

		if inspectEntity != "" {
			e := md.EntityByName(inspectEntity)
			if e == nil {
				return fmt.Errorf("entity not found: %s", inspectEntity)
			}
			data, err := yaml.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshaling entity: %w", err)
			}
			os.Stdout.Write(data)
			return nil
		}

		fmt.Println(md.Summary())

		if inspectOutput != "" {
			if err := md.WriteYAML(inspectOutput); err != nil {
				return fmt.Errorf("writing model: %w", err)
			}
			fmt.Printf("\nModel written to %s\n", inspectOutput)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "", "write the normalized model to a YAML file")
	inspectCmd.Flags().StringVarP(&inspectEntity, "entity", "e", "", "print a single entity definition")
	rootCmd.AddCommand(inspectCmd)
}
