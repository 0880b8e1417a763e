package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/odatascope/odatascope/internal/explorer"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "odatascope [source]",
	Short: "Interactive OData v4 metadata explorer",
	Long: `odatascope parses OData v4 EDMX/CSDL metadata documents and lets you
browse entities, relationships, and nested complex types interactively.

The source may be a file path, an http(s) URL to a $metadata endpoint,
or "-" to read from stdin. Running without a subcommand launches the
interactive explorer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := ""
		if len(args) > 0 {
			source = args[0]
		}
		return runExplorer(source)
	},
}

func runExplorer(source string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}

	st := newStore(cfg)
	e := explorer.New(st, logger)
	return e.Run(context.Background(), source)
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.odatascope/odatascope.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
