package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odatascope/odatascope/internal/config"
	"github.com/odatascope/odatascope/internal/diagram"
	"github.com/odatascope/odatascope/internal/fetch"
	"github.com/odatascope/odatascope/internal/logging"
	"github.com/odatascope/odatascope/internal/metadata"
	"github.com/odatascope/odatascope/internal/store"
)

// loadEnvironment reads the config file and sets up logging for a command.
func loadEnvironment() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.Setup(level, cfg.Logging.Directory)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}
	return cfg, logger, nil
}

// diagramConfig maps the file configuration onto the builder's settings.
func diagramConfig(cfg *config.Config) diagram.Config {
	return diagram.Config{
		RootFanOut:        cfg.Diagram.RootFanOut,
		EntityFanOut:      cfg.Diagram.EntityFanOut,
		ComplexFanOut:     cfg.Diagram.ComplexFanOut,
		ComplexTypePrefix: cfg.Display.ComplexTypePrefix,
		Layout: diagram.LayoutConfig{
			LevelHeight:  cfg.Diagram.LevelHeight,
			NodeGap:      cfg.Diagram.NodeGap,
			MinNodeWidth: cfg.Diagram.MinNodeWidth,
			PerCharWidth: cfg.Diagram.PerCharWidth,
			Padding:      cfg.Diagram.Padding,
		},
	}
}

func newParser(cfg *config.Config) *metadata.Parser {
	if cfg.Annotations.KeyNamespace == "" {
		return metadata.NewParser()
	}
	return metadata.NewParser(metadata.WithKeyAnnotationNamespace(cfg.Annotations.KeyNamespace))
}

func newStore(cfg *config.Config) *store.Store {
	return store.New(diagramConfig(cfg), store.WithParser(newParser(cfg)))
}

// acquireMetadata fetches and parses a document for the one-shot commands.
func acquireMetadata(ctx context.Context, cfg *config.Config, source string) (*metadata.Metadata, error) {
	xmlText, err := fetch.New().Acquire(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata: %w", err)
	}
	md, err := newParser(cfg).Parse(xmlText)
	if err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return md, nil
}
