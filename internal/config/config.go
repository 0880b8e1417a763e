package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.odatascope/odatascope.yaml"
)

// Config is the top-level configuration.
type Config struct {
	Version     int            `yaml:"version"`
	Diagram     DiagramConfig  `yaml:"diagram,omitempty"`
	Display     DisplayConfig  `yaml:"display,omitempty"`
	Annotations AnnotateConfig `yaml:"annotations,omitempty"`
	Server      ServerConfig   `yaml:"server,omitempty"`
	Logging     LogConfig      `yaml:"logging,omitempty"`
}

// DiagramConfig bounds the diagram traversal and layout.
type DiagramConfig struct {
	RootFanOut    int     `yaml:"root_fan_out,omitempty"`    // default 15
	EntityFanOut  int     `yaml:"entity_fan_out,omitempty"`  // default 8
	ComplexFanOut int     `yaml:"complex_fan_out,omitempty"` // default 6
	LevelHeight   float64 `yaml:"level_height,omitempty"`    // default 120
	NodeGap       float64 `yaml:"node_gap,omitempty"`        // default 40
	MinNodeWidth  float64 `yaml:"min_node_width,omitempty"`  // default 120
	PerCharWidth  float64 `yaml:"per_char_width,omitempty"`  // default 8
	Padding       float64 `yaml:"padding,omitempty"`         // default 16
}

// DisplayConfig holds presentation conventions.
type DisplayConfig struct {
	// ComplexTypePrefix is stripped from complex type names for display.
	ComplexTypePrefix string `yaml:"complex_type_prefix,omitempty"`
}

// AnnotateConfig configures extension-annotation reading.
type AnnotateConfig struct {
	// KeyNamespace is the XML namespace of the complex-type Key attribute.
	KeyNamespace string `yaml:"key_namespace,omitempty"`
}

// ServerConfig defines the serve command's HTTP settings.
type ServerConfig struct {
	Port    int  `yaml:"port,omitempty"` // default 8585
	DevMode bool `yaml:"dev_mode,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`     // debug, info, warn, error
	Directory string `yaml:"directory,omitempty"` // default ~/.odatascope/logs/
}

// Load reads and parses the config file from the given path. A missing file
// is not an error: defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	cfg := &Config{Version: CurrentVersion}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyDefaults() {
	if c.Diagram.RootFanOut == 0 {
		c.Diagram.RootFanOut = 15
	}
	if c.Diagram.EntityFanOut == 0 {
		c.Diagram.EntityFanOut = 8
	}
	if c.Diagram.ComplexFanOut == 0 {
		c.Diagram.ComplexFanOut = 6
	}
	if c.Diagram.LevelHeight == 0 {
		c.Diagram.LevelHeight = 120
	}
	if c.Diagram.NodeGap == 0 {
		c.Diagram.NodeGap = 40
	}
	if c.Diagram.MinNodeWidth == 0 {
		c.Diagram.MinNodeWidth = 120
	}
	if c.Diagram.PerCharWidth == 0 {
		c.Diagram.PerCharWidth = 8
	}
	if c.Diagram.Padding == 0 {
		c.Diagram.Padding = 16
	}
	if c.Display.ComplexTypePrefix == "" {
		c.Display.ComplexTypePrefix = "CT_"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8585
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.odatascope/logs/")
	}
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
