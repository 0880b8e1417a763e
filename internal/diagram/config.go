package diagram

import "github.com/odatascope/odatascope/internal/metadata"

// Config bounds the traversal and parameterizes presentation conventions.
// The caps are a readability tradeoff for dense schemas, not a contract;
// they are deliberately configurable.
type Config struct {
	// RootFanOut is the pooled child budget for the root entity.
	RootFanOut int
	// EntityFanOut is the pooled child budget for non-root entities.
	EntityFanOut int
	// ComplexFanOut is the pooled child budget for complex-type nodes.
	ComplexFanOut int
	// ComplexTypePrefix is the naming convention stripped for display.
	ComplexTypePrefix string

	Layout LayoutConfig
}

// LayoutConfig holds the constants of the layered layout.
type LayoutConfig struct {
	// LevelHeight is the vertical distance between depth bands.
	LevelHeight float64
	// NodeGap is the horizontal gap between adjacent nodes in a band.
	NodeGap float64
	// MinNodeWidth is the floor for derived node widths.
	MinNodeWidth float64
	// PerCharWidth is the width contribution of one display-name character.
	PerCharWidth float64
	// Padding is the horizontal padding applied on each side of the label.
	Padding float64
}

// DefaultConfig returns the stock traversal and layout constants.
func DefaultConfig() Config {
	return Config{
		RootFanOut:        15,
		EntityFanOut:      8,
		ComplexFanOut:     6,
		ComplexTypePrefix: metadata.DefaultComplexTypePrefix,
		Layout: LayoutConfig{
			LevelHeight:  120,
			NodeGap:      40,
			MinNodeWidth: 120,
			PerCharWidth: 8,
			Padding:      16,
		},
	}
}
