package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes the parsed model to a YAML file at the given path.
func (m *Metadata) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// ToYAML returns the model as a YAML byte slice.
func (m *Metadata) ToYAML() ([]byte, error) {
	return yaml.Marshal(m)
}

// Summary returns a human-readable summary of the document.
func (m *Metadata) Summary() string {
	var props, navs int
	for _, e := range m.AllEntities {
		props += len(e.Properties)
		navs += len(e.NavigationProperties)
	}

	return fmt.Sprintf(
		"OData v%s metadata: %d schemas, %d entities (%d properties, %d navigations), %d complex types, %d enums",
		m.Version, len(m.Schemas), len(m.AllEntities), props, navs,
		len(m.AllComplexTypes), len(m.AllEnumTypes),
	)
}
