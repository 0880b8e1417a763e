// Package relationships derives directed relationship edges between the
// entities of a parsed metadata document.
package relationships

import (
	"github.com/odatascope/odatascope/internal/metadata"
)

// Relationship is one directed edge: a navigation property on SourceEntity
// whose target resolves to a declared entity.
type Relationship struct {
	SourceEntity string `json:"sourceEntity"`
	TargetEntity string `json:"targetEntity"`
	NavProperty  string `json:"navProperty"`
	IsCollection bool   `json:"isCollection"`
}

// Extract computes all relationship edges. Navigation properties pointing at
// unresolvable or external types are dropped silently; metadata documents
// routinely reference types they do not declare. A Partner-linked reciprocal
// pair yields two directed edges: no deduplication happens here, display
// dedup is the diagram builder's concern.
func Extract(md *metadata.Metadata) []Relationship {
	known := make(map[string]bool, len(md.AllEntities))
	for _, e := range md.AllEntities {
		known[e.Name] = true
	}

	var edges []Relationship
	for _, e := range md.AllEntities {
		for _, nav := range e.NavigationProperties {
			if !known[nav.TargetEntity] {
				continue
			}
			edges = append(edges, Relationship{
				SourceEntity: e.Name,
				TargetEntity: nav.TargetEntity,
				NavProperty:  nav.Name,
				IsCollection: nav.IsCollection,
			})
		}
	}

	return edges
}
