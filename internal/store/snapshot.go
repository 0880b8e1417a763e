package store

import (
	"sort"

	"github.com/odatascope/odatascope/internal/metadata"
)

// Snapshot is an immutable copy of the store's view state, safe to hand to
// the presentation layer or serialize over the wire.
type Snapshot struct {
	HasMetadata         bool                          `json:"hasMetadata"`
	Version             string                        `json:"version,omitempty"`
	EntityCount         int                           `json:"entityCount"`
	ComplexTypeCount    int                           `json:"complexTypeCount"`
	EnumTypeCount       int                           `json:"enumTypeCount"`
	SelectedEntity      string                        `json:"selectedEntity,omitempty"`
	SearchQuery         string                        `json:"searchQuery,omitempty"`
	Error               string                        `json:"error,omitempty"`
	Loading             bool                          `json:"loading"`
	DiagramRoot         string                        `json:"diagramRoot,omitempty"`
	ExpandedNodes       []string                      `json:"expandedNodes,omitempty"`
	CollapsedNamespaces []string                      `json:"collapsedNamespaces,omitempty"`
	NavigationPath      []metadata.NavigationPathStep `json:"navigationPath,omitempty"`
}

// Snapshot captures the current view state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SearchQuery: s.searchQuery,
		Error:       s.errorMsg,
		Loading:     s.loading,
	}
	if s.metadata != nil {
		snap.HasMetadata = true
		snap.Version = s.metadata.Version
		snap.EntityCount = len(s.metadata.AllEntities)
		snap.ComplexTypeCount = len(s.metadata.AllComplexTypes)
		snap.EnumTypeCount = len(s.metadata.AllEnumTypes)
	}
	if s.selected != nil {
		snap.SelectedEntity = s.selected.Name
	}
	if s.diagramRoot != nil {
		snap.DiagramRoot = s.diagramRoot.Name
	}
	snap.ExpandedNodes = sortedKeys(s.diagramExpanded)
	snap.CollapsedNamespaces = sortedKeys(s.collapsedNamespaces)
	if len(s.navigationPath) > 0 {
		snap.NavigationPath = make([]metadata.NavigationPathStep, len(s.navigationPath))
		copy(snap.NavigationPath, s.navigationPath)
	}
	return snap
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
