// Package search implements the multi-field entity filter and match-hint
// derivation used by the sidebar and the search command.
package search

import (
	"sort"
	"strings"

	"github.com/odatascope/odatascope/internal/metadata"
)

// Filter returns the entities matching the query, preserving their original
// relative order. The query is trimmed and lower-cased; an empty query
// returns the full list.
func Filter(md *metadata.Metadata, query string) []*metadata.Entity {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return md.AllEntities
	}

	var out []*metadata.Entity
	for _, e := range md.AllEntities {
		if matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

// matches reports whether any searchable field of the entity contains the
// lower-cased query as a substring.
func matches(e *metadata.Entity, q string) bool {
	if containsFold(e.Name, q) || containsFold(e.Namespace, q) || containsFold(e.FullName, q) {
		return true
	}
	for _, p := range e.Properties {
		if containsFold(p.Name, q) || containsFold(p.Type, q) {
			return true
		}
	}
	for _, nav := range e.NavigationProperties {
		if containsFold(nav.Name, q) || containsFold(nav.TargetEntity, q) {
			return true
		}
	}
	for _, k := range e.KeyProperties {
		if containsFold(k, q) {
			return true
		}
	}
	return e.BaseType != "" && containsFold(e.BaseType, q)
}

// MatchHint explains which field matched, as "category: value". The first
// matching category wins, in fixed priority: property name, property type,
// navigation name, navigation target, namespace, key property. When the
// entity's own name matches, no hint is produced at all; a name match needs
// no explanation.
func MatchHint(e *metadata.Entity, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || containsFold(e.Name, q) {
		return ""
	}

	for _, p := range e.Properties {
		if containsFold(p.Name, q) {
			return "property: " + p.Name
		}
	}
	for _, p := range e.Properties {
		if containsFold(p.Type, q) {
			return "type: " + strings.TrimPrefix(p.Type, "Edm.")
		}
	}
	for _, nav := range e.NavigationProperties {
		if containsFold(nav.Name, q) {
			return "navigation: " + nav.Name
		}
	}
	for _, nav := range e.NavigationProperties {
		if containsFold(nav.TargetEntity, q) {
			return "target: " + nav.TargetEntity
		}
	}
	if containsFold(e.Namespace, q) {
		return "namespace: " + e.Namespace
	}
	for _, k := range e.KeyProperties {
		if containsFold(k, q) {
			return "key: " + k
		}
	}
	return ""
}

// GroupByNamespace buckets entities by namespace, coercing the empty
// namespace to "Default".
func GroupByNamespace(entities []*metadata.Entity) map[string][]*metadata.Entity {
	groups := make(map[string][]*metadata.Entity)
	for _, e := range entities {
		ns := e.Namespace
		if ns == "" {
			ns = "Default"
		}
		groups[ns] = append(groups[ns], e)
	}
	return groups
}

// SortedNamespaces returns the group keys in alphabetical order, for
// presentation.
func SortedNamespaces(groups map[string][]*metadata.Entity) []string {
	keys := make([]string, 0, len(groups))
	for ns := range groups {
		keys = append(keys, ns)
	}
	sort.Strings(keys)
	return keys
}

// SortEntities returns a copy of the slice sorted alphabetically by name.
func SortEntities(entities []*metadata.Entity) []*metadata.Entity {
	sorted := make([]*metadata.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
