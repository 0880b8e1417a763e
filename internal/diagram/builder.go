// Package diagram turns a metadata document into a bounded, renderable
// subgraph rooted at a chosen entity, and lays it out in depth bands.
package diagram

import (
	"github.com/odatascope/odatascope/internal/metadata"
)

// NodeKind tags the two cases of the heterogeneous traversal.
type NodeKind string

const (
	KindEntity  NodeKind = "entity"
	KindComplex NodeKind = "complex"
)

// Node is one emitted diagram node. Exactly one of Entity or Complex is set,
// matching Kind; both are read-only references into the owning Metadata.
type Node struct {
	ID          string   `json:"id"`
	Kind        NodeKind `json:"kind"`
	DisplayName string   `json:"displayName"`
	IsRoot      bool     `json:"isRoot"`
	IsSelected  bool     `json:"isSelected"`
	IsExpanded  bool     `json:"isExpanded"`

	// Counts reflect the full underlying type, not the possibly truncated
	// traversal below this node.
	NavigationCount int `json:"navigationCount"`
	NestedCount     int `json:"nestedCount"`

	Depth int     `json:"depth"`
	Width float64 `json:"width"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`

	Entity  *metadata.Entity      `json:"-"`
	Complex *metadata.ComplexType `json:"-"`
}

// Link is one rendered edge. At most one link exists per unordered node
// pair, however many navigation or collection properties connect the pair.
type Link struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	IsCollection bool   `json:"isCollection"`
	IsNested     bool   `json:"isNested"` // complex-type collection edge, not a navigation
	NavProperty  string `json:"navProperty"`
}

// Graph is the result of one build: recomputed from scratch on every state
// change, never patched.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Links []*Link `json:"links"`
}

// Builder performs the bounded breadth-first traversal.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder with the given configuration.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// build carries the per-call lookup state so the traversal helpers stay
// small.
type build struct {
	cfg      Config
	md       *metadata.Metadata
	root     *metadata.Entity
	selected *metadata.Entity
	expanded map[string]bool
	entities map[string]*metadata.Entity
	visited  map[string]bool
	queue    []queued
}

// queued is a pending traversal step: the type to emit and its BFS depth.
type queued struct {
	entity  *metadata.Entity
	complex *metadata.ComplexType
	depth   int
}

// Build runs BFS from the root entity, honoring the expanded set and the
// per-node fan-out caps. A node expands only if it is the root or its
// identifier is in expanded. Identifiers enter the visited set before their
// children are considered, so cyclic partner navigations terminate and a
// type reached twice attaches to whichever parent got there first.
func (bd *Builder) Build(md *metadata.Metadata, root, selected *metadata.Entity, expanded map[string]bool) *Graph {
	g := &Graph{}
	if md == nil || root == nil {
		return g
	}
	if expanded == nil {
		expanded = map[string]bool{}
	}

	b := &build{
		cfg:      bd.cfg,
		md:       md,
		root:     root,
		selected: selected,
		expanded: expanded,
		entities: make(map[string]*metadata.Entity, len(md.AllEntities)),
		visited:  map[string]bool{root.Name: true},
		queue:    []queued{{entity: root, depth: 0}},
	}
	for _, e := range md.AllEntities {
		b.entities[e.Name] = e
	}

	nodeByID := make(map[string]*Node)
	for len(b.queue) > 0 {
		item := b.queue[0]
		b.queue = b.queue[1:]

		var node *Node
		if item.entity != nil {
			node = b.entityNode(item.entity, item.depth)
		} else {
			node = b.complexNode(item.complex, item.depth)
		}
		g.Nodes = append(g.Nodes, node)
		nodeByID[node.ID] = node

		if !node.IsRoot && !expanded[node.ID] {
			continue // leaf: counts stay visible, no traversal
		}
		b.expand(item, b.fanOutLimit(node))
	}

	g.Links = b.deriveLinks(g.Nodes, nodeByID)
	return g
}

// expand enqueues the children of one expanded node under its pooled
// fan-out budget. Entities offer navigation targets first, then nested
// complex collections; complex types offer their nested collections first,
// then their (non-standard) navigation targets. Candidates past the budget
// are truncated silently.
func (b *build) expand(item queued, limit int) {
	added := 0

	enqueueEntity := func(nav metadata.NavigationProperty) bool {
		target, ok := b.entities[nav.TargetEntity]
		if !ok {
			return false
		}
		if added >= limit {
			return true
		}
		added++
		if !b.visited[target.Name] {
			b.visited[target.Name] = true
			b.queue = append(b.queue, queued{entity: target, depth: item.depth + 1})
		}
		return false
	}

	enqueueComplex := func(prop metadata.Property) bool {
		if added >= limit {
			return true
		}
		inner, _ := metadata.CollectionInner(prop.Type)
		ct := b.md.ComplexTypeByName(metadata.LastSegment(inner))
		added++
		if !b.visited[ct.Name] {
			b.visited[ct.Name] = true
			b.queue = append(b.queue, queued{complex: ct, depth: item.depth + 1})
		}
		return false
	}

	if item.entity != nil {
		for _, nav := range item.entity.NavigationProperties {
			if enqueueEntity(nav) {
				return
			}
		}
		for _, prop := range b.md.CollectionProperties(item.entity.Properties) {
			if enqueueComplex(prop) {
				return
			}
		}
		return
	}

	for _, prop := range b.md.CollectionProperties(item.complex.Properties) {
		if enqueueComplex(prop) {
			return
		}
	}
	for _, nav := range item.complex.NavigationProperties {
		if enqueueEntity(nav) {
			return
		}
	}
}

func (b *build) entityNode(e *metadata.Entity, depth int) *Node {
	navCount := 0
	for _, nav := range e.NavigationProperties {
		if _, ok := b.entities[nav.TargetEntity]; ok {
			navCount++
		}
	}

	return &Node{
		ID:              e.Name,
		Kind:            KindEntity,
		DisplayName:     e.Name,
		IsRoot:          e.Name == b.root.Name,
		IsSelected:      b.selected != nil && e.Name == b.selected.Name,
		IsExpanded:      b.expanded[e.Name],
		NavigationCount: navCount,
		NestedCount:     len(b.md.CollectionProperties(e.Properties)),
		Depth:           depth,
		Entity:          e,
	}
}

func (b *build) complexNode(ct *metadata.ComplexType, depth int) *Node {
	navCount := 0
	for _, nav := range ct.NavigationProperties {
		if _, ok := b.entities[nav.TargetEntity]; ok {
			navCount++
		}
	}

	return &Node{
		ID:   ct.Name,
		Kind: KindComplex,
		// Complex types are never the root and never the selection.
		DisplayName:     metadata.DisplayNameWithPrefix(ct.Name, b.cfg.ComplexTypePrefix),
		IsExpanded:      b.expanded[ct.Name],
		NavigationCount: navCount,
		NestedCount:     len(b.md.CollectionProperties(ct.Properties)),
		Depth:           depth,
		Complex:         ct,
	}
}

func (b *build) fanOutLimit(node *Node) int {
	switch {
	case node.IsRoot:
		return b.cfg.RootFanOut
	case node.Kind == KindComplex:
		return b.cfg.ComplexFanOut
	default:
		return b.cfg.EntityFanOut
	}
}

// deriveLinks is the second pass: links emanate only from expanded nodes,
// target only emitted nodes, and collapse to one per unordered pair.
func (b *build) deriveLinks(nodes []*Node, nodeByID map[string]*Node) []*Link {
	var links []*Link
	seen := make(map[string]bool)

	addLink := func(source, target string, isCollection, isNested bool, label string) {
		key := pairKey(source, target)
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, &Link{
			Source:       source,
			Target:       target,
			IsCollection: isCollection,
			IsNested:     isNested,
			NavProperty:  label,
		})
	}

	for _, node := range nodes {
		if !node.IsRoot && !b.expanded[node.ID] {
			continue
		}

		var navs []metadata.NavigationProperty
		var props []metadata.Property
		if node.Entity != nil {
			navs = node.Entity.NavigationProperties
			props = node.Entity.Properties
		} else {
			navs = node.Complex.NavigationProperties
			props = node.Complex.Properties
		}

		for _, nav := range navs {
			if _, emitted := nodeByID[nav.TargetEntity]; !emitted {
				continue
			}
			addLink(node.ID, nav.TargetEntity, nav.IsCollection, false, nav.Name)
		}
		for _, prop := range b.md.CollectionProperties(props) {
			inner, _ := metadata.CollectionInner(prop.Type)
			ct := b.md.ComplexTypeByName(metadata.LastSegment(inner))
			if _, emitted := nodeByID[ct.Name]; !emitted {
				continue
			}
			addLink(node.ID, ct.Name, true, true, prop.Name)
		}
	}

	return links
}

// pairKey builds the unordered dedup key for a node pair.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}
