// Package store holds the single source of truth for the explorer: the
// loaded metadata document plus every piece of view state derived queries
// are answered from. Transitions replace state wholesale and notify
// subscribed observers synchronously; readers get fresh snapshots, never
// shared mutable structure.
package store

import (
	"sort"
	"sync"

	"github.com/odatascope/odatascope/internal/diagram"
	"github.com/odatascope/odatascope/internal/metadata"
	"github.com/odatascope/odatascope/internal/relationships"
	"github.com/odatascope/odatascope/internal/search"
)

// Store is the explorer's state container. The zero value is not usable;
// create one with New.
type Store struct {
	mu      sync.Mutex
	cfg     diagram.Config
	builder *diagram.Builder
	parser  *metadata.Parser

	metadata            *metadata.Metadata
	selected            *metadata.Entity
	searchQuery         string
	errorMsg            string
	loading             bool
	collapsedNamespaces map[string]bool
	diagramRoot         *metadata.Entity
	diagramExpanded     map[string]bool
	navigationPath      []metadata.NavigationPathStep

	observers    map[int]func()
	nextObserver int
}

// Option configures a Store.
type Option func(*Store)

// WithParser overrides the metadata parser, for documents using a custom
// key annotation namespace.
func WithParser(p *metadata.Parser) Option {
	return func(s *Store) {
		s.parser = p
	}
}

// New creates an empty Store using the given diagram configuration.
func New(cfg diagram.Config, opts ...Option) *Store {
	s := &Store{
		cfg:                 cfg,
		builder:             diagram.NewBuilder(cfg),
		parser:              metadata.NewParser(),
		collapsedNamespaces: make(map[string]bool),
		diagramExpanded:     make(map[string]bool),
		observers:           make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer called synchronously after every
// transition. Observers must not trigger transitions of their own; the
// store does not guard against re-entrancy.
func (s *Store) Subscribe(fn func()) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	return id
}

// Unsubscribe removes a previously registered observer.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, id)
}

func (s *Store) notify() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Load parses and installs a new document. Success is a hard reset: no
// state from the previous document survives. Failure leaves the current
// metadata and all dependent state exactly as they were, publishes the
// parse error, and clears the loading flag.
func (s *Store) Load(xmlText string) error {
	md, err := s.parser.Parse(xmlText)

	s.mu.Lock()
	if err != nil {
		s.errorMsg = err.Error()
		s.loading = false
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.metadata = md
	s.selected = nil
	s.searchQuery = ""
	s.errorMsg = ""
	s.loading = false
	s.collapsedNamespaces = make(map[string]bool)
	s.diagramRoot = nil
	s.diagramExpanded = make(map[string]bool)
	s.navigationPath = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetLoading flips the loading indicator.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
	s.notify()
}

// PublishError records an acquisition or processing error without touching
// the loaded document. Exactly one error is held at a time; a new one
// supersedes the old.
func (s *Store) PublishError(msg string) {
	s.mu.Lock()
	s.errorMsg = msg
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

// ClearError dismisses the current error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errorMsg = ""
	s.mu.Unlock()
	s.notify()
}

// SetSearchQuery updates the sidebar filter query.
func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	s.searchQuery = query
	s.mu.Unlock()
	s.notify()
}

// SelectEntity makes the entity the current selection. The first selection
// seeds the diagram: with no root yet the entity becomes the root, and with
// nothing expanded yet it becomes the sole expanded node. Selecting always
// exits any complex-type drill-down.
func (s *Store) SelectEntity(e *metadata.Entity) {
	if e == nil {
		return
	}
	s.mu.Lock()
	s.selected = e
	if s.diagramRoot == nil {
		s.diagramRoot = e
	}
	if len(s.diagramExpanded) == 0 {
		s.diagramExpanded[e.Name] = true
	}
	s.navigationPath = nil
	s.mu.Unlock()
	s.notify()
}

// StartDiagramFrom unconditionally makes the entity both the selection and
// a fresh diagram root with only itself expanded. Sidebar clicks use this;
// unlike plain selection it always discards the previous diagram.
func (s *Store) StartDiagramFrom(e *metadata.Entity) {
	if e == nil {
		return
	}
	s.mu.Lock()
	s.selected = e
	s.diagramRoot = e
	s.diagramExpanded = map[string]bool{e.Name: true}
	s.navigationPath = nil
	s.mu.Unlock()
	s.notify()
}

// ToggleDiagramNode flips an identifier's membership in the expanded set.
func (s *Store) ToggleDiagramNode(id string) {
	s.mu.Lock()
	if s.diagramExpanded[id] {
		delete(s.diagramExpanded, id)
	} else {
		s.diagramExpanded[id] = true
	}
	s.mu.Unlock()
	s.notify()
}

// SelectFromDiagram resolves an entity by name and both selects and expands
// it, so clicking a leaf node opens it. No-op when the name does not
// resolve or nothing is loaded.
func (s *Store) SelectFromDiagram(name string) {
	s.mu.Lock()
	if s.metadata == nil {
		s.mu.Unlock()
		return
	}
	e := s.metadata.EntityByName(name)
	if e == nil {
		s.mu.Unlock()
		return
	}
	s.selected = e
	s.diagramExpanded[e.Name] = true
	s.mu.Unlock()
	s.notify()
}

// ResetDiagram collapses the expanded set back to just the current root.
func (s *Store) ResetDiagram() {
	s.mu.Lock()
	s.diagramExpanded = make(map[string]bool)
	if s.diagramRoot != nil {
		s.diagramExpanded[s.diagramRoot.Name] = true
	}
	s.mu.Unlock()
	s.notify()
}

// ToggleNamespace flips a namespace's collapsed state in the sidebar.
func (s *Store) ToggleNamespace(ns string) {
	s.mu.Lock()
	if s.collapsedNamespaces[ns] {
		delete(s.collapsedNamespaces, ns)
	} else {
		s.collapsedNamespaces[ns] = true
	}
	s.mu.Unlock()
	s.notify()
}

// NavigateInto drills into a complex-type collection property, appending a
// breadcrumb step. No-op when the target complex type does not resolve.
func (s *Store) NavigateInto(propertyName, typeName string) {
	s.mu.Lock()
	if s.metadata == nil {
		s.mu.Unlock()
		return
	}
	ct := s.metadata.ComplexTypeByName(metadata.LastSegment(typeName))
	if ct == nil {
		s.mu.Unlock()
		return
	}
	s.navigationPath = append(s.navigationPath, metadata.NavigationPathStep{
		Kind:         "complex",
		TypeName:     ct.Name,
		PropertyName: propertyName,
		DisplayName:  metadata.DisplayNameWithPrefix(ct.Name, s.cfg.ComplexTypePrefix),
	})
	s.mu.Unlock()
	s.notify()
}

// NavigateBack pops the last breadcrumb step. No-op on an empty path.
func (s *Store) NavigateBack() {
	s.mu.Lock()
	if len(s.navigationPath) == 0 {
		s.mu.Unlock()
		return
	}
	s.navigationPath = s.navigationPath[:len(s.navigationPath)-1]
	s.mu.Unlock()
	s.notify()
}

// NavigateToIndex truncates the breadcrumb path to index+1 steps. Index -1
// clears the path entirely; anything below that is rejected as a no-op.
func (s *Store) NavigateToIndex(index int) {
	if index < -1 {
		return
	}
	s.mu.Lock()
	if index+1 < len(s.navigationPath) {
		s.navigationPath = s.navigationPath[:index+1]
	}
	s.mu.Unlock()
	s.notify()
}

// View is the type whose details the detail panel should show: exactly one
// of Entity or Complex is set.
type View struct {
	Entity  *metadata.Entity
	Complex *metadata.ComplexType
}

// CurrentView resolves the navigation path's last step to its complex type,
// falling back to the selected entity when the step no longer resolves
// (a recoverable inconsistency, not an error). With an empty path it is the
// selected entity; nil when nothing is selected.
func (s *Store) CurrentView() *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.navigationPath) > 0 && s.metadata != nil {
		last := s.navigationPath[len(s.navigationPath)-1]
		if ct := s.metadata.ComplexTypeByName(last.TypeName); ct != nil {
			return &View{Complex: ct}
		}
	}
	if s.selected != nil {
		return &View{Entity: s.selected}
	}
	return nil
}

// IsComplexCollection reports whether a raw property type string is a
// collection of a complex type declared in the loaded document, as opposed
// to a primitive or entity collection.
func (s *Store) IsComplexCollection(rawType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metadata == nil {
		return false
	}
	inner, ok := metadata.CollectionInner(rawType)
	if !ok {
		return false
	}
	return s.metadata.ComplexTypeByName(metadata.LastSegment(inner)) != nil
}

// Metadata returns the loaded document, or nil.
func (s *Store) Metadata() *metadata.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

// SelectedEntity returns the current selection, or nil.
func (s *Store) SelectedEntity() *metadata.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// FilteredEntities runs the search engine against the current query.
func (s *Store) FilteredEntities() []*metadata.Entity {
	s.mu.Lock()
	md, q := s.metadata, s.searchQuery
	s.mu.Unlock()

	if md == nil {
		return nil
	}
	return search.Filter(md, q)
}

// GroupedEntities groups the filtered entities by namespace.
func (s *Store) GroupedEntities() map[string][]*metadata.Entity {
	return search.GroupByNamespace(s.FilteredEntities())
}

// Relationships returns the directed edge list for the loaded document.
func (s *Store) Relationships() []relationships.Relationship {
	s.mu.Lock()
	md := s.metadata
	s.mu.Unlock()

	if md == nil {
		return nil
	}
	return relationships.Extract(md)
}

// DiagramGraph builds and lays out the current subgraph from scratch.
func (s *Store) DiagramGraph() *diagram.Graph {
	s.mu.Lock()
	md, root, selected := s.metadata, s.diagramRoot, s.selected
	expanded := make(map[string]bool, len(s.diagramExpanded))
	for id := range s.diagramExpanded {
		expanded[id] = true
	}
	s.mu.Unlock()

	g := s.builder.Build(md, root, selected, expanded)
	diagram.Layout(g.Nodes, s.cfg.Layout)
	return g
}
