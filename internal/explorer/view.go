package explorer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/odatascope/odatascope/internal/metadata"
	"github.com/odatascope/odatascope/internal/search"
	"github.com/odatascope/odatascope/internal/store"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	entityStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	paneStyle      = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("241")).Padding(0, 1)
	focusPaneStyle = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("99")).Padding(0, 1)
)

func (m Model) View() string {
	var b strings.Builder

	snap := m.store.Snapshot()

	b.WriteString(titleStyle.Render("odatascope") + "\n")

	if snap.Loading {
		b.WriteString(fmt.Sprintf("\n  %s Loading metadata from %s...\n", m.spin.View(), m.source))
		return b.String()
	}

	if snap.Error != "" {
		b.WriteString(errStyle.Render("  "+snap.Error) + "\n")
	}

	if m.searching {
		b.WriteString("  " + m.search.View() + "\n")
	} else if snap.SearchQuery != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Filter: %s (/ to change, esc in search to clear)", snap.SearchQuery)) + "\n")
	}

	if m.mode == modeDiagram {
		b.WriteString(m.diagramView())
		b.WriteString("\n" + dimStyle.Render("  enter toggle • s select • r reset • h/l move • esc back • q quit") + "\n")
		return b.String()
	}

	sidebar := m.sidebarView(snap)
	detail := m.detailView(snap)

	sideStyle, detStyle := paneStyle, paneStyle
	if m.focus == focusSidebar {
		sideStyle = focusPaneStyle
	} else {
		detStyle = focusPaneStyle
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sideStyle.Width(34).Render(sidebar),
		detStyle.Width(max(40, m.width-40)).Render(detail),
	)
	b.WriteString(body + "\n")

	if m.statusMsg != "" {
		b.WriteString(dimStyle.Render("  "+m.statusMsg) + "\n")
	}
	b.WriteString(dimStyle.Render("  / search • tab pane • enter select • c collapse • d diagram • b back • q quit") + "\n")

	return b.String()
}

// sidebarRows flattens the grouped entity listing into selectable lines.
func (m Model) sidebarRows() []sidebarRow {
	md := m.store.Metadata()
	if md == nil {
		return nil
	}

	snap := m.store.Snapshot()
	collapsed := make(map[string]bool, len(snap.CollapsedNamespaces))
	for _, ns := range snap.CollapsedNamespaces {
		collapsed[ns] = true
	}

	filtered := search.Filter(md, snap.SearchQuery)
	groups := search.GroupByNamespace(filtered)

	var rows []sidebarRow
	for _, ns := range search.SortedNamespaces(groups) {
		rows = append(rows, sidebarRow{header: true, ns: ns})
		if collapsed[ns] {
			continue
		}
		for _, e := range groups[ns] {
			rows = append(rows, sidebarRow{
				ns:     ns,
				entity: e,
				hint:   search.MatchHint(e, snap.SearchQuery),
			})
		}
	}
	return rows
}

func (m Model) sidebarView(snap store.Snapshot) string {
	if !snap.HasMetadata {
		return dimStyle.Render("No metadata loaded.\n\nUse `odatascope explore <source>`\nor POST to the running server.")
	}

	rows := m.sidebarRows()
	if len(rows) == 0 {
		return dimStyle.Render("No entities match the filter")
	}

	listHeight := max(5, m.height-10)
	start := 0
	if m.sidebarCursor >= listHeight {
		start = m.sidebarCursor - listHeight + 1
	}
	end := min(start+listHeight, len(rows))

	var b strings.Builder
	for i := start; i < end; i++ {
		r := rows[i]

		cursor := "  "
		if i == m.sidebarCursor && m.focus == focusSidebar {
			cursor = highlightStyle.Render("> ")
		}

		if r.header {
			marker := "▾"
			if m.isCollapsed(snap, r.ns) {
				marker = "▸"
			}
			b.WriteString(cursor + keyStyle.Render(fmt.Sprintf("%s %s", marker, r.ns)) + "\n")
			continue
		}

		name := truncate(r.entity.Name, 24)
		line := cursor + "  " + entityStyle.Render(name)
		if r.hint != "" {
			line += " " + dimStyle.Render(truncate(r.hint, 28))
		}
		if snap.SelectedEntity == r.entity.Name {
			line += highlightStyle.Render(" *")
		}
		b.WriteString(line + "\n")
	}

	if len(rows) > listHeight {
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n%d-%d of %d", start+1, end, len(rows))))
	}
	return b.String()
}

func (m Model) detailView(snap store.Snapshot) string {
	view := m.store.CurrentView()
	if view == nil {
		return dimStyle.Render("Select an entity to inspect it")
	}

	var b strings.Builder
	b.WriteString(m.breadcrumb(snap) + "\n\n")

	if view.Complex != nil {
		b.WriteString(m.renderComplex(view.Complex))
	} else {
		b.WriteString(m.renderEntity(view.Entity))
	}
	return b.String()
}

// breadcrumb renders "Entity > Step > Step" with the trailing element bold.
func (m Model) breadcrumb(snap store.Snapshot) string {
	parts := []string{snap.SelectedEntity}
	for _, step := range snap.NavigationPath {
		parts = append(parts, step.DisplayName)
	}
	last := len(parts) - 1
	for i, p := range parts[:last] {
		parts[i] = dimStyle.Render(p)
	}
	parts[last] = keyStyle.Render(parts[last])
	return strings.Join(parts, dimStyle.Render(" > "))
}

func (m Model) renderEntity(e *metadata.Entity) string {
	var b strings.Builder

	b.WriteString(dimStyle.Render(e.FullName) + "\n")
	if e.BaseType != "" {
		b.WriteString(dimStyle.Render("extends "+e.BaseType) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderProperties(e.Properties))

	if len(e.NavigationProperties) > 0 {
		b.WriteString("\n" + keyStyle.Render("Navigation") + "\n")
		for _, nav := range e.NavigationProperties {
			arrow := "──"
			if nav.IsCollection {
				arrow = "─<"
			}
			line := fmt.Sprintf("  %s %s %s", nav.Name, arrow, nav.TargetEntity)
			if nav.Partner != "" {
				line += dimStyle.Render(" (partner: " + nav.Partner + ")")
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func (m Model) renderComplex(ct *metadata.ComplexType) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(ct.FullName) + "\n")
	if ct.KeyProperty != "" {
		b.WriteString(dimStyle.Render("key: "+ct.KeyProperty) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderProperties(ct.Properties))
	return b.String()
}

func (m Model) renderProperties(props []metadata.Property) string {
	var b strings.Builder
	b.WriteString(keyStyle.Render("Properties") + "\n")

	for i, p := range props {
		cursor := "  "
		if i == m.detailCursor && m.focus == focusDetail {
			cursor = highlightStyle.Render("> ")
		}

		marker := " "
		if p.IsKey {
			marker = keyStyle.Render("k")
		}

		typ := p.Type
		if !p.Nullable {
			typ += "!"
		}

		line := fmt.Sprintf("%s%s %-24s %s", cursor, marker, truncate(p.Name, 24), dimStyle.Render(typ))
		if m.store.IsComplexCollection(p.Type) {
			line += highlightStyle.Render(" ▶")
		}
		b.WriteString(line + "\n")
	}
	if len(props) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	return b.String()
}

func (m Model) isCollapsed(snap store.Snapshot, ns string) bool {
	for _, c := range snap.CollapsedNamespaces {
		if c == ns {
			return true
		}
	}
	return false
}

// summaryLine describes a freshly loaded document.
func summaryLine(snap store.Snapshot) string {
	return fmt.Sprintf("OData %s: %d entities, %d complex types, %d enums",
		snap.Version, snap.EntityCount, snap.ComplexTypeCount, snap.EnumTypeCount)
}

// truncate shortens to maxLen display characters, never mid-rune.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-1]) + "…"
}
