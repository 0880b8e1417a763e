package explorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odatascope/odatascope/internal/diagram"
)

// diagramView renders the expansion graph as indented levels with a link
// listing underneath. Node positions follow the layout's x order.
func (m Model) diagramView() string {
	graph := m.store.DiagramGraph()
	if graph == nil || len(graph.Nodes) == 0 {
		return dimStyle.Render("\n  No diagram root. Select an entity first.\n")
	}

	var b strings.Builder
	b.WriteString("\n")

	levels := groupByDepth(graph.Nodes)
	for _, depth := range sortedDepths(levels) {
		row := levels[depth]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var cells []string
		for _, node := range row {
			cells = append(cells, m.renderNode(graph, node))
		}
		b.WriteString("  " + strings.Join(cells, "  ") + "\n\n")
	}

	if len(graph.Links) > 0 {
		b.WriteString(keyStyle.Render("  Links") + "\n")
		for _, link := range graph.Links {
			b.WriteString("  " + renderLink(link) + "\n")
		}
	}

	return b.String()
}

func (m Model) renderNode(graph *diagram.Graph, node *diagram.Node) string {
	label := node.DisplayName

	childCount := node.NavigationCount + node.NestedCount
	if node.IsExpanded {
		label += " −"
	} else if childCount > 0 {
		label += fmt.Sprintf(" +%d", childCount)
	}

	box := "[" + label + "]"
	cursorHere := m.diagramCursor < len(graph.Nodes) && graph.Nodes[m.diagramCursor] == node

	switch {
	case cursorHere:
		return highlightStyle.Render(box)
	case node.IsRoot:
		return keyStyle.Render(box)
	case node.Kind == diagram.KindComplex:
		return dimStyle.Render(box)
	default:
		return entityStyle.Render(box)
	}
}

func renderLink(link *diagram.Link) string {
	arrow := "──"
	if link.IsCollection {
		arrow = "─<"
	}
	line := fmt.Sprintf("%s %s %s %s", link.Source, arrow, link.NavProperty, link.Target)
	if link.IsNested {
		return dimStyle.Render(line + " (nested)")
	}
	return line
}

func groupByDepth(nodes []*diagram.Node) map[int][]*diagram.Node {
	levels := make(map[int][]*diagram.Node)
	for _, n := range nodes {
		levels[n.Depth] = append(levels[n.Depth], n)
	}
	return levels
}

func sortedDepths(levels map[int][]*diagram.Node) []int {
	depths := make([]int, 0, len(levels))
	for d := range levels {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	return depths
}
