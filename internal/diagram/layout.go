package diagram

import "unicode/utf8"

// Layout assigns coordinates to the graph's nodes in place and returns them.
// Nodes are grouped by depth; each band is laid out left to right in input
// order with a fixed gap and centered on x=0, with y = depth * LevelHeight.
// No force relaxation or crossing minimization: the fan-out caps keep bands
// narrow enough for a plain layered drawing.
func Layout(nodes []*Node, cfg LayoutConfig) []*Node {
	byDepth := make(map[int][]*Node)
	maxDepth := 0
	for _, n := range nodes {
		n.Width = nodeWidth(n.DisplayName, cfg)
		byDepth[n.Depth] = append(byDepth[n.Depth], n)
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}

	for depth := 0; depth <= maxDepth; depth++ {
		row := byDepth[depth]
		if len(row) == 0 {
			continue
		}

		total := float64(len(row)-1) * cfg.NodeGap
		for _, n := range row {
			total += n.Width
		}

		x := -total / 2
		for _, n := range row {
			n.X = x + n.Width/2
			n.Y = float64(depth) * cfg.LevelHeight
			x += n.Width + cfg.NodeGap
		}
	}

	return nodes
}

// nodeWidth derives a deterministic width from the display-name length,
// counted in runes so multi-byte names are not inflated.
func nodeWidth(displayName string, cfg LayoutConfig) float64 {
	w := float64(utf8.RuneCountInString(displayName))*cfg.PerCharWidth + 2*cfg.Padding
	if w < cfg.MinNodeWidth {
		return cfg.MinNodeWidth
	}
	return w
}
