package cli

import (
	"fmt"
	"strings"

	"github.com/dverbeek/patchwork/pkg/editor"
	"github.com/dverbeek/patchwork/pkg/geom"
)

// Terminal cells are roughly twice as tall as wide, so horizontal
// resolution is finer than vertical. Arrow keys move nodes by one cell.
const (
	cellW     = 8.0
	cellH     = 16.0
	gridStepX = cellW
	gridStepY = cellH
)

func (m canvasModel) View() string {
	g := m.ed.Graph()
	rows := m.height - 4
	if rows < 4 {
		rows = 4
	}
	cols := m.width
	if cols < 20 {
		cols = 20
	}

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = make([]rune, cols)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// Keep everything visible even with negative coordinates.
	minX, minY := 0.0, 0.0
	for _, n := range g.NodesIn(g.Active()) {
		minX = min(minX, n.X)
		minY = min(minY, n.Y)
	}
	cell := func(p geom.Point) (int, int) {
		return int((p.X - minX) / cellW), int((p.Y - minY) / cellH)
	}
	plot := func(p geom.Point, r rune) {
		x, y := cell(p)
		if x >= 0 && x < cols && y >= 0 && y < rows {
			grid[y][x] = r
		}
	}

	// Connections under nodes: sampled path dots, then reroute points.
	for _, c := range g.Connections(g.Active()) {
		p, ok := m.surf.Path(c.ID)
		if !ok {
			continue
		}
		for _, seg := range p.Segments {
			for i := 0; i <= 32; i++ {
				plot(seg.At(float64(i)/32), '·')
			}
		}
		for _, pt := range c.Points {
			plot(pt, 'o')
		}
	}

	sel := m.ed.Selection()
	for _, n := range g.NodesIn(g.Active()) {
		label := "[" + n.Name + "]"
		if sel.Kind == editor.HitNode && sel.Node == n.ID {
			label = "[*" + n.Name + "*]"
		}
		x, y := cell(geom.Point{X: n.X, Y: n.Y})
		if y < 0 || y >= rows {
			continue
		}
		for i, r := range label {
			if x+i >= 0 && x+i < cols {
				grid[y][x+i] = r
			}
		}
	}

	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = strings.TrimRight(string(row), " ")
	}

	header := StyleTitle.Render("patchwork") + "  " +
		StyleDim.Render(fmt.Sprintf("module %s · zoom %.1f", g.Active(), m.ed.Zoom()))
	help := StyleDim.Render("tab select · arrows move · c connect · d delete · +/-/0 zoom · s save · q quit")
	status := StyleValue.Render(m.status)

	return header + "\n" + strings.Join(lines, "\n") + "\n" + status + "\n" + help
}
