// Package dot renders graph snapshots to Graphviz DOT and SVG for
// headless previews and documentation.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/dverbeek/patchwork/pkg/graph"
	"github.com/dverbeek/patchwork/pkg/snapshot"
)

// Options configures diagram rendering.
type Options struct {
	// Module selects which module to render; empty renders the default one.
	Module string

	// Detailed includes class and payload keys in node labels. When false,
	// only the node name (or id) is shown.
	Detailed bool

	// Waypoints renders reroute points as small intermediate dots so the
	// drawn edges follow the authored path.
	Waypoints bool
}

// ToDOT converts one module of a snapshot to Graphviz DOT. Edges connect
// the output port records, optionally threading through waypoint nodes for
// reroute points. It returns false if the module doesn't exist.
func ToDOT(s snapshot.Snapshot, opts Options) (string, bool) {
	module := opts.Module
	if module == "" {
		module = graph.DefaultModule
	}
	m, ok := s.Modules[module]
	if !ok {
		return "", false
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.7;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, id := range slices.Sorted(maps.Keys(m.Nodes)) {
		n := m.Nodes[id]
		fmt.Fprintf(&buf, "  %q [label=%q];\n", id, fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	waypoint := 0
	for _, id := range slices.Sorted(maps.Keys(m.Nodes)) {
		n := m.Nodes[id]
		for _, label := range slices.Sorted(maps.Keys(n.Outputs)) {
			for _, ep := range n.Outputs[label].Connections {
				tail := fmt.Sprintf("%s:%s", id, label)
				head := fmt.Sprintf("%s:%s", ep.Node, ep.Port)
				if !opts.Waypoints || len(ep.Points) == 0 {
					fmt.Fprintf(&buf, "  %q -> %q [taillabel=%q, headlabel=%q, fontsize=9];\n",
						id, ep.Node, tailHead(tail), tailHead(head))
					continue
				}
				prev := id
				for range ep.Points {
					wp := fmt.Sprintf("wp%d", waypoint)
					waypoint++
					fmt.Fprintf(&buf, "  %q [shape=point, width=0.08];\n", wp)
					fmt.Fprintf(&buf, "  %q -> %q [arrowhead=none];\n", prev, wp)
					prev = wp
				}
				fmt.Fprintf(&buf, "  %q -> %q [headlabel=%q, fontsize=9];\n", prev, ep.Node, tailHead(head))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), true
}

// tailHead trims the node id from a port reference, keeping just the label.
func tailHead(ref string) string {
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func fmtLabel(n snapshot.Node, detailed bool) string {
	name := n.Name
	if name == "" {
		name = n.ID
	}
	if !detailed {
		return name
	}

	parts := []string{}
	if n.Class != "" {
		parts = append(parts, "class: "+n.Class)
	}
	for _, k := range slices.Sorted(maps.Keys(n.Data)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data[k]))
	}
	if len(parts) == 0 {
		return name
	}
	return name + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// explicit pixel dimensions, so embedding hosts can scale it predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
