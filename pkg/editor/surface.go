package editor

import (
	"github.com/dverbeek/patchwork/pkg/geom"

	"github.com/dverbeek/patchwork/pkg/graph"
)

// HitKind classifies what a pointer coordinate landed on.
type HitKind int

const (
	HitCanvas HitKind = iota
	HitNode
	HitInput
	HitOutput
	HitConnection
	HitPoint
)

// Hit is a tagged hit-test result. Node and Port are set for HitNode,
// HitInput and HitOutput; Conn for HitConnection and HitPoint; Ordinal
// for HitPoint.
type Hit struct {
	Kind    HitKind
	Node    string
	Port    int
	Conn    int
	Ordinal int
}

// Rect is an axis-aligned rectangle in screen coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() geom.Point {
	return geom.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Surface is the presentation layer the editor drives. It owns element
// geometry and picking; the editor owns all state. Pointer coordinates
// and returned rectangles are in screen space, already subject to the
// canvas transform the surface is told about via TransformChanged.
//
// All methods are called from the editor's single goroutine.
type Surface interface {
	// HitTest classifies the topmost element under a screen coordinate.
	// Precedence when elements overlap: reroute points, then port anchors,
	// then node bodies, then connection paths, then the canvas.
	HitTest(x, y float64) Hit

	// NodeRect reports a node's screen-space bounding box.
	NodeRect(id string) (Rect, bool)

	// InputAnchor and OutputAnchor report a port's screen-space anchor
	// rectangle; path endpoints attach to the anchor center.
	InputAnchor(id string, port int) (Rect, bool)
	OutputAnchor(id string, port int) (Rect, bool)

	// Materialization notifications. NodeChanged covers port count, name,
	// class and payload changes; positions flow through NodeMoved.
	NodeAdded(n *graph.Node)
	NodeChanged(n *graph.Node)
	NodeMoved(id string, x, y float64)
	NodeRenamed(oldID, newID string)
	NodeRemoved(id string)

	// PathUpdated installs or replaces a connection's path geometry, in
	// unscaled graph coordinates. PathRemoved drops it.
	PathUpdated(connID int, p geom.Path)
	PathRemoved(connID int)

	// ProvisionalPath shows the in-flight path of a connection drag;
	// nil clears it.
	ProvisionalPath(p *geom.Path)

	// SelectionChanged reports the current selection for the delete
	// affordance: HitNode, HitConnection, or HitCanvas for none.
	SelectionChanged(h Hit)

	// TransformChanged reports a new canvas pan offset and zoom level.
	TransformChanged(x, y, zoom float64)

	// Reset drops all materialized elements, before a module switch or
	// an import rebuilds the visible set.
	Reset()
}
