package editor

import (
	"github.com/dverbeek/patchwork/pkg/geom"
	"github.com/dverbeek/patchwork/pkg/graph"
)

// state is the interaction mode. Exactly one interaction is live at a time;
// a new press while one is in flight is ignored. Each variant carries only
// the fields that mode needs, so invalid combinations are unrepresentable.
type state interface{ isState() }

type idle struct{}

type draggingNode struct {
	id             string
	grabDX, grabDY float64
	moved          bool
}

type connecting struct {
	srcNode string
	srcPort int
}

type panning struct {
	lastX, lastY float64
}

type draggingPoint struct {
	conn    int
	ordinal int
	moved   bool
}

func (idle) isState()          {}
func (draggingNode) isState()  {}
func (connecting) isState()    {}
func (panning) isState()       {}
func (draggingPoint) isState() {}

func (e *Editor) toLogical(x, y float64) geom.Point {
	return geom.Logical(geom.Point{X: x, Y: y}, geom.Point{X: e.canvasX, Y: e.canvasY}, e.zoom)
}

// PointerDown begins an interaction from a press at screen coordinates.
// What was hit decides the mode: an output anchor starts a connection drag,
// a node body or input anchor starts a node drag, a reroute point starts a
// point drag, a path selects it, and bare canvas starts a pan.
func (e *Editor) PointerDown(x, y float64) {
	if _, ok := e.state.(idle); !ok {
		return
	}
	hit := e.surface.HitTest(x, y)
	pt := e.toLogical(x, y)

	switch hit.Kind {
	case HitOutput:
		e.state = connecting{srcNode: hit.Node, srcPort: hit.Port}
		e.emit(false, EventConnectionStart, ConnectionStart{
			OutputID:    hit.Node,
			OutputClass: graph.OutputLabel(hit.Port),
		})
		e.emitNode(hit.Node, EventConnectionStart, ConnectionStart{
			OutputID:    hit.Node,
			OutputClass: graph.OutputLabel(hit.Port),
		})
		e.updateProvisional(hit.Node, hit.Port, pt)

	case HitNode, HitInput:
		e.selectNode(hit.Node)
		n, ok := e.graph.Node(hit.Node)
		if !ok {
			return
		}
		e.state = draggingNode{id: hit.Node, grabDX: pt.X - n.X, grabDY: pt.Y - n.Y}

	case HitPoint:
		e.state = draggingPoint{conn: hit.Conn, ordinal: hit.Ordinal}

	case HitConnection:
		e.selectConnection(hit.Conn)

	case HitCanvas:
		e.clearSelection(false)
		e.state = panning{lastX: x, lastY: y}
	}
}

// PointerMove advances the live interaction.
func (e *Editor) PointerMove(x, y float64) {
	pt := e.toLogical(x, y)

	switch s := e.state.(type) {
	case draggingNode:
		nx, ny := pt.X-s.grabDX, pt.Y-s.grabDY
		if !e.graph.SetPosition(s.id, nx, ny) {
			return
		}
		e.surface.NodeMoved(s.id, nx, ny)
		e.refreshNodePaths(s.id)
		s.moved = true
		e.state = s

	case connecting:
		e.updateProvisional(s.srcNode, s.srcPort, pt)

	case panning:
		e.canvasX += x - s.lastX
		e.canvasY += y - s.lastY
		s.lastX, s.lastY = x, y
		e.state = s
		e.surface.TransformChanged(e.canvasX, e.canvasY, e.zoom)
		e.emit(false, EventTranslate, Translate{X: e.canvasX, Y: e.canvasY})

	case draggingPoint:
		if !e.graph.SetPoint(s.conn, s.ordinal, pt) {
			return
		}
		if c, ok := e.graph.Connection(s.conn); ok {
			e.refreshPath(c)
		}
		s.moved = true
		e.state = s
	}
}

// PointerUp ends the live interaction. A connection drag released over an
// input anchor commits; released anywhere else it cancels, except over a
// node body when ForceFirstInput routes it to the lowest free input.
func (e *Editor) PointerUp(x, y float64) {
	switch s := e.state.(type) {
	case draggingNode:
		if s.moved {
			if n, ok := e.graph.Node(s.id); ok {
				e.emit(false, EventNodeMoved, NodeMoved{ID: s.id, X: n.X, Y: n.Y})
				e.emitNode(s.id, EventNodeMoved, NodeMoved{ID: s.id, X: n.X, Y: n.Y})
			}
		}

	case connecting:
		e.surface.ProvisionalPath(nil)
		e.resolveConnection(s, x, y)

	case draggingPoint:
		if s.moved {
			if c, ok := e.graph.Connection(s.conn); ok {
				e.emit(false, EventRerouteMoved, c.Source)
				e.emitNode(c.Source, EventRerouteMoved, c.Source)
			}
		}
	}
	e.state = idle{}
}

func (e *Editor) resolveConnection(s connecting, x, y float64) {
	hit := e.surface.HitTest(x, y)

	dst, dstPort := "", 0
	switch hit.Kind {
	case HitInput:
		dst, dstPort = hit.Node, hit.Port
	case HitNode:
		if e.opts.ForceFirstInput {
			dst, dstPort = hit.Node, e.firstFreeInput(hit.Node)
		}
	}

	if dst == "" || dstPort == 0 || !e.AddConnection(s.srcNode, dst, s.srcPort, dstPort, false) {
		e.emit(false, EventConnectionCancel, true)
	}
}

// firstFreeInput returns the node's lowest-numbered input with no
// connection attached, or 0 when every input is taken.
func (e *Editor) firstFreeInput(id string) int {
	n, ok := e.graph.Node(id)
	if !ok {
		return 0
	}
	taken := make(map[int]bool)
	for _, c := range e.graph.ConnectionsOf(id) {
		if c.Target == id {
			taken[c.TargetPort] = true
		}
	}
	for port := 1; port <= n.Inputs; port++ {
		if !taken[port] {
			return port
		}
	}
	return 0
}

// updateProvisional routes the in-flight connection drag from the source
// anchor to the pointer.
func (e *Editor) updateProvisional(srcNode string, srcPort int, pt geom.Point) {
	anchor, ok := e.surface.OutputAnchor(srcNode, srcPort)
	if !ok {
		return
	}
	origin := geom.Point{X: e.canvasX, Y: e.canvasY}
	src := geom.Logical(anchor.Center(), origin, e.zoom)
	p := geom.Route(src, pt, nil, e.opts.Curvature, e.opts.Curvature)
	e.surface.ProvisionalPath(&p)
}

// DoubleClick inserts a reroute point on the selected connection at the
// nearest segment, or removes the point under the pointer. It does nothing
// when rerouting is disabled.
func (e *Editor) DoubleClick(x, y float64) {
	if !e.opts.Reroute {
		return
	}
	hit := e.surface.HitTest(x, y)

	switch hit.Kind {
	case HitConnection:
		if e.sel.Kind != HitConnection || e.sel.Conn != hit.Conn {
			e.selectConnection(hit.Conn)
			return
		}
		c, ok := e.graph.Connection(hit.Conn)
		if !ok {
			return
		}
		pt := e.toLogical(x, y)
		path, ok := e.connectionPath(c)
		if !ok {
			return
		}
		ordinal := geom.NearestSegment(path, pt)
		if ordinal < 0 {
			return
		}
		if !e.graph.InsertPoint(c.ID, ordinal, pt) {
			return
		}
		e.refreshPath(c)
		e.emit(false, EventRerouteCreated, c.Source)
		e.emitNode(c.Source, EventRerouteCreated, c.Source)

	case HitPoint:
		c, ok := e.graph.Connection(hit.Conn)
		if !ok {
			return
		}
		if !e.graph.RemovePoint(hit.Conn, hit.Ordinal) {
			return
		}
		e.refreshPath(c)
		e.emit(false, EventRerouteRemoved, c.Source)
		e.emitNode(c.Source, EventRerouteRemoved, c.Source)
	}
}

// KeyDown handles keyboard input. Delete and Backspace remove the selected
// element, unless an editable control has focus so text editing keeps its
// keystrokes.
func (e *Editor) KeyDown(key string, editableFocus bool) {
	if key != "Delete" && key != "Backspace" {
		return
	}
	if editableFocus {
		return
	}
	switch e.sel.Kind {
	case HitNode:
		e.RemoveNode(e.sel.Node, false)
	case HitConnection:
		if c, ok := e.graph.Connection(e.sel.Conn); ok {
			e.removeConnection(c, false)
		}
	}
}
