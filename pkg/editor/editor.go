// Package editor is the interaction layer: it owns the canvas transform,
// the selection, and the pointer state machine, and it is the public facade
// hosts embed. All mutations flow through it so the surface stays in sync
// with the store and node-scoped event emitters stay accurate.
package editor

import (
	"fmt"

	"github.com/dverbeek/patchwork/pkg/bus"
	"github.com/dverbeek/patchwork/pkg/geom"
	"github.com/dverbeek/patchwork/pkg/graph"
	"github.com/dverbeek/patchwork/pkg/snapshot"
)

// Editor binds a graph store, an event bus and a presentation surface.
// It is single-threaded: all methods must be called from one goroutine.
type Editor struct {
	opts    Options
	bus     *bus.Bus
	graph   *graph.Graph
	surface Surface
	diag    func(string)

	canvasX, canvasY float64
	zoom             float64
	zoomLast         float64

	state state
	sel   Hit

	renderers map[string]Renderer
	nodeSubs  map[string]map[string][]bus.Handler

	pointers  []pointerSample
	pinchBase float64
	pinchPrev float64
}

// New creates an editor over a fresh store. The surface must not be nil.
func New(surface Surface, opts Options) *Editor {
	b := bus.New()
	e := &Editor{
		opts:      opts,
		bus:       b,
		graph:     graph.New(b, opts.idPolicy()),
		surface:   surface,
		zoom:      1,
		zoomLast:  1,
		state:     idle{},
		sel:       Hit{Kind: HitCanvas},
		renderers: make(map[string]Renderer),
		nodeSubs:  make(map[string]map[string][]bus.Handler),
	}
	surface.TransformChanged(0, 0, 1)
	return e
}

// SetDiagnostic installs a sink for programmer-error diagnostics, shared
// with the underlying bus.
func (e *Editor) SetDiagnostic(fn func(string)) {
	e.diag = fn
	e.bus.SetDiagnostic(fn)
}

func (e *Editor) diagnose(format string, args ...any) {
	if e.diag != nil {
		e.diag(fmt.Sprintf(format, args...))
	}
}

// Graph exposes the underlying store for read access. Mutations must go
// through the editor so the surface stays consistent.
func (e *Editor) Graph() *graph.Graph { return e.graph }

// On subscribes a handler; Off removes it. Both delegate to the shared bus,
// so store events and interaction events register the same way.
func (e *Editor) On(event string, fn bus.Handler) (bus.Subscription, bool) {
	return e.bus.On(event, fn)
}

// Off removes a subscription made with On.
func (e *Editor) Off(event string, sub bus.Subscription) bool {
	return e.bus.Off(event, sub)
}

func (e *Editor) emit(silent bool, event string, payload any) {
	if silent {
		return
	}
	e.bus.Emit(event, payload)
}

// =============================================================================
// Modules
// =============================================================================

// AddModule creates a new empty module without switching to it.
func (e *Editor) AddModule(name string, silent bool) bool {
	return e.graph.AddModule(name, silent)
}

// ChangeModule switches the active module and rebuilds the surface. Any
// in-flight interaction is abandoned and the selection cleared. Switching
// to an unknown module is a no-op: no state is touched and no event fires.
func (e *Editor) ChangeModule(name string, silent bool) bool {
	if !e.graph.HasModule(name) {
		return false
	}
	if name == e.graph.Active() {
		return true
	}
	e.state = idle{}
	e.surface.ProvisionalPath(nil)
	e.clearSelection(silent)
	e.graph.ChangeModule(name, silent)
	e.materialize()
	return true
}

// RemoveModule deletes a module. When the active module is removed the
// store falls back to the default module and the surface is rebuilt.
func (e *Editor) RemoveModule(name string, silent bool) bool {
	wasActive := e.graph.Active() == name
	if wasActive {
		e.state = idle{}
		e.surface.ProvisionalPath(nil)
		e.clearSelection(silent)
	}
	if !e.graph.RemoveModule(name, silent) {
		return false
	}
	if wasActive {
		e.materialize()
	}
	return true
}

// materialize resets the surface and rebuilds it from the active module.
func (e *Editor) materialize() {
	e.surface.Reset()
	e.surface.TransformChanged(e.canvasX, e.canvasY, e.zoom)
	active := e.graph.Active()
	for _, n := range e.graph.NodesIn(active) {
		e.surface.NodeAdded(n)
	}
	for _, c := range e.graph.Connections(active) {
		e.refreshPath(c)
	}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode creates a node in the active module and materializes it.
func (e *Editor) AddNode(spec graph.NodeSpec, silent bool) (string, bool) {
	id, ok := e.graph.AddNode(spec, silent)
	if !ok {
		return "", false
	}
	n, _ := e.graph.Node(id)
	e.surface.NodeAdded(n)
	return id, true
}

// RemoveNode cascades connection removal, drops the node from the surface,
// and unregisters its scoped event emitters.
func (e *Editor) RemoveNode(id string, silent bool) bool {
	if _, ok := e.graph.Node(id); !ok {
		return false
	}
	if e.sel.Kind == HitNode && e.sel.Node == id {
		e.clearSelection(silent)
	}
	conns := e.graph.ConnectionsOf(id)
	for _, c := range conns {
		if e.sel.Kind == HitConnection && e.sel.Conn == c.ID {
			e.clearSelection(silent)
		}
		e.surface.PathRemoved(c.ID)
	}
	e.graph.RemoveNode(id, silent)
	e.surface.NodeRemoved(id)
	if !silent {
		e.emitNode(id, graph.EventNodeRemoved, id)
	}
	delete(e.nodeSubs, id)
	return true
}

// RenameNodeID relocates a node under a new id, keeping connections,
// surface state and scoped emitters attached.
func (e *Editor) RenameNodeID(oldID, newID string, silent bool) bool {
	if !e.graph.RenameNodeID(oldID, newID, silent) {
		return false
	}
	e.surface.NodeRenamed(oldID, newID)
	if subs, ok := e.nodeSubs[oldID]; ok {
		delete(e.nodeSubs, oldID)
		e.nodeSubs[newID] = subs
	}
	if e.sel.Kind == HitNode && e.sel.Node == oldID {
		e.sel.Node = newID
		e.surface.SelectionChanged(e.sel)
	}
	if !silent {
		e.emitNode(newID, graph.EventUpdateNodeID, graph.IDChange{OldID: oldID, NewID: newID})
	}
	return true
}

// UpdateNodeData replaces a node's content payload.
func (e *Editor) UpdateNodeData(id string, data map[string]any, silent bool) bool {
	if !e.graph.UpdateNodeData(id, data, silent) {
		return false
	}
	n, _ := e.graph.Node(id)
	e.surface.NodeChanged(n)
	if !silent {
		e.emitNode(id, graph.EventNodeDataChanged, id)
	}
	return true
}

// MoveNode repositions a node programmatically, in unscaled graph
// coordinates, announcing the move like a completed drag would.
func (e *Editor) MoveNode(id string, x, y float64, silent bool) bool {
	if !e.graph.SetPosition(id, x, y) {
		return false
	}
	e.surface.NodeMoved(id, x, y)
	e.refreshNodePaths(id)
	if !silent {
		e.emit(false, EventNodeMoved, NodeMoved{ID: id, X: x, Y: y})
		e.emitNode(id, EventNodeMoved, NodeMoved{ID: id, X: x, Y: y})
	}
	return true
}

// =============================================================================
// Ports
// =============================================================================

// AddNodeInput appends the next input port to a node.
func (e *Editor) AddNodeInput(id string) bool {
	if !e.graph.AddInput(id) {
		return false
	}
	e.portsChanged(id)
	return true
}

// AddNodeOutput appends the next output port to a node.
func (e *Editor) AddNodeOutput(id string) bool {
	if !e.graph.AddOutput(id) {
		return false
	}
	e.portsChanged(id)
	return true
}

// RemoveNodeInput deletes an input port; its connections are dropped and
// higher-numbered inputs shift down.
func (e *Editor) RemoveNodeInput(id string, port int, silent bool) bool {
	e.dropPortPaths(id, port, false)
	if !e.graph.RemoveInput(id, port, silent) {
		return false
	}
	e.portsChanged(id)
	return true
}

// RemoveNodeOutput deletes an output port; its connections are dropped and
// higher-numbered outputs shift down.
func (e *Editor) RemoveNodeOutput(id string, port int, silent bool) bool {
	e.dropPortPaths(id, port, true)
	if !e.graph.RemoveOutput(id, port, silent) {
		return false
	}
	e.portsChanged(id)
	return true
}

// dropPortPaths removes surface paths for the connections a port removal is
// about to drop, clearing the selection if one of them is selected.
func (e *Editor) dropPortPaths(id string, port int, output bool) {
	for _, c := range e.graph.ConnectionsOf(id) {
		hit := (output && c.Source == id && c.SourcePort == port) ||
			(!output && c.Target == id && c.TargetPort == port)
		if !hit {
			continue
		}
		if e.sel.Kind == HitConnection && e.sel.Conn == c.ID {
			e.clearSelection(false)
		}
		e.surface.PathRemoved(c.ID)
	}
}

// portsChanged refreshes the node's surface box and every surviving path
// touching it, since port removal shifts the remaining anchors.
func (e *Editor) portsChanged(id string) {
	n, _ := e.graph.Node(id)
	e.surface.NodeChanged(n)
	e.refreshNodePaths(id)
}

// =============================================================================
// Connections
// =============================================================================

// AddConnection links an output port of src to an input port of dst and
// installs the path on the surface.
func (e *Editor) AddConnection(src, dst string, srcPort, dstPort int, silent bool) bool {
	if !e.graph.AddConnection(src, dst, srcPort, dstPort, silent) {
		return false
	}
	c, _ := e.graph.FindConnection(src, dst, srcPort, dstPort)
	if e.graph.Active() == moduleName(e.graph, src) {
		e.refreshPath(c)
	}
	if !silent {
		ev := graph.ConnectionEvent{
			OutputID:    src,
			InputID:     dst,
			OutputClass: graph.OutputLabel(srcPort),
			InputClass:  graph.InputLabel(dstPort),
		}
		e.emitNode(src, graph.EventConnectionCreated, ev)
		e.emitNode(dst, graph.EventConnectionCreated, ev)
	}
	return true
}

func moduleName(g *graph.Graph, id string) string {
	name, _ := g.ModuleOf(id)
	return name
}

// RemoveConnection removes the connection matching the endpoint tuple.
func (e *Editor) RemoveConnection(src, dst string, srcPort, dstPort int, silent bool) bool {
	c, ok := e.graph.FindConnection(src, dst, srcPort, dstPort)
	if !ok {
		return false
	}
	return e.removeConnection(c, silent)
}

func (e *Editor) removeConnection(c *graph.Connection, silent bool) bool {
	if e.sel.Kind == HitConnection && e.sel.Conn == c.ID {
		e.clearSelection(silent)
	}
	src, dst := c.Source, c.Target
	srcPort, dstPort := c.SourcePort, c.TargetPort
	if !e.graph.RemoveConnectionByID(c.ID, silent) {
		return false
	}
	e.surface.PathRemoved(c.ID)
	if !silent {
		ev := graph.ConnectionEvent{
			OutputID:    src,
			InputID:     dst,
			OutputClass: graph.OutputLabel(srcPort),
			InputClass:  graph.InputLabel(dstPort),
		}
		e.emitNode(src, graph.EventConnectionRemoved, ev)
		e.emitNode(dst, graph.EventConnectionRemoved, ev)
	}
	return true
}

// refreshNodePaths recomputes every path touching the node.
func (e *Editor) refreshNodePaths(id string) {
	for _, c := range e.graph.ConnectionsOf(id) {
		e.refreshPath(c)
	}
}

// refreshPath recomputes and installs one connection's path from the
// current anchor positions and reroute points.
func (e *Editor) refreshPath(c *graph.Connection) {
	p, ok := e.connectionPath(c)
	if !ok {
		return
	}
	e.surface.PathUpdated(c.ID, p)
}

// connectionPath routes a connection in unscaled graph coordinates: anchor
// centers come back from the surface in screen space and are unprojected
// through the canvas transform.
func (e *Editor) connectionPath(c *graph.Connection) (geom.Path, bool) {
	out, okOut := e.surface.OutputAnchor(c.Source, c.SourcePort)
	in, okIn := e.surface.InputAnchor(c.Target, c.TargetPort)
	if !okOut || !okIn {
		return geom.Path{}, false
	}
	origin := geom.Point{X: e.canvasX, Y: e.canvasY}
	src := geom.Logical(out.Center(), origin, e.zoom)
	dst := geom.Logical(in.Center(), origin, e.zoom)
	if len(c.Points) == 0 {
		return geom.Route(src, dst, nil, e.opts.Curvature, e.opts.Curvature), true
	}
	return geom.Route(src, dst, c.Points, e.opts.RerouteCurvatureStartEnd, e.opts.RerouteCurvature), true
}

// =============================================================================
// Selection
// =============================================================================

// Selection reports the current selection: HitNode, HitConnection, or
// HitCanvas for none.
func (e *Editor) Selection() Hit { return e.sel }

func (e *Editor) selectNode(id string) {
	if e.sel.Kind == HitNode && e.sel.Node == id {
		return
	}
	e.clearSelection(false)
	e.sel = Hit{Kind: HitNode, Node: id}
	e.surface.SelectionChanged(e.sel)
	e.emit(false, EventNodeSelected, id)
	e.emitNode(id, EventNodeSelected, id)
}

func (e *Editor) selectConnection(id int) {
	if e.sel.Kind == HitConnection && e.sel.Conn == id {
		return
	}
	e.clearSelection(false)
	c, ok := e.graph.Connection(id)
	if !ok {
		return
	}
	e.sel = Hit{Kind: HitConnection, Conn: id}
	e.surface.SelectionChanged(e.sel)
	e.emit(false, EventConnectionSelected, graph.ConnectionEvent{
		OutputID:    c.Source,
		InputID:     c.Target,
		OutputClass: graph.OutputLabel(c.SourcePort),
		InputClass:  graph.InputLabel(c.TargetPort),
	})
}

func (e *Editor) clearSelection(silent bool) {
	switch e.sel.Kind {
	case HitNode:
		e.emit(silent, EventNodeDeselected, true)
		e.emitNode(e.sel.Node, EventNodeDeselected, true)
	case HitConnection:
		e.emit(silent, EventConnectionDeselected, true)
	default:
		return
	}
	e.sel = Hit{Kind: HitCanvas}
	e.surface.SelectionChanged(e.sel)
}

// =============================================================================
// Zoom and pan
// =============================================================================

// Zoom returns the current zoom level.
func (e *Editor) Zoom() float64 { return e.zoom }

// Translate returns the canvas pan offset in screen units.
func (e *Editor) Translate() (x, y float64) { return e.canvasX, e.canvasY }

// ZoomIn raises the zoom level by one step, clamped to the configured
// maximum. At the bound it is a no-op.
func (e *Editor) ZoomIn() {
	next := e.zoom + e.opts.ZoomStep
	if next > e.opts.ZoomMax {
		next = e.opts.ZoomMax
	}
	if next == e.zoom {
		return
	}
	e.zoom = next
	e.zoomRefresh()
}

// ZoomOut lowers the zoom level by one step, clamped to the configured
// minimum. At the bound it is a no-op.
func (e *Editor) ZoomOut() {
	next := e.zoom - e.opts.ZoomStep
	if next < e.opts.ZoomMin {
		next = e.opts.ZoomMin
	}
	if next == e.zoom {
		return
	}
	e.zoom = next
	e.zoomRefresh()
}

// ResetZoom restores the 1.0 zoom level.
func (e *Editor) ResetZoom() {
	if e.zoom == 1 {
		return
	}
	e.zoom = 1
	e.zoomRefresh()
}

// zoomRefresh rescales the pan offset so the canvas origin stays put under
// the new zoom level, then announces the transform.
func (e *Editor) zoomRefresh() {
	e.canvasX = e.canvasX / e.zoomLast * e.zoom
	e.canvasY = e.canvasY / e.zoomLast * e.zoom
	e.zoomLast = e.zoom
	e.surface.TransformChanged(e.canvasX, e.canvasY, e.zoom)
	e.emit(false, EventZoom, e.zoom)
}

// Wheel applies one scroll step: positive delta (scroll down) zooms out.
func (e *Editor) Wheel(delta float64) {
	if delta > 0 {
		e.ZoomOut()
	} else if delta < 0 {
		e.ZoomIn()
	}
}

// =============================================================================
// Export / import
// =============================================================================

// Export derives a deep-copied snapshot of the whole store and announces it.
func (e *Editor) Export(silent bool) snapshot.Snapshot {
	snap := snapshot.FromGraph(e.graph)
	e.emit(silent, EventExport, snap)
	return snap
}

// Import replaces the entire store from a snapshot and rebuilds the
// surface. A malformed snapshot is rejected with no state change.
func (e *Editor) Import(snap snapshot.Snapshot, silent bool) error {
	rebuilt, err := snapshot.ToGraph(snap, e.bus, e.opts.idPolicy())
	if err != nil {
		return err
	}
	e.state = idle{}
	e.surface.ProvisionalPath(nil)
	e.clearSelection(silent)
	e.graph = rebuilt
	e.nodeSubs = make(map[string]map[string][]bus.Handler)
	e.materialize()
	e.emit(silent, EventImport, "import")
	return nil
}
