package editor

import (
	"slices"

	"github.com/dverbeek/patchwork/pkg/geom"

	"github.com/dverbeek/patchwork/pkg/graph"
)

// Headless layout constants, in unscaled graph units.
const (
	headlessNodeWidth  = 160.0
	headlessRowHeight  = 20.0
	headlessBasePad    = 20.0
	headlessAnchorSize = 12.0
	headlessPointGrab  = 6.0
	headlessPathGrab   = 5.0
)

type headlessNode struct {
	x, y            float64
	inputs, outputs int
}

// Headless is an in-memory Surface with a fixed box layout: nodes are
// rectangles sized by their port counts, inputs anchored on the left edge
// and outputs on the right, one row per port. It backs tests and the
// terminal viewer; a DOM or canvas surface would replace it in a host UI.
type Headless struct {
	nodes map[string]*headlessNode
	paths map[int]geom.Path
	prov  *geom.Path
	sel   Hit

	offX, offY, zoom float64
}

// NewHeadless returns an empty surface at identity transform.
func NewHeadless() *Headless {
	return &Headless{
		nodes: make(map[string]*headlessNode),
		paths: make(map[int]geom.Path),
		zoom:  1,
	}
}

func (h *Headless) nodeHeight(n *headlessNode) float64 {
	rows := max(n.inputs, n.outputs)
	if rows < 1 {
		rows = 1
	}
	return headlessBasePad + headlessRowHeight*float64(rows)
}

func (h *Headless) toScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*h.zoom + h.offX, Y: p.Y*h.zoom + h.offY}
}

func (h *Headless) toLogical(x, y float64) geom.Point {
	return geom.Logical(geom.Point{X: x, Y: y}, geom.Point{X: h.offX, Y: h.offY}, h.zoom)
}

func (h *Headless) scale() float64 {
	if h.zoom <= 0 {
		return 1
	}
	return h.zoom
}

func (h *Headless) inputCenter(n *headlessNode, port int) geom.Point {
	return geom.Point{X: n.x, Y: n.y + headlessRowHeight*float64(port)}
}

func (h *Headless) outputCenter(n *headlessNode, port int) geom.Point {
	return geom.Point{X: n.x + headlessNodeWidth, Y: n.y + headlessRowHeight*float64(port)}
}

func (h *Headless) sortedNodeIDs() []string {
	ids := make([]string, 0, len(h.nodes))
	for id := range h.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (h *Headless) sortedConnIDs() []int {
	ids := make([]int, 0, len(h.paths))
	for id := range h.paths {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// HitTest picks in precedence order: reroute points, port anchors, node
// bodies, connection paths, canvas.
func (h *Headless) HitTest(x, y float64) Hit {
	pt := h.toLogical(x, y)
	grab := headlessPointGrab / h.scale()

	for _, id := range h.sortedConnIDs() {
		p := h.paths[id]
		for i := 0; i < len(p.Segments)-1; i++ {
			if pt.Dist(p.Segments[i].End) <= grab {
				return Hit{Kind: HitPoint, Conn: id, Ordinal: i}
			}
		}
	}

	half := headlessAnchorSize / 2
	for _, id := range h.sortedNodeIDs() {
		n := h.nodes[id]
		for port := 1; port <= n.inputs; port++ {
			c := h.inputCenter(n, port)
			if abs(pt.X-c.X) <= half && abs(pt.Y-c.Y) <= half {
				return Hit{Kind: HitInput, Node: id, Port: port}
			}
		}
		for port := 1; port <= n.outputs; port++ {
			c := h.outputCenter(n, port)
			if abs(pt.X-c.X) <= half && abs(pt.Y-c.Y) <= half {
				return Hit{Kind: HitOutput, Node: id, Port: port}
			}
		}
	}

	for _, id := range h.sortedNodeIDs() {
		n := h.nodes[id]
		if pt.X >= n.x && pt.X <= n.x+headlessNodeWidth &&
			pt.Y >= n.y && pt.Y <= n.y+h.nodeHeight(n) {
			return Hit{Kind: HitNode, Node: id}
		}
	}

	tol := headlessPathGrab / h.scale()
	for _, id := range h.sortedConnIDs() {
		for _, seg := range h.paths[id].Segments {
			for i := 0; i <= 16; i++ {
				if pt.Dist(seg.At(float64(i)/16)) <= tol {
					return Hit{Kind: HitConnection, Conn: id}
				}
			}
		}
	}

	return Hit{Kind: HitCanvas}
}

func (h *Headless) NodeRect(id string) (Rect, bool) {
	n, ok := h.nodes[id]
	if !ok {
		return Rect{}, false
	}
	tl := h.toScreen(geom.Point{X: n.x, Y: n.y})
	return Rect{
		X: tl.X, Y: tl.Y,
		W: headlessNodeWidth * h.scale(),
		H: h.nodeHeight(n) * h.scale(),
	}, true
}

func (h *Headless) InputAnchor(id string, port int) (Rect, bool) {
	n, ok := h.nodes[id]
	if !ok || port < 1 || port > n.inputs {
		return Rect{}, false
	}
	return h.anchorRect(h.inputCenter(n, port)), true
}

func (h *Headless) OutputAnchor(id string, port int) (Rect, bool) {
	n, ok := h.nodes[id]
	if !ok || port < 1 || port > n.outputs {
		return Rect{}, false
	}
	return h.anchorRect(h.outputCenter(n, port)), true
}

func (h *Headless) anchorRect(center geom.Point) Rect {
	c := h.toScreen(center)
	size := headlessAnchorSize * h.scale()
	return Rect{X: c.X - size/2, Y: c.Y - size/2, W: size, H: size}
}

func (h *Headless) NodeAdded(n *graph.Node) {
	h.nodes[n.ID] = &headlessNode{x: n.X, y: n.Y, inputs: n.Inputs, outputs: n.Outputs}
}

func (h *Headless) NodeChanged(n *graph.Node) {
	if hn, ok := h.nodes[n.ID]; ok {
		hn.inputs = n.Inputs
		hn.outputs = n.Outputs
	}
}

func (h *Headless) NodeMoved(id string, x, y float64) {
	if n, ok := h.nodes[id]; ok {
		n.x, n.y = x, y
	}
}

func (h *Headless) NodeRenamed(oldID, newID string) {
	if n, ok := h.nodes[oldID]; ok {
		delete(h.nodes, oldID)
		h.nodes[newID] = n
	}
}

func (h *Headless) NodeRemoved(id string) {
	delete(h.nodes, id)
}

func (h *Headless) PathUpdated(connID int, p geom.Path) {
	h.paths[connID] = p
}

func (h *Headless) PathRemoved(connID int) {
	delete(h.paths, connID)
}

func (h *Headless) ProvisionalPath(p *geom.Path) {
	h.prov = p
}

func (h *Headless) SelectionChanged(hit Hit) {
	h.sel = hit
}

func (h *Headless) TransformChanged(x, y, zoom float64) {
	h.offX, h.offY, h.zoom = x, y, zoom
}

func (h *Headless) Reset() {
	h.nodes = make(map[string]*headlessNode)
	h.paths = make(map[int]geom.Path)
	h.prov = nil
	h.sel = Hit{Kind: HitCanvas}
}

// Path reports a connection's installed path geometry.
func (h *Headless) Path(connID int) (geom.Path, bool) {
	p, ok := h.paths[connID]
	return p, ok
}

// Provisional reports the in-flight connection drag path, if any.
func (h *Headless) Provisional() *geom.Path {
	return h.prov
}

// Selection reports the last selection notification.
func (h *Headless) Selection() Hit {
	return h.sel
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
