package graph

import (
	"slices"

	"github.com/dverbeek/patchwork/pkg/geom"
)

// Connection is a logical link from an output port to an input port of two
// distinct nodes in the same module. ID is a synthetic store-internal key;
// the persisted snapshot form derives mirrored endpoint records from it.
//
// Points is the ordered list of reroute waypoints in unscaled graph
// coordinates; list order defines segment order from source to target.
type Connection struct {
	ID         int
	Source     string
	SourcePort int // 1-based output port on Source
	Target     string
	TargetPort int // 1-based input port on Target
	Points     []geom.Point
}

// Connections returns the connections of a module sorted by id. The
// pointers refer to live store state.
func (g *Graph) Connections(module string) []*Connection {
	m, ok := g.modules[module]
	if !ok {
		return nil
	}
	out := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Connection) int { return a.ID - b.ID })
	return out
}

// Connection looks a connection up by its synthetic id, scanning every
// module.
func (g *Graph) Connection(id int) (*Connection, bool) {
	for _, m := range g.modules {
		if c, ok := m.conns[id]; ok {
			return c, true
		}
	}
	return nil, false
}

// ConnectionsOf returns every connection touching the node, as source or
// target, sorted by id.
func (g *Graph) ConnectionsOf(nodeID string) []*Connection {
	m, ok := g.moduleOf(nodeID)
	if !ok {
		return nil
	}
	seen := make(map[int]bool)
	var out []*Connection
	for _, id := range m.bySource[nodeID] {
		if !seen[id] {
			seen[id] = true
			out = append(out, m.conns[id])
		}
	}
	for _, id := range m.byTarget[nodeID] {
		if !seen[id] {
			seen[id] = true
			out = append(out, m.conns[id])
		}
	}
	slices.SortFunc(out, func(a, b *Connection) int { return a.ID - b.ID })
	return out
}

// FindConnection returns the connection matching the endpoint tuple.
func (g *Graph) FindConnection(src, dst string, srcPort, dstPort int) (*Connection, bool) {
	m, ok := g.moduleOf(src)
	if !ok {
		return nil, false
	}
	for _, id := range m.bySource[src] {
		c := m.conns[id]
		if c.Target == dst && c.SourcePort == srcPort && c.TargetPort == dstPort {
			return c, true
		}
	}
	return nil, false
}

// AddConnection links an output port of src to an input port of dst. It is
// a silent no-op returning false if the nodes are missing or in different
// modules, if either port doesn't exist, if src and dst are the same node,
// or if the identical endpoint pair already exists.
func (g *Graph) AddConnection(src, dst string, srcPort, dstPort int, silent bool) bool {
	ms, okS := g.moduleOf(src)
	md, okD := g.moduleOf(dst)
	if !okS || !okD || ms != md || src == dst {
		return false
	}
	if srcPort < 1 || srcPort > ms.nodes[src].Outputs {
		return false
	}
	if dstPort < 1 || dstPort > md.nodes[dst].Inputs {
		return false
	}
	if _, dup := g.FindConnection(src, dst, srcPort, dstPort); dup {
		return false
	}

	c := &Connection{
		ID:         g.nextConn,
		Source:     src,
		SourcePort: srcPort,
		Target:     dst,
		TargetPort: dstPort,
	}
	g.nextConn++
	ms.conns[c.ID] = c
	ms.bySource[src] = append(ms.bySource[src], c.ID)
	ms.byTarget[dst] = append(ms.byTarget[dst], c.ID)

	g.emit(silent, EventConnectionCreated, c.event())
	return true
}

// RemoveConnection removes the connection matching the endpoint tuple.
func (g *Graph) RemoveConnection(src, dst string, srcPort, dstPort int, silent bool) bool {
	c, ok := g.FindConnection(src, dst, srcPort, dstPort)
	if !ok {
		return false
	}
	return g.RemoveConnectionByID(c.ID, silent)
}

// RemoveConnectionByID removes a connection by its synthetic id.
func (g *Graph) RemoveConnectionByID(id int, silent bool) bool {
	for _, m := range g.modules {
		c, ok := m.conns[id]
		if !ok {
			continue
		}
		delete(m.conns, id)
		m.bySource[c.Source] = deleteID(m.bySource[c.Source], id)
		m.byTarget[c.Target] = deleteID(m.byTarget[c.Target], id)
		g.emit(silent, EventConnectionRemoved, c.event())
		return true
	}
	return false
}

// RemoveNodeConnections removes every connection touching the node and
// returns how many were removed. It is used before node deletion.
func (g *Graph) RemoveNodeConnections(nodeID string, silent bool) int {
	conns := g.ConnectionsOf(nodeID)
	for _, c := range conns {
		g.RemoveConnectionByID(c.ID, silent)
	}
	return len(conns)
}

func deleteID(ids []int, id int) []int {
	return slices.DeleteFunc(ids, func(v int) bool { return v == id })
}

// =============================================================================
// Ports
// =============================================================================

// AddInput appends the next input port (with an empty connection list) to
// the node.
func (g *Graph) AddInput(nodeID string) bool {
	n, ok := g.Node(nodeID)
	if !ok {
		return false
	}
	n.Inputs++
	return true
}

// AddOutput appends the next output port to the node.
func (g *Graph) AddOutput(nodeID string) bool {
	n, ok := g.Node(nodeID)
	if !ok {
		return false
	}
	n.Outputs++
	return true
}

// RemoveInput deletes the node's input port with the given 1-based number.
// The port's own connections are dropped first, then every higher-numbered
// input shifts down by one; connections referencing a shifted port follow
// it, so their opposite (output-side) endpoint records report the new label
// from now on.
func (g *Graph) RemoveInput(nodeID string, port int, silent bool) bool {
	m, ok := g.moduleOf(nodeID)
	if !ok {
		return false
	}
	n := m.nodes[nodeID]
	if port < 1 || port > n.Inputs {
		return false
	}

	for _, id := range slices.Clone(m.byTarget[nodeID]) {
		if m.conns[id].TargetPort == port {
			g.RemoveConnectionByID(id, silent)
		}
	}
	for _, id := range m.byTarget[nodeID] {
		if c := m.conns[id]; c.TargetPort > port {
			c.TargetPort--
		}
	}
	n.Inputs--
	return true
}

// RemoveOutput deletes the node's output port with the given 1-based
// number, compacting higher-numbered outputs exactly like [Graph.RemoveInput].
func (g *Graph) RemoveOutput(nodeID string, port int, silent bool) bool {
	m, ok := g.moduleOf(nodeID)
	if !ok {
		return false
	}
	n := m.nodes[nodeID]
	if port < 1 || port > n.Outputs {
		return false
	}

	for _, id := range slices.Clone(m.bySource[nodeID]) {
		if m.conns[id].SourcePort == port {
			g.RemoveConnectionByID(id, silent)
		}
	}
	for _, id := range m.bySource[nodeID] {
		if c := m.conns[id]; c.SourcePort > port {
			c.SourcePort--
		}
	}
	n.Outputs--
	return true
}

// =============================================================================
// Reroute points
// =============================================================================

// InsertPoint places a reroute waypoint at the given ordinal (0-based) in
// the connection's points list. An ordinal at or beyond the list length
// appends.
func (g *Graph) InsertPoint(connID, ordinal int, pt geom.Point) bool {
	c, ok := g.Connection(connID)
	if !ok || ordinal < 0 {
		return false
	}
	if ordinal > len(c.Points) {
		ordinal = len(c.Points)
	}
	c.Points = slices.Insert(c.Points, ordinal, pt)
	return true
}

// RemovePoint deletes the waypoint at the given ordinal.
func (g *Graph) RemovePoint(connID, ordinal int) bool {
	c, ok := g.Connection(connID)
	if !ok || ordinal < 0 || ordinal >= len(c.Points) {
		return false
	}
	c.Points = slices.Delete(c.Points, ordinal, ordinal+1)
	return true
}

// SetPoint moves the waypoint at the given ordinal.
func (g *Graph) SetPoint(connID, ordinal int, pt geom.Point) bool {
	c, ok := g.Connection(connID)
	if !ok || ordinal < 0 || ordinal >= len(c.Points) {
		return false
	}
	c.Points[ordinal] = pt
	return true
}
