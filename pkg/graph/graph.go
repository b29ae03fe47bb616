// Package graph owns the editor's data model: modules, nodes, ports, and
// the connections between them. It is pure data with consistency
// invariants; it knows nothing about rendering.
//
// Connections are held in a per-module table keyed by a synthetic id with
// by-source and by-target indexes, so the mirrored endpoint records of the
// snapshot form are derived rather than dual-written. Operations that the
// error taxonomy classifies as silent no-ops (unknown ids, duplicate
// connections, cross-module attempts) return false and mutate nothing.
package graph

import (
	"errors"
	"maps"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/dverbeek/patchwork/pkg/bus"
)

// DefaultModule is the module every store starts with and the fallback when
// the active module is removed.
const DefaultModule = "main"

var (
	// ErrDanglingEndpoint is returned by [Graph.Validate] when a connection
	// references a node that doesn't exist. This indicates store corruption.
	ErrDanglingEndpoint = errors.New("connection references missing node")

	// ErrPortOutOfRange is returned by [Graph.Validate] when a connection
	// references a port number beyond the node's port count.
	ErrPortOutOfRange = errors.New("connection references missing port")

	// ErrSelfConnection is returned by [Graph.Validate] when a connection
	// joins a node to itself.
	ErrSelfConnection = errors.New("connection joins a node to itself")

	// ErrDuplicateConnection is returned by [Graph.Validate] when two
	// connections share the same endpoint tuple.
	ErrDuplicateConnection = errors.New("duplicate connection")
)

// Graph is the store for all modules. Exactly one module is active at a
// time; node ids are unique across the entire store, not just within their
// module, so lookups by id scan every module.
//
// The zero value is not usable; create instances with [New]. Graph is not
// safe for concurrent use: the editor model is cooperative and
// single-threaded.
type Graph struct {
	bus      *bus.Bus
	policy   IDPolicy
	modules  map[string]*Module
	active   string
	nextNode int
	nextConn int
}

// Module is a named namespace of nodes and the connections between them.
type Module struct {
	name     string
	nodes    map[string]*Node
	conns    map[int]*Connection
	bySource map[string][]int // node id -> connection ids where node is source
	byTarget map[string][]int // node id -> connection ids where node is target
}

func newModule(name string) *Module {
	return &Module{
		name:     name,
		nodes:    make(map[string]*Node),
		conns:    make(map[int]*Connection),
		bySource: make(map[string][]int),
		byTarget: make(map[string][]int),
	}
}

// New creates a store containing the default module, already active.
// The bus may be nil, in which case no events are emitted.
func New(b *bus.Bus, policy IDPolicy) *Graph {
	g := &Graph{
		bus:      b,
		policy:   policy,
		modules:  make(map[string]*Module),
		active:   DefaultModule,
		nextNode: 1,
		nextConn: 1,
	}
	g.modules[DefaultModule] = newModule(DefaultModule)
	return g
}

func (g *Graph) emit(silent bool, event string, payload any) {
	if silent || g.bus == nil {
		return
	}
	g.bus.Emit(event, payload)
}

// =============================================================================
// Modules
// =============================================================================

// Modules returns all module names in sorted order.
func (g *Graph) Modules() []string {
	return slices.Sorted(maps.Keys(g.modules))
}

// Active returns the name of the active module.
func (g *Graph) Active() string { return g.active }

// HasModule reports whether a module with the given name exists.
func (g *Graph) HasModule(name string) bool {
	_, ok := g.modules[name]
	return ok
}

// AddModule creates a new empty module. It is a no-op returning false if the
// name is empty or already taken.
func (g *Graph) AddModule(name string, silent bool) bool {
	if name == "" {
		return false
	}
	if _, exists := g.modules[name]; exists {
		return false
	}
	g.modules[name] = newModule(name)
	g.emit(silent, EventModuleCreated, name)
	return true
}

// ChangeModule switches the active module. It is a no-op returning false if
// the module doesn't exist.
func (g *Graph) ChangeModule(name string, silent bool) bool {
	if _, ok := g.modules[name]; !ok {
		return false
	}
	g.active = name
	g.emit(silent, EventModuleChanged, name)
	return true
}

// RemoveModule deletes a module and everything in it. Removing the active
// module falls back to the default module, recreating it if necessary; the
// fallback switch is announced with a moduleChanged event.
func (g *Graph) RemoveModule(name string, silent bool) bool {
	if _, ok := g.modules[name]; !ok {
		return false
	}
	delete(g.modules, name)
	g.emit(silent, EventModuleRemoved, name)
	if g.active == name {
		if _, ok := g.modules[DefaultModule]; !ok {
			g.modules[DefaultModule] = newModule(DefaultModule)
		}
		g.active = DefaultModule
		g.emit(silent, EventModuleChanged, DefaultModule)
	}
	return true
}

// ModuleOf returns the name of the module holding the node.
func (g *Graph) ModuleOf(id string) (string, bool) {
	m, ok := g.moduleOf(id)
	if !ok {
		return "", false
	}
	return m.name, true
}

func (g *Graph) moduleOf(id string) (*Module, bool) {
	for _, m := range g.modules {
		if _, ok := m.nodes[id]; ok {
			return m, true
		}
	}
	return nil, false
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode creates a node from spec in the active module and returns its
// assigned id. Ports input_1..input_n and output_1..output_n start with
// empty connection lists.
func (g *Graph) AddNode(spec NodeSpec, silent bool) (string, bool) {
	if spec.Inputs < 0 || spec.Outputs < 0 {
		return "", false
	}
	id := g.generateID()
	g.modules[g.active].nodes[id] = newNode(id, spec)
	g.emit(silent, EventNodeCreated, id)
	return id, true
}

// AddNodeWithID inserts a node under a caller-chosen id into the active
// module. It is used by snapshot import to reconstruct stores and returns
// false if the id is empty or already in use anywhere in the store.
func (g *Graph) AddNodeWithID(id string, spec NodeSpec, silent bool) bool {
	if id == "" || spec.Inputs < 0 || spec.Outputs < 0 {
		return false
	}
	if _, exists := g.moduleOf(id); exists {
		return false
	}
	g.modules[g.active].nodes[id] = newNode(id, spec)
	g.emit(silent, EventNodeCreated, id)
	return true
}

func newNode(id string, spec NodeSpec) *Node {
	n := &Node{
		ID:      id,
		Name:    spec.Name,
		X:       spec.X,
		Y:       spec.Y,
		Class:   spec.Class,
		Data:    spec.Data,
		Render:  spec.Render,
		Inputs:  spec.Inputs,
		Outputs: spec.Outputs,
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}
	return n
}

// generateID assigns the next node id under the store's id policy. Both
// policies collision-check against every module, since node ids are unique
// across the whole store.
func (g *Graph) generateID() string {
	if g.policy == IDRandom {
		for {
			id := uuid.NewString()
			if _, exists := g.moduleOf(id); !exists {
				return id
			}
		}
	}
	for {
		id := strconv.Itoa(g.nextNode)
		g.nextNode++
		if _, exists := g.moduleOf(id); !exists {
			return id
		}
	}
}

// Node looks a node up by id, scanning every module.
func (g *Graph) Node(id string) (*Node, bool) {
	m, ok := g.moduleOf(id)
	if !ok {
		return nil, false
	}
	return m.nodes[id], true
}

// NodesIn returns the nodes of a module sorted by id for deterministic
// iteration. The pointers refer to live store state.
func (g *Graph) NodesIn(module string) []*Node {
	m, ok := g.modules[module]
	if !ok {
		return nil
	}
	ids := slices.Sorted(maps.Keys(m.nodes))
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = m.nodes[id]
	}
	return nodes
}

// RemoveNode cascades removal of every connection touching the node, then
// deletes the node itself. Repeated calls after the node is gone are no-ops
// returning false.
func (g *Graph) RemoveNode(id string, silent bool) bool {
	m, ok := g.moduleOf(id)
	if !ok {
		return false
	}
	g.RemoveNodeConnections(id, silent)
	delete(m.nodes, id)
	g.emit(silent, EventNodeRemoved, id)
	return true
}

// SetPosition moves a node in unscaled graph coordinates. Movement events
// are the interaction layer's responsibility, so none is emitted here.
func (g *Graph) SetPosition(id string, x, y float64) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	n.X, n.Y = x, y
	return true
}

// UpdateNodeData replaces the node's content payload.
func (g *Graph) UpdateNodeData(id string, data map[string]any, silent bool) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	if data == nil {
		data = map[string]any{}
	}
	n.Data = data
	g.emit(silent, EventNodeDataChanged, id)
	return true
}

// RenameNodeID relocates a node under a new id and rewrites every
// connection endpoint that referenced the old one. It fails atomically
// (no mutation) if the old id is unknown, the new id is already in use, or
// the ids are equal.
func (g *Graph) RenameNodeID(oldID, newID string, silent bool) bool {
	if newID == "" || newID == oldID {
		return false
	}
	m, ok := g.moduleOf(oldID)
	if !ok {
		return false
	}
	if _, exists := g.moduleOf(newID); exists {
		return false
	}

	n := m.nodes[oldID]
	n.ID = newID
	delete(m.nodes, oldID)
	m.nodes[newID] = n

	// Connections never cross modules, so only this module holds references.
	for _, c := range m.conns {
		if c.Source == oldID {
			c.Source = newID
		}
		if c.Target == oldID {
			c.Target = newID
		}
	}
	if ids, ok := m.bySource[oldID]; ok {
		m.bySource[newID] = ids
		delete(m.bySource, oldID)
	}
	if ids, ok := m.byTarget[oldID]; ok {
		m.byTarget[newID] = ids
		delete(m.byTarget, oldID)
	}

	g.emit(silent, EventUpdateNodeID, IDChange{OldID: oldID, NewID: newID})
	return true
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks structural invariants across every module: connections
// must join two distinct existing nodes of the same module through ports in
// range, and no endpoint tuple may appear twice. A healthy store always
// passes; Validate exists to catch corruption in imported snapshots.
func (g *Graph) Validate() error {
	type tuple struct {
		src, dst         string
		srcPort, dstPort int
	}
	for _, m := range g.modules {
		seen := make(map[tuple]bool, len(m.conns))
		for _, c := range m.conns {
			src, okS := m.nodes[c.Source]
			dst, okD := m.nodes[c.Target]
			if !okS || !okD {
				return ErrDanglingEndpoint
			}
			if c.Source == c.Target {
				return ErrSelfConnection
			}
			if c.SourcePort < 1 || c.SourcePort > src.Outputs || c.TargetPort < 1 || c.TargetPort > dst.Inputs {
				return ErrPortOutOfRange
			}
			key := tuple{c.Source, c.Target, c.SourcePort, c.TargetPort}
			if seen[key] {
				return ErrDuplicateConnection
			}
			seen[key] = true
		}
	}
	return nil
}
