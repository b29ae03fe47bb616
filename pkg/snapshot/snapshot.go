// Package snapshot converts between the live graph store and its
// serializable form, and reads/writes that form as JSON.
//
// The serialized form stores each connection twice, as mirrored endpoint
// records on the source node's output port and the target node's input
// port. The store itself keeps a single connection table, so [FromGraph]
// derives the mirror pair and [ToGraph] verifies it while rebuilding the
// table; a snapshot whose two sides disagree is rejected.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/dverbeek/patchwork/pkg/bus"
	"github.com/dverbeek/patchwork/pkg/graph"
)

var (
	// ErrBadPortLabel is returned by [ToGraph] when a port mapping key or an
	// endpoint's port reference is not a positional label like "input_2".
	ErrBadPortLabel = errors.New("malformed port label")

	// ErrPortGap is returned by [ToGraph] when a node's port labels are not
	// contiguous starting at 1.
	ErrPortGap = errors.New("port labels must be contiguous")

	// ErrMirrorMismatch is returned by [ToGraph] when the output-side and
	// input-side endpoint records of a snapshot disagree.
	ErrMirrorMismatch = errors.New("mirrored endpoint records disagree")

	// ErrBadConnection is returned by [ToGraph] when an endpoint references
	// a missing node or port, joins a node to itself, or duplicates another
	// connection.
	ErrBadConnection = errors.New("invalid connection")
)

// FromGraph derives the serializable snapshot of the entire store. The
// result shares no mutable state with the store.
func FromGraph(g *graph.Graph) Snapshot {
	snap := Snapshot{Modules: make(map[string]Module)}
	for _, name := range g.Modules() {
		m := Module{Nodes: make(map[string]Node)}
		for _, n := range g.NodesIn(name) {
			m.Nodes[n.ID] = nodeFromGraph(n)
		}
		for _, c := range g.Connections(name) {
			src := m.Nodes[c.Source]
			dst := m.Nodes[c.Target]

			out := src.Outputs[graph.OutputLabel(c.SourcePort)]
			out.Connections = append(out.Connections, Endpoint{
				Node:   c.Target,
				Port:   graph.InputLabel(c.TargetPort),
				Points: slices.Clone(c.Points),
			})
			src.Outputs[graph.OutputLabel(c.SourcePort)] = out

			in := dst.Inputs[graph.InputLabel(c.TargetPort)]
			in.Connections = append(in.Connections, Endpoint{
				Node: c.Source,
				Port: graph.OutputLabel(c.SourcePort),
			})
			dst.Inputs[graph.InputLabel(c.TargetPort)] = in
		}
		snap.Modules[name] = m
	}
	return snap
}

func nodeFromGraph(n *graph.Node) Node {
	out := Node{
		ID:    n.ID,
		Name:  n.Name,
		X:     n.X,
		Y:     n.Y,
		Class: n.Class,
		Data:  copyPayload(n.Data),
		Render: Render{
			Kind:  n.Render.Kind.String(),
			Value: n.Render.Value,
		},
		Inputs:  make(map[string]Port, n.Inputs),
		Outputs: make(map[string]Port, n.Outputs),
	}
	for i := 1; i <= n.Inputs; i++ {
		out.Inputs[graph.InputLabel(i)] = Port{Connections: []Endpoint{}}
	}
	for i := 1; i <= n.Outputs; i++ {
		out.Outputs[graph.OutputLabel(i)] = Port{Connections: []Endpoint{}}
	}
	return out
}

// ToGraph reconstructs a store from a snapshot. The rebuild is silent: no
// store events are emitted, the import announcement is the caller's
// responsibility. The active module is the default module when present,
// otherwise the first module in sorted order.
func ToGraph(s Snapshot, b *bus.Bus, policy graph.IDPolicy) (*graph.Graph, error) {
	g := graph.New(b, policy)

	names := make([]string, 0, len(s.Modules))
	for name := range s.Modules {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		g.AddModule(name, true) // no-op for the default module
		g.ChangeModule(name, true)
		m := s.Modules[name]

		ids := make([]string, 0, len(m.Nodes))
		for id := range m.Nodes {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, id := range ids {
			n := m.Nodes[id]
			inputs, err := portCount(n.Inputs, graph.ParseInputLabel)
			if err != nil {
				return nil, fmt.Errorf("node %s inputs: %w", id, err)
			}
			outputs, err := portCount(n.Outputs, graph.ParseOutputLabel)
			if err != nil {
				return nil, fmt.Errorf("node %s outputs: %w", id, err)
			}
			ok := g.AddNodeWithID(id, graph.NodeSpec{
				Name:    n.Name,
				Inputs:  inputs,
				Outputs: outputs,
				X:       n.X,
				Y:       n.Y,
				Class:   n.Class,
				Data:    copyPayload(n.Data),
				Render: graph.RenderSpec{
					Kind:  graph.ParseRenderKind(n.Render.Kind),
					Value: n.Render.Value,
				},
			}, true)
			if !ok {
				return nil, fmt.Errorf("node %s: duplicate id across modules", id)
			}
		}
	}

	for _, name := range names {
		g.ChangeModule(name, true)
		if err := rebuildConnections(g, s.Modules[name]); err != nil {
			return nil, fmt.Errorf("module %s: %w", name, err)
		}
	}

	if g.HasModule(graph.DefaultModule) {
		g.ChangeModule(graph.DefaultModule, true)
	} else if len(names) > 0 {
		g.ChangeModule(names[0], true)
	}
	return g, nil
}

// rebuildConnections replays the module's output-side endpoint records
// (the authoritative side, carrying the reroute points) into the store and
// then checks the input-side mirrors against what was built.
func rebuildConnections(g *graph.Graph, m Module) error {
	type tuple struct {
		src, dst         string
		srcPort, dstPort int
	}
	built := make(map[tuple]bool)

	ids := make([]string, 0, len(m.Nodes))
	for id := range m.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, srcID := range ids {
		n := m.Nodes[srcID]
		for label, port := range n.Outputs {
			srcPort, ok := graph.ParseOutputLabel(label)
			if !ok {
				return fmt.Errorf("%w: %q", ErrBadPortLabel, label)
			}
			for _, ep := range port.Connections {
				dstPort, ok := graph.ParseInputLabel(ep.Port)
				if !ok {
					return fmt.Errorf("%w: %q", ErrBadPortLabel, ep.Port)
				}
				if !g.AddConnection(srcID, ep.Node, srcPort, dstPort, true) {
					return fmt.Errorf("%w: %s:%s -> %s:%s", ErrBadConnection, srcID, label, ep.Node, ep.Port)
				}
				if len(ep.Points) > 0 {
					c, _ := g.FindConnection(srcID, ep.Node, srcPort, dstPort)
					c.Points = slices.Clone(ep.Points)
				}
				built[tuple{srcID, ep.Node, srcPort, dstPort}] = true
			}
		}
	}

	// Mirror check: every input-side record must match exactly one built
	// connection, and their counts must agree overall.
	mirrored := 0
	for _, dstID := range ids {
		n := m.Nodes[dstID]
		for label, port := range n.Inputs {
			dstPort, ok := graph.ParseInputLabel(label)
			if !ok {
				return fmt.Errorf("%w: %q", ErrBadPortLabel, label)
			}
			for _, ep := range port.Connections {
				srcPort, ok := graph.ParseOutputLabel(ep.Port)
				if !ok {
					return fmt.Errorf("%w: %q", ErrBadPortLabel, ep.Port)
				}
				if !built[tuple{ep.Node, dstID, srcPort, dstPort}] {
					return fmt.Errorf("%w: input %s:%s names %s:%s", ErrMirrorMismatch, dstID, label, ep.Node, ep.Port)
				}
				mirrored++
			}
		}
	}
	if mirrored != len(built) {
		return ErrMirrorMismatch
	}
	return nil
}

// portCount validates that the port labels are contiguous 1..n for their
// side and returns n. parse is ParseInputLabel or ParseOutputLabel, so an
// inputs map keyed with output labels (or the reverse) is rejected.
func portCount(ports map[string]Port, parse func(string) (int, bool)) (int, error) {
	for label := range ports {
		n, ok := parse(label)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrBadPortLabel, label)
		}
		if n > len(ports) {
			return 0, fmt.Errorf("%w: %q with %d ports", ErrPortGap, label, len(ports))
		}
	}
	return len(ports), nil
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal converts a snapshot to indented JSON bytes.
func Marshal(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a snapshot.
func Unmarshal(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// Write writes a snapshot as JSON to w.
func Write(s Snapshot, w io.Writer) error {
	return write(s, w)
}

// Read decodes a JSON snapshot from r.
func Read(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// WriteFile writes a snapshot to a JSON file created with 0644 permissions.
func WriteFile(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return write(s, f)
}

// ReadFile reads a JSON file and returns the decoded snapshot.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func write(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
