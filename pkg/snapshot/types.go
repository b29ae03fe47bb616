package snapshot

import (
	"github.com/dverbeek/patchwork/pkg/geom"
)

// Snapshot is the canonical serialization format for the whole editor
// state. It is the sole persisted form: every store mutation must remain
// reconstructable from it, and round-tripping through export and import is
// lossless for every field including reroute points.
type Snapshot struct {
	Modules map[string]Module `json:"modules" bson:"modules"`
}

// Module is the serialized form of one named namespace of nodes.
type Module struct {
	Nodes map[string]Node `json:"nodes" bson:"nodes"`
}

// Node is the serialized node form. Inputs and outputs map positional
// labels (input_1, output_1, ...) to their connection endpoint lists; the
// labels are contiguous and order-significant.
type Node struct {
	ID      string          `json:"id" bson:"id"`
	Name    string          `json:"name" bson:"name"`
	X       float64         `json:"pos_x" bson:"pos_x"`
	Y       float64         `json:"pos_y" bson:"pos_y"`
	Class   string          `json:"class,omitempty" bson:"class,omitempty"`
	Data    map[string]any  `json:"data" bson:"data"`
	Render  Render          `json:"render" bson:"render"`
	Inputs  map[string]Port `json:"inputs" bson:"inputs"`
	Outputs map[string]Port `json:"outputs" bson:"outputs"`
}

// Render is the serialized render specification. Value holds static markup
// for kind "markup" and a registry name for "template" and "callback".
type Render struct {
	Kind  string `json:"kind" bson:"kind"`
	Value string `json:"value,omitempty" bson:"value,omitempty"`
}

// Port is one positional port's connection endpoint list.
type Port struct {
	Connections []Endpoint `json:"connections" bson:"connections"`
}

// Endpoint is one half of a connection's mirrored record pair. On an output
// port it names the target node and input label and carries the reroute
// points; on an input port it names the source node and output label.
type Endpoint struct {
	Node   string       `json:"node" bson:"node"`
	Port   string       `json:"port" bson:"port"`
	Points []geom.Point `json:"points,omitempty" bson:"points,omitempty"`
}

// Clone returns a deep copy of the snapshot. Exported snapshots are never
// aliased to live store state, so holders of a previous export are immune
// to later mutations.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Modules: make(map[string]Module, len(s.Modules))}
	for name, m := range s.Modules {
		cm := Module{Nodes: make(map[string]Node, len(m.Nodes))}
		for id, n := range m.Nodes {
			cm.Nodes[id] = n.clone()
		}
		out.Modules[name] = cm
	}
	return out
}

func (n Node) clone() Node {
	c := n
	c.Data = copyPayload(n.Data)
	c.Inputs = clonePorts(n.Inputs)
	c.Outputs = clonePorts(n.Outputs)
	return c
}

func clonePorts(ports map[string]Port) map[string]Port {
	out := make(map[string]Port, len(ports))
	for label, p := range ports {
		eps := make([]Endpoint, len(p.Connections))
		for i, e := range p.Connections {
			ce := e
			if e.Points != nil {
				ce.Points = make([]geom.Point, len(e.Points))
				copy(ce.Points, e.Points)
			}
			eps[i] = ce
		}
		out[label] = Port{Connections: eps}
	}
	return out
}

// copyPayload deep-copies a content payload: nested string-keyed maps and
// slices are duplicated, primitives are shared (they are immutable).
func copyPayload(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyPayload(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
