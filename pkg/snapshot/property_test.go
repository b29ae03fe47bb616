package snapshot

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dverbeek/patchwork/pkg/graph"
)

// op is one randomized store mutation. Indices are mapped onto the live
// node set modulo its size, so every generated sequence is applicable.
type op struct {
	Kind  int // 0 connect, 1 disconnect, 2 remove node, 3 remove port, 4 rename
	A, B  int
	PortA int
	PortB int
}

// applyOps replays a generated mutation sequence on a fresh store seeded
// with a handful of nodes. Rejected operations are fine; the properties
// quantify over whatever state results.
func applyOps(ops []op) *graph.Graph {
	g := graph.New(nil, graph.IDSequential)
	for i := 0; i < 6; i++ {
		g.AddNode(graph.NodeSpec{Name: "n", Inputs: 3, Outputs: 3}, true)
	}

	pick := func(i int) (string, bool) {
		nodes := g.NodesIn(graph.DefaultModule)
		if len(nodes) == 0 {
			return "", false
		}
		return nodes[((i%len(nodes))+len(nodes))%len(nodes)].ID, true
	}

	for _, o := range ops {
		a, okA := pick(o.A)
		b, okB := pick(o.B)
		if !okA || !okB {
			continue
		}
		pa := o.PortA%3 + 1
		pb := o.PortB%3 + 1
		switch o.Kind % 5 {
		case 0:
			g.AddConnection(a, b, pa, pb, true)
		case 1:
			g.RemoveConnection(a, b, pa, pb, true)
		case 2:
			g.RemoveNode(a, true)
		case 3:
			if o.B%2 == 0 {
				g.RemoveInput(a, pa, true)
			} else {
				g.RemoveOutput(a, pa, true)
			}
		case 4:
			g.RenameNodeID(a, "r"+a, true)
		}
	}
	return g
}

// TestMirrorInvariantHolds checks that after any sequence of mutations the
// exported snapshot's output-side and input-side endpoint records agree
// exactly, the store validates, and the snapshot reimports losslessly.
func TestMirrorInvariantHolds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("mirror invariant and lossless reimport", prop.ForAll(
		func(raw []int) bool {
			ops := make([]op, 0, len(raw)/5)
			for i := 0; i+4 < len(raw); i += 5 {
				ops = append(ops, op{
					Kind:  raw[i],
					A:     raw[i+1],
					B:     raw[i+2],
					PortA: raw[i+3],
					PortB: raw[i+4],
				})
			}
			g := applyOps(ops)

			if g.Validate() != nil {
				return false
			}

			snap := FromGraph(g)
			rebuilt, err := ToGraph(snap, nil, graph.IDSequential)
			if err != nil {
				return false
			}
			return rebuilt.Validate() == nil && mirrorTuplesAgree(snap)
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}

// mirrorTuplesAgree recomputes both sides' endpoint tuple multisets from a
// snapshot and compares them.
func mirrorTuplesAgree(s Snapshot) bool {
	type tuple struct {
		src, srcPort, dst, dstPort string
	}
	for _, m := range s.Modules {
		outSide := map[tuple]int{}
		inSide := map[tuple]int{}
		for id, n := range m.Nodes {
			for label, port := range n.Outputs {
				for _, ep := range port.Connections {
					outSide[tuple{id, label, ep.Node, ep.Port}]++
				}
			}
			for label, port := range n.Inputs {
				for _, ep := range port.Connections {
					inSide[tuple{ep.Node, ep.Port, id, label}]++
				}
			}
		}
		if len(outSide) != len(inSide) {
			return false
		}
		for k, v := range outSide {
			if inSide[k] != v {
				return false
			}
		}
	}
	return true
}
