package graph

import (
	"testing"

	"github.com/dverbeek/patchwork/pkg/bus"
	"github.com/dverbeek/patchwork/pkg/geom"
)

func TestAddConnection(t *testing.T) {
	g := New(nil, IDSequential)
	a := addNode(t, g, "a", 0, 2)
	b := addNode(t, g, "b", 2, 0)

	if !g.AddConnection(a, b, 1, 1, true) {
		t.Fatal("AddConnection failed")
	}
	c, ok := g.FindConnection(a, b, 1, 1)
	if !ok {
		t.Fatal("connection not found after add")
	}
	if c.Source != a || c.Target != b || c.SourcePort != 1 || c.TargetPort != 1 {
		t.Errorf("connection = %+v", c)
	}
}

func TestAddConnectionRejections(t *testing.T) {
	g := New(nil, IDSequential)
	a := addNode(t, g, "a", 1, 1)
	b := addNode(t, g, "b", 1, 1)

	g.AddModule("other", true)
	g.ChangeModule("other", true)
	c := addNode(t, g, "c", 1, 1)
	g.ChangeModule(DefaultModule, true)

	tests := []struct {
		name             string
		src, dst         string
		srcPort, dstPort int
	}{
		{"SelfConnection", a, a, 1, 1},
		{"CrossModule", a, c, 1, 1},
		{"UnknownSource", "404", b, 1, 1},
		{"UnknownTarget", a, "404", 1, 1},
		{"OutputOutOfRange", a, b, 2, 1},
		{"InputOutOfRange", a, b, 1, 2},
		{"ZeroPort", a, b, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g.AddConnection(tt.src, tt.dst, tt.srcPort, tt.dstPort, true) {
				t.Error("AddConnection reported success")
			}
		})
	}
	if got := len(g.Connections(DefaultModule)) + len(g.Connections("other")); got != 0 {
		t.Errorf("connections created by rejected calls: %d", got)
	}
}

func TestDuplicateConnectionSuppressed(t *testing.T) {
	b := bus.New()
	g := New(b, IDSequential)
	src := addNode(t, g, "a", 0, 1)
	dst := addNode(t, g, "b", 1, 0)

	events := 0
	b.On(EventConnectionCreated, func(any) { events++ })

	if !g.AddConnection(src, dst, 1, 1, false) {
		t.Fatal("first AddConnection failed")
	}
	if g.AddConnection(src, dst, 1, 1, false) {
		t.Error("duplicate AddConnection reported success")
	}

	if got := len(g.Connections(DefaultModule)); got != 1 {
		t.Errorf("connections = %d, want 1", got)
	}
	if events != 1 {
		t.Errorf("connectionCreated events = %d, want 1", events)
	}
}

func TestCrossModuleConnectionFiresNoEvent(t *testing.T) {
	b := bus.New()
	g := New(b, IDSequential)
	a := addNode(t, g, "a", 1, 1)
	g.AddModule("other", true)
	g.ChangeModule("other", true)
	c := addNode(t, g, "c", 1, 1)

	events := 0
	b.On(EventConnectionCreated, func(any) { events++ })

	if g.AddConnection(a, c, 1, 1, false) {
		t.Error("cross-module AddConnection reported success")
	}
	if events != 0 {
		t.Errorf("connectionCreated events = %d, want 0", events)
	}
}

func TestConnectionEventPayload(t *testing.T) {
	b := bus.New()
	g := New(b, IDSequential)
	src := addNode(t, g, "a", 0, 2)
	dst := addNode(t, g, "b", 3, 0)

	var got ConnectionEvent
	b.On(EventConnectionCreated, func(p any) { got = p.(ConnectionEvent) })

	g.AddConnection(src, dst, 2, 3, false)

	want := ConnectionEvent{OutputID: src, InputID: dst, OutputClass: "output_2", InputClass: "input_3"}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
}

func TestRemoveConnection(t *testing.T) {
	b := bus.New()
	g := New(b, IDSequential)
	src := addNode(t, g, "a", 0, 1)
	dst := addNode(t, g, "b", 1, 0)
	g.AddConnection(src, dst, 1, 1, true)

	removed := 0
	b.On(EventConnectionRemoved, func(any) { removed++ })

	if !g.RemoveConnection(src, dst, 1, 1, false) {
		t.Fatal("RemoveConnection failed")
	}
	if g.RemoveConnection(src, dst, 1, 1, false) {
		t.Error("second RemoveConnection reported success")
	}
	if removed != 1 {
		t.Errorf("connectionRemoved events = %d, want 1", removed)
	}
	if got := len(g.ConnectionsOf(src)); got != 0 {
		t.Errorf("ConnectionsOf(src) = %d, want 0", got)
	}
}

func TestPortCompaction(t *testing.T) {
	// Removing output_2 from a node with output_1..output_4 and two
	// connections on output_3: the connections must report output_2
	// afterwards with zero dangling endpoints.
	g := New(nil, IDSequential)
	src := addNode(t, g, "src", 0, 4)
	d1 := addNode(t, g, "d1", 1, 0)
	d2 := addNode(t, g, "d2", 1, 0)
	g.AddConnection(src, d1, 3, 1, true)
	g.AddConnection(src, d2, 3, 1, true)

	if !g.RemoveOutput(src, 2, true) {
		t.Fatal("RemoveOutput failed")
	}

	n, _ := g.Node(src)
	if n.Outputs != 3 {
		t.Errorf("outputs = %d, want 3", n.Outputs)
	}
	for _, c := range g.ConnectionsOf(src) {
		if c.SourcePort != 2 {
			t.Errorf("connection port = %d, want 2", c.SourcePort)
		}
	}
	if got := len(g.ConnectionsOf(src)); got != 2 {
		t.Errorf("connections = %d, want 2", got)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate after compaction: %v", err)
	}
}

func TestRemovePortDropsItsConnections(t *testing.T) {
	g := New(nil, IDSequential)
	src := addNode(t, g, "src", 0, 1)
	dst := addNode(t, g, "dst", 2, 0)
	g.AddConnection(src, dst, 1, 1, true)
	g.AddConnection(src, dst, 1, 2, true)

	if !g.RemoveInput(dst, 1, true) {
		t.Fatal("RemoveInput failed")
	}

	conns := g.ConnectionsOf(dst)
	if len(conns) != 1 {
		t.Fatalf("connections = %d, want 1", len(conns))
	}
	if conns[0].TargetPort != 1 {
		t.Errorf("surviving connection port = %d, want 1 (shifted from 2)", conns[0].TargetPort)
	}
	if n, _ := g.Node(dst); n.Inputs != 1 {
		t.Errorf("inputs = %d, want 1", n.Inputs)
	}
}

func TestRemovePortOutOfRange(t *testing.T) {
	g := New(nil, IDSequential)
	id := addNode(t, g, "a", 1, 1)

	if g.RemoveInput(id, 2, true) || g.RemoveInput(id, 0, true) {
		t.Error("RemoveInput out of range reported success")
	}
	if g.RemoveOutput("404", 1, true) {
		t.Error("RemoveOutput on unknown node reported success")
	}
}

func TestAddPortAppends(t *testing.T) {
	g := New(nil, IDSequential)
	id := addNode(t, g, "a", 1, 0)

	if !g.AddInput(id) || !g.AddOutput(id) {
		t.Fatal("AddInput/AddOutput failed")
	}
	n, _ := g.Node(id)
	if n.Inputs != 2 || n.Outputs != 1 {
		t.Errorf("ports = %d in / %d out, want 2/1", n.Inputs, n.Outputs)
	}
}

func TestReroutePoints(t *testing.T) {
	g := New(nil, IDSequential)
	src := addNode(t, g, "a", 0, 1)
	dst := addNode(t, g, "b", 1, 0)
	g.AddConnection(src, dst, 1, 1, true)
	c, _ := g.FindConnection(src, dst, 1, 1)

	if !g.InsertPoint(c.ID, 0, geom.Point{X: 10, Y: 10}) {
		t.Fatal("InsertPoint failed")
	}
	// Insert ahead of the existing point.
	g.InsertPoint(c.ID, 0, geom.Point{X: 5, Y: 5})
	// Ordinal beyond the end appends.
	g.InsertPoint(c.ID, 99, geom.Point{X: 20, Y: 20})

	want := []geom.Point{{X: 5, Y: 5}, {X: 10, Y: 10}, {X: 20, Y: 20}}
	if len(c.Points) != 3 {
		t.Fatalf("points = %v", c.Points)
	}
	for i, p := range want {
		if c.Points[i] != p {
			t.Errorf("points[%d] = %v, want %v", i, c.Points[i], p)
		}
	}

	if !g.SetPoint(c.ID, 1, geom.Point{X: 11, Y: 11}) {
		t.Fatal("SetPoint failed")
	}
	if c.Points[1] != (geom.Point{X: 11, Y: 11}) {
		t.Errorf("points[1] = %v after SetPoint", c.Points[1])
	}

	if !g.RemovePoint(c.ID, 0) {
		t.Fatal("RemovePoint failed")
	}
	if len(c.Points) != 2 || c.Points[0] != (geom.Point{X: 11, Y: 11}) {
		t.Errorf("points after removal = %v", c.Points)
	}

	if g.RemovePoint(c.ID, 5) || g.SetPoint(404, 0, geom.Point{}) {
		t.Error("out-of-range point ops reported success")
	}
}
