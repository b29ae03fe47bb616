package editor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dverbeek/patchwork/pkg/geom"
	"github.com/dverbeek/patchwork/pkg/graph"
)

func TestNodeDragMovesAndAnnouncesOnce(t *testing.T) {
	e, h := newTestEditor(t, DefaultOptions())
	require.True(t, e.AddConnection("1", "2", 1, 1, true))
	c, _ := e.Graph().FindConnection("1", "2", 1, 1)

	log := record(e, EventNodeMoved)

	// Grab the node body at (80,30) and drag it by (40,30).
	e.PointerDown(80, 30)
	e.PointerMove(100, 50)
	e.PointerMove(120, 60)
	e.PointerUp(120, 60)

	n, _ := e.Graph().Node("1")
	require.Equal(t, 40.0, n.X)
	require.Equal(t, 30.0, n.Y)

	require.Len(t, *log, 1)
	require.Equal(t, NodeMoved{ID: "1", X: 40, Y: 30}, (*log)[0].payload)

	// The path follows the moved output anchor.
	p, ok := h.Path(c.ID)
	require.True(t, ok)
	anchor, _ := h.OutputAnchor("1", 1)
	require.Equal(t, anchor.Center(), p.Segments[0].Start)
}

func TestClickWithoutMovementEmitsNoMove(t *testing.T) {
	e, _ := newTestEditor(t, DefaultOptions())
	log := record(e, EventNodeMoved)

	e.PointerDown(80, 30)
	e.PointerUp(80, 30)
	require.Empty(t, *log)
}

func TestPressDuringLiveInteractionIsIgnored(t *testing.T) {
	e, _ := newTestEditor(t, DefaultOptions())

	e.PointerDown(80, 30) // dragging node 1
	e.PointerDown(600, 600)
	require.Equal(t, HitNode, e.Selection().Kind)

	e.PointerUp(80, 30)
}

func TestConnectDragCommit(t *testing.T) {
	e, h := newTestEditor(t, DefaultOptions())
	log := record(e, EventConnectionStart, graph.EventConnectionCreated, EventConnectionCancel)

	e.PointerDown(160, 20) // output_1 anchor of node 1
	require.Equal(t, EventConnectionStart, (*log)[0].event)
	require.Equal(t, ConnectionStart{OutputID: "1", OutputClass: "output_1"}, (*log)[0].payload)

	e.PointerMove(250, 40)
	prov := h.Provisional()
	require.NotNil(t, prov)
	require.Equal(t, geom.Point{X: 160, Y: 20}, prov.Segments[0].Start)
	require.Equal(t, geom.Point{X: 250, Y: 40}, prov.Segments[0].End)

	e.PointerUp(300, 20) // input_1 anchor of node 2
	require.Nil(t, h.Provisional())

	require.Len(t, *log, 2)
	require.Equal(t, graph.EventConnectionCreated, (*log)[1].event)

	c, ok := e.Graph().FindConnection("1", "2", 1, 1)
	require.True(t, ok)
	_, ok = h.Path(c.ID)
	require.True(t, ok)
}

func TestConnectDragCancel(t *testing.T) {
	e, h := newTestEditor(t, DefaultOptions())
	log := record(e, EventConnectionCancel, graph.EventConnectionCreated)

	e.PointerDown(160, 20)
	e.PointerMove(400, 300)
	e.PointerUp(600, 600) // released over bare canvas

	require.Nil(t, h.Provisional())
	require.Len(t, *log, 1)
	require.Equal(t, EventConnectionCancel, (*log)[0].event)
	require.Empty(t, e.Graph().Connections(graph.DefaultModule))
}

func TestConnectDragOverNodeBody(t *testing.T) {
	t.Run("cancels by default", func(t *testing.T) {
		e, _ := newTestEditor(t, DefaultOptions())
		log := record(e, EventConnectionCancel)

		e.PointerDown(160, 20)
		e.PointerUp(380, 30) // node 2 body, not an anchor

		require.Len(t, *log, 1)
		require.Empty(t, e.Graph().Connections(graph.DefaultModule))
	})

	t.Run("force first input takes the lowest free input", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ForceFirstInput = true
		e, _ := newTestEditor(t, opts)
		require.True(t, e.AddNodeInput("2")) // input_2
		require.True(t, e.AddNodeOutput("1"))

		e.PointerDown(160, 20)
		e.PointerUp(380, 30)
		_, ok := e.Graph().FindConnection("1", "2", 1, 1)
		require.True(t, ok)

		// input_1 is taken now, the next drop lands on input_2.
		e.PointerDown(160, 40) // output_2 anchor
		e.PointerUp(380, 30)
		_, ok = e.Graph().FindConnection("1", "2", 2, 2)
		require.True(t, ok)

		// No free input left: cancel.
		log := record(e, EventConnectionCancel)
		e.PointerDown(160, 20)
		e.PointerUp(380, 30)
		require.Len(t, *log, 1)
	})
}

func TestRerouteLifecycle(t *testing.T) {
	e, h := newTestEditor(t, DefaultOptions())
	require.True(t, e.AddConnection("1", "2", 1, 1, true))
	c, _ := e.Graph().FindConnection("1", "2", 1, 1)

	log := record(e, EventRerouteCreated, EventRerouteMoved, EventRerouteRemoved)

	// Double-clicking an unselected connection only selects it.
	e.DoubleClick(230, 20)
	require.Empty(t, *log)
	require.Equal(t, HitConnection, e.Selection().Kind)

	// Now it is selected: insert a point where the click landed.
	e.DoubleClick(230, 20)
	require.Equal(t, []recorded{{EventRerouteCreated, "1"}}, *log)
	require.Equal(t, []geom.Point{{X: 230, Y: 20}}, c.Points)

	p, _ := h.Path(c.ID)
	require.Len(t, p.Segments, 2)

	// Drag the point.
	e.PointerDown(230, 20)
	e.PointerMove(230, 60)
	e.PointerUp(230, 60)
	require.Equal(t, []geom.Point{{X: 230, Y: 60}}, c.Points)
	require.Equal(t, recorded{EventRerouteMoved, "1"}, (*log)[1])

	// Insert a second point on the first segment: it lands before the
	// existing one in path order.
	e.DoubleClick(180, 30)
	require.Equal(t, []geom.Point{{X: 180, Y: 30}, {X: 230, Y: 60}}, c.Points)

	p, _ = h.Path(c.ID)
	require.Len(t, p.Segments, 3)

	// Double-clicking a point removes it.
	e.DoubleClick(230, 60)
	require.Equal(t, []geom.Point{{X: 180, Y: 30}}, c.Points)
	require.Equal(t, recorded{EventRerouteRemoved, "1"}, (*log)[len(*log)-1])
}

func TestRerouteDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Reroute = false
	e, _ := newTestEditor(t, opts)
	require.True(t, e.AddConnection("1", "2", 1, 1, true))
	c, _ := e.Graph().FindConnection("1", "2", 1, 1)

	e.PointerDown(230, 20)
	e.PointerUp(230, 20)
	e.DoubleClick(230, 20)
	require.Empty(t, c.Points)
}

func TestKeyDownDeletesSelection(t *testing.T) {
	e, _ := newTestEditor(t, DefaultOptions())
	require.True(t, e.AddConnection("1", "2", 1, 1, true))

	// Delete with an editable control focused is ignored.
	e.PointerDown(80, 30)
	e.PointerUp(80, 30)
	e.KeyDown("Delete", true)
	_, ok := e.Graph().Node("1")
	require.True(t, ok)

	// Unrelated keys are ignored.
	e.KeyDown("a", false)
	_, ok = e.Graph().Node("1")
	require.True(t, ok)

	// Backspace removes the selected connection.
	e.PointerDown(230, 20)
	e.PointerUp(230, 20)
	e.KeyDown("Backspace", false)
	require.Empty(t, e.Graph().Connections(graph.DefaultModule))
	require.Equal(t, HitCanvas, e.Selection().Kind)

	// Delete removes the selected node.
	e.PointerDown(80, 30)
	e.PointerUp(80, 30)
	e.KeyDown("Delete", false)
	_, ok = e.Graph().Node("1")
	require.False(t, ok)
}

func TestHitTestingUnderPanAndZoom(t *testing.T) {
	e, _ := newTestEditor(t, DefaultOptions())

	// Pan by (50,40).
	e.PointerDown(600, 600)
	e.PointerMove(650, 640)
	e.PointerUp(650, 640)

	log := record(e, EventNodeSelected)
	e.PointerDown(130, 70) // logical (80,30), inside node 1
	e.PointerUp(130, 70)
	require.Equal(t, []recorded{{EventNodeSelected, "1"}}, *log)

	e.PointerDown(600, 600) // clear selection
	e.PointerUp(600, 600)

	e.ZoomIn() // offset rescales to (55,44), zoom 1.1
	e.PointerDown(100, 60) // logical (~40.9, ~14.5), still node 1
	e.PointerUp(100, 60)
	require.Equal(t, HitNode, e.Selection().Kind)
	require.Equal(t, "1", e.Selection().Node)
}

func TestPanEmitsTranslate(t *testing.T) {
	e, h := newTestEditor(t, DefaultOptions())
	log := record(e, EventTranslate)

	e.PointerDown(500, 500)
	e.PointerMove(510, 520)
	e.PointerMove(530, 530)
	e.PointerUp(530, 530)

	require.Equal(t, []recorded{
		{EventTranslate, Translate{X: 10, Y: 20}},
		{EventTranslate, Translate{X: 30, Y: 30}},
	}, *log)
	require.Equal(t, 30.0, h.offX)
	require.Equal(t, 30.0, h.offY)
}
