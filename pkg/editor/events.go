package editor

// Event names emitted by the interaction layer. Store-level events
// (nodeCreated, connectionCreated, module events, ...) are defined in
// package graph and share the same bus.
const (
	EventNodeMoved             = "nodeMoved"             // payload: NodeMoved
	EventNodeSelected          = "nodeSelected"          // payload: node id (string)
	EventNodeDeselected        = "nodeDeselected"        // payload: true
	EventConnectionStart       = "connectionStart"       // payload: ConnectionStart
	EventConnectionSelected    = "connectionSelected"    // payload: graph.ConnectionEvent
	EventConnectionDeselected  = "connectionDeselected"  // payload: true
	EventConnectionCancel      = "connectionCancel"      // payload: true
	EventRerouteCreated        = "rerouteCreated"        // payload: output node id (string)
	EventRerouteRemoved        = "rerouteRemoved"        // payload: output node id (string)
	EventRerouteMoved          = "rerouteMoved"          // payload: output node id (string)
	EventTranslate             = "translate"             // payload: Translate
	EventZoom                  = "zoom"                  // payload: zoom level (float64)
	EventExport                = "export"                // payload: snapshot.Snapshot
	EventImport                = "import"                // payload: "import"
)

// NodeMoved is the payload of EventNodeMoved, carrying the final position
// in unscaled graph coordinates.
type NodeMoved struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// ConnectionStart is the payload of EventConnectionStart.
type ConnectionStart struct {
	OutputID    string `json:"outputId"`
	OutputClass string `json:"outputClass"`
}

// Translate is the payload of EventTranslate: the canvas pan offset in
// screen units.
type Translate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
