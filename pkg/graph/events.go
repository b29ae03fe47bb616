package graph

// Event names emitted by the store. Interaction-level events (selection,
// movement, zoom, reroute) are emitted by the editor layer.
const (
	EventNodeCreated       = "nodeCreated"       // payload: node id (string)
	EventNodeRemoved       = "nodeRemoved"       // payload: node id (string)
	EventNodeDataChanged   = "nodeDataChanged"   // payload: node id (string)
	EventUpdateNodeID      = "updateNodeId"      // payload: IDChange
	EventConnectionCreated = "connectionCreated" // payload: ConnectionEvent
	EventConnectionRemoved = "connectionRemoved" // payload: ConnectionEvent
	EventModuleCreated     = "moduleCreated"     // payload: module name (string)
	EventModuleChanged     = "moduleChanged"     // payload: module name (string)
	EventModuleRemoved     = "moduleRemoved"     // payload: module name (string)
)

// IDChange is the payload of EventUpdateNodeID.
type IDChange struct {
	OldID string `json:"oldId"`
	NewID string `json:"newId"`
}

// ConnectionEvent is the payload of EventConnectionCreated and
// EventConnectionRemoved. The class fields carry the positional port labels
// on each side.
type ConnectionEvent struct {
	OutputID    string `json:"outputId"`
	InputID     string `json:"inputId"`
	OutputClass string `json:"outputClass"`
	InputClass  string `json:"inputClass"`
}

func (c *Connection) event() ConnectionEvent {
	return ConnectionEvent{
		OutputID:    c.Source,
		InputID:     c.Target,
		OutputClass: OutputLabel(c.SourcePort),
		InputClass:  InputLabel(c.TargetPort),
	}
}
