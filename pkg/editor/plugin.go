package editor

import (
	"github.com/dverbeek/patchwork/pkg/bus"
	"github.com/dverbeek/patchwork/pkg/graph"
)

// Renderer produces a node's content markup. Registered renderers back the
// template and callback render kinds; markup nodes carry their content
// inline and never consult the registry.
type Renderer func(n *graph.Node) string

// RegisterRenderer installs a named renderer. Empty names, nil functions
// and duplicate registrations are rejected with a diagnostic.
func (e *Editor) RegisterRenderer(name string, fn Renderer) bool {
	if name == "" || fn == nil {
		e.diagnose("RegisterRenderer: name and function are required")
		return false
	}
	if _, exists := e.renderers[name]; exists {
		e.diagnose("RegisterRenderer: %q already registered", name)
		return false
	}
	e.renderers[name] = fn
	return true
}

// RenderContent resolves a node's content through its render spec. A
// template or callback node whose renderer is not registered reports false
// with a diagnostic.
func (e *Editor) RenderContent(id string) (string, bool) {
	n, ok := e.graph.Node(id)
	if !ok {
		return "", false
	}
	switch n.Render.Kind {
	case graph.RenderMarkup:
		return n.Render.Value, true
	case graph.RenderTemplate, graph.RenderCallback:
		fn, ok := e.renderers[n.Render.Value]
		if !ok {
			e.diagnose("RenderContent: node %s wants unregistered renderer %q", id, n.Render.Value)
			return "", false
		}
		return fn(n), true
	}
	return "", false
}

// NodeEvents is an event emitter scoped to one node: handlers registered
// through it fire only for that node's events and are dropped automatically
// when the node is removed. Renaming the node keeps them attached.
type NodeEvents struct {
	ed *Editor
	id string
}

// NodeEvents returns the scoped emitter for a node, or false if the node
// doesn't exist.
func (e *Editor) NodeEvents(id string) (*NodeEvents, bool) {
	if _, ok := e.graph.Node(id); !ok {
		return nil, false
	}
	return &NodeEvents{ed: e, id: id}, true
}

// On registers a handler for one of the node's events. It reports false
// with a diagnostic if the node has since been removed or the registration
// is malformed.
func (ne *NodeEvents) On(event string, fn bus.Handler) bool {
	e := ne.ed
	if _, ok := e.graph.Node(ne.id); !ok {
		e.diagnose("NodeEvents.On: node %s no longer exists", ne.id)
		return false
	}
	if event == "" || fn == nil {
		e.diagnose("NodeEvents.On: event name and handler are required")
		return false
	}
	subs, ok := e.nodeSubs[ne.id]
	if !ok {
		subs = make(map[string][]bus.Handler)
		e.nodeSubs[ne.id] = subs
	}
	subs[event] = append(subs[event], fn)
	return true
}

// emitNode dispatches an event to the node's scoped handlers. The handler
// list is snapshotted so a handler may register or remove subscriptions
// without affecting the in-flight dispatch.
func (e *Editor) emitNode(id, event string, payload any) {
	subs, ok := e.nodeSubs[id]
	if !ok {
		return
	}
	handlers := subs[event]
	for _, fn := range handlers[:len(handlers):len(handlers)] {
		fn(payload)
	}
}
