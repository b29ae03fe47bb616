// Package pkg provides the core libraries for the Patchwork node-graph editor.
//
// # Overview
//
// Patchwork is an embeddable editor for directed node graphs: nodes carry
// numbered input and output ports, connections run from an output to an
// input and may be shaped by reroute points. The pkg directory is
// organized into focused layers:
//
//  1. [graph] - The data model (modules, nodes, ports, connections)
//  2. [editor] - Interactive editing (pointer state machine, zoom, plugins)
//  3. [geom] - Cubic Bezier routing and hit-testing geometry
//  4. [bus] - The event emitter shared by the graph and editor layers
//  5. [snapshot] - Import/export of the wire format
//  6. [store] - Snapshot persistence (file, Redis, MongoDB)
//  7. [render] - Diagram output (Graphviz DOT, SVG, PNG, PDF)
//  8. [cache] - Rendered-artifact caching for the serve path
//
// # Architecture
//
// The typical flow through an embedding host:
//
//	Pointer/keyboard input
//	         ↓
//	    [editor] package (interaction state machine)
//	         ↓
//	    [graph] package (mutations + events via [bus])
//	         ↓
//	    [snapshot] package (export)
//	         ↓
//	    [store] / [render] output
//
// # Quick Start
//
// Create an editor over the built-in headless surface, build a small
// graph and export it:
//
//	surf := editor.NewHeadless()
//	ed := editor.New(surf, editor.DefaultOptions())
//
//	src, _ := ed.AddNode(graph.NodeSpec{Name: "source", Outputs: 1}, true)
//	dst, _ := ed.AddNode(graph.NodeSpec{Name: "sink", Inputs: 1, X: 300}, true)
//	ed.AddConnection(src, dst, 1, 1, true)
//
//	snap := ed.Export(true)
package pkg
