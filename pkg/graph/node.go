package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderKind selects how a node's content region is materialized.
type RenderKind int

const (
	// RenderMarkup embeds the node's Render.Value as static markup.
	RenderMarkup RenderKind = iota
	// RenderTemplate looks the node's Render.Value up in the host's render
	// registry by name.
	RenderTemplate
	// RenderCallback invokes the registered renderer function named by
	// Render.Value with the node's context.
	RenderCallback
)

// String returns the serialized form of the render kind.
func (k RenderKind) String() string {
	switch k {
	case RenderTemplate:
		return "template"
	case RenderCallback:
		return "callback"
	default:
		return "markup"
	}
}

// ParseRenderKind converts the serialized form back to a RenderKind.
// Unknown strings map to RenderMarkup.
func ParseRenderKind(s string) RenderKind {
	switch s {
	case "template":
		return RenderTemplate
	case "callback":
		return RenderCallback
	default:
		return RenderMarkup
	}
}

// RenderSpec describes how a node's embedded content is produced. Value is
// static markup for RenderMarkup and a registry name for RenderTemplate and
// RenderCallback.
type RenderSpec struct {
	Kind  RenderKind
	Value string
}

// Node is a vertex of the editor graph. Positions are in unscaled graph
// coordinates. Data is an arbitrarily nested string-keyed payload owned by
// the consumer; the store round-trips it verbatim.
//
// Port counts are stored as plain integers: positional labels (input_1,
// input_2, ...) are a derived view, so removing a port renumbers the
// remaining ones automatically.
type Node struct {
	ID      string
	Name    string
	X       float64
	Y       float64
	Class   string
	Data    map[string]any
	Render  RenderSpec
	Inputs  int
	Outputs int
}

// NodeSpec carries the caller-provided fields for [Graph.AddNode].
type NodeSpec struct {
	Name    string
	Inputs  int
	Outputs int
	X       float64
	Y       float64
	Class   string
	Data    map[string]any
	Render  RenderSpec
}

// IDPolicy selects how node identifiers are assigned. The policy is fixed
// at store construction and applies to every node.
type IDPolicy int

const (
	// IDSequential assigns ids from an incrementing counter, skipping any
	// value already in use.
	IDSequential IDPolicy = iota
	// IDRandom assigns random UUIDs, re-drawing on the (unlikely) collision.
	IDRandom
)

// InputLabel returns the positional label for the n-th input port (1-based).
func InputLabel(n int) string { return fmt.Sprintf("input_%d", n) }

// OutputLabel returns the positional label for the n-th output port (1-based).
func OutputLabel(n int) string { return fmt.Sprintf("output_%d", n) }

// ParseInputLabel extracts the 1-based port number from a canonical input
// label such as "input_2". Labels of the wrong side and non-canonical digit
// forms ("input_01") return false, so every ordinal has exactly one
// spelling.
func ParseInputLabel(label string) (n int, ok bool) {
	return parsePortNumber(label, "input_")
}

// ParseOutputLabel is the output-side counterpart of ParseInputLabel.
func ParseOutputLabel(label string) (n int, ok bool) {
	return parsePortNumber(label, "output_")
}

// ParsePortLabel parses a positional label of either side. Callers that
// know which side a label belongs to use ParseInputLabel or
// ParseOutputLabel instead.
func ParsePortLabel(label string) (n int, ok bool) {
	if n, ok := ParseInputLabel(label); ok {
		return n, ok
	}
	return ParseOutputLabel(label)
}

func parsePortNumber(label, prefix string) (int, bool) {
	rest, found := strings.CutPrefix(label, prefix)
	if !found || rest == "" || rest[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
