// Package scene defines the contract between the core engine and whatever
// renders the graph.
//
// The core never draws. It builds a scene once per dataset, then mutates
// per-element visual attributes (color, size, hidden, z-order) in response to
// zoom and highlight events and requests a refresh. A browser canvas, a test
// double, and the HTTP server's state mirror all satisfy the same interface.
package scene

import (
	"errors"
	"time"
)

var (
	// ErrInvalidID is returned when adding an element with an empty ID.
	ErrInvalidID = errors.New("element ID must not be empty")

	// ErrDuplicateNode is returned when a node with the same ID exists.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrUnknownNode is returned when an edge endpoint does not exist.
	ErrUnknownNode = errors.New("unknown node")
)

// Standard attribute keys shared by the core and renderers.
const (
	AttrX      = "x"
	AttrY      = "y"
	AttrSize   = "size"
	AttrColor  = "color"
	AttrHidden = "hidden"
	AttrZIndex = "zIndex"
	AttrLabel  = "label"
)

// Attrs is an arbitrary mapping of named attributes on a node or edge.
type Attrs map[string]any

// Clone returns a shallow copy of the attribute map.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// EdgeRef identifies one edge with its endpoints.
type EdgeRef struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Camera is the renderer's view state. Ratio follows canvas conventions:
// smaller means more zoomed in.
type Camera struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Ratio float64 `json:"ratio"`
}

// Scene is the attribute-setting and refresh contract the core requires from
// a renderer.
//
// Attribute setters on unknown elements are silent no-ops by contract: stale
// animation callbacks may fire after a rebuild removed their node, and that
// must not panic or error.
type Scene interface {
	// AddNode registers a node with initial attributes.
	AddNode(id string, attrs Attrs) error

	// AddEdge registers a directed edge. Both endpoints must exist.
	AddEdge(source, target string, attrs Attrs) error

	// NodeAttr returns one node attribute and whether it was found.
	NodeAttr(id, key string) (any, bool)

	// SetNodeAttr sets one node attribute. Unknown nodes are ignored.
	SetNodeAttr(id, key string, value any)

	// EdgeAttr returns one edge attribute and whether it was found.
	EdgeAttr(source, target, key string) (any, bool)

	// SetEdgeAttr sets one edge attribute. Unknown edges are ignored.
	SetEdgeAttr(source, target, key string, value any)

	// Nodes returns all node IDs in insertion order.
	Nodes() []string

	// Edges returns all edges in insertion order.
	Edges() []EdgeRef

	// Neighbors returns the direct neighbors of a node, both directions.
	Neighbors(id string) []string

	// Refresh asks the renderer to repaint with the current attributes.
	Refresh()

	// Camera returns the current view state.
	Camera() Camera

	// AnimateCamera moves the camera to a target view over a duration.
	AnimateCamera(target Camera, d time.Duration)
}
