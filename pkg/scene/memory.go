package scene

import (
	"fmt"
	"sync"
	"time"
)

// ===== In-Memory Scene =====

// Memory is a thread-safe Scene backed by plain maps. It is the scene used
// by the HTTP server (as the authoritative attribute state that clients
// mirror) and by tests.
type Memory struct {
	mu        sync.RWMutex
	order     []string
	nodes     map[string]Attrs
	edgeOrder []EdgeRef
	edges     map[string]Attrs
	neighbors map[string][]string
	camera    Camera
	refreshes int
}

// NewMemory returns an empty in-memory scene with a neutral camera.
func NewMemory() *Memory {
	return &Memory{
		nodes:     make(map[string]Attrs),
		edges:     make(map[string]Attrs),
		neighbors: make(map[string][]string),
		camera:    Camera{Ratio: 1},
	}
}

func edgeKey(source, target string) string {
	return source + "\x00" + target
}

// AddNode registers a node with a copy of the given attributes.
func (m *Memory) AddNode(id string, attrs Attrs) error {
	if id == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, id)
	}
	m.nodes[id] = attrs.Clone()
	m.order = append(m.order, id)
	return nil
}

// AddEdge registers a directed edge between two existing nodes.
func (m *Memory) AddEdge(source, target string, attrs Attrs) error {
	if source == "" || target == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[source]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, source)
	}
	if _, ok := m.nodes[target]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, target)
	}
	key := edgeKey(source, target)
	if _, ok := m.edges[key]; ok {
		return nil
	}
	m.edges[key] = attrs.Clone()
	m.edgeOrder = append(m.edgeOrder, EdgeRef{Source: source, Target: target})
	m.neighbors[source] = append(m.neighbors[source], target)
	m.neighbors[target] = append(m.neighbors[target], source)
	return nil
}

// NodeAttr returns a node attribute.
func (m *Memory) NodeAttr(id, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	attrs, ok := m.nodes[id]
	if !ok {
		return nil, false
	}
	v, ok := attrs[key]
	return v, ok
}

// SetNodeAttr sets a node attribute. Unknown nodes are ignored.
func (m *Memory) SetNodeAttr(id, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if attrs, ok := m.nodes[id]; ok {
		attrs[key] = value
	}
}

// EdgeAttr returns an edge attribute.
func (m *Memory) EdgeAttr(source, target, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	attrs, ok := m.edges[edgeKey(source, target)]
	if !ok {
		return nil, false
	}
	v, ok := attrs[key]
	return v, ok
}

// SetEdgeAttr sets an edge attribute. Unknown edges are ignored.
func (m *Memory) SetEdgeAttr(source, target, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if attrs, ok := m.edges[edgeKey(source, target)]; ok {
		attrs[key] = value
	}
}

// Nodes returns all node IDs in insertion order.
func (m *Memory) Nodes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Edges returns all edges in insertion order.
func (m *Memory) Edges() []EdgeRef {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EdgeRef, len(m.edgeOrder))
	copy(out, m.edgeOrder)
	return out
}

// Neighbors returns the direct neighbors of a node, both directions.
func (m *Memory) Neighbors(id string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.neighbors[id]))
	copy(out, m.neighbors[id])
	return out
}

// Refresh increments the repaint counter. Renderers mirroring this scene
// poll or subscribe for changes, so there is nothing to paint here.
func (m *Memory) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
}

// Refreshes reports how many times Refresh was called.
func (m *Memory) Refreshes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshes
}

// Camera returns the current view state.
func (m *Memory) Camera() Camera {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.camera
}

// SetCamera replaces the view state without animation.
func (m *Memory) SetCamera(c Camera) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.camera = c
}

// AnimateCamera jumps straight to the target view. The in-memory scene has
// no frame clock, so the duration is recorded by contract but not played.
func (m *Memory) AnimateCamera(target Camera, _ time.Duration) {
	m.SetCamera(target)
}

// ===== Snapshots =====

// NodeSnapshot is one node with its full attribute map.
type NodeSnapshot struct {
	ID    string `json:"id"`
	Attrs Attrs  `json:"attributes"`
}

// EdgeSnapshot is one edge with its full attribute map.
type EdgeSnapshot struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Attrs  Attrs  `json:"attributes"`
}

// Snapshot is a point-in-time copy of the whole scene, safe to serialize.
type Snapshot struct {
	Nodes  []NodeSnapshot `json:"nodes"`
	Edges  []EdgeSnapshot `json:"edges"`
	Camera Camera         `json:"camera"`
}

// Snapshot copies the full scene state for serialization.
func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{
		Nodes:  make([]NodeSnapshot, 0, len(m.order)),
		Edges:  make([]EdgeSnapshot, 0, len(m.edgeOrder)),
		Camera: m.camera,
	}
	for _, id := range m.order {
		snap.Nodes = append(snap.Nodes, NodeSnapshot{ID: id, Attrs: m.nodes[id].Clone()})
	}
	for _, ref := range m.edgeOrder {
		snap.Edges = append(snap.Edges, EdgeSnapshot{
			Source: ref.Source,
			Target: ref.Target,
			Attrs:  m.edges[edgeKey(ref.Source, ref.Target)].Clone(),
		})
	}
	return snap
}
