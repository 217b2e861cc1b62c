// Package tree builds the invitation-tree index: child adjacency, per-node
// depth, subtree size, and accumulated subtree karma.
//
// The index is computed once per dataset build with a single bottom-up pass
// and is immutable afterwards. Layout, LOD, and highlight operations all read
// from it; none of them mutate it.
//
// Traversals are iterative. Invitation chains can be thousands of hops deep
// on a near-linear dataset, so recursion over the call stack is avoided.
package tree

import (
	"errors"
	"slices"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
)

// ErrNoRoot is returned by [Build] when no root node can be identified:
// the founder key is absent and every node has an inviter.
var ErrNoRoot = errors.New("no identifiable root node")

// Index is the precomputed invitation-tree index.
//
// Orphans are nodes with no path to the root, typically because the karma
// filter removed an ancestor. They keep their entries in the karma and
// children maps but have no depth or subtree stats.
type Index struct {
	root     string
	children map[string][]string
	parent   map[string]string
	karma    map[string]int

	depth        map[string]int
	subtreeSize  map[string]int
	subtreeKarma map[string]int
	maxDepth     int

	orphans []string
}

// Build constructs the index from a filtered dataset.
//
// The root is the node whose key equals founder when present, otherwise the
// first node (by sorted key) with no incoming invitation edge. Build returns
// ErrNoRoot when neither exists; callers should treat that as an empty layout
// rather than a fatal condition.
//
// Child adjacency comes from the edge list. Children are stored sorted by
// key so downstream traversal order is deterministic.
func Build(d *graphdata.Dataset, founder string) (*Index, error) {
	if founder == "" {
		founder = graphdata.DefaultFounder
	}

	idx := &Index{
		children: make(map[string][]string, len(d.Nodes)),
		parent:   make(map[string]string, len(d.Nodes)),
		karma:    make(map[string]int, len(d.Nodes)),
	}

	for _, n := range d.Nodes {
		idx.karma[n.Key] = n.Attributes.Karma
	}

	hasInviter := make(map[string]bool, len(d.Nodes))
	for _, e := range d.Edges {
		if _, ok := idx.karma[e.Source]; !ok {
			continue
		}
		if _, ok := idx.karma[e.Target]; !ok {
			continue
		}
		idx.children[e.Source] = append(idx.children[e.Source], e.Target)
		idx.parent[e.Target] = e.Source
		hasInviter[e.Target] = true
	}
	for _, kids := range idx.children {
		slices.Sort(kids)
	}

	root, err := findRoot(d, founder, hasInviter)
	if err != nil {
		return nil, err
	}
	idx.root = root

	idx.computeStats()
	return idx, nil
}

func findRoot(d *graphdata.Dataset, founder string, hasInviter map[string]bool) (string, error) {
	if _, ok := d.Node(founder); ok {
		return founder, nil
	}

	var candidates []string
	for _, n := range d.Nodes {
		if !hasInviter[n.Key] && n.Attributes.InvitedBy == "" {
			candidates = append(candidates, n.Key)
		}
	}
	if len(candidates) == 0 {
		return "", ErrNoRoot
	}
	slices.Sort(candidates)
	return candidates[0], nil
}

// computeStats fills depth, subtree size, and subtree karma with one BFS from
// the root plus one reverse pass. In BFS order every parent precedes its
// children, so walking the order backwards accumulates child subtrees before
// their parent is finalized.
func (x *Index) computeStats() {
	x.depth = make(map[string]int, len(x.karma))
	x.subtreeSize = make(map[string]int, len(x.karma))
	x.subtreeKarma = make(map[string]int, len(x.karma))

	order := make([]string, 0, len(x.karma))
	visited := map[string]bool{x.root: true}
	x.depth[x.root] = 0
	queue := []string{x.root}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, child := range x.children[curr] {
			if visited[child] {
				continue
			}
			visited[child] = true
			d := x.depth[curr] + 1
			x.depth[child] = d
			if d > x.maxDepth {
				x.maxDepth = d
			}
			queue = append(queue, child)
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		size := 1
		karma := x.karma[id]
		for _, child := range x.children[id] {
			size += x.subtreeSize[child]
			karma += x.subtreeKarma[child]
		}
		x.subtreeSize[id] = size
		x.subtreeKarma[id] = karma
	}

	for id := range x.karma {
		if !visited[id] {
			x.orphans = append(x.orphans, id)
		}
	}
	slices.Sort(x.orphans)
}

// Root returns the root node key.
func (x *Index) Root() string { return x.root }

// Children returns the child keys of a node in sorted order.
// The returned slice is a read-only view; callers must not modify it.
func (x *Index) Children(id string) []string { return x.children[id] }

// Parent returns the inviter of a node and true, or "" and false for the
// root and for orphans without a surviving inviter.
func (x *Index) Parent(id string) (string, bool) {
	p, ok := x.parent[id]
	return p, ok
}

// InviteCount returns the number of direct invitees (out-degree).
func (x *Index) InviteCount(id string) int { return len(x.children[id]) }

// Karma returns the node's own karma, or 0 for unknown keys.
func (x *Index) Karma(id string) int { return x.karma[id] }

// Depth returns the invite distance from the root and true, or 0 and false
// for orphans and unknown keys.
func (x *Index) Depth(id string) (int, bool) {
	d, ok := x.depth[id]
	return d, ok
}

// MaxDepth returns the deepest generation reachable from the root.
func (x *Index) MaxDepth() int { return x.maxDepth }

// SubtreeSize returns the node count of the subtree rooted at id, including
// id itself. Orphans and unknown keys return 0.
func (x *Index) SubtreeSize(id string) int { return x.subtreeSize[id] }

// SubtreeKarma returns the accumulated karma of the subtree rooted at id,
// including id's own karma. Orphans and unknown keys return 0.
func (x *Index) SubtreeKarma(id string) int { return x.subtreeKarma[id] }

// Contains reports whether id is indexed at all, orphans included.
func (x *Index) Contains(id string) bool {
	_, ok := x.karma[id]
	return ok
}

// Reachable reports whether id has a path from the root.
func (x *Index) Reachable(id string) bool {
	_, ok := x.depth[id]
	return ok
}

// Orphans returns the keys with no path to the root, sorted.
func (x *Index) Orphans() []string { return x.orphans }

// NodeCount returns the total number of indexed nodes, orphans included.
func (x *Index) NodeCount() int { return len(x.karma) }

// Keys returns all indexed node keys in sorted order.
func (x *Index) Keys() []string {
	keys := make([]string, 0, len(x.karma))
	for id := range x.karma {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys
}
