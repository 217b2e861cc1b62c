package lod

import (
	"sync"
	"time"

	"github.com/lobstergraph/lobstergraph/pkg/scene"
	"github.com/lobstergraph/lobstergraph/pkg/schedule"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

// ===== Options =====

// Options configure the LOD controller.
type Options struct {
	// Debounce is how long the zoom stream must be quiet before visibility
	// is recomputed.
	Debounce time.Duration `json:"debounce"`

	// EdgeDimZoom is the zoom crossover past which edges switch to the
	// low-opacity style.
	EdgeDimZoom float64 `json:"edge_dim_zoom"`
}

// DefaultOptions returns the standard controller settings.
func DefaultOptions() Options {
	return Options{
		Debounce:    100 * time.Millisecond,
		EdgeDimZoom: 2.0,
	}
}

// Edge styles toggled at the dim crossover. Edges are never hidden, only
// faded, so structure stays readable at every zoom.
const (
	EdgeColorNormal = "rgba(125,125,125,0.35)"
	EdgeColorDim    = "rgba(125,125,125,0.08)"
)

// ===== Controller =====

// Controller owns zoom-driven visibility for one built graph. All attribute
// mutation happens synchronously inside a single method call before the
// refresh is requested, so LOD and highlight passes never interleave.
type Controller struct {
	mu      sync.Mutex
	scene   scene.Scene
	idx     *tree.Index
	table   Table
	sched   schedule.Scheduler
	opts    Options
	pending schedule.Cancel
	zoom    float64
	hold    bool
}

// NewController returns a controller over the given scene and tree index.
// The table must have been validated by the caller.
func NewController(sc scene.Scene, idx *tree.Index, table Table, sched schedule.Scheduler, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.EdgeDimZoom <= 0 {
		opts.EdgeDimZoom = DefaultOptions().EdgeDimZoom
	}
	return &Controller{
		scene: sc,
		idx:   idx,
		table: table,
		sched: sched,
		opts:  opts,
		zoom:  1,
	}
}

// OnZoom records a new zoom value and schedules a debounced visibility
// pass. A newer zoom event invalidates the pending one.
func (c *Controller) OnZoom(zoom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
	if c.pending != nil {
		c.pending()
		c.pending = nil
	}
	if c.hold {
		return
	}
	c.pending = c.sched.After(c.opts.Debounce, func() {
		c.mu.Lock()
		c.pending = nil
		if c.hold {
			c.mu.Unlock()
			return
		}
		zoom := c.zoom
		c.mu.Unlock()
		c.Apply(zoom)
	})
}

// Suppress pauses LOD while a highlight mode owns the visual state. Any
// pending debounced pass is dropped.
func (c *Controller) Suppress() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hold = true
	if c.pending != nil {
		c.pending()
		c.pending = nil
	}
}

// Resume re-enables LOD and immediately reapplies visibility at the last
// seen zoom, restoring whatever hiding the highlight mode overrode.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.hold = false
	zoom := c.zoom
	c.mu.Unlock()
	c.Apply(zoom)
}

// Zoom returns the last zoom value seen by OnZoom or Apply.
func (c *Controller) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Apply recomputes visibility for every node at the given zoom and restyles
// edges past the dim crossover, then requests one refresh. The root is
// always kept visible. While a highlight mode holds the scene the zoom is
// only recorded; Resume replays it.
func (c *Controller) Apply(zoom float64) {
	c.mu.Lock()
	c.zoom = zoom
	held := c.hold
	c.mu.Unlock()
	if held {
		return
	}

	th := c.table.Select(zoom)
	root := c.idx.Root()
	for _, id := range c.idx.Keys() {
		hidden := c.idx.Karma(id) < th.MinKarma && c.idx.InviteCount(id) < th.MinInvites
		if id == root {
			hidden = false
		}
		c.scene.SetNodeAttr(id, scene.AttrHidden, hidden)
	}

	edgeColor := EdgeColorNormal
	if zoom > c.opts.EdgeDimZoom {
		edgeColor = EdgeColorDim
	}
	for _, e := range c.scene.Edges() {
		c.scene.SetEdgeAttr(e.Source, e.Target, scene.AttrColor, edgeColor)
	}
	c.scene.Refresh()
}

// VisibleCount reports how many scene nodes are currently not hidden.
func (c *Controller) VisibleCount() int {
	count := 0
	for _, id := range c.scene.Nodes() {
		if v, ok := c.scene.NodeAttr(id, scene.AttrHidden); ok {
			if hidden, _ := v.(bool); hidden {
				continue
			}
		}
		count++
	}
	return count
}
