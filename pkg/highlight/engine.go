// Package highlight drives the mutually exclusive visual emphasis modes:
// top-karma and top-inviter sets, single-node neighborhoods, descendant
// subtrees with their depth-staged cascade pulse, and search matches.
//
// Exactly one mode is active at a time. Entering a mode first restores the
// baseline styling captured at construction, so switching modes never
// leaves residue from the previous one. While any mode is active the LOD
// controller is suppressed; a reset hands visibility back to it.
package highlight

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lobstergraph/lobstergraph/pkg/scene"
	"github.com/lobstergraph/lobstergraph/pkg/schedule"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

// ErrUnknownNode is returned when a mode targets a node the graph lacks.
var ErrUnknownNode = errors.New("unknown node")

// Mode identifies one highlight state.
type Mode string

const (
	ModeNone        Mode = "none"
	ModeTopKarma    Mode = "top-karma"
	ModeTopInviters Mode = "top-inviters"
	ModeFocus       Mode = "focus"
	ModeDescendants Mode = "descendants"
	ModeSearch      Mode = "search"
)

// Descendant nodes shrink with distance from the highlighted root.
const (
	descendantRootScale = 1.8
	descendantDecay     = 0.2
	descendantMinScale  = 0.9
)

const defaultNodeColor = "#999999"
const defaultEdgeColor = "rgba(125,125,125,0.35)"

// Suppressor pauses and resumes zoom-driven visibility while a highlight
// owns the visual state. *lod.Controller satisfies it.
type Suppressor interface {
	Suppress()
	Resume()
}

type baseNode struct {
	color any
	size  float64
	z     any
}

type priorState struct {
	mode Mode
	arg  string
}

// ===== Engine =====

// DescendantsResult summarizes one descendant highlight.
type DescendantsResult struct {
	Count    int  `json:"count"`
	MaxDepth int  `json:"max_depth"`
	Cascaded bool `json:"cascaded"`
}

// Engine owns the highlight state machine for one built graph. All scene
// mutation for a mode change happens synchronously in the entering call
// before the refresh is requested.
type Engine struct {
	mu        sync.Mutex
	scene     scene.Scene
	idx       *tree.Index
	sup       Suppressor
	sched     schedule.Scheduler
	opts      Options
	mode      Mode
	arg       string
	prior     priorState
	gen       int
	baseNodes map[string]baseNode
	baseEdges map[scene.EdgeRef]any
}

// New captures the scene's current styling as the restore baseline and
// returns an engine in ModeNone. Construct it after the scene is populated.
func New(sc scene.Scene, idx *tree.Index, sup Suppressor, sched schedule.Scheduler, opts Options) *Engine {
	opts.setDefaults()
	e := &Engine{
		scene:     sc,
		idx:       idx,
		sup:       sup,
		sched:     sched,
		opts:      opts,
		mode:      ModeNone,
		baseNodes: make(map[string]baseNode),
		baseEdges: make(map[scene.EdgeRef]any),
	}
	for _, id := range sc.Nodes() {
		e.baseNodes[id] = baseNode{
			color: attrOr(sc, id, scene.AttrColor, defaultNodeColor),
			size:  toFloat(attrOr(sc, id, scene.AttrSize, 5.0), 5.0),
			z:     attrOr(sc, id, scene.AttrZIndex, 0),
		}
	}
	for _, ref := range sc.Edges() {
		if v, ok := sc.EdgeAttr(ref.Source, ref.Target, scene.AttrColor); ok {
			e.baseEdges[ref] = v
		} else {
			e.baseEdges[ref] = defaultEdgeColor
		}
	}
	return e
}

// Mode returns the active highlight mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// ModeArg returns the node or query argument of the active mode, if any.
func (e *Engine) ModeArg() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arg
}

// TopKarma highlights the highest-karma nodes and mutes the rest.
func (e *Engine) TopKarma() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applySet(e.topBy(e.idx.Karma), ModeTopKarma, "")
}

// TopInviters highlights the nodes with the most direct invitees.
func (e *Engine) TopInviters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applySet(e.topBy(e.idx.InviteCount), ModeTopInviters, "")
}

// Focus highlights a node and its degree-1 neighborhood. The mode active
// before the focus is remembered and restored by CloseFocus; a second
// Focus while one is open keeps the original prior state.
func (e *Engine) Focus(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.baseNodes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	if e.mode != ModeFocus {
		e.prior = priorState{mode: e.mode, arg: e.arg}
	}

	e.beginMode(ModeFocus, id)

	neighbors := make(map[string]bool)
	if parent, ok := e.idx.Parent(id); ok {
		neighbors[parent] = true
	}
	for _, child := range e.idx.Children(id) {
		neighbors[child] = true
	}

	for nid, base := range e.baseNodes {
		switch {
		case nid == id:
			e.setNode(nid, e.opts.FocusColor, base.size*e.opts.HighlightScale, 1)
		case neighbors[nid]:
			e.setNode(nid, base.color, base.size, 1)
		default:
			e.muteNode(nid, base)
		}
	}
	for ref := range e.baseEdges {
		if ref.Source == id || ref.Target == id {
			e.scene.SetEdgeAttr(ref.Source, ref.Target, scene.AttrColor, e.opts.FocusColor)
		} else {
			e.scene.SetEdgeAttr(ref.Source, ref.Target, scene.AttrColor, e.opts.MutedEdgeColor)
		}
	}
	e.scene.Refresh()
	return nil
}

// CloseFocus exits a neighborhood highlight and restores whichever mode
// was active when it opened. With no prior mode it behaves like Reset.
func (e *Engine) CloseFocus() error {
	e.mu.Lock()
	if e.mode != ModeFocus {
		e.mu.Unlock()
		return nil
	}
	prior := e.prior
	e.prior = priorState{}
	e.mu.Unlock()

	switch prior.mode {
	case ModeTopKarma:
		e.TopKarma()
	case ModeTopInviters:
		e.TopInviters()
	case ModeDescendants:
		_, err := e.descendants(prior.arg, false)
		return err
	case ModeSearch:
		e.Search(prior.arg)
	default:
		e.Reset()
	}
	return nil
}

// Descendants highlights the full subtree under a node, colored and sized
// by depth, and starts the cascade pulse when the subtree is small enough.
func (e *Engine) Descendants(id string) (DescendantsResult, error) {
	return e.descendants(id, true)
}

func (e *Engine) descendants(id string, animate bool) (DescendantsResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.baseNodes[id]; !ok {
		return DescendantsResult{}, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}

	e.beginMode(ModeDescendants, id)

	// Breadth-first over the child index. The invite relation is a tree,
	// but malformed data must not loop us, so keep the visited guard.
	depth := map[string]int{id: 0}
	queue := []string{id}
	maxDepth := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range e.idx.Children(cur) {
			if _, seen := depth[child]; seen {
				continue
			}
			depth[child] = depth[cur] + 1
			if depth[child] > maxDepth {
				maxDepth = depth[child]
			}
			queue = append(queue, child)
		}
	}

	for nid, base := range e.baseNodes {
		d, ok := depth[nid]
		if !ok {
			e.muteNode(nid, base)
			continue
		}
		scale := descendantRootScale - descendantDecay*float64(d)
		if scale < descendantMinScale {
			scale = descendantMinScale
		}
		e.setNode(nid, e.depthColor(d), base.size*scale, 1)
	}
	for ref := range e.baseEdges {
		ds, okS := depth[ref.Source]
		dt, okT := depth[ref.Target]
		if okS && okT {
			if dt < ds {
				ds = dt
			}
			e.scene.SetEdgeAttr(ref.Source, ref.Target, scene.AttrColor, e.depthColor(ds))
		} else {
			e.scene.SetEdgeAttr(ref.Source, ref.Target, scene.AttrColor, e.opts.MutedEdgeColor)
		}
	}
	e.scene.Refresh()

	result := DescendantsResult{Count: len(depth), MaxDepth: maxDepth}
	if animate && len(depth) < e.opts.CascadeCap {
		result.Cascaded = true
		e.startCascadeLocked(depth, maxDepth)
	}
	return result, nil
}

// Search matches the query case-insensitively against all usernames. Small
// match sets get the same visual treatment as a top set; above the limit
// only the match list is returned and the scene is left untouched.
func (e *Engine) Search(query string) (matches []string, applied bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, false
	}
	for _, id := range e.idx.Keys() {
		if strings.Contains(strings.ToLower(id), q) {
			matches = append(matches, id)
		}
	}
	if len(matches) == 0 || len(matches) > e.opts.SearchLimit {
		return matches, false
	}
	e.applySet(matches, ModeSearch, query)
	return matches, true
}

// Reset clears any highlight, restores baseline styling, and hands
// visibility control back to the LOD controller.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.gen++
	e.restoreBaseline()
	e.mode = ModeNone
	e.arg = ""
	e.prior = priorState{}
	e.mu.Unlock()

	if e.sup != nil {
		e.sup.Resume()
	}
	e.scene.Refresh()
}

// ===== Internals =====

// beginMode is the common entry path: it invalidates any running cascade,
// wipes the previous mode's styling, suppresses LOD, and records the new
// state. Callers hold e.mu.
func (e *Engine) beginMode(mode Mode, arg string) {
	e.gen++
	e.restoreBaseline()
	e.mode = mode
	e.arg = arg
	if e.sup != nil {
		e.sup.Suppress()
	}
}

func (e *Engine) applySet(members []string, mode Mode, arg string) {
	e.beginMode(mode, arg)

	set := make(map[string]bool, len(members))
	for _, id := range members {
		set[id] = true
	}
	for nid, base := range e.baseNodes {
		if set[nid] {
			e.setNode(nid, e.opts.HighlightColor, base.size*e.opts.HighlightScale, 1)
		} else {
			e.muteNode(nid, base)
		}
	}
	for ref := range e.baseEdges {
		e.scene.SetEdgeAttr(ref.Source, ref.Target, scene.AttrColor, e.opts.MutedEdgeColor)
	}
	e.scene.Refresh()
}

func (e *Engine) topBy(score func(id string) int) []string {
	ids := e.idx.Keys()
	sort.Slice(ids, func(i, j int) bool {
		si, sj := score(ids[i]), score(ids[j])
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})
	if len(ids) > e.opts.TopCount {
		ids = ids[:e.opts.TopCount]
	}
	return ids
}

func (e *Engine) restoreBaseline() {
	for id, base := range e.baseNodes {
		e.setNode(id, base.color, base.size, base.z)
		e.scene.SetNodeAttr(id, scene.AttrHidden, false)
	}
	for ref, color := range e.baseEdges {
		e.scene.SetEdgeAttr(ref.Source, ref.Target, scene.AttrColor, color)
	}
}

func (e *Engine) setNode(id string, color any, size float64, z any) {
	e.scene.SetNodeAttr(id, scene.AttrColor, color)
	e.scene.SetNodeAttr(id, scene.AttrSize, size)
	e.scene.SetNodeAttr(id, scene.AttrZIndex, z)
}

func (e *Engine) muteNode(id string, base baseNode) {
	e.setNode(id, e.opts.MutedColor, base.size*e.opts.MutedScale, 0)
}

func (e *Engine) depthColor(depth int) string {
	if depth >= len(e.opts.DepthPalette) {
		depth = len(e.opts.DepthPalette) - 1
	}
	return e.opts.DepthPalette[depth]
}

func attrOr(sc scene.Scene, id, key string, fallback any) any {
	if v, ok := sc.NodeAttr(id, key); ok {
		return v
	}
	return fallback
}

func toFloat(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	default:
		return fallback
	}
}
