package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lobstergraph/lobstergraph/pkg/cache"
	apperrors "github.com/lobstergraph/lobstergraph/pkg/errors"
	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/highlight"
	"github.com/lobstergraph/lobstergraph/pkg/lod"
	"github.com/lobstergraph/lobstergraph/pkg/pipeline"
	"github.com/lobstergraph/lobstergraph/pkg/scene"
	"github.com/lobstergraph/lobstergraph/pkg/schedule"
)

// =============================================================================
// App - Application State Controller
// =============================================================================

// App owns the built graph and the interactive state layered on top of it:
// the LOD controller and the highlight engine. All mutations run under a
// single mutex so each request observes and produces a consistent scene.
type App struct {
	mu sync.Mutex

	runner *pipeline.Runner
	opts   pipeline.Options
	sched  schedule.Scheduler
	hub    *Hub
	logger *log.Logger

	result *pipeline.Result
	lodCtl *lod.Controller
	engine *highlight.Engine
}

// NewApp builds an application controller around a pipeline runner. Call
// Rebuild before serving requests.
func NewApp(runner *pipeline.Runner, opts pipeline.Options, hub *Hub, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	return &App{
		runner: runner,
		opts:   opts,
		sched:  schedule.New(),
		hub:    hub,
		logger: logger,
	}
}

// Rebuild runs the pipeline and replaces the live graph state. Any active
// highlight or pending LOD work is discarded with the old scene.
func (a *App) Rebuild(ctx context.Context) error {
	return a.rebuild(ctx, a.opts)
}

// RebuildFresh rebuilds with caches bypassed. Used by watch mode, where the
// cached dataset for the same source path is known to be stale.
func (a *App) RebuildFresh(ctx context.Context) error {
	opts := a.opts
	opts.Refresh = true
	return a.rebuild(ctx, opts)
}

func (a *App) rebuild(ctx context.Context, opts pipeline.Options) error {
	res, err := a.runner.Build(ctx, opts)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	ctl := lod.NewController(res.Scene, res.Index, res.LOD, a.sched, lod.Options{})
	eng := highlight.New(res.Scene, res.Index, ctl, a.sched, highlight.Options{})

	a.mu.Lock()
	a.result = res
	a.lodCtl = ctl
	a.engine = eng
	a.mu.Unlock()

	a.logger.Info("graph ready",
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"orphans", res.Stats.OrphanCount,
		"datasetHash", cache.ShortHash(res.DatasetHash),
	)
	a.hub.Publish(TopicGraph, "rebuilt", map[string]any{
		"nodes":        res.Stats.NodeCount,
		"edges":        res.Stats.EdgeCount,
		"dataset_hash": res.DatasetHash,
	})
	return nil
}

// Ready reports whether a graph has been built.
func (a *App) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result != nil
}

// Result returns the current pipeline result, or nil before the first build.
func (a *App) Result() *pipeline.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// SceneSnapshot returns a deep copy of the current scene for serialization.
func (a *App) SceneSnapshot() (scene.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return scene.Snapshot{}, apperrors.New(apperrors.ErrCodeInternal, "graph not built yet")
	}
	return a.result.Scene.Snapshot(), nil
}

// OnZoom applies an LOD pass for the given zoom immediately and publishes the
// resulting visibility. The debounced path is a client-side concern; the API
// applies each reported zoom synchronously.
func (a *App) OnZoom(zoom float64) (visible int, err error) {
	if err := apperrors.ValidateZoom(zoom); err != nil {
		return 0, err
	}
	a.mu.Lock()
	if a.result == nil {
		a.mu.Unlock()
		return 0, apperrors.New(apperrors.ErrCodeInternal, "graph not built yet")
	}
	a.lodCtl.Apply(zoom)
	visible = a.lodCtl.VisibleCount()
	a.mu.Unlock()

	a.hub.Publish(TopicLOD, "applied", map[string]any{"zoom": zoom, "visible": visible})
	return visible, nil
}

// HighlightRequest selects a highlight mode. Node is required for focus and
// descendants, Query for search.
type HighlightRequest struct {
	Mode  string `json:"mode"`
	Node  string `json:"node,omitempty"`
	Query string `json:"query,omitempty"`
}

// HighlightResponse reports the state after a highlight mutation.
type HighlightResponse struct {
	Mode        string   `json:"mode"`
	Matches     []string `json:"matches,omitempty"`
	Applied     bool     `json:"applied"`
	Count       int      `json:"count,omitempty"`
	MaxDepth    int      `json:"max_depth,omitempty"`
	Cascaded    bool     `json:"cascaded,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Highlight dispatches a highlight request to the engine and publishes the
// mode change.
func (a *App) Highlight(req HighlightRequest) (HighlightResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return HighlightResponse{}, apperrors.New(apperrors.ErrCodeInternal, "graph not built yet")
	}

	resp := HighlightResponse{Mode: req.Mode, Applied: true}
	switch req.Mode {
	case "top-karma":
		a.engine.TopKarma()
	case "top-inviters":
		a.engine.TopInviters()
	case "focus":
		if err := apperrors.ValidateUsername(req.Node); err != nil {
			return HighlightResponse{}, err
		}
		if err := a.engine.Focus(req.Node); err != nil {
			return HighlightResponse{}, apperrors.Wrap(apperrors.ErrCodeUserNotFound, err, "focus %q", req.Node)
		}
	case "close-focus":
		if err := a.engine.CloseFocus(); err != nil {
			return HighlightResponse{}, apperrors.Wrap(apperrors.ErrCodeInternal, err, "close focus")
		}
		resp.Mode = string(a.engine.Mode())
	case "descendants":
		if err := apperrors.ValidateUsername(req.Node); err != nil {
			return HighlightResponse{}, err
		}
		res, err := a.engine.Descendants(req.Node)
		if err != nil {
			return HighlightResponse{}, apperrors.Wrap(apperrors.ErrCodeUserNotFound, err, "descendants of %q", req.Node)
		}
		resp.Count = res.Count
		resp.MaxDepth = res.MaxDepth
		resp.Cascaded = res.Cascaded
	case "search":
		if err := apperrors.ValidateSearchQuery(req.Query); err != nil {
			return HighlightResponse{}, err
		}
		matches, applied := a.engine.Search(req.Query)
		resp.Matches = matches
		resp.Applied = applied
		resp.Count = len(matches)
		if !applied && len(matches) > 0 {
			resp.Description = "too many matches to highlight"
		}
	default:
		return HighlightResponse{}, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown highlight mode %q", req.Mode)
	}

	a.hub.Publish(TopicHighlight, "changed", map[string]any{
		"mode": string(a.engine.Mode()),
		"arg":  a.engine.ModeArg(),
	})
	return resp, nil
}

// ResetHighlight clears any active highlight and resumes LOD control.
func (a *App) ResetHighlight() {
	a.mu.Lock()
	if a.result != nil {
		a.engine.Reset()
	}
	a.mu.Unlock()

	a.hub.Publish(TopicHighlight, "changed", map[string]any{"mode": "none", "arg": ""})
}

// NodeDetail is the per-user response of the node endpoint.
type NodeDetail struct {
	Key          string             `json:"key"`
	Label        string             `json:"label,omitempty"`
	Karma        int                `json:"karma"`
	CreatedAt    string             `json:"created_at,omitempty"`
	InvitedBy    string             `json:"invited_by,omitempty"`
	Depth        *int               `json:"depth,omitempty"`
	InviteCount  int                `json:"invite_count"`
	SubtreeSize  int                `json:"subtree_size"`
	SubtreeKarma int                `json:"subtree_karma"`
	Children     []string           `json:"children,omitempty"`
	Profile      *graphdata.Profile `json:"profile,omitempty"`
	Position     *NodePosition      `json:"position,omitempty"`
}

// NodePosition is a node's layout coordinate.
type NodePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node resolves a username to its tree statistics, enrichment profile, and
// layout position.
func (a *App) Node(name string) (NodeDetail, error) {
	if err := apperrors.ValidateUsername(name); err != nil {
		return NodeDetail{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return NodeDetail{}, apperrors.New(apperrors.ErrCodeInternal, "graph not built yet")
	}

	idx := a.result.Index
	if !idx.Contains(name) {
		return NodeDetail{}, apperrors.New(apperrors.ErrCodeUserNotFound, "unknown user %q", name)
	}

	detail := NodeDetail{
		Key:          name,
		Karma:        idx.Karma(name),
		InviteCount:  idx.InviteCount(name),
		SubtreeSize:  idx.SubtreeSize(name),
		SubtreeKarma: idx.SubtreeKarma(name),
		Children:     idx.Children(name),
	}
	// Orphans are laid out and served but have no invite distance.
	if depth, ok := idx.Depth(name); ok {
		detail.Depth = &depth
	}
	if parent, ok := idx.Parent(name); ok {
		detail.InvitedBy = parent
	}
	for i := range a.result.Dataset.Nodes {
		n := &a.result.Dataset.Nodes[i]
		if n.Key == name {
			detail.Label = n.Attributes.Label
			detail.CreatedAt = n.Attributes.CreatedAt
			break
		}
	}
	if p, ok := a.result.Enrichment[name]; ok {
		profile := p
		detail.Profile = &profile
	}
	if pos, ok := a.result.Layout.Positions[name]; ok {
		detail.Position = &NodePosition{X: pos.X, Y: pos.Y}
	}
	return detail, nil
}

// Enrichment returns the profile for a user, if one exists.
func (a *App) Enrichment(name string) (graphdata.Profile, error) {
	if err := apperrors.ValidateUsername(name); err != nil {
		return graphdata.Profile{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return graphdata.Profile{}, apperrors.New(apperrors.ErrCodeInternal, "graph not built yet")
	}
	p, ok := a.result.Enrichment[name]
	if !ok {
		return graphdata.Profile{}, apperrors.New(apperrors.ErrCodeNotFound, "no enrichment for %q", name)
	}
	return p, nil
}
