package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lobstergraph/lobstergraph/pkg/cache"
	"github.com/lobstergraph/lobstergraph/pkg/errors"
	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/layout"
	"github.com/lobstergraph/lobstergraph/pkg/lod"
	"github.com/lobstergraph/lobstergraph/pkg/observability"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

// Cache key types reported to observability hooks.
const (
	keyTypeDataset = "dataset"
	keyTypeLayout  = "layout"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Build runs the complete load → index → layout → scene pipeline with
// caching.
func (r *Runner) Build(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Load and filter
	loadStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageLoad, 0)
	d, datasetHit, err := r.LoadWithCacheInfo(ctx, opts)
	observability.Pipeline().OnStageComplete(ctx, observability.StageLoad, nodeCountOf(d), time.Since(loadStart), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataMalformed, err, "load %s", opts.source())
	}
	result.Dataset = d
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(d.Nodes)
	result.Stats.EdgeCount = len(d.Edges)
	result.CacheInfo.DatasetHit = datasetHit

	if data, err := graphdata.MarshalDataset(d); err == nil {
		result.DatasetHash = cache.Hash(data)
	}
	result.Enrichment = r.loadEnrichment(opts)

	r.Logger.Info("loaded dataset",
		"nodes", len(d.Nodes),
		"edges", len(d.Edges),
		"min_karma", opts.MinKarma,
		"duration", result.Stats.LoadTime)

	// Stage 2: Index
	indexStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageIndex, len(d.Nodes))
	idx, err := tree.Build(d, opts.Founder)
	observability.Pipeline().OnStageComplete(ctx, observability.StageIndex, len(d.Nodes), time.Since(indexStart), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNoRoot, err, "index %s", opts.source())
	}
	result.Index = idx
	result.Stats.IndexTime = time.Since(indexStart)
	result.Stats.OrphanCount = len(idx.Orphans())

	r.Logger.Info("indexed tree",
		"root", idx.Root(),
		"max_depth", idx.MaxDepth(),
		"orphans", result.Stats.OrphanCount,
		"duration", result.Stats.IndexTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageLayout, idx.NodeCount())
	lay, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, result.DatasetHash, idx, opts)
	observability.Pipeline().OnStageComplete(ctx, observability.StageLayout, idx.NodeCount(), time.Since(layoutStart), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "layout")
	}
	result.Layout = lay
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"positions", len(lay.Positions),
		"scale", lay.Scale,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Scene and LOD table
	sceneStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageScene, len(d.Nodes))
	result.Scene = BuildScene(d, lay)
	result.LOD = r.lodTable(idx, opts)
	result.Stats.SceneTime = time.Since(sceneStart)
	observability.Pipeline().OnStageComplete(ctx, observability.StageScene, len(d.Nodes), result.Stats.SceneTime, nil)

	return result, nil
}

func nodeCountOf(d *graphdata.Dataset) int {
	if d == nil {
		return 0
	}
	return len(d.Nodes)
}

// LoadWithCacheInfo loads and filters the dataset with caching and returns
// cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*graphdata.Dataset, bool, error) {
	cacheKey := r.Keyer.DatasetKey(opts.source(), opts.MinKarma)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			d, err := graphdata.ReadDataset(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeDataset)
				return d, true, nil // Cache hit
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeDataset)

	d, err := r.loadSource(opts)
	if err != nil {
		return nil, false, err
	}
	if opts.MinKarma > 0 {
		d = graphdata.Filter(d, opts.MinKarma)
	}

	// Cache the filtered result
	if data, err := graphdata.MarshalDataset(d); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDataset)
		observability.Cache().OnCacheSet(ctx, keyTypeDataset, len(data))
	}

	return d, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*graphdata.Dataset, error) {
	d, _, err := r.LoadWithCacheInfo(ctx, opts)
	return d, err
}

// ComputeLayoutWithCacheInfo computes the radial layout with caching and
// returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, datasetHash string, idx *tree.Index, opts Options) (*layout.Result, bool, error) {
	cacheKey := r.Keyer.LayoutKey(datasetHash, opts.Layout)

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := layout.UnmarshalResult(data)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, keyTypeLayout)
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeLayout)

	lay := layout.Compute(idx, opts.Layout)

	// Cache the result
	if data, err := layout.MarshalResult(lay); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
	}

	return lay, false, nil // Cache miss
}

// loadSource reads the dataset from the configured source.
func (r *Runner) loadSource(opts Options) (*graphdata.Dataset, error) {
	if opts.SQLitePath != "" {
		src, err := graphdata.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Dataset()
	}
	return graphdata.ReadDatasetFile(opts.DataPath)
}

// loadEnrichment reads the optional profile table. Absence or malformed
// content is tolerated and yields an empty mapping.
func (r *Runner) loadEnrichment(opts Options) graphdata.Enrichment {
	if opts.SQLitePath != "" {
		src, err := graphdata.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return graphdata.Enrichment{}
		}
		defer src.Close()
		e, err := src.Enrichment()
		if err != nil {
			return graphdata.Enrichment{}
		}
		return e
	}
	if opts.EnrichedPath == "" {
		return graphdata.Enrichment{}
	}
	return graphdata.ReadEnrichmentFile(opts.EnrichedPath)
}

// lodTable returns the configured threshold table, or derives one from the
// indexed nodes' karma and invite distributions.
func (r *Runner) lodTable(idx *tree.Index, opts Options) lod.Table {
	if opts.LOD != nil {
		return opts.LOD
	}
	keys := idx.Keys()
	karmas := make([]int, 0, len(keys))
	invites := make([]int, 0, len(keys))
	for _, id := range keys {
		karmas = append(karmas, idx.Karma(id))
		invites = append(invites, idx.InviteCount(id))
	}
	return lod.DeriveTable(karmas, invites)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
