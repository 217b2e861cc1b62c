// Package pipeline provides the core graph-build pipeline for Lobstergraph.
//
// This package implements the complete load → index → layout → scene
// pipeline that can be used by CLI and server components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read the invitation dataset (JSON export or scraper SQLite
//     database) and apply the minimum-karma filter
//  2. Index: Build the child adjacency with subtree statistics
//  3. Layout: Compute the radial positions for the invitation tree
//  4. Scene: Populate a scene with positions and base styling
//
// Each stage can be run independently or as part of the complete pipeline.
// The filtered dataset and the layout are cached; changing the karma filter
// rebuilds everything from scratch.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    DataPath: "data/graph.json",
//	    MinKarma: 10,
//	}
//	result, err := runner.Build(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	positions := result.Layout.Positions
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lobstergraph/lobstergraph/pkg/errors"
	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/layout"
	"github.com/lobstergraph/lobstergraph/pkg/lod"
	"github.com/lobstergraph/lobstergraph/pkg/scene"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the build pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Data source options. Exactly one of DataPath and SQLitePath is
	// required; EnrichedPath is optional and its absence is tolerated.
	DataPath     string `json:"data_path,omitempty"`
	SQLitePath   string `json:"sqlite_path,omitempty"`
	EnrichedPath string `json:"enriched_path,omitempty"`

	// Founder is the username treated as the tree root when present.
	Founder string `json:"founder,omitempty"`

	// MinKarma filters out nodes below this karma before indexing.
	MinKarma int `json:"min_karma,omitempty"`

	// Refresh bypasses the dataset cache and reloads from the source.
	Refresh bool `json:"refresh,omitempty"`

	// Layout configures the radial layout engine.
	Layout layout.Options `json:"layout"`

	// LOD overrides the level-of-detail threshold table. When nil, a table
	// is derived from the dataset's karma and invite distributions.
	LOD lod.Table `json:"lod,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the filtered invitation dataset.
	Dataset *graphdata.Dataset

	// DatasetHash is the content hash of the filtered dataset.
	DatasetHash string

	// Enrichment is the optional profile lookup table, possibly empty.
	Enrichment graphdata.Enrichment

	// Index is the child adjacency with subtree statistics.
	Index *tree.Index

	// Layout contains the computed radial positions.
	Layout *layout.Result

	// LOD is the threshold table in effect: the configured one, or a table
	// derived from the dataset's distributions.
	LOD lod.Table

	// Scene is the populated in-memory scene with base styling.
	Scene *scene.Memory

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	OrphanCount int
	LoadTime    time.Duration
	IndexTime   time.Duration
	LayoutTime  time.Duration
	SceneTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DatasetHit bool // Whether the filtered dataset came from cache
	LayoutHit  bool // Whether the layout came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.DataPath == "" && o.SQLitePath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "data_path or sqlite_path is required")
	}
	if o.DataPath != "" && o.SQLitePath != "" {
		return errors.New(errors.ErrCodeInvalidInput, "data_path and sqlite_path are mutually exclusive")
	}
	if err := errors.ValidateDataPath(o.source()); err != nil {
		return err
	}
	if err := errors.ValidateMinKarma(o.MinKarma); err != nil {
		return err
	}

	if o.Founder == "" {
		o.Founder = graphdata.DefaultFounder
	}
	if o.Layout == (layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	}
	if o.LOD != nil {
		if err := o.LOD.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "lod table")
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// source returns the configured data source path.
func (o *Options) source() string {
	if o.SQLitePath != "" {
		return o.SQLitePath
	}
	return o.DataPath
}
