package highlight

import "time"

// ===== Options =====

// Options configure the highlight engine's set sizes, colors, and cascade
// timing.
type Options struct {
	// TopCount is the size of the top-karma and top-inviter sets.
	TopCount int `json:"top_count"`

	// SearchLimit is the largest match set that still gets graph-level
	// highlighting. Larger result sets are returned as text only.
	SearchLimit int `json:"search_limit"`

	// CascadeCap disables the cascade animation for subtrees at or above
	// this descendant count.
	CascadeCap int `json:"cascade_cap"`

	// CascadeGrow is the pulse size multiplier applied per depth stage.
	CascadeGrow float64 `json:"cascade_grow"`

	// CascadeHold is how long a stage stays enlarged before shrinking back.
	CascadeHold time.Duration `json:"cascade_hold"`

	// CascadeStep is the delay between consecutive depth stages.
	CascadeStep time.Duration `json:"cascade_step"`

	// HighlightColor marks members of top-karma, top-inviter, and search
	// sets. FocusColor marks the focal node of a neighborhood highlight.
	HighlightColor string `json:"highlight_color"`
	FocusColor     string `json:"focus_color"`

	// MutedColor and MutedEdgeColor de-emphasize everything outside the
	// active set. MutedScale shrinks muted nodes.
	MutedColor     string  `json:"muted_color"`
	MutedEdgeColor string  `json:"muted_edge_color"`
	MutedScale     float64 `json:"muted_scale"`

	// HighlightScale enlarges members of the active set.
	HighlightScale float64 `json:"highlight_scale"`

	// DepthPalette colors descendants by min(depth, len-1).
	DepthPalette []string `json:"depth_palette"`
}

// DefaultOptions returns the standard highlight settings.
func DefaultOptions() Options {
	return Options{
		TopCount:       50,
		SearchLimit:    25,
		CascadeCap:     500,
		CascadeGrow:    1.6,
		CascadeHold:    250 * time.Millisecond,
		CascadeStep:    120 * time.Millisecond,
		HighlightColor: "#e94560",
		FocusColor:     "#f5a623",
		MutedColor:     "#3a3a4a",
		MutedEdgeColor: "rgba(125,125,125,0.05)",
		MutedScale:     0.6,
		HighlightScale: 1.25,
		DepthPalette: []string{
			"#e94560", "#f5a623", "#f8e71c", "#7ed321", "#4a90d9", "#9013fe",
		},
	}
}

func (o *Options) setDefaults() {
	d := DefaultOptions()
	if o.TopCount <= 0 {
		o.TopCount = d.TopCount
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = d.SearchLimit
	}
	if o.CascadeCap <= 0 {
		o.CascadeCap = d.CascadeCap
	}
	if o.CascadeGrow <= 1 {
		o.CascadeGrow = d.CascadeGrow
	}
	if o.CascadeHold <= 0 {
		o.CascadeHold = d.CascadeHold
	}
	if o.CascadeStep <= 0 {
		o.CascadeStep = d.CascadeStep
	}
	if o.HighlightColor == "" {
		o.HighlightColor = d.HighlightColor
	}
	if o.FocusColor == "" {
		o.FocusColor = d.FocusColor
	}
	if o.MutedColor == "" {
		o.MutedColor = d.MutedColor
	}
	if o.MutedEdgeColor == "" {
		o.MutedEdgeColor = d.MutedEdgeColor
	}
	if o.MutedScale <= 0 {
		o.MutedScale = d.MutedScale
	}
	if o.HighlightScale <= 0 {
		o.HighlightScale = d.HighlightScale
	}
	if len(o.DepthPalette) == 0 {
		o.DepthPalette = d.DepthPalette
	}
}
