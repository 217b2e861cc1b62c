package lod

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyTable is returned when a threshold table has no entries.
	ErrEmptyTable = errors.New("threshold table must not be empty")

	// ErrUnorderedTable is returned when zoom ceilings do not ascend.
	ErrUnorderedTable = errors.New("zoom ceilings must strictly ascend")

	// ErrNonMonotoneTable is returned when a more zoomed-out tier is more
	// lenient than a more zoomed-in one.
	ErrNonMonotoneTable = errors.New("visibility minimums must not decrease with zoom")

	// ErrBoundedTable is returned when the final entry has a finite ceiling.
	ErrBoundedTable = errors.New("final zoom ceiling must be unbounded")
)

// Threshold is one visibility tier. It applies to all zoom values up to and
// including ZoomCeil; a node at that tier is hidden when its karma is below
// MinKarma and its invite count is below MinInvites.
type Threshold struct {
	ZoomCeil   float64 `json:"zoom_ceil" toml:"zoom_ceil"`
	MinKarma   int     `json:"min_karma" toml:"min_karma"`
	MinInvites int     `json:"min_invites" toml:"min_invites"`
}

// Table is an ordered sequence of visibility tiers, ascending by zoom
// ceiling and ending with an unbounded entry. Zoom follows camera-ratio
// conventions: smaller values mean more zoomed in.
type Table []Threshold

// DefaultTable returns the built-in tier sequence tuned for a graph of a
// few tens of thousands of users.
func DefaultTable() Table {
	return Table{
		{ZoomCeil: 0.5, MinKarma: 0, MinInvites: 0},
		{ZoomCeil: 1.5, MinKarma: 5, MinInvites: 1},
		{ZoomCeil: 3.0, MinKarma: 25, MinInvites: 3},
		{ZoomCeil: 6.0, MinKarma: 75, MinInvites: 6},
		{ZoomCeil: math.Inf(1), MinKarma: 200, MinInvites: 12},
	}
}

// Validate checks ordering and monotonicity of the table.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for i := 1; i < len(t); i++ {
		prev, cur := t[i-1], t[i]
		if cur.ZoomCeil <= prev.ZoomCeil {
			return fmt.Errorf("%w: entry %d ceiling %v after %v", ErrUnorderedTable, i, cur.ZoomCeil, prev.ZoomCeil)
		}
		if cur.MinKarma < prev.MinKarma || cur.MinInvites < prev.MinInvites {
			return fmt.Errorf("%w: entry %d", ErrNonMonotoneTable, i)
		}
	}
	if !math.IsInf(t[len(t)-1].ZoomCeil, 1) {
		return ErrBoundedTable
	}
	return nil
}

// Select returns the first tier whose ceiling covers the given zoom. The
// final unbounded tier catches everything past the last finite ceiling.
func (t Table) Select(zoom float64) Threshold {
	for _, th := range t {
		if th.ZoomCeil >= zoom {
			return th
		}
	}
	return t[len(t)-1]
}
