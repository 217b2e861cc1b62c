package lod

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Quantiles used for the derived tiers, one per zoom band. Zoomed-in bands
// keep everything; the outermost band keeps roughly the top 3%.
var deriveQuantiles = []float64{0, 0.50, 0.80, 0.93, 0.97}

var deriveCeilings = []float64{0.5, 1.5, 3.0, 6.0, math.Inf(1)}

// DeriveTable builds a threshold table from the karma and invite-count
// distributions of the actual dataset, so the visible share per zoom band
// stays stable regardless of how skewed the community is. The result always
// passes Validate.
func DeriveTable(karmas, invites []int) Table {
	k := toSortedFloats(karmas)
	n := toSortedFloats(invites)

	table := make(Table, len(deriveCeilings))
	for i, ceil := range deriveCeilings {
		table[i] = Threshold{
			ZoomCeil:   ceil,
			MinKarma:   quantileCut(k, deriveQuantiles[i]),
			MinInvites: quantileCut(n, deriveQuantiles[i]),
		}
	}

	// Skewed distributions can produce equal cuts for adjacent quantiles;
	// force strict monotone minimums so deeper zoom-out is never more
	// lenient than the band before it.
	for i := 1; i < len(table); i++ {
		if table[i].MinKarma < table[i-1].MinKarma {
			table[i].MinKarma = table[i-1].MinKarma
		}
		if table[i].MinInvites < table[i-1].MinInvites {
			table[i].MinInvites = table[i-1].MinInvites
		}
	}
	return table
}

func toSortedFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	sort.Float64s(out)
	return out
}

func quantileCut(sorted []float64, q float64) int {
	if len(sorted) == 0 || q == 0 {
		return 0
	}
	return int(math.Ceil(stat.Quantile(q, stat.Empirical, sorted, nil)))
}
