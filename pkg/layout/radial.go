package layout

import (
	"math"
	"sort"

	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

// Point is a Cartesian coordinate in the canonical layout extent.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Sector is a node's allocated angular range [Start, End) in radians.
type Sector struct {
	Start float64 `json:"start" bson:"start"`
	End   float64 `json:"end" bson:"end"`
}

// Width returns the angular width of the sector.
func (s Sector) Width() float64 { return s.End - s.Start }

// Result holds the computed layout. All maps are keyed by username and cover
// every indexed node, orphans included.
type Result struct {
	Positions map[string]Point   `json:"positions" bson:"positions"`
	Sectors   map[string]Sector  `json:"sectors" bson:"sectors"`
	Angles    map[string]float64 `json:"angles" bson:"angles"`
	Radii     map[string]float64 `json:"radii" bson:"radii"`

	// Scale is the factor applied to map the farthest tree node onto the
	// target radius.
	Scale float64 `json:"scale" bson:"scale"`
}

// frame is one unit of the explicit traversal stack. The tree can be
// thousands of generations deep, so the walk must not use the call stack.
type frame struct {
	id          string
	depth       int
	sector      Sector
	parentAngle float64
}

// Compute lays out the invitation tree rooted at idx.Root.
//
// The root spans the full circle; every node subdivides its sector among its
// children proportional to subtree size, biggest subtree first. Sibling
// sectors never overlap and tile the parent sector exactly. Orphans are
// excluded from the recursion and placed on an outer fallback ring.
//
// A nil index produces an empty result, covering the no-identifiable-root
// case without special handling in callers.
func Compute(idx *tree.Index, opts Options) *Result {
	res := &Result{
		Positions: map[string]Point{},
		Sectors:   map[string]Sector{},
		Angles:    map[string]float64{},
		Radii:     map[string]float64{},
		Scale:     1,
	}
	if idx == nil || idx.NodeCount() == 0 {
		return res
	}

	maxKarma := 0
	for _, id := range idx.Keys() {
		if k := idx.Karma(id); k > maxKarma {
			maxKarma = k
		}
	}

	stack := []frame{{
		id:          idx.Root(),
		depth:       0,
		sector:      Sector{Start: 0, End: 2 * math.Pi},
		parentAngle: 0,
	}}

	var maxRadius float64
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		angle, radius := resolveNode(idx, f, maxKarma, opts)
		res.Sectors[f.id] = f.sector
		res.Angles[f.id] = angle
		res.Radii[f.id] = radius
		if radius > maxRadius {
			maxRadius = radius
		}

		stack = append(stack, childFrames(idx, f.id, f.depth, f.sector, angle)...)
	}

	// A single-node graph can leave the maximum radius at or near zero;
	// rescaling must not turn that into NaN positions.
	if maxRadius > 0 {
		res.Scale = opts.TargetRadius / maxRadius
	}

	for id, radius := range res.Radii {
		r := radius * res.Scale
		res.Radii[id] = r
		angle := res.Angles[id]
		res.Positions[id] = Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
	}

	placeOrphans(idx, opts, res)
	return res
}

// resolveNode computes the polar coordinate of one node inside its sector.
func resolveNode(idx *tree.Index, f frame, maxKarma int, opts Options) (angle, radius float64) {
	mid := f.sector.Start + f.sector.Width()/2

	angle = mid
	if f.depth > 1 {
		// Pull toward the parent to bound edge length, then clamp back
		// inside the sector so siblings cannot collide.
		angle = opts.ParentPull*f.parentAngle + (1-opts.ParentPull)*mid
		lo := f.sector.Start + opts.SectorMargin
		hi := f.sector.End - opts.SectorMargin
		if lo < hi {
			angle = math.Max(lo, math.Min(hi, angle))
		} else {
			angle = mid
		}
	}

	radius = bandStart(f.depth, opts) + influence(idx, f.id, maxKarma, opts)*opts.BandWidth*opts.InfluenceReach

	rng := jitterSource(f.id)
	radius += (rng.Float64()*2 - 1) * opts.JitterRadius
	angle += (rng.Float64()*2 - 1) * opts.JitterAngle / float64(1+f.depth)
	return angle, radius
}

// childFrames subdivides a node's sector among its children.
//
// Children are visited in descending subtree-size order (ties broken by key)
// and each receives a slice proportional to its subtree size. Bounds are
// computed from prefix sums of one shared total, so sibling sectors tile the
// parent sector exactly with no gaps or overlap.
func childFrames(idx *tree.Index, id string, depth int, sector Sector, parentAngle float64) []frame {
	children := idx.Children(id)
	if len(children) == 0 {
		return nil
	}

	ordered := append([]string(nil), children...)
	sort.Slice(ordered, func(i, j int) bool {
		si, sj := idx.SubtreeSize(ordered[i]), idx.SubtreeSize(ordered[j])
		if si != sj {
			return si > sj
		}
		return ordered[i] < ordered[j]
	})

	total := 0
	for _, c := range ordered {
		total += idx.SubtreeSize(c)
	}

	frames := make([]frame, 0, len(ordered))
	span := sector.Width()
	prefix := 0
	start := sector.Start
	for _, c := range ordered {
		prefix += idx.SubtreeSize(c)
		end := sector.Start + span*float64(prefix)/float64(total)
		frames = append(frames, frame{
			id:          c,
			depth:       depth + 1,
			sector:      Sector{Start: start, End: end},
			parentAngle: parentAngle,
		})
		start = end
	}
	return frames
}

// bandStart returns the inner radius of a depth band. Bands widen with depth
// so crowded outer generations get more radial room.
func bandStart(depth int, opts Options) float64 {
	r := opts.RadiusOffset
	for d := 1; d <= depth; d++ {
		r += opts.BandWidth * (1 + opts.BandGrowth*float64(d-1))
	}
	return r
}

// influence blends karma, invite count, and subtree size into [0,1].
// A node with zero karma and zero invites still has subtree size 1, so the
// score collapses toward zero and the node sits at its band's base radius.
func influence(idx *tree.Index, id string, maxKarma int, opts Options) float64 {
	var karmaN float64
	if maxKarma > 0 {
		karmaN = math.Log1p(float64(idx.Karma(id))) / math.Log1p(float64(maxKarma))
	}

	invites := idx.InviteCount(id)
	if invites > opts.InviteCeil {
		invites = opts.InviteCeil
	}
	var inviteN float64
	if opts.InviteCeil > 0 {
		inviteN = math.Sqrt(float64(invites)) / math.Sqrt(float64(opts.InviteCeil))
	}

	size := idx.SubtreeSize(id)
	if size > opts.SubtreeCeil {
		size = opts.SubtreeCeil
	}
	var subtreeN float64
	if opts.SubtreeCeil > 0 {
		subtreeN = math.Log1p(float64(size-1)) / math.Log1p(float64(opts.SubtreeCeil))
	}

	return opts.KarmaWeight*karmaN + opts.InviteWeight*inviteN + opts.SubtreeWeight*subtreeN
}

// placeOrphans positions unreachable nodes on an outer ring so they stay
// visible without intersecting the tree. Placement uses the same username
// hash as jitter and is therefore deterministic.
func placeOrphans(idx *tree.Index, opts Options, res *Result) {
	ring := opts.TargetRadius * opts.OrphanRingFactor
	for _, id := range idx.Orphans() {
		angle := hash01(id) * 2 * math.Pi
		rng := jitterSource(id)
		r := ring + (rng.Float64()*2-1)*ring*0.02
		res.Angles[id] = angle
		res.Radii[id] = r
		res.Positions[id] = Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
	}
}
