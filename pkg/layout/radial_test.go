package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

func buildIndex(t *testing.T, nodes map[string]int, edges [][2]string) *tree.Index {
	t.Helper()
	d := &graphdata.Dataset{}
	for key, karma := range nodes {
		d.Nodes = append(d.Nodes, graphdata.Node{Key: key, Attributes: graphdata.Attributes{Karma: karma}})
	}
	for _, e := range edges {
		d.Edges = append(d.Edges, graphdata.Edge{Source: e[0], Target: e[1]})
	}
	idx, err := tree.Build(d, "jcs")
	if err != nil {
		t.Fatalf("tree.Build() error = %v", err)
	}
	return idx
}

func sampleIndex(t *testing.T) *tree.Index {
	return buildIndex(t,
		map[string]int{"jcs": 500, "ana": 120, "bob": 40, "cat": 8, "dan": 0, "eve": 77},
		[][2]string{{"jcs", "ana"}, {"jcs", "bob"}, {"ana", "cat"}, {"ana", "dan"}, {"bob", "eve"}},
	)
}

func TestCompute_Deterministic(t *testing.T) {
	idx := sampleIndex(t)
	opts := DefaultOptions()

	a := Compute(idx, opts)
	b := Compute(idx, opts)

	if !reflect.DeepEqual(a.Positions, b.Positions) {
		t.Error("positions differ between identical runs")
	}
	if !reflect.DeepEqual(a.Sectors, b.Sectors) {
		t.Error("sectors differ between identical runs")
	}
	if a.Scale != b.Scale {
		t.Errorf("scale differs: %v vs %v", a.Scale, b.Scale)
	}
}

func TestCompute_SectorPartition(t *testing.T) {
	idx := sampleIndex(t)
	res := Compute(idx, DefaultOptions())

	const tol = 1e-9
	for _, id := range idx.Keys() {
		children := idx.Children(id)
		if len(children) == 0 || !idx.Reachable(id) {
			continue
		}

		parent := res.Sectors[id]
		var sum float64
		for _, c := range children {
			sum += res.Sectors[c].Width()
		}
		if math.Abs(sum-parent.Width()) > tol {
			t.Errorf("children of %s cover %v, want %v", id, sum, parent.Width())
		}

		// Sibling sectors must not overlap.
		for i, a := range children {
			for _, b := range children[i+1:] {
				sa, sb := res.Sectors[a], res.Sectors[b]
				if sa.Start < sb.End-tol && sb.Start < sa.End-tol {
					t.Errorf("sectors of %s and %s overlap: %+v %+v", a, b, sa, sb)
				}
			}
		}
	}
}

func TestCompute_RootSpansFullCircle(t *testing.T) {
	idx := sampleIndex(t)
	res := Compute(idx, DefaultOptions())

	root := res.Sectors[idx.Root()]
	if math.Abs(root.Width()-2*math.Pi) > 1e-9 {
		t.Errorf("root sector width = %v, want 2π", root.Width())
	}
}

func TestCompute_AllPositionsFinite(t *testing.T) {
	idx := sampleIndex(t)
	res := Compute(idx, DefaultOptions())

	for _, id := range idx.Keys() {
		p, ok := res.Positions[id]
		if !ok {
			t.Errorf("no position for %s", id)
			continue
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Errorf("position of %s is not finite: %+v", id, p)
		}
	}
}

func TestCompute_SingleNode(t *testing.T) {
	idx := buildIndex(t, map[string]int{"jcs": 0}, nil)
	res := Compute(idx, DefaultOptions())

	p := res.Positions["jcs"]
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		t.Fatalf("single-node position is NaN: %+v", p)
	}
}

func TestCompute_ZeroKarmaZeroInvites(t *testing.T) {
	idx := sampleIndex(t)
	res := Compute(idx, DefaultOptions())

	// "dan" has karma 0 and no invitees; it still gets a valid band position.
	p := res.Positions["dan"]
	r := math.Hypot(p.X, p.Y)
	if r <= 0 || math.IsNaN(r) {
		t.Errorf("zero-influence node radius = %v, want > 0", r)
	}
}

func TestCompute_RescaleHitsTargetRadius(t *testing.T) {
	idx := sampleIndex(t)
	opts := DefaultOptions()
	res := Compute(idx, opts)

	var maxR float64
	for _, id := range idx.Keys() {
		if !idx.Reachable(id) {
			continue
		}
		if r := res.Radii[id]; r > maxR {
			maxR = r
		}
	}
	if math.Abs(maxR-opts.TargetRadius) > 1e-6 {
		t.Errorf("max tree radius = %v, want %v", maxR, opts.TargetRadius)
	}
}

func TestCompute_OrphanPlacement(t *testing.T) {
	d := &graphdata.Dataset{
		Nodes: []graphdata.Node{
			{Key: "jcs", Attributes: graphdata.Attributes{Karma: 10}},
			{Key: "kid", Attributes: graphdata.Attributes{Karma: 5}},
			{Key: "lost", Attributes: graphdata.Attributes{Karma: 3, InvitedBy: "gone"}},
		},
		Edges: []graphdata.Edge{{Source: "jcs", Target: "kid"}},
	}
	idx, err := tree.Build(d, "jcs")
	if err != nil {
		t.Fatalf("tree.Build() error = %v", err)
	}

	opts := DefaultOptions()
	res := Compute(idx, opts)

	p, ok := res.Positions["lost"]
	if !ok {
		t.Fatal("orphan has no position")
	}
	r := math.Hypot(p.X, p.Y)
	if math.IsNaN(r) || r == 0 {
		t.Fatalf("orphan radius = %v, want finite non-zero", r)
	}
	// The fallback ring sits outside the rescaled tree.
	if r <= opts.TargetRadius {
		t.Errorf("orphan radius = %v, want > target radius %v", r, opts.TargetRadius)
	}
}

func TestCompute_NilIndex(t *testing.T) {
	res := Compute(nil, DefaultOptions())
	if len(res.Positions) != 0 {
		t.Errorf("nil index produced %d positions, want 0", len(res.Positions))
	}
}

func TestHashSeed_Stable(t *testing.T) {
	if hashSeed("jcs") != hashSeed("jcs") {
		t.Error("hashSeed not stable for identical input")
	}
	if hashSeed("jcs") == hashSeed("pushcx") {
		t.Error("hashSeed collision between distinct usernames in test set")
	}
}
