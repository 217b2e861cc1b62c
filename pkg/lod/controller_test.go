package lod

import (
	"testing"
	"time"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/scene"
	"github.com/lobstergraph/lobstergraph/pkg/schedule"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

func testGraph(t *testing.T) (*scene.Memory, *tree.Index) {
	t.Helper()
	d := &graphdata.Dataset{
		Nodes: []graphdata.Node{
			{Key: "jcs", Attributes: graphdata.Attributes{Karma: 500}},
			{Key: "ana", Attributes: graphdata.Attributes{Karma: 90, InvitedBy: "jcs"}},
			{Key: "bob", Attributes: graphdata.Attributes{Karma: 30, InvitedBy: "jcs"}},
			{Key: "cat", Attributes: graphdata.Attributes{Karma: 8, InvitedBy: "ana"}},
			{Key: "dan", Attributes: graphdata.Attributes{Karma: 0, InvitedBy: "ana"}},
		},
		Edges: []graphdata.Edge{
			{Source: "jcs", Target: "ana"},
			{Source: "jcs", Target: "bob"},
			{Source: "ana", Target: "cat"},
			{Source: "ana", Target: "dan"},
		},
	}
	idx, err := tree.Build(d, graphdata.DefaultFounder)
	if err != nil {
		t.Fatalf("tree.Build() error = %v", err)
	}

	sc := scene.NewMemory()
	for _, n := range d.Nodes {
		sc.AddNode(n.Key, scene.Attrs{})
	}
	for _, e := range d.Edges {
		sc.AddEdge(e.Source, e.Target, scene.Attrs{})
	}
	return sc, idx
}

func TestApplyMonotoneAcrossZoom(t *testing.T) {
	sc, idx := testGraph(t)
	c := NewController(sc, idx, DefaultTable(), schedule.NewManual(), DefaultOptions())

	prev := len(sc.Nodes()) + 1
	for _, zoom := range []float64{0.2, 1.0, 2.5, 5.0, 50.0} {
		c.Apply(zoom)
		got := c.VisibleCount()
		if got > prev {
			t.Errorf("Apply(%v): visible = %d, more than at previous zoom %d", zoom, got, prev)
		}
		prev = got
	}
}

func TestApplyKeepsHighKarmaOrHighInvites(t *testing.T) {
	sc, idx := testGraph(t)
	table := Table{{ZoomCeil: 1e12, MinKarma: 100, MinInvites: 2}}
	// Table used directly; the open-ended ceiling stands in for inf here.
	c := NewController(sc, idx, table, schedule.NewManual(), DefaultOptions())
	c.Apply(5)

	hidden := func(id string) bool {
		v, _ := sc.NodeAttr(id, scene.AttrHidden)
		h, _ := v.(bool)
		return h
	}
	if hidden("jcs") {
		t.Error("root hidden")
	}
	if hidden("ana") {
		t.Error("ana hidden despite 2 invites")
	}
	if !hidden("bob") {
		t.Error("bob visible with karma 30 and no invites")
	}
	if !hidden("dan") {
		t.Error("dan visible with no karma and no invites")
	}
}

func TestRootAlwaysVisible(t *testing.T) {
	sc, idx := testGraph(t)
	c := NewController(sc, idx, DefaultTable(), schedule.NewManual(), DefaultOptions())
	c.Apply(1e9)

	if v, _ := sc.NodeAttr("jcs", scene.AttrHidden); v == true {
		t.Error("root hidden at extreme zoom-out")
	}
}

func TestOnZoomDebounces(t *testing.T) {
	sc, idx := testGraph(t)
	clock := schedule.NewManual()
	c := NewController(sc, idx, DefaultTable(), clock, DefaultOptions())

	c.OnZoom(2.0)
	clock.Advance(50 * time.Millisecond)
	c.OnZoom(4.0) // supersedes the pending pass
	clock.Advance(50 * time.Millisecond)
	if got := sc.Refreshes(); got != 0 {
		t.Fatalf("refreshes before debounce window = %d, want 0", got)
	}

	clock.Advance(100 * time.Millisecond)
	if got := sc.Refreshes(); got != 1 {
		t.Errorf("refreshes after debounce = %d, want 1", got)
	}
	if got := c.Zoom(); got != 4.0 {
		t.Errorf("Zoom() = %v, want the latest value 4.0", got)
	}
}

func TestSuppressAndResume(t *testing.T) {
	sc, idx := testGraph(t)
	clock := schedule.NewManual()
	c := NewController(sc, idx, DefaultTable(), clock, DefaultOptions())

	c.Suppress()
	c.OnZoom(5.0)
	clock.Advance(time.Second)
	if got := sc.Refreshes(); got != 0 {
		t.Fatalf("LOD applied while suppressed (%d refreshes)", got)
	}

	c.Resume()
	if got := sc.Refreshes(); got != 1 {
		t.Errorf("refreshes after Resume() = %d, want 1", got)
	}
	// Resume applied at the last seen zoom, which hides low-signal nodes.
	if v, _ := sc.NodeAttr("dan", scene.AttrHidden); v != true {
		t.Error("dan not hidden after Resume() at zoom 5.0")
	}
}

func TestApplyDeferredWhileSuppressed(t *testing.T) {
	sc, idx := testGraph(t)
	c := NewController(sc, idx, DefaultTable(), schedule.NewManual(), DefaultOptions())

	c.Suppress()
	c.Apply(5.0)
	if got := sc.Refreshes(); got != 0 {
		t.Fatalf("Apply() ran while suppressed (%d refreshes)", got)
	}
	if v, _ := sc.NodeAttr("dan", scene.AttrHidden); v == true {
		t.Error("dan hidden by a direct Apply() while suppressed")
	}

	// The zoom is recorded, so Resume replays the deferred pass.
	c.Resume()
	if got := c.Zoom(); got != 5.0 {
		t.Errorf("Zoom() = %v, want the recorded value 5.0", got)
	}
	if v, _ := sc.NodeAttr("dan", scene.AttrHidden); v != true {
		t.Error("dan not hidden after Resume() replayed zoom 5.0")
	}
}

func TestEdgeDimCrossover(t *testing.T) {
	sc, idx := testGraph(t)
	c := NewController(sc, idx, DefaultTable(), schedule.NewManual(), DefaultOptions())

	c.Apply(1.0)
	if v, _ := sc.EdgeAttr("jcs", "ana", scene.AttrColor); v != EdgeColorNormal {
		t.Errorf("edge color at zoom 1.0 = %v, want normal", v)
	}
	c.Apply(3.0)
	if v, _ := sc.EdgeAttr("jcs", "ana", scene.AttrColor); v != EdgeColorDim {
		t.Errorf("edge color at zoom 3.0 = %v, want dim", v)
	}
}
