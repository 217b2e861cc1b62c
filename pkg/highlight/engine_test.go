package highlight

import (
	"errors"
	"testing"
	"time"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/scene"
	"github.com/lobstergraph/lobstergraph/pkg/schedule"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

type fakeSuppressor struct {
	suppressed int
	resumed    int
}

func (f *fakeSuppressor) Suppress() { f.suppressed++ }
func (f *fakeSuppressor) Resume()   { f.resumed++ }

// testGraph builds jcs -> {ana, bob}, ana -> {cat, dan} with per-node base
// colors so restore behavior is observable.
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
		sc.AddNode(n.Key, scene.Attrs{
			scene.AttrColor:  "base:" + n.Key,
			scene.AttrSize:   10.0,
			scene.AttrZIndex: 0,
		})
	}
	for _, e := range d.Edges {
		sc.AddEdge(e.Source, e.Target, scene.Attrs{scene.AttrColor: defaultEdgeColor})
	}
	return sc, idx
}

func nodeColor(t *testing.T, sc *scene.Memory, id string) any {
	t.Helper()
	v, ok := sc.NodeAttr(id, scene.AttrColor)
	if !ok {
		t.Fatalf("node %q has no color", id)
	}
	return v
}

func nodeSize(t *testing.T, sc *scene.Memory, id string) float64 {
	t.Helper()
	v, ok := sc.NodeAttr(id, scene.AttrSize)
	if !ok {
		t.Fatalf("node %q has no size", id)
	}
	return v.(float64)
}

func TestTopKarma(t *testing.T) {
	sc, idx := testGraph(t)
	sup := &fakeSuppressor{}
	opts := DefaultOptions()
	opts.TopCount = 2
	e := New(sc, idx, sup, schedule.NewManual(), opts)

	e.TopKarma()
	if got := e.Mode(); got != ModeTopKarma {
		t.Fatalf("Mode() = %v, want %v", got, ModeTopKarma)
	}
	if sup.suppressed == 0 {
		t.Error("LOD not suppressed on mode entry")
	}
	// Top two by karma are jcs (500) and ana (90).
	for _, id := range []string{"jcs", "ana"} {
		if got := nodeColor(t, sc, id); got != opts.HighlightColor {
			t.Errorf("color(%s) = %v, want highlight", id, got)
		}
	}
	for _, id := range []string{"bob", "cat", "dan"} {
		if got := nodeColor(t, sc, id); got != opts.MutedColor {
			t.Errorf("color(%s) = %v, want muted", id, got)
		}
	}
	if v, _ := sc.EdgeAttr("jcs", "ana", scene.AttrColor); v != opts.MutedEdgeColor {
		t.Errorf("edge color = %v, want muted", v)
	}
}

func TestTopInvitersTieBreaksByName(t *testing.T) {
	sc, idx := testGraph(t)
	opts := DefaultOptions()
	opts.TopCount = 2
	e := New(sc, idx, nil, schedule.NewManual(), opts)

	// jcs and ana both have two invitees; both fit in the top-2 set.
	e.TopInviters()
	for _, id := range []string{"jcs", "ana"} {
		if got := nodeColor(t, sc, id); got != opts.HighlightColor {
			t.Errorf("color(%s) = %v, want highlight", id, got)
		}
	}
}

func TestFocusAndCloseRestoresPriorMode(t *testing.T) {
	sc, idx := testGraph(t)
	opts := DefaultOptions()
	e := New(sc, idx, &fakeSuppressor{}, schedule.NewManual(), opts)

	e.TopKarma()
	if err := e.Focus("ana"); err != nil {
		t.Fatalf("Focus() error = %v", err)
	}
	if got := e.Mode(); got != ModeFocus {
		t.Fatalf("Mode() = %v, want focus", got)
	}
	if got := nodeColor(t, sc, "ana"); got != opts.FocusColor {
		t.Errorf("focal color = %v, want focus color", got)
	}
	// Neighbors (parent jcs, children cat/dan) keep their base colors.
	for _, id := range []string{"jcs", "cat", "dan"} {
		if got := nodeColor(t, sc, id); got != "base:"+id {
			t.Errorf("neighbor color(%s) = %v, want base", id, got)
		}
	}
	if got := nodeColor(t, sc, "bob"); got != opts.MutedColor {
		t.Errorf("non-neighbor color = %v, want muted", got)
	}
	if v, _ := sc.EdgeAttr("ana", "cat", scene.AttrColor); v != opts.FocusColor {
		t.Errorf("focal edge color = %v, want focus color", v)
	}
	if v, _ := sc.EdgeAttr("jcs", "bob", scene.AttrColor); v != opts.MutedEdgeColor {
		t.Errorf("distant edge color = %v, want muted", v)
	}

	if err := e.CloseFocus(); err != nil {
		t.Fatalf("CloseFocus() error = %v", err)
	}
	if got := e.Mode(); got != ModeTopKarma {
		t.Errorf("Mode() after close = %v, want restored top-karma", got)
	}
	if got := nodeColor(t, sc, "jcs"); got != opts.HighlightColor {
		t.Errorf("color(jcs) after close = %v, want highlight", got)
	}
}

func TestCloseFocusWithoutPriorResets(t *testing.T) {
	sc, idx := testGraph(t)
	sup := &fakeSuppressor{}
	e := New(sc, idx, sup, schedule.NewManual(), DefaultOptions())

	e.Focus("ana")
	e.CloseFocus()
	if got := e.Mode(); got != ModeNone {
		t.Errorf("Mode() = %v, want none", got)
	}
	if sup.resumed == 0 {
		t.Error("LOD not resumed after close with no prior mode")
	}
	if got := nodeColor(t, sc, "bob"); got != "base:bob" {
		t.Errorf("color(bob) = %v, want base restored", got)
	}
}

func TestFocusUnknownNode(t *testing.T) {
	sc, idx := testGraph(t)
	e := New(sc, idx, nil, schedule.NewManual(), DefaultOptions())
	if err := e.Focus("ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Focus(ghost) error = %v, want ErrUnknownNode", err)
	}
	if got := e.Mode(); got != ModeNone {
		t.Errorf("Mode() after failed focus = %v, want none", got)
	}
}

func TestDescendantsDepthsAndColors(t *testing.T) {
	sc, idx := testGraph(t)
	opts := DefaultOptions()
	e := New(sc, idx, nil, schedule.NewManual(), opts)

	res, err := e.Descendants("jcs")
	if err != nil {
		t.Fatalf("Descendants() error = %v", err)
	}
	if res.Count != 5 || res.MaxDepth != 2 {
		t.Errorf("result = %+v, want count 5, max depth 2", res)
	}
	if got := nodeColor(t, sc, "jcs"); got != opts.DepthPalette[0] {
		t.Errorf("root color = %v, want palette[0]", got)
	}
	if got := nodeColor(t, sc, "ana"); got != opts.DepthPalette[1] {
		t.Errorf("child color = %v, want palette[1]", got)
	}
	if got := nodeColor(t, sc, "cat"); got != opts.DepthPalette[2] {
		t.Errorf("grandchild color = %v, want palette[2]", got)
	}
	// Edges inside the subtree take the shallower endpoint's color.
	if v, _ := sc.EdgeAttr("ana", "cat", scene.AttrColor); v != opts.DepthPalette[1] {
		t.Errorf("subtree edge color = %v, want palette[1]", v)
	}
	// Sizes shrink with depth.
	if nodeSize(t, sc, "jcs") <= nodeSize(t, sc, "cat") {
		t.Error("root not larger than grandchild")
	}
}

func TestDescendantsOfMidNodeMutesOutsiders(t *testing.T) {
	sc, idx := testGraph(t)
	opts := DefaultOptions()
	e := New(sc, idx, nil, schedule.NewManual(), opts)

	res, err := e.Descendants("ana")
	if err != nil {
		t.Fatalf("Descendants() error = %v", err)
	}
	if res.Count != 3 {
		t.Errorf("Count = %d, want 3 (ana, cat, dan)", res.Count)
	}
	for _, id := range []string{"jcs", "bob"} {
		if got := nodeColor(t, sc, id); got != opts.MutedColor {
			t.Errorf("color(%s) = %v, want muted", id, got)
		}
	}
}

func TestModeSwitchClearsPreviousEffects(t *testing.T) {
	sc, idx := testGraph(t)
	opts := DefaultOptions()
	e := New(sc, idx, nil, schedule.NewManual(), opts)

	e.TopKarma()
	if _, err := e.Descendants("ana"); err != nil {
		t.Fatal(err)
	}
	// jcs was highlighted by top-karma; as a non-descendant of ana it must
	// now be muted, not left with the stale highlight color.
	if got := nodeColor(t, sc, "jcs"); got != opts.MutedColor {
		t.Errorf("color(jcs) = %v, want muted after mode switch", got)
	}
}

func TestCascadePulsesByDepth(t *testing.T) {
	sc, idx := testGraph(t)
	clock := schedule.NewManual()
	opts := DefaultOptions()
	e := New(sc, idx, nil, clock, opts)

	res, err := e.Descendants("jcs")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cascaded {
		t.Fatal("expected cascade for a 5-node subtree")
	}

	sizeBefore := nodeSize(t, sc, "jcs")
	clock.Advance(0) // stage 0 fires
	if got := nodeSize(t, sc, "jcs"); got != sizeBefore*opts.CascadeGrow {
		t.Errorf("root size during pulse = %v, want %v", got, sizeBefore*opts.CascadeGrow)
	}
	childBefore := nodeSize(t, sc, "ana")
	clock.Advance(opts.CascadeStep) // stage 1 fires
	if got := nodeSize(t, sc, "ana"); got != childBefore*opts.CascadeGrow {
		t.Errorf("child size during pulse = %v, want enlarged", got)
	}
	clock.Advance(time.Second) // everything settles
	if got := nodeSize(t, sc, "jcs"); got != sizeBefore {
		t.Errorf("root size after cascade = %v, want restored %v", got, sizeBefore)
	}
	if got := nodeSize(t, sc, "ana"); got != childBefore {
		t.Errorf("child size after cascade = %v, want restored %v", got, childBefore)
	}
}

func TestCascadeStaleStepsNoOpAfterModeSwitch(t *testing.T) {
	sc, idx := testGraph(t)
	clock := schedule.NewManual()
	opts := DefaultOptions()
	e := New(sc, idx, nil, clock, opts)

	e.Descendants("jcs")
	clock.Advance(0) // stage 0 enlarges the root

	e.TopKarma() // advances the generation
	sizeAfterSwitch := nodeSize(t, sc, "jcs")
	clock.Advance(time.Minute) // all stale steps fire and must no-op
	if got := nodeSize(t, sc, "jcs"); got != sizeAfterSwitch {
		t.Errorf("stale cascade mutated size: %v -> %v", sizeAfterSwitch, got)
	}
}

func TestCascadeCapSkipsAnimation(t *testing.T) {
	sc, idx := testGraph(t)
	clock := schedule.NewManual()
	opts := DefaultOptions()
	opts.CascadeCap = 3
	e := New(sc, idx, nil, clock, opts)

	res, err := e.Descendants("jcs")
	if err != nil {
		t.Fatal(err)
	}
	if res.Cascaded {
		t.Error("cascade ran for a subtree at the cap")
	}
	if got := clock.Pending(); got != 0 {
		t.Errorf("pending callbacks = %d, want 0", got)
	}
}

func TestSearch(t *testing.T) {
	sc, idx := testGraph(t)
	opts := DefaultOptions()
	e := New(sc, idx, nil, schedule.NewManual(), opts)

	matches, applied := e.Search("ANA")
	if !applied || len(matches) != 1 || matches[0] != "ana" {
		t.Fatalf("Search(ANA) = %v, %v; want [ana], true", matches, applied)
	}
	if got := nodeColor(t, sc, "ana"); got != opts.HighlightColor {
		t.Errorf("match color = %v, want highlight", got)
	}
	if got := e.Mode(); got != ModeSearch {
		t.Errorf("Mode() = %v, want search", got)
	}
}

func TestSearchOverLimitLeavesSceneAlone(t *testing.T) {
	sc, idx := testGraph(t)
	opts := DefaultOptions()
	opts.SearchLimit = 1
	e := New(sc, idx, nil, schedule.NewManual(), opts)

	matches, applied := e.Search("a") // ana, cat, dan
	if applied {
		t.Error("highlighting applied above the search limit")
	}
	if len(matches) != 3 {
		t.Errorf("matches = %v, want 3 names", matches)
	}
	if got := e.Mode(); got != ModeNone {
		t.Errorf("Mode() = %v, want none", got)
	}
	if got := nodeColor(t, sc, "ana"); got != "base:ana" {
		t.Errorf("color(ana) = %v, want untouched base", got)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	sc, idx := testGraph(t)
	e := New(sc, idx, nil, schedule.NewManual(), DefaultOptions())
	if matches, applied := e.Search("   "); matches != nil || applied {
		t.Errorf("Search(blank) = %v, %v; want nil, false", matches, applied)
	}
}

func TestReset(t *testing.T) {
	sc, idx := testGraph(t)
	sup := &fakeSuppressor{}
	e := New(sc, idx, sup, schedule.NewManual(), DefaultOptions())

	e.TopKarma()
	e.Reset()
	if got := e.Mode(); got != ModeNone {
		t.Errorf("Mode() = %v, want none", got)
	}
	if sup.resumed != 1 {
		t.Errorf("resumed = %d, want 1", sup.resumed)
	}
	for _, id := range []string{"jcs", "ana", "bob", "cat", "dan"} {
		if got := nodeColor(t, sc, id); got != "base:"+id {
			t.Errorf("color(%s) = %v, want base restored", id, got)
		}
		if got := nodeSize(t, sc, id); got != 10.0 {
			t.Errorf("size(%s) = %v, want 10", id, got)
		}
	}
}
