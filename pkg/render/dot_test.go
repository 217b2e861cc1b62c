package render

import (
	"strings"
	"testing"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/layout"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

func sample(t *testing.T) (*graphdata.Dataset, *tree.Index, *layout.Result) {
	t.Helper()
	d := &graphdata.Dataset{
		Nodes: []graphdata.Node{
			{Key: "jcs", Attributes: graphdata.Attributes{Karma: 500}},
			{Key: "ana", Attributes: graphdata.Attributes{Karma: 90, InvitedBy: "jcs"}},
			{Key: "cat", Attributes: graphdata.Attributes{Karma: 8, InvitedBy: "ana"}},
		},
		Edges: []graphdata.Edge{
			{Source: "jcs", Target: "ana"},
			{Source: "ana", Target: "cat"},
		},
	}
	idx, err := tree.Build(d, graphdata.DefaultFounder)
	if err != nil {
		t.Fatal(err)
	}
	lay := layout.Compute(idx, layout.DefaultOptions())
	return d, idx, lay
}

func TestToDOT(t *testing.T) {
	d, idx, lay := sample(t)
	dot := ToDOT(d, idx, lay, Options{Labels: true})

	if !strings.HasPrefix(dot, "digraph invites {") {
		t.Fatalf("unexpected DOT prefix: %q", dot[:40])
	}
	for _, id := range []string{"jcs", "ana", "cat"} {
		if !strings.Contains(dot, `"`+id+`"`) {
			t.Errorf("node %q missing from DOT", id)
		}
	}
	if !strings.Contains(dot, `"jcs" -> "ana";`) {
		t.Error("edge jcs -> ana missing")
	}
	// Positions are pinned for neato.
	if !strings.Contains(dot, "!\"") {
		t.Error("no pinned positions in DOT output")
	}
	if !strings.Contains(dot, "label=\"jcs\"") {
		t.Error("labels requested but missing")
	}
}

func TestToDOTDepthLimit(t *testing.T) {
	d, idx, lay := sample(t)
	dot := ToDOT(d, idx, lay, Options{MaxDepth: 1})

	if strings.Contains(dot, `"cat"`) {
		t.Error("depth-2 node exported despite MaxDepth=1")
	}
	if strings.Contains(dot, `"ana" -> "cat"`) {
		t.Error("edge to excluded node exported")
	}
	if !strings.Contains(dot, `"ana"`) {
		t.Error("depth-1 node missing")
	}
}

func TestToDOTNodeCap(t *testing.T) {
	d, idx, lay := sample(t)
	dot := ToDOT(d, idx, lay, Options{MaxNodes: 1})

	count := strings.Count(dot, "pos=")
	if count != 1 {
		t.Errorf("exported %d nodes, want 1", count)
	}
}
