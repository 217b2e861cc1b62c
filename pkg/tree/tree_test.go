package tree

import (
	"errors"
	"testing"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
)

func dataset(nodes map[string]int, edges [][2]string) *graphdata.Dataset {
	d := &graphdata.Dataset{}
	for key, karma := range nodes {
		d.Nodes = append(d.Nodes, graphdata.Node{Key: key, Attributes: graphdata.Attributes{Karma: karma}})
	}
	for _, e := range edges {
		d.Edges = append(d.Edges, graphdata.Edge{Source: e[0], Target: e[1]})
	}
	return d
}

func TestBuild_ChainSubtreeStats(t *testing.T) {
	d := dataset(
		map[string]int{"a": 10, "b": 20, "c": 30, "d": 40},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}},
	)

	idx, err := Build(d, "a")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := idx.SubtreeKarma("a"); got != 100 {
		t.Errorf("SubtreeKarma(a) = %d, want 100", got)
	}
	if got := idx.SubtreeSize("a"); got != 4 {
		t.Errorf("SubtreeSize(a) = %d, want 4", got)
	}
	if got := idx.SubtreeKarma("c"); got != 70 {
		t.Errorf("SubtreeKarma(c) = %d, want 70", got)
	}
	if got, _ := idx.Depth("d"); got != 3 {
		t.Errorf("Depth(d) = %d, want 3", got)
	}
	if got := idx.MaxDepth(); got != 3 {
		t.Errorf("MaxDepth() = %d, want 3", got)
	}
}

func TestBuild_SubtreeInvariant(t *testing.T) {
	d := dataset(
		map[string]int{"r": 1, "a": 2, "b": 3, "c": 4, "d": 5, "e": 6},
		[][2]string{{"r", "a"}, {"r", "b"}, {"a", "c"}, {"a", "d"}, {"b", "e"}},
	)

	idx, err := Build(d, "r")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, id := range idx.Keys() {
		wantSize := 1
		wantKarma := idx.Karma(id)
		for _, child := range idx.Children(id) {
			wantSize += idx.SubtreeSize(child)
			wantKarma += idx.SubtreeKarma(child)
		}
		if got := idx.SubtreeSize(id); got != wantSize {
			t.Errorf("SubtreeSize(%s) = %d, want %d", id, got, wantSize)
		}
		if got := idx.SubtreeKarma(id); got != wantKarma {
			t.Errorf("SubtreeKarma(%s) = %d, want %d", id, got, wantKarma)
		}
	}
}

func TestBuild_LeafHasNoChildren(t *testing.T) {
	d := dataset(map[string]int{"r": 5, "x": 7}, [][2]string{{"r", "x"}})

	idx, err := Build(d, "r")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := idx.InviteCount("x"); got != 0 {
		t.Errorf("InviteCount(x) = %d, want 0", got)
	}
	if got := idx.SubtreeSize("x"); got != 1 {
		t.Errorf("SubtreeSize(x) = %d, want 1", got)
	}
	if got := idx.SubtreeKarma("x"); got != 7 {
		t.Errorf("SubtreeKarma(x) = %d, want 7", got)
	}
}

func TestBuild_FounderPreferred(t *testing.T) {
	// Two inviter-less nodes; the founder key wins even when another node
	// sorts first.
	d := dataset(map[string]int{"aaa": 1, "jcs": 2, "kid": 3}, [][2]string{{"jcs", "kid"}})

	idx, err := Build(d, "jcs")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if idx.Root() != "jcs" {
		t.Errorf("Root() = %q, want %q", idx.Root(), "jcs")
	}
}

func TestBuild_FallbackRoot(t *testing.T) {
	d := dataset(map[string]int{"root": 1, "kid": 2}, [][2]string{{"root", "kid"}})

	idx, err := Build(d, "jcs")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if idx.Root() != "root" {
		t.Errorf("Root() = %q, want %q", idx.Root(), "root")
	}
}

func TestBuild_NoRoot(t *testing.T) {
	// Every node claims an inviter, and the founder is absent.
	d := &graphdata.Dataset{
		Nodes: []graphdata.Node{
			{Key: "a", Attributes: graphdata.Attributes{InvitedBy: "b"}},
			{Key: "b", Attributes: graphdata.Attributes{InvitedBy: "a"}},
		},
		Edges: []graphdata.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	}

	if _, err := Build(d, "jcs"); !errors.Is(err, ErrNoRoot) {
		t.Errorf("Build() error = %v, want ErrNoRoot", err)
	}
}

func TestBuild_Orphans(t *testing.T) {
	// "lost" was invited by a user the filter removed; no path to root.
	d := dataset(map[string]int{"jcs": 9, "kid": 4, "lost": 2}, [][2]string{{"jcs", "kid"}})
	d.Nodes[2].Attributes.InvitedBy = "gone"

	idx, err := Build(d, "jcs")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	orphans := idx.Orphans()
	if len(orphans) != 1 || orphans[0] != "lost" {
		t.Fatalf("Orphans() = %v, want [lost]", orphans)
	}
	if idx.Reachable("lost") {
		t.Error("Reachable(lost) = true, want false")
	}
	if !idx.Contains("lost") {
		t.Error("Contains(lost) = false, want true")
	}
	if idx.Contains("gone") {
		t.Error("Contains(gone) = true for an unindexed key")
	}
	// Orphans do not inflate the root's subtree.
	if got := idx.SubtreeSize("jcs"); got != 2 {
		t.Errorf("SubtreeSize(jcs) = %d, want 2", got)
	}
}

func TestBuild_EdgeWithUnknownEndpointIgnored(t *testing.T) {
	d := dataset(map[string]int{"jcs": 1, "kid": 2}, [][2]string{{"jcs", "kid"}, {"jcs", "ghost"}})

	idx, err := Build(d, "jcs")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := idx.InviteCount("jcs"); got != 1 {
		t.Errorf("InviteCount(jcs) = %d, want 1", got)
	}
}
