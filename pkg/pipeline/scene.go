package pipeline

import (
	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/layout"
	"github.com/lobstergraph/lobstergraph/pkg/lod"
	"github.com/lobstergraph/lobstergraph/pkg/scene"
)

// Karma tiers for base node coloring, checked in order.
var karmaTiers = []struct {
	min   int
	color string
}{
	{1000, "#e94560"},
	{200, "#f5a623"},
	{50, "#7ed321"},
	{10, "#4a90d9"},
	{1, "#6b7a8f"},
	{0, "#4a4a5a"},
}

// KarmaTierColor returns the base color for a node with the given karma.
func KarmaTierColor(karma int) string {
	for _, tier := range karmaTiers {
		if karma >= tier.min {
			return tier.color
		}
	}
	return karmaTiers[len(karmaTiers)-1].color
}

// BuildScene populates an in-memory scene from the filtered dataset and the
// computed layout: positions, karma-scaled sizes, tier colors, and labels.
// Edges whose endpoints were dropped by the filter are skipped.
func BuildScene(d *graphdata.Dataset, lay *layout.Result) *scene.Memory {
	sc := scene.NewMemory()
	for i := range d.Nodes {
		n := &d.Nodes[i]
		pos := lay.Positions[n.Key]
		size := n.Attributes.Size
		if size <= 0 {
			size = graphdata.NodeSize(n.Attributes.Karma)
		}
		_ = sc.AddNode(n.Key, scene.Attrs{
			scene.AttrX:      pos.X,
			scene.AttrY:      pos.Y,
			scene.AttrSize:   size,
			scene.AttrColor:  KarmaTierColor(n.Attributes.Karma),
			scene.AttrLabel:  n.DisplayLabel(),
			scene.AttrHidden: false,
			scene.AttrZIndex: 0,
		})
	}
	for _, e := range d.Edges {
		_ = sc.AddEdge(e.Source, e.Target, scene.Attrs{
			scene.AttrColor: lod.EdgeColorNormal,
		})
	}
	return sc
}
