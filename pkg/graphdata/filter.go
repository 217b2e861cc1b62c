package graphdata

// Filter returns a new Dataset containing only nodes with karma >= minKarma
// and edges whose endpoints both survive. Edges referencing unknown nodes are
// dropped silently; they are a data artifact, not an error. Stats are
// recomputed for the filtered set.
//
// The input dataset is never modified. Changing the karma filter therefore
// always starts from the full dataset, not from a previously filtered one.
func Filter(d *Dataset, minKarma int) *Dataset {
	out := &Dataset{}

	keep := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.Attributes.Karma >= minKarma {
			keep[n.Key] = true
			out.Nodes = append(out.Nodes, n)
		}
	}

	for _, e := range d.Edges {
		if keep[e.Source] && keep[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}

	out.Stats = RecomputeStats(out)
	return out
}
