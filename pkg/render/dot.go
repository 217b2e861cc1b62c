// Package render exports the computed radial layout as static artifacts.
//
// The interactive surface lives in the browser; this package serves the
// offline path: a Graphviz DOT document with pinned positions, and an SVG
// rendered from it. Positions come straight from the layout engine, so the
// exported picture matches what the canvas shows.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/layout"
	"github.com/lobstergraph/lobstergraph/pkg/pipeline"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

// Options configures DOT export.
type Options struct {
	// MaxDepth limits export to nodes within this distance from the root.
	// Zero means no depth limit.
	MaxDepth int

	// MaxNodes caps the number of exported nodes. Zero means no cap.
	// Nodes are kept in index key order after the depth cut.
	MaxNodes int

	// Labels includes username labels on nodes.
	Labels bool
}

// dotScale converts layout coordinates to Graphviz points. The canonical
// extent is thousands of units wide; Graphviz works better around hundreds.
const dotScale = 0.1

// ToDOT converts the laid-out invitation tree to Graphviz DOT with pinned
// node positions. The resulting document is meant for the neato engine with
// positions taken as-is.
func ToDOT(d *graphdata.Dataset, idx *tree.Index, lay *layout.Result, opts Options) string {
	keep := selectNodes(idx, opts)

	var buf bytes.Buffer
	buf.WriteString("digraph invites {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"#1a1a2e\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, penwidth=0];\n")
	buf.WriteString("  edge [color=\"#55556a\", arrowsize=0.3];\n")
	buf.WriteString("\n")

	for i := range d.Nodes {
		n := &d.Nodes[i]
		if !keep[n.Key] {
			continue
		}
		pos := lay.Positions[n.Key]
		size := n.Attributes.Size
		if size <= 0 {
			size = graphdata.NodeSize(n.Attributes.Karma)
		}
		attrs := []string{
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", pos.X*dotScale, pos.Y*dotScale),
			fmt.Sprintf("width=%.3f", size*dotScale),
			fmt.Sprintf("fillcolor=%q", pipeline.KarmaTierColor(n.Attributes.Karma)),
		}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("label=%q", n.DisplayLabel()), "fontcolor=white", "fontsize=8")
		} else {
			attrs = append(attrs, "label=\"\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Key, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if keep[e.Source] && keep[e.Target] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// selectNodes applies the depth and count caps against the tree index.
func selectNodes(idx *tree.Index, opts Options) map[string]bool {
	keep := make(map[string]bool)
	count := 0
	for _, id := range idx.Keys() {
		if opts.MaxDepth > 0 {
			depth, ok := idx.Depth(id)
			if !ok || depth > opts.MaxDepth {
				continue
			}
		}
		if opts.MaxNodes > 0 && count >= opts.MaxNodes {
			break
		}
		keep[id] = true
		count++
	}
	return keep
}
