package graphdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// =============================================================================
// Dataset Serialization API
// =============================================================================

// ReadDataset decodes a graph.json document from r.
// Node keys must be unique; duplicates are rejected.
func ReadDataset(r io.Reader) (*Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	seen := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.Key == "" {
			return nil, fmt.Errorf("node with empty key")
		}
		if seen[n.Key] {
			return nil, fmt.Errorf("duplicate node key %q", n.Key)
		}
		seen[n.Key] = true
	}

	return &d, nil
}

// ReadDatasetFile reads a graph.json file and returns the decoded Dataset.
func ReadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDataset(f)
}

// MarshalDataset converts a Dataset to JSON bytes.
// Nodes and edges are sorted for deterministic output.
func MarshalDataset(d *Dataset) ([]byte, error) {
	out := *d
	out.Nodes = append([]Node(nil), d.Nodes...)
	out.Edges = append([]Edge(nil), d.Edges...)
	sort.Slice(out.Nodes, func(i, j int) bool { return out.Nodes[i].Key < out.Nodes[j].Key })
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].Source != out.Edges[j].Source {
			return out.Edges[i].Source < out.Edges[j].Source
		}
		return out.Edges[i].Target < out.Edges[j].Target
	})

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDatasetFile writes a Dataset to a JSON file with 0644 permissions.
func WriteDatasetFile(d *Dataset, path string) error {
	data, err := MarshalDataset(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// =============================================================================
// Enrichment Serialization API
// =============================================================================

// ReadEnrichment decodes an enriched.json document from r.
func ReadEnrichment(r io.Reader) (Enrichment, error) {
	var e Enrichment
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return e, nil
}

// ReadEnrichmentFile reads an enriched.json file. A missing or unreadable
// file yields an empty Enrichment: enrichment is best-effort and its absence
// is never fatal.
func ReadEnrichmentFile(path string) Enrichment {
	f, err := os.Open(path)
	if err != nil {
		return Enrichment{}
	}
	defer f.Close()

	e, err := ReadEnrichment(f)
	if err != nil {
		return Enrichment{}
	}
	return e
}

// =============================================================================
// Stats
// =============================================================================

// topInviterLimit bounds the leaderboard length, matching the export step.
const topInviterLimit = 20

// RecomputeStats rebuilds the Stats block from the current nodes and edges.
func RecomputeStats(d *Dataset) Stats {
	s := Stats{
		TotalUsers: len(d.Nodes),
		TotalEdges: len(d.Edges),
	}

	var karmaSum int
	for _, n := range d.Nodes {
		karmaSum += n.Attributes.Karma
		if n.Attributes.Karma > s.MaxKarma {
			s.MaxKarma = n.Attributes.Karma
		}
	}
	if len(d.Nodes) > 0 {
		s.AvgKarma = float64(karmaSum) / float64(len(d.Nodes))
	}

	counts := make(map[string]int)
	for _, e := range d.Edges {
		counts[e.Source]++
	}
	for username, count := range counts {
		s.TopInviters = append(s.TopInviters, InviterRank{Username: username, Count: count})
	}
	sort.Slice(s.TopInviters, func(i, j int) bool {
		if s.TopInviters[i].Count != s.TopInviters[j].Count {
			return s.TopInviters[i].Count > s.TopInviters[j].Count
		}
		return s.TopInviters[i].Username < s.TopInviters[j].Username
	})
	if len(s.TopInviters) > topInviterLimit {
		s.TopInviters = s.TopInviters[:topInviterLimit]
	}

	return s
}
