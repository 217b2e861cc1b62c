package graphdata

import (
	"slices"
	"strings"
)

// DefaultFounder is the username of the community founder. When a node with
// this key exists it is used as the layout root; otherwise the first node
// without an inviter is used.
const DefaultFounder = "jcs"

// =============================================================================
// Dataset - Invitation Graph Serialization
// =============================================================================

// Dataset is the canonical serialization format for the invitation graph.
// It mirrors the exported graph.json document and is used for API responses,
// storage, and caching.
type Dataset struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
	Stats Stats  `json:"stats" bson:"stats"`
}

// Node is a single user in the invitation graph, keyed by username.
type Node struct {
	Key        string     `json:"key" bson:"key"`
	Attributes Attributes `json:"attributes" bson:"attributes"`
}

// Attributes carries the per-user input fields. Karma may be zero and
// InvitedBy is empty only for the founder and for orphaned records.
type Attributes struct {
	Label     string  `json:"label,omitempty" bson:"label,omitempty"`
	Karma     int     `json:"karma" bson:"karma"`
	CreatedAt string  `json:"created_at,omitempty" bson:"created_at,omitempty"`
	About     string  `json:"about,omitempty" bson:"about,omitempty"`
	GitHub    string  `json:"github,omitempty" bson:"github,omitempty"`
	Twitter   string  `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Website   string  `json:"website,omitempty" bson:"website,omitempty"`
	InvitedBy string  `json:"invited_by,omitempty" bson:"invited_by,omitempty"`
	Size      float64 `json:"size,omitempty" bson:"size,omitempty"`
}

// Edge is a directed invitation: Source invited Target.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// Stats summarizes the dataset. It is recomputed whenever a dataset is built
// or filtered so the numbers always describe the nodes actually present.
type Stats struct {
	TotalUsers  int           `json:"total_users" bson:"total_users"`
	TotalEdges  int           `json:"total_edges" bson:"total_edges"`
	MaxKarma    int           `json:"max_karma" bson:"max_karma"`
	AvgKarma    float64       `json:"avg_karma" bson:"avg_karma"`
	TopInviters []InviterRank `json:"top_inviters" bson:"top_inviters"`
}

// InviterRank is one entry of the top-inviter leaderboard.
type InviterRank struct {
	Username string `json:"username" bson:"username"`
	Count    int    `json:"count" bson:"count"`
}

// =============================================================================
// Enrichment - Optional Profile Lookup
// =============================================================================

// Enrichment maps usernames to externally sourced profile data.
// A missing entry simply means no enrichment is available for that user.
type Enrichment map[string]Profile

// Profile holds enrichment fields for one user. All fields are optional.
type Profile struct {
	FullName  string   `json:"full_name,omitempty" bson:"full_name,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	GitHub    string   `json:"github,omitempty" bson:"github,omitempty"`
	Twitter   string   `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Company   string   `json:"company,omitempty" bson:"company,omitempty"`
	Title     string   `json:"title,omitempty" bson:"title,omitempty"`
	Location  string   `json:"location,omitempty" bson:"location,omitempty"`
	Bio       string   `json:"bio,omitempty" bson:"bio,omitempty"`
	OtherURLs []string `json:"other_urls,omitempty" bson:"other_urls,omitempty"`
}

// =============================================================================
// Accessors
// =============================================================================

// Node returns the node with the given key and true, or a zero Node and false.
func (d *Dataset) Node(key string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.Key == key {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given key exists.
func (d *Dataset) HasNode(key string) bool {
	_, ok := d.Node(key)
	return ok
}

// Keys returns all node keys in sorted order.
func (d *Dataset) Keys() []string {
	keys := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		keys[i] = n.Key
	}
	slices.Sort(keys)
	return keys
}

// SearchKeys returns node keys containing the query as a case-insensitive
// substring, in sorted order. An empty query matches nothing.
func (d *Dataset) SearchKeys(query string) []string {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var matches []string
	for _, n := range d.Nodes {
		if strings.Contains(strings.ToLower(n.Key), q) {
			matches = append(matches, n.Key)
		}
	}
	slices.Sort(matches)
	return matches
}

// DisplayLabel returns the node label if set, otherwise the key.
func (n *Node) DisplayLabel() string {
	if n.Attributes.Label != "" {
		return n.Attributes.Label
	}
	return n.Key
}
