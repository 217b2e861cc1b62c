// Package graphdata defines the invitation-graph data contract and its
// ingestion paths.
//
// The canonical interchange format is the graph.json document produced by the
// scraper export step:
//
//	{
//	  "nodes": [{"key": "username", "attributes": {"karma": 512, "invited_by": "jcs", ...}}],
//	  "edges": [{"source": "jcs", "target": "username"}],
//	  "stats": {"total_users": 19000, "max_karma": 48000, "top_inviters": [...]}
//	}
//
// An optional enriched.json document maps usernames to profile data gathered
// from external sources. Its absence is never an error.
//
// Two ingestion paths produce the same Dataset:
//   - JSON: ReadDatasetFile / ReadDataset on an exported graph.json
//   - SQLite: OpenSQLite on the scraper's users.db (users + enrichment tables)
//
// Datasets are immutable once loaded. Applying a minimum-karma filter with
// [Filter] produces a new Dataset; it never mutates the source.
package graphdata
