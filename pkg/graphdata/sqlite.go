package graphdata

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

// SQLiteSource reads datasets from the scraper's users.db. The schema has a
// users table (username, karma, about, created_at, invited_by_username,
// github_username, twitter_username, website) and an optional enrichment
// table keyed by username.
type SQLiteSource struct {
	conn *sql.DB
	Path string
}

// OpenSQLite opens the scraper database read-only.
func OpenSQLite(path string) (*SQLiteSource, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA query_only=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting read-only mode: %w", err)
	}
	return &SQLiteSource{conn: conn, Path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	return s.conn.Close()
}

// Dataset loads all users and invitation edges and recomputes stats, producing
// the same Dataset an exported graph.json would.
func (s *SQLiteSource) Dataset() (*Dataset, error) {
	rows, err := s.conn.Query(`
		SELECT username, karma, about, created_at, invited_by_username,
		       github_username, twitter_username, website
		FROM users`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	d := &Dataset{}
	for rows.Next() {
		var (
			username  string
			karma     sql.NullInt64
			about     sql.NullString
			createdAt sql.NullString
			invitedBy sql.NullString
			github    sql.NullString
			twitter   sql.NullString
			website   sql.NullString
		)
		if err := rows.Scan(&username, &karma, &about, &createdAt, &invitedBy, &github, &twitter, &website); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		n := Node{
			Key: username,
			Attributes: Attributes{
				Label:     username,
				Karma:     int(karma.Int64),
				About:     about.String,
				CreatedAt: createdAt.String,
				InvitedBy: invitedBy.String,
				GitHub:    github.String,
				Twitter:   twitter.String,
				Website:   website.String,
				Size:      NodeSize(int(karma.Int64)),
			},
		}
		d.Nodes = append(d.Nodes, n)

		if invitedBy.Valid && invitedBy.String != "" {
			d.Edges = append(d.Edges, Edge{Source: invitedBy.String, Target: username})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	// Invitation edges derived from invited_by may reference users that were
	// never scraped. Those are dropped here, same as in the JSON export.
	known := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		known[n.Key] = true
	}
	kept := d.Edges[:0]
	for _, e := range d.Edges {
		if known[e.Source] && known[e.Target] {
			kept = append(kept, e)
		}
	}
	d.Edges = kept

	d.Stats = RecomputeStats(d)
	return d, nil
}

// Enrichment loads the enrichment table. A missing table yields an empty map.
func (s *SQLiteSource) Enrichment() (Enrichment, error) {
	rows, err := s.conn.Query(`
		SELECT username, full_name, linkedin_url, github_url, twitter_url,
		       company, title, location, bio, other_urls
		FROM enrichment`)
	if err != nil {
		// The enrichment table is optional.
		return Enrichment{}, nil
	}
	defer rows.Close()

	e := Enrichment{}
	for rows.Next() {
		var (
			username  string
			fullName  sql.NullString
			linkedin  sql.NullString
			github    sql.NullString
			twitter   sql.NullString
			company   sql.NullString
			title     sql.NullString
			location  sql.NullString
			bio       sql.NullString
			otherURLs sql.NullString
		)
		if err := rows.Scan(&username, &fullName, &linkedin, &github, &twitter, &company, &title, &location, &bio, &otherURLs); err != nil {
			return nil, fmt.Errorf("scan enrichment: %w", err)
		}

		p := Profile{
			FullName: fullName.String,
			LinkedIn: linkedin.String,
			GitHub:   github.String,
			Twitter:  twitter.String,
			Company:  company.String,
			Title:    title.String,
			Bio:      bio.String,
			Location: location.String,
		}
		if otherURLs.Valid && otherURLs.String != "" {
			// other_urls is stored as a JSON array; malformed rows keep the
			// rest of the profile.
			_ = json.Unmarshal([]byte(otherURLs.String), &p.OtherURLs)
		}
		e[username] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrichment: %w", err)
	}
	return e, nil
}

// NodeSize computes the karma-scaled display size used by the export step:
// 3 + karma^0.3, clamped to [3, 30].
func NodeSize(karma int) float64 {
	if karma < 1 {
		karma = 1
	}
	size := 3 + math.Pow(float64(karma), 0.3)
	return math.Max(3, math.Min(30, size))
}
