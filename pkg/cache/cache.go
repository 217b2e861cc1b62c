// Package cache provides caching for expensive pipeline stages.
//
// The build pipeline caches two artifacts: the filtered dataset (keyed by
// source and karma filter) and the computed layout (keyed by dataset hash
// and layout options). Backends: file-based for CLI usage, Redis for the
// server, and a null cache for tests or disabled caching.
package cache

import (
	"context"
	"time"
)

// TTLs for the pipeline's cacheable artifacts. Datasets change when the
// scraper re-exports; layouts are pure functions of dataset and options and
// can live longer.
const (
	TTLDataset = 24 * time.Hour
	TTLLayout  = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (0 means no expiration).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the pipeline's cacheable artifacts.
type Keyer interface {
	// DatasetKey identifies a filtered dataset by its source and the
	// minimum-karma filter applied to it.
	DatasetKey(source string, minKarma int) string

	// LayoutKey identifies a computed layout by the hash of the dataset it
	// was computed from and the layout options used.
	LayoutKey(datasetHash string, opts any) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DatasetKey generates a key for filtered dataset caching.
func (k *DefaultKeyer) DatasetKey(source string, minKarma int) string {
	return hashKey("dataset", source, minKarma)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(datasetHash string, opts any) string {
	return hashKey("layout", datasetHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
