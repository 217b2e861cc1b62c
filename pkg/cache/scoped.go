package cache

// ScopedKeyer wraps a Keyer with a prefix so multiple deployments or
// datasets can share one cache backend without key collisions.
//
// Example usage:
//
//	// Per-instance keys when several graphs share one Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lobsters:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DatasetKey generates a prefixed key for filtered dataset caching.
func (k *ScopedKeyer) DatasetKey(source string, minKarma int) string {
	return k.prefix + k.inner.DatasetKey(source, minKarma)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(datasetHash string, opts any) string {
	return k.prefix + k.inner.LayoutKey(datasetHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
