package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a cache key of the form prefix:sha256(parts). The parts
// are JSON-encoded so option structs hash deterministically.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// ShortHash abbreviates a hash for log and status output. Hashes shorter
// than the abbreviation, including the empty string, pass through
// unchanged.
func ShortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

// Hash returns the SHA-256 of data as a 64-character hex string. The
// pipeline uses it both for cache file names and as the dataset hash that
// keys layout caching and Mongo snapshots.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
