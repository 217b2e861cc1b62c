package layout

import (
	"hash/fnv"
	"math/rand/v2"
)

// hashSeed maps a username to a stable 64-bit seed using FNV-1a. FNV is fully
// specified, so the same username yields the same seed on every platform and
// across runs.
func hashSeed(username string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(username))
	return h.Sum64()
}

// jitterSource returns a deterministic random source for one node. PCG with
// both streams derived from the username hash gives a reproducible sequence
// without any shared state between nodes.
func jitterSource(username string) *rand.Rand {
	seed := hashSeed(username)
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// hash01 maps a username to a stable value in [0,1), used for orphan ring
// placement.
func hash01(username string) float64 {
	return float64(hashSeed(username)>>11) / (1 << 53)
}
