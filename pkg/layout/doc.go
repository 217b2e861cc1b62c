// Package layout computes radial coordinates for the invitation tree.
//
// Each node receives an angular sector proportional to its subtree size,
// recursively subdivided from the root's full circle. Within its depth band a
// node is pushed outward by an influence score blending karma, invite count,
// and subtree size, and pulled toward its parent's angle to keep edges short.
// A small deterministic jitter derived from the username breaks up the
// otherwise mechanical ring structure.
//
// The layout is a pure function of the tree index and options: computing it
// twice for the same input yields identical coordinates. This is a functional
// requirement (stable layouts across page loads), not an implementation
// detail, which is why jitter is seeded from a documented string hash rather
// than a global random source.
package layout
