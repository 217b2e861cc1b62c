// Package lod decides per-node visibility from the camera zoom level.
//
// A monotone threshold table maps zoom ranges to minimum karma and minimum
// invite counts. When the camera zooms out, low-signal nodes are hidden so
// the remaining labels stay readable; a node survives when it clears either
// minimum. Recomputation is debounced against the zoom event stream and
// suppressed entirely while a highlight mode owns the visual state.
package lod
