package highlight

import "github.com/lobstergraph/lobstergraph/pkg/scene"

// ===== Cascade Animation =====

// The cascade pulses each depth stage of a highlighted subtree outward
// from its root. Every scheduled step carries the generation it was started
// under and no-ops once a newer mode entry or reset advances the counter,
// so a stale cascade can never write attributes after a mode switch.

func (e *Engine) startCascadeLocked(depth map[string]int, maxDepth int) {
	gen := e.gen
	byDepth := make([][]string, maxDepth+1)
	for id, d := range depth {
		byDepth[d] = append(byDepth[d], id)
	}
	e.sched.After(0, func() { e.runStage(gen, byDepth, 0) })
}

func (e *Engine) runStage(gen int, byDepth [][]string, stage int) {
	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return
	}

	// Remember the pre-pulse size of each node so the shrink step restores
	// the descendant-mode styling, not the baseline.
	restore := make(map[string]float64, len(byDepth[stage]))
	for _, id := range byDepth[stage] {
		cur := toFloat(attrOr(e.scene, id, scene.AttrSize, 0), 0)
		restore[id] = cur
		e.scene.SetNodeAttr(id, scene.AttrSize, cur*e.opts.CascadeGrow)
	}
	e.scene.Refresh()

	e.sched.After(e.opts.CascadeHold, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.gen != gen {
			return
		}
		for id, size := range restore {
			e.scene.SetNodeAttr(id, scene.AttrSize, size)
		}
		e.scene.Refresh()
	})
	if stage+1 < len(byDepth) {
		e.sched.After(e.opts.CascadeStep, func() { e.runStage(gen, byDepth, stage+1) })
	}
	e.mu.Unlock()
}
