package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	started   []string
	completed []string
}

func (h *recordingPipelineHooks) OnStageStart(_ context.Context, stage string, _ int) {
	h.started = append(h.started, stage)
}

func (h *recordingPipelineHooks) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	h.completed = append(h.completed, stage)
}

type recordingCacheHooks struct {
	hits, misses, sets int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// Must not panic.
	Pipeline().OnStageStart(context.Background(), StageLoad, 10)
	Pipeline().OnStageComplete(context.Background(), StageLoad, 10, time.Second, nil)
	Cache().OnCacheHit(context.Background(), "dataset")
}

func TestSetPipelineHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingPipelineHooks{}
	SetPipelineHooks(rec)

	Pipeline().OnStageStart(context.Background(), StageLayout, 5)
	Pipeline().OnStageComplete(context.Background(), StageLayout, 5, time.Millisecond, nil)

	if len(rec.started) != 1 || rec.started[0] != StageLayout {
		t.Errorf("started = %v, want [%s]", rec.started, StageLayout)
	}
	if len(rec.completed) != 1 {
		t.Errorf("completed = %v, want one entry", rec.completed)
	}
}

func TestSetCacheHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	Cache().OnCacheMiss(context.Background(), "layout")
	Cache().OnCacheSet(context.Background(), "layout", 128)
	Cache().OnCacheHit(context.Background(), "layout")

	if rec.hits != 1 || rec.misses != 1 || rec.sets != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", rec.hits, rec.misses, rec.sets)
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingPipelineHooks{}
	SetPipelineHooks(rec)
	SetPipelineHooks(nil)

	Pipeline().OnStageStart(context.Background(), StageIndex, 1)
	if len(rec.started) != 1 {
		t.Error("nil registration should not replace hooks")
	}
}
