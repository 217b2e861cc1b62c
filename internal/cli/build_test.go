package cli

import (
	"context"
	"testing"

	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/layout"
	"github.com/lobstergraph/lobstergraph/pkg/pipeline"
	"github.com/lobstergraph/lobstergraph/pkg/store"
)

type fakeSnapshots struct {
	stored map[string]store.Snapshot
	saves  int
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{stored: map[string]store.Snapshot{}}
}

func (f *fakeSnapshots) Load(ctx context.Context, datasetHash string) (*store.Snapshot, error) {
	if snap, ok := f.stored[datasetHash]; ok {
		return &snap, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeSnapshots) Save(ctx context.Context, snap store.Snapshot) error {
	f.stored[snap.DatasetHash] = snap
	f.saves++
	return nil
}

func TestWriteSnapshotSkipsStoredHash(t *testing.T) {
	st := newFakeSnapshots()
	res := &pipeline.Result{
		Dataset:     &graphdata.Dataset{Stats: graphdata.Stats{TotalUsers: 5}},
		DatasetHash: "abc123",
		Layout:      &layout.Result{},
	}

	stored, err := writeSnapshot(context.Background(), st, res)
	if err != nil {
		t.Fatalf("writeSnapshot() error = %v", err)
	}
	if !stored {
		t.Error("first write not stored")
	}
	if got := st.stored["abc123"].Stats.TotalUsers; got != 5 {
		t.Errorf("stored stats users = %d, want 5", got)
	}

	// Rebuilding the same export writes nothing new.
	stored, err = writeSnapshot(context.Background(), st, res)
	if err != nil {
		t.Fatalf("writeSnapshot() second call error = %v", err)
	}
	if stored {
		t.Error("unchanged hash reported as stored")
	}
	if st.saves != 1 {
		t.Errorf("saves = %d, want 1", st.saves)
	}
}
