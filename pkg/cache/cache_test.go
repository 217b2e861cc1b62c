package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	key := "test:abc"
	if _, found, err := c.Get(ctx, key); err != nil || found {
		t.Fatalf("Get() before Set = found %v, err %v", found, err)
	}

	if err := c.Set(ctx, key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, found, err := c.Get(ctx, key)
	if err != nil || !found || string(data) != "payload" {
		t.Errorf("Get() = %q, %v, %v; want payload, true, nil", data, found, err)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := c.Get(ctx, key); found {
		t.Error("Get() after Delete found the entry")
	}
	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("repeat Delete() error = %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "ttl-key", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, found, _ := c.Get(ctx, "ttl-key"); found {
		t.Error("expired entry still found")
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, found, err := c.Get(ctx, "k"); found || err != nil {
		t.Errorf("Get() = found %v, err %v; want miss", found, err)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.DatasetKey("data/graph.json", 0)
	b := k.DatasetKey("data/graph.json", 50)
	if a == b {
		t.Error("different karma filters produced the same dataset key")
	}
	if a != k.DatasetKey("data/graph.json", 0) {
		t.Error("dataset key not deterministic")
	}

	type opts struct{ Band float64 }
	x := k.LayoutKey("abc", opts{Band: 140})
	y := k.LayoutKey("abc", opts{Band: 150})
	if x == y {
		t.Error("different layout options produced the same layout key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "lobsters:")

	got := scoped.DatasetKey("graph.json", 0)
	want := "lobsters:" + inner.DatasetKey("graph.json", 0)
	if got != want {
		t.Errorf("DatasetKey() = %q, want %q", got, want)
	}
}

func TestHashStable(t *testing.T) {
	a := Hash([]byte("same"))
	b := Hash([]byte("same"))
	if a != b {
		t.Error("Hash not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(a))
	}
}

func TestShortHash(t *testing.T) {
	full := Hash([]byte("sample"))
	if got := ShortHash(full); got != full[:12] {
		t.Errorf("ShortHash(full) = %q, want %q", got, full[:12])
	}
	if got := ShortHash(""); got != "" {
		t.Errorf("ShortHash(\"\") = %q, want empty", got)
	}
	if got := ShortHash("abc"); got != "abc" {
		t.Errorf("ShortHash(abc) = %q, want abc", got)
	}
}
