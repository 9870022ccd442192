package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/insight-service/internal/insight"
)

func sampleResult() *insight.InsightResult {
	return &insight.InsightResult{
		ID:        "r1",
		Insights:  []string{"Save more", "Spend less"},
		Tier:      insight.TierExternal,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	if err := store.Put(ctx, "fp1", sampleResult()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "fp1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.ID != "r1" || got.Tier != insight.TierExternal {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryStore_MissingKey(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)

	if _, ok, err := store.Get(context.Background(), "nope"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want absent without error", ok, err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }

	if err := store.Put(ctx, "fp1", sampleResult()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Just inside the TTL.
	now = base.Add(30*time.Minute - time.Second)
	if _, ok, _ := store.Get(ctx, "fp1"); !ok {
		t.Error("entry inside TTL should be served")
	}

	// At the TTL boundary the entry is expired and lazily dropped.
	now = base.Add(30 * time.Minute)
	if _, ok, _ := store.Get(ctx, "fp1"); ok {
		t.Error("entry at TTL age should be treated as absent")
	}
	if store.Len() != 0 {
		t.Errorf("expired entry should have been dropped, Len = %d", store.Len())
	}
}

func TestMemoryStore_Invalidate(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	if err := store.Put(ctx, "fp1", sampleResult()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Invalidate(ctx, "fp1"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "fp1"); ok {
		t.Error("invalidated entry should be absent")
	}

	// Invalidating a missing key is not an error.
	if err := store.Invalidate(ctx, "never-stored"); err != nil {
		t.Errorf("Invalidate(missing) = %v, want nil", err)
	}
}

func TestMemoryStore_CopiesOnRead(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	if err := store.Put(ctx, "fp1", sampleResult()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	first, _, _ := store.Get(ctx, "fp1")
	first.Tier = insight.TierLocal
	first.IsFallback = true

	second, _, _ := store.Get(ctx, "fp1")
	if second.Tier != insight.TierExternal || second.IsFallback {
		t.Error("mutating a returned result must not affect the cached value")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = store.Put(ctx, "shared", sampleResult())
				_, _, _ = store.Get(ctx, "shared")
				_ = store.Invalidate(ctx, "shared")
			}
		}()
	}
	wg.Wait()
}
