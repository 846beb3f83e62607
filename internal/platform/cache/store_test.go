package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStoreGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Fatalf("unexpected hit for missing key")
	}

	store.Set(ctx, "k", "v")
	got, ok := store.Get(ctx, "k")
	if !ok || got != "v" {
		t.Fatalf("unexpected value: %v ok=%t", got, ok)
	}

	store.Delete(ctx, "k")
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("value survived delete")
	}
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(10 * time.Millisecond)

	store.Set(ctx, "k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("value survived its ttl")
	}
}

func TestStoreDeletePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)
	store.Set(ctx, "reference:players", 1)
	store.Set(ctx, "reference:sports", 2)
	store.Set(ctx, "leaderboard:padel", 3)

	store.DeletePrefix(ctx, "reference:")

	if _, ok := store.Get(ctx, "reference:players"); ok {
		t.Fatalf("prefixed key survived")
	}
	if _, ok := store.Get(ctx, "leaderboard:padel"); !ok {
		t.Fatalf("unrelated key was deleted")
	}
}

func TestStoreGetOrLoad(t *testing.T) {
	t.Parallel()

	t.Run("caches the loaded value", func(t *testing.T) {
		ctx := context.Background()
		store := NewStore(time.Minute)

		var loads atomic.Int32
		loader := func(context.Context) (any, error) {
			loads.Add(1)
			return "v", nil
		}

		for i := 0; i < 3; i++ {
			got, err := store.GetOrLoad(ctx, "k", loader)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if got != "v" {
				t.Fatalf("unexpected value: %v", got)
			}
		}
		if got := loads.Load(); got != 1 {
			t.Fatalf("unexpected load count: %d", got)
		}
	})

	t.Run("collapses concurrent misses", func(t *testing.T) {
		ctx := context.Background()
		store := NewStore(time.Minute)

		var loads atomic.Int32
		loader := func(context.Context) (any, error) {
			loads.Add(1)
			time.Sleep(10 * time.Millisecond)
			return "v", nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.GetOrLoad(ctx, "k", loader); err != nil {
					t.Errorf("load failed: %v", err)
				}
			}()
		}
		wg.Wait()

		if got := loads.Load(); got != 1 {
			t.Fatalf("unexpected load count: %d", got)
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		ctx := context.Background()
		store := NewStore(time.Minute)

		var loads atomic.Int32
		loader := func(context.Context) (any, error) {
			if loads.Add(1) == 1 {
				return nil, errors.New("boom")
			}
			return "v", nil
		}

		if _, err := store.GetOrLoad(ctx, "k", loader); err == nil {
			t.Fatalf("expected error")
		}
		got, err := store.GetOrLoad(ctx, "k", loader)
		if err != nil || got != "v" {
			t.Fatalf("unexpected retry result: %v %v", got, err)
		}
	})

	t.Run("nil loader is rejected", func(t *testing.T) {
		if _, err := NewStore(time.Minute).GetOrLoad(context.Background(), "k", nil); err == nil {
			t.Fatalf("expected error")
		}
	})
}
