package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_DeduplicatesConcurrentMisses(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "standings", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	results := make(chan any, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(context.Background(), "standings:2021", loader)
			if err != nil {
				results <- err
				return
			}
			results <- v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		if v != "standings" {
			t.Fatalf("unexpected value: got=%v want=standings", v)
		}
	}
	if got := calls.Load(); got < 1 || got > 2 {
		t.Fatalf("loader called %d times, want it shared across callers", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("db down")
		}
		return 7, nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err == nil {
		t.Fatalf("expected first load to fail")
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Fatalf("unexpected value: got=%v want=7", v)
	}
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2021, 12, 16, 20, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "session:a", 1)
	store.SetTTL(context.Background(), "session:b", 2, 0)

	now = now.Add(2 * time.Hour)
	if _, ok := store.Get(context.Background(), "session:a"); ok {
		t.Fatalf("expected session:a to expire")
	}
	if _, ok := store.Get(context.Background(), "session:b"); !ok {
		t.Fatalf("expected session:b without ttl to survive")
	}
}

func TestStore_DeletePrefixAndPurge(t *testing.T) {
	t.Parallel()

	now := time.Date(2021, 12, 16, 20, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	store.Set(ctx, "standings:2021", 1)
	store.Set(ctx, "standings:2022", 2)
	store.SetTTL(ctx, "session:x", 3, time.Hour)

	store.DeletePrefix(ctx, "standings:")
	if _, ok := store.Get(ctx, "standings:2021"); ok {
		t.Fatalf("expected prefix delete to drop standings:2021")
	}

	store.Set(ctx, "stale", 4)
	now = now.Add(10 * time.Minute)
	if removed := store.Purge(); removed != 1 {
		t.Fatalf("unexpected purge count: got=%d want=1", removed)
	}
	if _, ok := store.Get(ctx, "session:x"); !ok {
		t.Fatalf("expected session:x to survive purge")
	}
}

func TestStore_LoadStartedBeforeInvalidationIsNotStored(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan any, 1)
	go func() {
		v, _ := store.GetOrLoad(ctx, "standings:2024", func(context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
		done <- v
	}()

	<-started
	store.DeletePrefix(ctx, "standings:")
	close(release)
	if v := <-done; v != "stale" {
		t.Fatalf("caller should still get its own load, got %v", v)
	}

	if _, ok := store.Get(ctx, "standings:2024"); ok {
		t.Fatalf("expected stale load to be dropped after invalidation")
	}
	v, err := store.GetOrLoad(ctx, "standings:2024", func(context.Context) (any, error) { return "fresh", nil })
	if err != nil || v != "fresh" {
		t.Fatalf("unexpected reload: %v err=%v", v, err)
	}
}
