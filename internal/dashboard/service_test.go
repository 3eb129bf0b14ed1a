package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingStore struct {
	calls atomic.Int32
	err   error
}

func (c *countingStore) Collect(_ context.Context, now time.Time) (Stats, error) {
	c.calls.Add(1)
	if c.err != nil {
		return Stats{}, c.err
	}
	return Stats{TotalLeads: 42, GeneratedAt: now}, nil
}

func newCachedService(store StatsStore, ttl time.Duration, clock *time.Time) *Service {
	svc := NewService(store, ttl)
	svc.now = func() time.Time { return *clock }
	return svc
}

func TestStats_CachesWithinTTL(t *testing.T) {
	store := &countingStore{}
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newCachedService(store, 30*time.Second, &clock)

	for i := 0; i < 3; i++ {
		stats, err := svc.Stats(context.Background())
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if stats.TotalLeads != 42 {
			t.Fatalf("totalLeads %d", stats.TotalLeads)
		}
	}

	if got := store.calls.Load(); got != 1 {
		t.Fatalf("expected 1 collect within TTL, got %d", got)
	}
}

func TestStats_RefreshesAfterTTL(t *testing.T) {
	store := &countingStore{}
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newCachedService(store, 30*time.Second, &clock)

	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	clock = clock.Add(31 * time.Second)
	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if got := store.calls.Load(); got != 2 {
		t.Fatalf("expected refresh after TTL, got %d collects", got)
	}
}

func TestStats_InvalidateDropsCache(t *testing.T) {
	store := &countingStore{}
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newCachedService(store, time.Hour, &clock)

	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	svc.Invalidate()
	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if got := store.calls.Load(); got != 2 {
		t.Fatalf("expected recollect after invalidate, got %d collects", got)
	}
}

func TestStats_ErrorIsNotCached(t *testing.T) {
	store := &countingStore{err: errors.New("db down")}
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newCachedService(store, time.Hour, &clock)

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	store.err = nil
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats after recovery: %v", err)
	}
	if stats.TotalLeads != 42 {
		t.Fatalf("totalLeads %d", stats.TotalLeads)
	}
}

func TestStats_ConcurrentMissesCollapse(t *testing.T) {
	store := &countingStore{}
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newCachedService(store, time.Hour, &clock)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Stats(context.Background()); err != nil {
				t.Errorf("Stats: %v", err)
			}
		}()
	}
	wg.Wait()

	// All misses share one flight; late goroutines may still see the value
	// already cached.
	if got := store.calls.Load(); got != 1 {
		t.Fatalf("expected a single collapsed collect, got %d", got)
	}
}
