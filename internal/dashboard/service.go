package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// StatsStore is the aggregate source. *Repository satisfies it.
type StatsStore interface {
	Collect(ctx context.Context, now time.Time) (Stats, error)
}

// Service caches the dashboard aggregate for a short TTL. Concurrent cache
// misses collapse into a single Collect via singleflight.
type Service struct {
	store StatsStore
	ttl   time.Duration

	mu        sync.RWMutex
	cached    Stats
	expiresAt time.Time

	group singleflight.Group
	now   func() time.Time
}

func NewService(store StatsStore, ttl time.Duration) *Service {
	return &Service{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now()

	s.mu.RLock()
	if now.Before(s.expiresAt) {
		cached := s.cached
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	value, err, _ := s.group.Do("stats", func() (any, error) {
		// Another caller may have refreshed while we waited for the flight.
		s.mu.RLock()
		if s.now().Before(s.expiresAt) {
			cached := s.cached
			s.mu.RUnlock()
			return cached, nil
		}
		s.mu.RUnlock()

		stats, err := s.store.Collect(ctx, s.now())
		if err != nil {
			return Stats{}, err
		}

		s.mu.Lock()
		s.cached = stats
		s.expiresAt = s.now().Add(s.ttl)
		s.mu.Unlock()

		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}

	return value.(Stats), nil
}

// Invalidate drops the cached aggregate. The next Stats call recollects.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}
