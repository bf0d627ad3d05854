// Package memstore implements the in-memory cache store: a lock-guarded entry
// map with per-entry TTLs, lazy eviction on read, hit/miss accounting, and
// duplicate-computation suppression keyed by cache key.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-function-cache/cache"
)

// entry holds a cached value and its bookkeeping. A zero expiresAt means the
// entry never expires.
type entry struct {
	value     any
	createdAt time.Time
	expiresAt time.Time
}

// expired reports whether the entry is past its TTL at the given instant.
func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Store is the in-memory implementation of cache.Store. A single mutex guards
// the entry map and the counters so Stats snapshots are always consistent.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	hits     uint64
	misses   uint64
	inflight map[string]struct{}

	group singleflight.Group

	resetStatsOnClear bool
	logger            *zap.Logger
	now               func() time.Time

	sweepStop chan struct{}
	closeOnce sync.Once
}

var _ cache.Store = (*Store)(nil)

// New creates a Store from the given configuration. A nil logger disables
// logging. When cfg.SweepInterval is positive a background sweep removes
// expired entries eagerly; behavior is otherwise identical to lazy eviction.
func New(cfg cache.Config, logger *zap.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		entries:           make(map[string]entry),
		inflight:          make(map[string]struct{}),
		resetStatsOnClear: cfg.ResetStatsOnClear,
		logger:            logger,
		now:               time.Now,
		sweepStop:         make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		go s.sweepLoop(cfg.SweepInterval)
	}

	return s, nil
}

// Get implements cache.Store.Get. Expired entries are evicted and counted as
// misses.
func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	if e.expired(s.now()) {
		delete(s.entries, key)
		s.misses++
		s.logger.Debug("evicted expired entry", zap.String("key", key))
		return nil, false
	}

	s.hits++
	return e.value, true
}

// Set implements cache.Store.Set. The TTL is validated before any mutation.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	expiresAt, err := s.expiryFor(ttl)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		createdAt: s.now(),
		expiresAt: expiresAt,
	}
	return nil
}

// expiryFor translates a TTL into an absolute expiry. NoExpiration maps to
// the zero time; zero and other negative durations are invalid.
func (s *Store) expiryFor(ttl time.Duration) (time.Time, error) {
	switch {
	case ttl == cache.NoExpiration:
		return time.Time{}, nil
	case ttl > 0:
		return s.now().Add(ttl), nil
	default:
		return time.Time{}, cache.ErrInvalidTTL
	}
}

// Delete implements cache.Store.Delete.
func (s *Store) Delete(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Clear implements cache.Store.Clear. In-flight computations are forgotten so
// later callers recompute; callers already attached still receive the original
// outcome. Counters survive unless the store was configured to reset them.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)
	s.entries = make(map[string]entry)
	for key := range s.inflight {
		s.group.Forget(key)
	}
	if s.resetStatsOnClear {
		s.hits = 0
		s.misses = 0
	}
	s.logger.Info("cache cleared", zap.Int("removed", removed))
}

// ResetStats implements cache.Store.ResetStats.
func (s *Store) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits = 0
	s.misses = 0
}

// Keys implements cache.Store.Keys. Expired entries encountered during the
// scan are pruned.
func (s *Store) Keys(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Stats implements cache.Store.Stats. The snapshot is taken under the lock so
// no counter update is ever observed half-applied.
func (s *Store) Stats(ctx context.Context) cache.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	return cache.Stats{
		Hits:    s.hits,
		Misses:  s.misses,
		Entries: len(s.entries),
	}
}

// pruneLocked removes expired entries. Callers must hold s.mu.
func (s *Store) pruneLocked() {
	now := s.now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

// sweepLoop periodically prunes expired entries until Close is called.
func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			before := len(s.entries)
			s.pruneLocked()
			swept := before - len(s.entries)
			s.mu.Unlock()
			if swept > 0 {
				s.logger.Debug("sweep removed expired entries", zap.Int("count", swept))
			}
		case <-s.sweepStop:
			return
		}
	}
}

// Close stops the background sweep, if any. The store remains usable.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.sweepStop)
	})
	return nil
}
