package memstore

import (
	"context"
	"time"

	"github.com/goliatone/go-function-cache/cache"
)

// GetOrCompute implements cache.Store.GetOrCompute.
//
// A live entry is returned immediately as a hit. Otherwise the caller either
// attaches to the in-flight computation for the key or starts one; the
// singleflight group guarantees at most one concurrent invocation of compute
// per key. The computation runs on the initiating caller's context: if that
// context is cancelled, the resulting error reaches every attached caller and
// the pending record is dropped so a later call can retry. A waiter whose own
// context is cancelled detaches alone with ctx.Err().
func (s *Store) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute cache.ComputeFn) (any, error) {
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	// Reject a bad TTL before running the computation at all.
	if _, err := s.expiryFor(ttl); err != nil {
		return nil, err
	}

	ch := s.group.DoChan(key, func() (any, error) {
		s.trackFlight(key)
		defer s.untrackFlight(key)

		// Another caller may have settled and stored between our miss and
		// this flight starting; honor that entry instead of recomputing.
		if value, ok := s.peek(key); ok {
			return value, nil
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.Set(ctx, key, value, ttl); err != nil {
			return nil, err
		}
		return value, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// peek returns a live value without touching the hit/miss counters. The
// caller already paid a miss for this lookup.
func (s *Store) peek(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		return nil, false
	}
	return e.value, true
}

func (s *Store) trackFlight(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight[key] = struct{}{}
}

func (s *Store) untrackFlight(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
