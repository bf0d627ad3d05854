package cache

import (
	"context"
	"fmt"
	"time"
)

// NoExpiration is the TTL sentinel for entries that never expire. Any other
// non-positive TTL is rejected with ErrInvalidTTL before the store mutates.
const NoExpiration time.Duration = -1

// KeySerializer builds a cache key from an operation name + arbitrary call
// arguments. It is responsible for producing stable keys across calls, and it
// must fail with a KeyGenerationError rather than degrade to an unstable key.
type KeySerializer interface {
	SerializeKey(op string, args ...any) (string, error)
}

// NamedArgs carries name/value call arguments. The default serializer
// incorporates them sorted by name, so the caller's argument order never
// affects the resulting key.
type NamedArgs map[string]any

// ComputeFn is the function signature Store expects when computing a value
// that is missing from the cache.
type ComputeFn func(ctx context.Context) (any, error)

// FetchFn is the typed variant of ComputeFn used by the generic helpers.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Store exposes the caching operations used by the wrapper layer and the
// management surface. Implementations must be safe for concurrent use and
// must guarantee at most one in-flight computation per key.
type Store interface {
	// Get returns the live value for key. Expired entries are evicted and
	// reported as absent. Every call counts as a hit or a miss.
	Get(ctx context.Context, key string) (any, bool)

	// Set inserts or replaces the entry. Pass NoExpiration for entries that
	// never expire; any other non-positive ttl fails with ErrInvalidTTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes the entry if present and reports whether it existed.
	Delete(ctx context.Context, key string) bool

	// Clear removes all entries and pending-operation bookkeeping. Cumulative
	// hit/miss counters survive unless the store was configured otherwise.
	Clear(ctx context.Context)

	// ResetStats zeroes the cumulative hit/miss counters.
	ResetStats()

	// Keys returns the live keys, pruning any expired entries it encounters.
	Keys(ctx context.Context) []string

	// Stats returns an internally consistent snapshot of the counters and the
	// live entry count.
	Stats(ctx context.Context) Stats

	// GetOrCompute returns the live value for key, attaching to an in-flight
	// computation when one exists, and otherwise invokes compute exactly once,
	// storing the result with the given ttl on success. Errors are delivered
	// to every attached caller and never cached.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFn) (any, error)
}

// GetOrCompute is a type-safe wrapper around Store.GetOrCompute.
func GetOrCompute[T any](ctx context.Context, store Store, key string, ttl time.Duration, fetch FetchFn[T]) (T, error) {
	var zero T

	result, err := store.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		// Untyped nil: the zero value of T is the correct answer for both
		// interface and pointer types.
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: expected %T, got %T", ErrInvalidResultType, zero, result)
	}
	return typed, nil
}
