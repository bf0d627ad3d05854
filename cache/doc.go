// Package cache provides the caching contracts and key serialization used to
// cache function results.
//
// # Overview
//
// This package exports two main interfaces and their supporting types:
//
//   - Store: a TTL'd key/value store with hit/miss accounting and
//     duplicate-computation suppression via GetOrCompute
//   - KeySerializer: builds stable cache keys from an operation name and call
//     arguments
//
// The package is designed to work with the funccache wrapper layer, which
// turns ordinary callables into cached callables, and with the manage package,
// which exposes list/clear/stats operations over registered stores.
//
// # Basic Usage
//
// Keys are built from an operation identity plus the call's arguments:
//
//	serializer := cache.NewDefaultKeySerializer()
//	key, err := serializer.SerializeKey("GetUser", 42, cache.NamedArgs{"expand": true})
//
// Reads that should compute on miss go through the generic helper:
//
//	user, err := cache.GetOrCompute(ctx, store, key, time.Minute, func(ctx context.Context) (User, error) {
//		return loadUser(ctx, 42)
//	})
//
// Concurrent callers with the same key share a single computation: the
// function runs once and every waiter receives the same value or error.
//
// # Key Serialization Strategy
//
// The default serializer uses reflection to handle various Go types:
//
//   - Basic types: direct string representation
//   - Slices/arrays: recursive serialization of elements in order
//   - Maps and NamedArgs: pairs sorted for deterministic output
//   - Structs: exported fields with name:value pairs
//   - Remaining types: JSON fallback
//
// Values with no stable representation (functions, channels, unsafe pointers,
// unmarshalable types) fail with a KeyGenerationError instead of producing a
// key that would drift between runs. Serialized keys longer than an internal
// bound keep their operation prefix and digest the argument tail with xxhash.
//
// # TTL Semantics
//
// Set and GetOrCompute take an explicit TTL. NoExpiration marks entries that
// never expire; zero or any other negative duration is rejected with
// ErrInvalidTTL before state changes. Expired entries are treated as absent
// and evicted on read.
//
// # Error Handling
//
// A computation's error is delivered identically to every caller waiting on
// the same in-flight computation and is never cached, so the next call after
// settlement retries. Caching is invisible to error semantics beyond that
// sharing.
//
// # See Also
//
// For wrapping callables see the funccache package. For the management
// surface (list, clear, stats) see the manage package.
package cache
