// Package funccache turns plain or context-aware callables into cached
// callables backed by a cache.Store.
//
// # Overview
//
// Wrap takes a function of shape func([ctx,] args...) (T, error) and returns
// a function with the identical signature that consults the store before
// computing:
//
//	lookup := func(ctx context.Context, id int) (User, error) {
//		return loadUser(ctx, id)
//	}
//
//	cached, err := funccache.Wrap(lookup, funccache.Options{TTL: time.Minute})
//	if err != nil {
//		// invalid signature or configuration
//	}
//	user, err := cached(ctx, 42)
//
// The callable is inspected once at wrap time. A leading context.Context
// parameter binds the wrapper permanently to the context-aware path; any
// other signature binds the blocking path, which uses a background context
// for store access. No per-call inspection happens.
//
// # Concurrency
//
// Calls with the same key share a single computation: the wrapped function's
// side effects occur exactly once per distinct key per TTL window, and every
// concurrent caller observes the same value or error. Errors are never cached,
// so the first call after a failed computation settles retries.
//
// # Keys
//
// Keys default to the function's symbol name plus the serialized arguments
// (the context parameter is excluded). Closures get runtime-assigned names
// that are only stable within one process; set Options.Name when that
// matters, or provide Options.KeyFunc to take over key generation entirely.
package funccache
