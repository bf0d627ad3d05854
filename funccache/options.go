package funccache

import (
	"time"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/manage"
)

// KeyFunc builds a cache key from the call's arguments. The result is used
// verbatim; no normalization is applied. This is the escape hatch for callers
// that need stable keys the default serializer cannot produce.
type KeyFunc func(args ...any) (string, error)

// Options configures a wrapped callable. The zero value caches forever in a
// private store under keys derived from the function's name.
type Options struct {
	// TTL is the lifetime of cached entries. Zero means entries never expire,
	// matching an unset TTL; cache.NoExpiration is accepted and equivalent.
	// Other negative values are rejected at wrap time.
	TTL time.Duration

	// KeyFunc overrides the default key serializer.
	KeyFunc KeyFunc

	// SkipNilResults stops nil results from being cached. The default caches
	// them: a computed nothing is still a valid cached outcome.
	SkipNilResults bool

	// Store backs the wrapped function's entries. Nil creates a private
	// in-memory store, so independently wrapped functions do not contend.
	Store cache.Store

	// Serializer builds keys from call arguments when KeyFunc is unset.
	// Nil uses the default reflection-based serializer.
	Serializer cache.KeySerializer

	// Name is the operation identity incorporated into cache keys. Empty
	// derives the name from the function's symbol via the runtime.
	Name string

	// Registry, when set, records the wrapped function so management tooling
	// can list it, inspect its TTL, and clear its store.
	Registry *manage.Registry
}
