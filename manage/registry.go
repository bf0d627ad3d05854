// Package manage exposes the management surface over cached functions: list
// the registered functions and their configured TTLs, clear entries, and
// report statistics. CLI tooling consumes these operations; the package
// itself carries no protocol.
package manage

import (
	"context"
	"sort"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-function-cache/cache"
)

// Registration describes one cacheable function known to the registry.
type Registration struct {
	// Name is the function's operation identity, as used in cache keys.
	Name string

	// TTL is the configured entry lifetime. cache.NoExpiration means entries
	// never expire.
	TTL time.Duration

	// Store is the store backing this function's entries. Functions may share
	// a store or own a private one.
	Store cache.Store
}

// Registry tracks the cacheable functions registered by the wrapper layer.
// It is safe for concurrent use.
type Registry struct {
	entries *xsync.MapOf[string, Registration]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: xsync.NewMapOf[string, Registration](),
	}
}

// Register records a cacheable function. Re-registering a name replaces the
// previous registration.
func (r *Registry) Register(name string, ttl time.Duration, store cache.Store) {
	r.entries.Store(name, Registration{Name: name, TTL: ttl, Store: store})
}

// Unregister removes a registration and reports whether it existed.
func (r *Registry) Unregister(name string) bool {
	_, existed := r.entries.LoadAndDelete(name)
	return existed
}

// Lookup returns the registration for name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	return r.entries.Load(name)
}

// List returns all registrations sorted by name.
func (r *Registry) List() []Registration {
	var regs []Registration
	r.entries.Range(func(_ string, reg Registration) bool {
		regs = append(regs, reg)
		return true
	})
	sort.Slice(regs, func(i, j int) bool { return regs[i].Name < regs[j].Name })
	return regs
}

// Stats returns a per-function snapshot of store statistics, keyed by
// function name. Functions sharing a store report that store's counters.
func (r *Registry) Stats(ctx context.Context) map[string]cache.Stats {
	stats := make(map[string]cache.Stats)
	r.entries.Range(func(name string, reg Registration) bool {
		stats[name] = reg.Store.Stats(ctx)
		return true
	})
	return stats
}

// Invalidate removes a single key from the named function's store and reports
// whether the entry existed. Unknown names report false.
func (r *Registry) Invalidate(ctx context.Context, name, key string) bool {
	reg, ok := r.entries.Load(name)
	if !ok {
		return false
	}
	return reg.Store.Delete(ctx, key)
}

// ClearAll clears every distinct store exactly once, even when several
// functions share one.
func (r *Registry) ClearAll(ctx context.Context) {
	seen := make(map[cache.Store]struct{})
	r.entries.Range(func(_ string, reg Registration) bool {
		if _, done := seen[reg.Store]; !done {
			seen[reg.Store] = struct{}{}
			reg.Store.Clear(ctx)
		}
		return true
	})
}
