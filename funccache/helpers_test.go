package funccache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/internal/memstore"
)

// newWrapperStore builds a shared store for tests that inspect stats or key
// isolation across wrapped functions.
func newWrapperStore(t *testing.T) *memstore.Store {
	t.Helper()

	store, err := memstore.New(cache.DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
