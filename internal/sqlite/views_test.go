package sqlite

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mappings/pkg/mappings"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

func seed(t *testing.T, s *Store, ns string, kv ...string) {
	t.Helper()
	for i := 0; i+1 < len(kv); i += 2 {
		_, err := s.Put(ns, kv[i], kv[i+1])
		require.NoError(t, err)
	}
}

func TestLazy_ReadsThroughStore(t *testing.T) {
	s := attachMemory(t)
	seed(t, s, "app", "host", "localhost", "port", "8080")
	seed(t, s, "other", "host", "elsewhere")

	m, err := s.Lazy("app")
	require.NoError(t, err)

	keys, err := m.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "port"}, slices.Collect(keys))

	v, err := m.Get("port")
	require.NoError(t, err)
	assert.Equal(t, "8080", v)

	_, err = m.Get("user")
	assert.ErrorIs(t, err, types.ErrMissingKey)
	assert.ErrorIs(t, m.Set("user", "root"), types.ErrUnmodifiable)
}

func TestLazy_KeySetFixedAtFirstUse(t *testing.T) {
	s := attachMemory(t)
	seed(t, s, "app", "a", "1")

	m, err := s.Lazy("app")
	require.NoError(t, err)
	n, err := mappings.Len[string, string](m)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	seed(t, s, "app", "b", "2")
	ok, err := mappings.Contains[string, string](m, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshot_LoadsOnce(t *testing.T) {
	s := attachMemory(t)
	seed(t, s, "app", "a", "1", "b", "2")

	m, err := s.Snapshot("app")
	require.NoError(t, err)

	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	// Later writes are invisible once loaded.
	seed(t, s, "app", "b", "changed")
	v, err = m.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	got, err := mappings.ToMap[string, string](m)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)
}

func TestPull_PinnedThenStore(t *testing.T) {
	s := attachMemory(t)
	seed(t, s, "app", "a", "stored", "b", "stored")

	m, err := s.Pull("app", map[string]string{"a": "pinned"})
	require.NoError(t, err)

	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "pinned", v)
	v, err = m.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "stored", v)

	_, err = m.Get("c")
	assert.ErrorIs(t, err, types.ErrMissingKey)
	_, err = m.Keys()
	assert.ErrorIs(t, err, types.ErrNotSupported)
}

func TestViews_DetachedAfterCreation(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Attach(types.Config{Backend: types.BackendMemory}))
	seed(t, s, "app", "a", "1")

	lazy, err := s.Lazy("app")
	require.NoError(t, err)
	pull, err := s.Pull("app", nil)
	require.NoError(t, err)
	require.NoError(t, s.Detach())

	_, err = lazy.Get("a")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = pull.Get("a")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestViews_UnionWithDefaults(t *testing.T) {
	s := attachMemory(t)
	seed(t, s, "app", "port", "9090")

	stored, err := s.Lazy("app")
	require.NoError(t, err)
	u := mappings.NewUnion[string, string](stored, mappings.NewImmutable(map[string]string{"port": "80", "host": "localhost"}))

	got, err := mappings.ToMap[string, string](u)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"port": "9090", "host": "localhost"}, got)
}
