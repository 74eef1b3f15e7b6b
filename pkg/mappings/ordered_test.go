package mappings

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

func orderedKeys(t *testing.T, m *Ordered[string, int]) []string {
	t.Helper()
	keys, err := m.Keys()
	require.NoError(t, err)
	return slices.Collect(keys)
}

func TestOrdered_InsertionOrder(t *testing.T) {
	m := NewOrdered[string, int]()
	for i, k := range []string{"a", "b", "c"} {
		require.NoError(t, m.Set(k, i))
	}

	require.NoError(t, m.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, orderedKeys(t, m))

	require.NoError(t, m.Set("b", 9))
	assert.Equal(t, []string{"a", "c", "b"}, orderedKeys(t, m))

	// Overwriting keeps the position.
	require.NoError(t, m.Set("a", 7))
	assert.Equal(t, []string{"a", "c", "b"}, orderedKeys(t, m))
	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestOrdered_LenTracksEntries(t *testing.T) {
	m := NewOrdered[string, int]()
	require.NoError(t, m.Set("a", 1))
	require.NoError(t, m.Set("a", 2))
	require.NoError(t, m.Set("b", 3))

	n, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, m.data, len(m.order))
}

func TestOrdered_PopItemTakesOldest(t *testing.T) {
	m := NewOrdered[string, int]()
	require.NoError(t, m.Set("first", 1))
	require.NoError(t, m.Set("second", 2))

	k, v, err := PopItem[string, int](m)
	require.NoError(t, err)
	assert.Equal(t, "first", k)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"second"}, orderedKeys(t, m))
}

func TestOrdered_ClearResetsBoth(t *testing.T) {
	m := NewOrdered[string, int]()
	require.NoError(t, m.Set("a", 1))
	require.NoError(t, Clear[string, int](m))

	assert.Empty(t, m.data)
	assert.Empty(t, m.order)
	require.NoError(t, m.Set("b", 2))
	assert.Equal(t, []string{"b"}, orderedKeys(t, m))
}

func TestOrdered_DeleteMissing(t *testing.T) {
	m := NewOrdered[string, int]()
	assert.ErrorIs(t, m.Delete("a"), types.ErrMissingKey)
}

func TestOrdered_LostOrderPanics(t *testing.T) {
	m := NewOrdered[string, int]()
	require.NoError(t, m.Set("a", 1))
	m.order = nil

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, types.ErrInternalInconsistency)
	}()
	_ = m.Delete("a")
}

func TestOrdered_SequencesSurviveDelete(t *testing.T) {
	m := OrderedFrom(slices.All([]string{"a", "b", "c"}))
	keys, err := m.Keys()
	require.NoError(t, err)
	items, err := m.Items()
	require.NoError(t, err)

	require.NoError(t, m.Delete(0))
	assert.Equal(t, []int{1, 2}, slices.Collect(keys))
	got := map[int]string{}
	for k, v := range items {
		got[k] = v
	}
	assert.Equal(t, map[int]string{1: "b", 2: "c"}, got)

	after, err := m.Keys()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, slices.Collect(after))
	n, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
