package mappings

import (
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

func TestFolding_CaseInsensitiveLookup(t *testing.T) {
	p := NewPreservingFolding[string, int](CaseFold, nil)
	n := NewNonPreservingFolding[string, int](CaseFold, nil)

	for _, m := range []types.Mapping[string, int]{p, n} {
		require.NoError(t, m.Set("Foo", 1))
		v, err := m.Get("foo")
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		v, err = m.Get("FOO")
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	}

	pk, err := p.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, slices.Collect(pk))

	nk, err := n.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, slices.Collect(nk))
}

func TestFolding_LastSpellingWins(t *testing.T) {
	m := NewPreservingFolding[string, int](Lower, nil)
	require.NoError(t, m.Set("Foo", 1))
	require.NoError(t, m.Set("FOO", 2))

	items, err := m.Items()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"FOO": 2}, maps.Collect(items))
}

func TestFolding_DeleteAndContains(t *testing.T) {
	m := NewPreservingFolding[string, int](CaseFold, maps.All(map[string]int{"Hello": 1}))

	ok, err := m.Contains("HELLO")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Delete("hello"))
	ok, err = m.Contains("Hello")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, m.Delete("hello"), types.ErrMissingKey)
}

func TestFolding_UnicodeFold(t *testing.T) {
	m := NewNonPreservingFolding[string, string](CaseFold, nil)
	require.NoError(t, m.Set("Straße", "street"))

	v, err := m.Get("STRASSE")
	require.NoError(t, err)
	assert.Equal(t, "street", v)
}

func TestFolding_Refold(t *testing.T) {
	m := NewPreservingFolding[string, int](nil, nil)
	require.NoError(t, m.Set("Key", 1))

	_, err := m.Get("key")
	assert.ErrorIs(t, err, types.ErrMissingKey)

	m.Refold(CaseFold)
	v, err := m.Get("key")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	keys, err := m.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"Key"}, slices.Collect(keys))
}

func TestFolding_RefoldKeepsFolderWhenNil(t *testing.T) {
	strip := "-"
	folder := func(k string) string { return strings.ReplaceAll(k, strip, "") }
	m := NewPreservingFolding[string, int](folder, nil)
	require.NoError(t, m.Set("a-b", 1))
	require.NoError(t, m.Set("c_d", 2))

	strip = "_"
	m.Refold(nil)

	v, err := m.Get("cd")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	v, err = m.Get("a-b")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFolding_CopyIsIndependent(t *testing.T) {
	p := NewPreservingFolding[string, int](CaseFold, maps.All(map[string]int{"A": 1}))
	pc := p.Copy()
	require.NoError(t, pc.Set("a", 2))
	v, err := p.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	n := NewNonPreservingFolding[string, int](CaseFold, maps.All(map[string]int{"A": 1}))
	nc := n.Copy()
	require.NoError(t, Clear[string, int](nc))
	l, err := n.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, l)
}

func TestFolders_Chain(t *testing.T) {
	f := Chain[string](TrimSpace, CaseFold)
	assert.Equal(t, "mixed case", f("  Mixed CASE "))
}
