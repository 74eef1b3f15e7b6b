package mappings

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

func TestDefaultKey_FillsMissing(t *testing.T) {
	calls := 0
	m, err := NewDefaultKey(func(k string) (string, error) {
		calls++
		return strings.ToUpper(k), nil
	})
	require.NoError(t, err)

	ok, err := m.Contains("a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, calls)

	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "A", v)
	_, err = m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	keys, err := m.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, slices.Collect(keys))
}

func TestDefaultKey_SetWins(t *testing.T) {
	m, err := NewDefaultKey(func(string) (int, error) { return 0, nil })
	require.NoError(t, err)
	require.NoError(t, m.Set("n", 5))

	v, err := m.Get("n")
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	require.NoError(t, m.Delete("n"))
	v, err = m.Get("n")
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestDefaultKey_FactoryErrorNotStored(t *testing.T) {
	boom := errors.New("boom")
	m, err := NewDefaultKey(func(string) (int, error) { return 0, boom })
	require.NoError(t, err)

	_, err = m.Get("a")
	assert.ErrorIs(t, err, boom)
	n, err := m.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDefaultKey_NilFactory(t *testing.T) {
	_, err := NewDefaultKey[string, int](nil)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
