package mappings

import (
	"errors"
	"iter"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

// bare implements only the four primitives so the derived operations take
// their generic paths.
type bare struct {
	data    map[string]int
	mutable bool
}

func newBare(mutable bool, kv map[string]int) *bare {
	return &bare{data: maps.Clone(kv), mutable: mutable}
}

func (b *bare) Mutable() bool { return b.mutable }

func (b *bare) Get(key string) (int, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, missing(key)
	}
	return v, nil
}

func (b *bare) Set(key string, value int) error {
	if !b.mutable {
		return unmodifiable("set")
	}
	b.data[key] = value
	return nil
}

func (b *bare) Delete(key string) error {
	if !b.mutable {
		return unmodifiable("delete")
	}
	if _, ok := b.data[key]; !ok {
		return missing(key)
	}
	delete(b.data, key)
	return nil
}

func (b *bare) Keys() (iter.Seq[string], error) {
	return maps.Keys(b.data), nil
}

func TestDerived_LenMatchesKeyCountAndContainsMatchesGet(t *testing.T) {
	lazy, err := NewLazy(KeysOf("a", "b"), func(k string) (int, error) { return len(k), nil })
	require.NoError(t, err)
	pull, err := NewPull(func(k string) (int, error) { return 0, missing(k) }, map[string]int{"a": 1})
	require.NoError(t, err)

	all := map[string]types.Mapping[string, int]{
		"bare":      newBare(true, map[string]int{"a": 1, "b": 2}),
		"ordered":   OrderedFrom(maps.All(map[string]int{"a": 1, "c": 3})),
		"lazy":      lazy,
		"immutable": NewImmutable(map[string]int{"x": 1}),
		"union":     NewUnion[string, int](NewImmutable(map[string]int{"a": 1}), NewImmutable(map[string]int{"a": 2, "b": 3})),
		"overlay":   NewOverlay[string, int](NewImmutable(map[string]int{"a": 1})),
		"slotted":   func() types.Mapping[string, int] { s := NewSlotted[int](MakeSchema("a", "b")); _ = s.Set("a", 1); return s }(),
	}

	for name, m := range all {
		t.Run(name, func(t *testing.T) {
			keys, err := m.Keys()
			require.NoError(t, err)
			n, err := Len(m)
			require.NoError(t, err)
			assert.Equal(t, len(slices.Collect(keys)), n)

			for _, k := range []string{"a", "b", "c", "x", "zz"} {
				in, err := Contains(m, k)
				require.NoError(t, err)
				_, getErr := m.Get(k)
				assert.Equal(t, getErr == nil, in, "key %q", k)
			}
		})
	}

	t.Run("pull", func(t *testing.T) {
		in, err := Contains[string, int](pull, "a")
		require.NoError(t, err)
		assert.True(t, in)
		in, err = Contains[string, int](pull, "b")
		require.NoError(t, err)
		assert.False(t, in)
	})
}

func TestDerived_PopAndPopOr(t *testing.T) {
	m := newBare(true, map[string]int{"a": 1})

	v, err := Pop[string, int](m, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = Pop[string, int](m, "a")
	assert.ErrorIs(t, err, types.ErrMissingKey)

	// A zero default is a real default, not "no default".
	v, err = PopOr[string, int](m, "a", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = PopOr[string, int](m, "a", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestDerived_MutationRejectedOnImmutable(t *testing.T) {
	m := newBare(false, map[string]int{"a": 1})

	_, err := Pop[string, int](m, "a")
	assert.ErrorIs(t, err, types.ErrUnmodifiable)
	_, err = PopOr[string, int](m, "zz", 1)
	assert.ErrorIs(t, err, types.ErrUnmodifiable)
	_, err = SetDefault[string, int](m, "b", 2)
	assert.ErrorIs(t, err, types.ErrUnmodifiable)
	assert.ErrorIs(t, Clear[string, int](m), types.ErrUnmodifiable)
	_, _, err = PopItem[string, int](m)
	assert.ErrorIs(t, err, types.ErrUnmodifiable)
	assert.ErrorIs(t, Update[string, int](m, maps.All(map[string]int{"c": 3})), types.ErrUnmodifiable)

	assert.Equal(t, map[string]int{"a": 1}, m.data)
}

func TestDerived_SetDefault(t *testing.T) {
	m := newBare(true, map[string]int{"a": 1})

	v, err := SetDefault[string, int](m, "a", 9)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = SetDefault[string, int](m, "b", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, m.data["b"])
}

func TestDerived_ClearAndPopItem(t *testing.T) {
	m := newBare(true, map[string]int{"a": 1, "b": 2, "c": 3})

	k, v, err := PopItem[string, int](m)
	require.NoError(t, err)
	assert.NotContains(t, m.data, k)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}[k], v)

	require.NoError(t, Clear[string, int](m))
	assert.Empty(t, m.data)

	empty, err := IsEmpty[string, int](m)
	require.NoError(t, err)
	assert.True(t, empty)

	_, _, err = PopItem[string, int](m)
	assert.ErrorIs(t, err, types.ErrEmptyContainer)
}

func TestDerived_GetOr(t *testing.T) {
	m := newBare(false, map[string]int{"a": 1})

	v, err := GetOr[string, int](m, "a", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = GetOr[string, int](m, "b", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestDerived_GetOrPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	m, err := NewLazy(KeysOf("a"), func(string) (int, error) { return 0, boom })
	require.NoError(t, err)

	_, err = GetOr[string, int](m, "a", 5)
	assert.ErrorIs(t, err, boom)
}

func TestDerived_ValuesItemsToMap(t *testing.T) {
	m := OrderedFrom(slices.All([]int{10, 20, 30}))

	values, err := Values[int, int](m)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, slices.Collect(values))

	got, err := ToMap[int, int](m)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 10, 1: 20, 2: 30}, got)

	b := newBare(true, map[string]int{"x": 1, "y": 2})
	items, err := Items[string, int](b)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 1, "y": 2}, maps.Collect(items))
}

func TestDerived_Merge(t *testing.T) {
	dst := NewOrdered[string, int]()
	require.NoError(t, dst.Set("a", 1))
	src := NewImmutable(map[string]int{"a": 2, "b": 3})

	require.NoError(t, Merge[string, int](dst, src))
	got, err := ToMap[string, int](dst)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 3}, got)
}

func TestDerived_Equal(t *testing.T) {
	a := newBare(true, map[string]int{"a": 1, "b": 2})
	b := OrderedFrom(maps.All(map[string]int{"b": 2, "a": 1}))

	eq, err := Equal[string, int](a, b)
	require.NoError(t, err)
	assert.True(t, eq)

	require.NoError(t, b.Set("a", 5))
	eq, err = Equal[string, int](a, b)
	require.NoError(t, err)
	assert.False(t, eq)

	require.NoError(t, b.Delete("a"))
	eq, err = Equal[string, int](a, b)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestDerived_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]int
		want int
	}{
		{name: "equal", a: map[string]int{"a": 1, "b": 2}, b: map[string]int{"b": 2, "a": 1}, want: 0},
		{name: "smaller key wins", a: map[string]int{"a": 1}, b: map[string]int{"b": 1}, want: -1},
		{name: "value decides", a: map[string]int{"a": 3}, b: map[string]int{"a": 2}, want: 1},
		{name: "size breaks tie", a: map[string]int{"a": 1}, b: map[string]int{"a": 1, "b": 2}, want: -1},
		{name: "empty equals empty", a: map[string]int{}, b: map[string]int{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare[string, int](NewImmutable(tt.a), NewImmutable(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerived_EnumerationNotSupported(t *testing.T) {
	m, err := NewPull(func(k string) (int, error) { return len(k), nil }, nil)
	require.NoError(t, err)

	_, err = Len[string, int](m)
	assert.ErrorIs(t, err, types.ErrNotSupported)
	_, err = Values[string, int](m)
	assert.ErrorIs(t, err, types.ErrNotSupported)
	_, err = SortedKeys[string, int](m)
	assert.ErrorIs(t, err, types.ErrNotSupported)
	_, err = Compare[string, int](m, NewImmutable(map[string]int{}))
	assert.ErrorIs(t, err, types.ErrNotSupported)
}
