package mappings

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

// missing wraps ErrMissingKey with the key that was not found.
func missing[K any](key K) error {
	return fmt.Errorf("%w: %v", types.ErrMissingKey, key)
}

// unmodifiable wraps ErrUnmodifiable with the rejected operation.
func unmodifiable(op string) error {
	return fmt.Errorf("%w: %s", types.ErrUnmodifiable, op)
}

// notSupported wraps ErrNotSupported with the rejected operation.
func notSupported(op string) error {
	return fmt.Errorf("%w: %s", types.ErrNotSupported, op)
}

// IsMissing reports whether err signals an absent key.
func IsMissing(err error) bool {
	return errors.Is(err, types.ErrMissingKey)
}

// Contains reports whether key is present in m. It is true exactly when
// m.Get(key) succeeds.
func Contains[K comparable, V any](m types.Mapping[K, V], key K) (bool, error) {
	if c, ok := m.(types.Container[K]); ok {
		return c.Contains(key)
	}
	if _, err := m.Get(key); err != nil {
		if IsMissing(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Len returns the number of keys in m.
func Len[K comparable, V any](m types.Mapping[K, V]) (int, error) {
	if s, ok := m.(types.Sizer); ok {
		return s.Len()
	}
	keys, err := m.Keys()
	if err != nil {
		return 0, err
	}
	n := 0
	for range keys {
		n++
	}
	return n, nil
}

// IsEmpty reports whether m holds no entries. It stops at the first key.
func IsEmpty[K comparable, V any](m types.Mapping[K, V]) (bool, error) {
	if s, ok := m.(types.Sizer); ok {
		n, err := s.Len()
		return n == 0, err
	}
	keys, err := m.Keys()
	if err != nil {
		return false, err
	}
	for range keys {
		return false, nil
	}
	return true, nil
}

// Items returns a sequence over the entries of m. Without an ItemIterator
// the entries are resolved up front so that a failing Get is reported here
// instead of being lost mid-iteration.
func Items[K comparable, V any](m types.Mapping[K, V]) (iter.Seq2[K, V], error) {
	if it, ok := m.(types.ItemIterator[K, V]); ok {
		return it.Items()
	}
	keys, err := m.Keys()
	if err != nil {
		return nil, err
	}
	var ks []K
	var vs []V
	for k := range keys {
		v, err := m.Get(k)
		if err != nil {
			return nil, fmt.Errorf("resolving %v: %w", k, err)
		}
		ks = append(ks, k)
		vs = append(vs, v)
	}
	return func(yield func(K, V) bool) {
		for i := range ks {
			if !yield(ks[i], vs[i]) {
				return
			}
		}
	}, nil
}

// Values returns a sequence over the values of m, in key order.
func Values[K comparable, V any](m types.Mapping[K, V]) (iter.Seq[V], error) {
	items, err := Items(m)
	if err != nil {
		return nil, err
	}
	return func(yield func(V) bool) {
		for _, v := range items {
			if !yield(v) {
				return
			}
		}
	}, nil
}

// ToMap copies the entries of m into a new Go map.
func ToMap[K comparable, V any](m types.Mapping[K, V]) (map[K]V, error) {
	items, err := Items(m)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V)
	for k, v := range items {
		out[k] = v
	}
	return out, nil
}

// GetOr returns the value for key, or def if the key is absent. Errors other
// than a missing key are returned unchanged.
func GetOr[K comparable, V any](m types.Mapping[K, V], key K, def V) (V, error) {
	v, err := m.Get(key)
	if err != nil {
		if IsMissing(err) {
			return def, nil
		}
		return v, err
	}
	return v, nil
}

// Pop removes key and returns its value.
// Returns ErrMissingKey if the key is absent, ErrUnmodifiable if m is
// immutable.
func Pop[K comparable, V any](m types.Mapping[K, V], key K) (V, error) {
	var zero V
	if !m.Mutable() {
		return zero, unmodifiable("pop")
	}
	v, err := m.Get(key)
	if err != nil {
		return zero, err
	}
	if err := m.Delete(key); err != nil {
		return zero, err
	}
	return v, nil
}

// PopOr removes key and returns its value, or returns def if the key is
// absent. Any value of def, including the zero value, is a real default.
func PopOr[K comparable, V any](m types.Mapping[K, V], key K, def V) (V, error) {
	v, err := Pop(m, key)
	if err != nil {
		if IsMissing(err) {
			return def, nil
		}
		return v, err
	}
	return v, nil
}

// SetDefault returns the value for key, storing def first if the key is
// absent.
func SetDefault[K comparable, V any](m types.Mapping[K, V], key K, def V) (V, error) {
	var zero V
	if !m.Mutable() {
		return zero, unmodifiable("setdefault")
	}
	v, err := m.Get(key)
	if err == nil {
		return v, nil
	}
	if !IsMissing(err) {
		return zero, err
	}
	if err := m.Set(key, def); err != nil {
		return zero, err
	}
	return def, nil
}

// Clear deletes every key in m.
func Clear[K comparable, V any](m types.Mapping[K, V]) error {
	if !m.Mutable() {
		return unmodifiable("clear")
	}
	if c, ok := m.(types.Clearer); ok {
		return c.Clear()
	}
	keys, err := m.Keys()
	if err != nil {
		return err
	}
	// Collect first; deleting while ranging would invalidate the sequence.
	for _, k := range slices.Collect(keys) {
		if err := m.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// PopItem removes and returns one entry of m. Which entry is unspecified
// unless the mapping orders its keys.
// Returns ErrEmptyContainer if m holds no entries.
func PopItem[K comparable, V any](m types.Mapping[K, V]) (K, V, error) {
	var (
		zeroK K
		zeroV V
	)
	if !m.Mutable() {
		return zeroK, zeroV, unmodifiable("popitem")
	}
	keys, err := m.Keys()
	if err != nil {
		return zeroK, zeroV, err
	}
	var (
		key   K
		found bool
	)
	for k := range keys {
		key, found = k, true
		break
	}
	if !found {
		return zeroK, zeroV, types.ErrEmptyContainer
	}
	v, err := m.Get(key)
	if err != nil {
		return zeroK, zeroV, err
	}
	if err := m.Delete(key); err != nil {
		return zeroK, zeroV, err
	}
	return key, v, nil
}

// Update stores every entry of items into m.
func Update[K comparable, V any](m types.Mapping[K, V], items iter.Seq2[K, V]) error {
	if !m.Mutable() {
		return unmodifiable("update")
	}
	for k, v := range items {
		if err := m.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Merge stores every entry of src into dst.
func Merge[K comparable, V any](dst, src types.Mapping[K, V]) error {
	items, err := Items(src)
	if err != nil {
		return err
	}
	return Update(dst, items)
}

// Equal reports whether a and b hold the same keys with equal values.
func Equal[K comparable, V comparable](a, b types.Mapping[K, V]) (bool, error) {
	return EqualFunc(a, b, func(x, y V) bool { return x == y })
}

// EqualFunc is like Equal but compares values with eq.
func EqualFunc[K comparable, V any](a, b types.Mapping[K, V], eq func(V, V) bool) (bool, error) {
	la, err := Len(a)
	if err != nil {
		return false, err
	}
	lb, err := Len(b)
	if err != nil {
		return false, err
	}
	if la != lb {
		return false, nil
	}
	items, err := Items(a)
	if err != nil {
		return false, err
	}
	for k, va := range items {
		vb, err := b.Get(k)
		if err != nil {
			if IsMissing(err) {
				return false, nil
			}
			return false, err
		}
		if !eq(va, vb) {
			return false, nil
		}
	}
	return true, nil
}

// Compare orders a and b structurally. Keys of both are walked in sorted
// order; the first differing key, then the first differing value, decides.
// When one key set is a prefix of the other, size breaks the tie.
func Compare[K cmp.Ordered, V cmp.Ordered](a, b types.Mapping[K, V]) (int, error) {
	ka, err := sortedKeys(a)
	if err != nil {
		return 0, err
	}
	kb, err := sortedKeys(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if c := cmp.Compare(ka[i], kb[i]); c != 0 {
			return c, nil
		}
		va, err := a.Get(ka[i])
		if err != nil {
			return 0, err
		}
		vb, err := b.Get(kb[i])
		if err != nil {
			return 0, err
		}
		if c := cmp.Compare(va, vb); c != 0 {
			return c, nil
		}
	}
	return cmp.Compare(len(ka), len(kb)), nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m types.Mapping[K, V]) ([]K, error) {
	return sortedKeys(m)
}

func sortedKeys[K cmp.Ordered, V any](m types.Mapping[K, V]) ([]K, error) {
	keys, err := m.Keys()
	if err != nil {
		return nil, err
	}
	return slices.Sorted(keys), nil
}
