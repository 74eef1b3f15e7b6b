package mappings

import (
	"fmt"
	"iter"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var (
	_ types.Mapping[string, int] = (*Lazy[string, int])(nil)
	_ types.Mapping[string, int] = (*LazyFull[string, int])(nil)
)

// KeySource supplies the key set of a lazy mapping, either as a fixed slice
// or as a function called the first time the keys are needed. The zero
// value is not a valid source.
type KeySource[K comparable] struct {
	keys  []K
	thunk func() ([]K, error)
	fixed bool
}

// KeysOf returns a KeySource over a fixed list of keys. Duplicates are
// collapsed.
func KeysOf[K comparable](keys ...K) KeySource[K] {
	return KeySource[K]{keys: keys, fixed: true}
}

// KeysFrom returns a KeySource that calls fn once, on first need. A failed
// call is not remembered; the next access calls fn again.
func KeysFrom[K comparable](fn func() ([]K, error)) KeySource[K] {
	return KeySource[K]{thunk: fn}
}

func (s KeySource[K]) valid() bool {
	return s.fixed || s.thunk != nil
}

// keySet is a key source that has possibly been realized. Once realized it
// never calls the source again.
type keySet[K comparable] struct {
	src      KeySource[K]
	realized bool
	members  map[K]struct{}
	order    []K
}

func (s *keySet[K]) realize() error {
	if s.realized {
		return nil
	}
	keys := s.src.keys
	if !s.src.fixed {
		var err error
		keys, err = s.src.thunk()
		if err != nil {
			return fmt.Errorf("realizing keys: %w", err)
		}
	}
	s.members = make(map[K]struct{}, len(keys))
	s.order = make([]K, 0, len(keys))
	for _, k := range keys {
		if _, dup := s.members[k]; dup {
			continue
		}
		s.members[k] = struct{}{}
		s.order = append(s.order, k)
	}
	s.realized = true
	s.src = KeySource[K]{}
	return nil
}

func (s *keySet[K]) has(key K) (bool, error) {
	if err := s.realize(); err != nil {
		return false, err
	}
	_, ok := s.members[key]
	return ok, nil
}

func (s *keySet[K]) seq() (iter.Seq[K], error) {
	if err := s.realize(); err != nil {
		return nil, err
	}
	order := s.order
	return func(yield func(K) bool) {
		for _, k := range order {
			if !yield(k) {
				return
			}
		}
	}, nil
}

func (s *keySet[K]) len() (int, error) {
	if err := s.realize(); err != nil {
		return 0, err
	}
	return len(s.order), nil
}

// Lazy is a read-only mapping whose key set and values are computed on
// demand and memoized. Each value is computed by calling the value function
// with a single key, at most once per key.
type Lazy[K comparable, V any] struct {
	keys  keySet[K]
	value func(K) (V, error)
	cache map[K]V
}

// NewLazy creates a Lazy mapping over keys, computing values with value.
// Returns ErrInvalidArgument if keys is not a valid source or value is nil.
func NewLazy[K comparable, V any](keys KeySource[K], value func(K) (V, error)) (*Lazy[K, V], error) {
	if !keys.valid() {
		return nil, fmt.Errorf("%w: key source is neither a list nor a function", types.ErrInvalidArgument)
	}
	if value == nil {
		return nil, fmt.Errorf("%w: value function is nil", types.ErrInvalidArgument)
	}
	return &Lazy[K, V]{
		keys:  keySet[K]{src: keys},
		value: value,
		cache: make(map[K]V),
	}, nil
}

func (m *Lazy[K, V]) Mutable() bool { return false }

func (m *Lazy[K, V]) Get(key K) (V, error) {
	var zero V
	if err := m.keys.realize(); err != nil {
		return zero, err
	}
	if v, ok := m.cache[key]; ok {
		return v, nil
	}
	if _, ok := m.keys.members[key]; !ok {
		return zero, missing(key)
	}
	v, err := m.value(key)
	if err != nil {
		return zero, fmt.Errorf("computing value for %v: %w", key, err)
	}
	m.cache[key] = v
	return v, nil
}

func (m *Lazy[K, V]) Set(K, V) error { return unmodifiable("set") }

func (m *Lazy[K, V]) Delete(K) error { return unmodifiable("delete") }

// Keys yields keys in the order the source first produced them.
func (m *Lazy[K, V]) Keys() (iter.Seq[K], error) { return m.keys.seq() }

// Contains realizes the key set but computes no value.
func (m *Lazy[K, V]) Contains(key K) (bool, error) { return m.keys.has(key) }

func (m *Lazy[K, V]) Len() (int, error) { return m.keys.len() }

// LazyFull is like Lazy, but its loader computes every value in one call.
// The first Get of an uncached key pays for the whole load and later Gets are
// served from the cache.
type LazyFull[K comparable, V any] struct {
	keys   keySet[K]
	load   func(keys []K) (map[K]V, error)
	cache  map[K]V
	loaded bool
}

// NewLazyFull creates a LazyFull mapping over keys. load receives the full
// realized key set and returns the values it could resolve.
// Returns ErrInvalidArgument if keys is not a valid source or load is nil.
func NewLazyFull[K comparable, V any](keys KeySource[K], load func(keys []K) (map[K]V, error)) (*LazyFull[K, V], error) {
	if !keys.valid() {
		return nil, fmt.Errorf("%w: key source is neither a list nor a function", types.ErrInvalidArgument)
	}
	if load == nil {
		return nil, fmt.Errorf("%w: load function is nil", types.ErrInvalidArgument)
	}
	return &LazyFull[K, V]{
		keys:  keySet[K]{src: keys},
		load:  load,
		cache: make(map[K]V),
	}, nil
}

func (m *LazyFull[K, V]) Mutable() bool { return false }

// Get returns the value for key, running the loader if no load has
// completed yet. A key the loader did not return is reported missing and
// the loader is not called again for it. A failed load is retried on the
// next Get.
func (m *LazyFull[K, V]) Get(key K) (V, error) {
	var zero V
	if err := m.keys.realize(); err != nil {
		return zero, err
	}
	if v, ok := m.cache[key]; ok {
		return v, nil
	}
	if _, ok := m.keys.members[key]; !ok || m.loaded {
		return zero, missing(key)
	}
	values, err := m.load(append([]K(nil), m.keys.order...))
	if err != nil {
		return zero, fmt.Errorf("loading values: %w", err)
	}
	for k, v := range values {
		if _, ok := m.keys.members[k]; ok {
			m.cache[k] = v
		}
	}
	m.loaded = true
	if v, ok := m.cache[key]; ok {
		return v, nil
	}
	return zero, missing(key)
}

func (m *LazyFull[K, V]) Set(K, V) error { return unmodifiable("set") }

func (m *LazyFull[K, V]) Delete(K) error { return unmodifiable("delete") }

func (m *LazyFull[K, V]) Keys() (iter.Seq[K], error) { return m.keys.seq() }

func (m *LazyFull[K, V]) Contains(key K) (bool, error) { return m.keys.has(key) }

func (m *LazyFull[K, V]) Len() (int, error) { return m.keys.len() }

// Loaded reports whether a full load has completed.
func (m *LazyFull[K, V]) Loaded() bool { return m.loaded }
