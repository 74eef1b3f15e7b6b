package mappings

import (
	"iter"
	"maps"
	"slices"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var _ types.Mapping[string, int] = (*Overlay[string, int])(nil)

// Overlay is a copy-on-write view over a base mapping. Writes land in the
// overlay, deletions of base keys are recorded as tombstones, and the base
// is never modified. The base must outlive the view.
//
// A key is never both in the overlay and tombstoned.
type Overlay[K comparable, V any] struct {
	base       types.Mapping[K, V]
	overlay    *Ordered[K, V]
	tombstones map[K]struct{}
}

// NewOverlay creates an empty view over base.
func NewOverlay[K comparable, V any](base types.Mapping[K, V]) *Overlay[K, V] {
	return &Overlay[K, V]{
		base:       base,
		overlay:    NewOrdered[K, V](),
		tombstones: make(map[K]struct{}),
	}
}

func (m *Overlay[K, V]) Mutable() bool { return true }

func (m *Overlay[K, V]) Get(key K) (V, error) {
	if v, ok := m.overlay.data[key]; ok {
		return v, nil
	}
	if _, dead := m.tombstones[key]; dead {
		var zero V
		return zero, missing(key)
	}
	return m.base.Get(key)
}

func (m *Overlay[K, V]) Set(key K, value V) error {
	m.overlay.put(key, value)
	delete(m.tombstones, key)
	return nil
}

// Delete hides key. A key that only ever lived in the overlay is simply
// dropped; a key the base holds gets a tombstone.
func (m *Overlay[K, V]) Delete(key K) error {
	_, written := m.overlay.data[key]
	if !written {
		if _, dead := m.tombstones[key]; dead {
			return missing(key)
		}
	}
	// Ask the base first so a failing base leaves the view untouched.
	inBase, err := Contains(m.base, key)
	if err != nil {
		return err
	}
	if !written && !inBase {
		return missing(key)
	}
	if written {
		if err := m.overlay.Delete(key); err != nil {
			return err
		}
	}
	if inBase {
		m.tombstones[key] = struct{}{}
	}
	return nil
}

// Keys yields overlay keys in insertion order, then the base keys that are
// neither tombstoned nor shadowed by the overlay.
func (m *Overlay[K, V]) Keys() (iter.Seq[K], error) {
	baseKeys, err := m.base.Keys()
	if err != nil {
		return nil, err
	}
	return func(yield func(K) bool) {
		for _, k := range m.overlay.order {
			if !yield(k) {
				return
			}
		}
		for k := range baseKeys {
			if _, dead := m.tombstones[k]; dead {
				continue
			}
			if _, shadowed := m.overlay.data[k]; shadowed {
				continue
			}
			if !yield(k) {
				return
			}
		}
	}, nil
}

func (m *Overlay[K, V]) Contains(key K) (bool, error) {
	if _, ok := m.overlay.data[key]; ok {
		return true, nil
	}
	if _, dead := m.tombstones[key]; dead {
		return false, nil
	}
	return Contains(m.base, key)
}

// Changes returns a copy of the entries written through the view.
func (m *Overlay[K, V]) Changes() map[K]V {
	return maps.Clone(m.overlay.data)
}

// Deleted returns the tombstoned keys.
func (m *Overlay[K, V]) Deleted() []K {
	return slices.Collect(maps.Keys(m.tombstones))
}

// Reset discards every write and tombstone, exposing the base again.
func (m *Overlay[K, V]) Reset() {
	m.overlay = NewOrdered[K, V]()
	m.tombstones = make(map[K]struct{})
}

// Base returns the mapping the view is layered over.
func (m *Overlay[K, V]) Base() types.Mapping[K, V] { return m.base }
