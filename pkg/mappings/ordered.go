package mappings

import (
	"fmt"
	"iter"
	"slices"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var _ types.Mapping[string, int] = (*Ordered[string, int])(nil)

// Ordered is a mutable mapping that iterates in insertion order, oldest
// first. Overwriting a key keeps its position; deleting and re-inserting it
// moves it to the end.
type Ordered[K comparable, V any] struct {
	data  map[K]V
	order []K
}

// NewOrdered creates an empty Ordered mapping.
func NewOrdered[K comparable, V any]() *Ordered[K, V] {
	return &Ordered[K, V]{data: make(map[K]V)}
}

// OrderedFrom creates an Ordered mapping holding items in sequence order.
func OrderedFrom[K comparable, V any](items iter.Seq2[K, V]) *Ordered[K, V] {
	m := NewOrdered[K, V]()
	for k, v := range items {
		m.put(k, v)
	}
	return m
}

func (m *Ordered[K, V]) Mutable() bool { return true }

func (m *Ordered[K, V]) Get(key K) (V, error) {
	v, ok := m.data[key]
	if !ok {
		return v, missing(key)
	}
	return v, nil
}

func (m *Ordered[K, V]) Set(key K, value V) error {
	m.put(key, value)
	return nil
}

func (m *Ordered[K, V]) put(key K, value V) {
	if _, ok := m.data[key]; !ok {
		m.order = append(m.order, key)
	}
	m.data[key] = value
}

// Delete removes key. It panics with ErrInternalInconsistency if the order
// slice has lost track of a stored key.
func (m *Ordered[K, V]) Delete(key K) error {
	if _, ok := m.data[key]; !ok {
		return missing(key)
	}
	delete(m.data, key)
	for i, k := range m.order {
		if k == key {
			// Rebuild rather than shift in place: sequences from Keys and
			// Items may still hold the old slice.
			m.order = slices.Concat(m.order[:i:i], m.order[i+1:])
			return nil
		}
	}
	panic(fmt.Errorf("%w: ordered mapping lost key %v from its order", types.ErrInternalInconsistency, key))
}

// Keys yields keys oldest first. A sequence taken before a Delete skips the
// deleted key; keys added after Keys was called are not yielded.
func (m *Ordered[K, V]) Keys() (iter.Seq[K], error) {
	order := m.order
	return func(yield func(K) bool) {
		for _, k := range order {
			if _, ok := m.data[k]; !ok {
				continue
			}
			if !yield(k) {
				return
			}
		}
	}, nil
}

func (m *Ordered[K, V]) Items() (iter.Seq2[K, V], error) {
	order := m.order
	return func(yield func(K, V) bool) {
		for _, k := range order {
			v, ok := m.data[k]
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}, nil
}

func (m *Ordered[K, V]) Contains(key K) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *Ordered[K, V]) Len() (int, error) {
	return len(m.order), nil
}

// Clear resets the store and the order together.
func (m *Ordered[K, V]) Clear() error {
	m.data = make(map[K]V)
	m.order = nil
	return nil
}
