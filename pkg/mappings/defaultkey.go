package mappings

import (
	"fmt"
	"iter"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var _ types.Mapping[string, int] = (*DefaultKey[string, int])(nil)

// DefaultKey is a mutable mapping that fills in missing keys: a Get of an
// absent key stores factory(key) and returns it. Contains and Keys never
// call the factory.
type DefaultKey[K comparable, V any] struct {
	store   *Ordered[K, V]
	factory func(K) (V, error)
}

// NewDefaultKey creates an empty DefaultKey mapping.
// Returns ErrInvalidArgument if factory is nil.
func NewDefaultKey[K comparable, V any](factory func(K) (V, error)) (*DefaultKey[K, V], error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: factory is nil", types.ErrInvalidArgument)
	}
	return &DefaultKey[K, V]{store: NewOrdered[K, V](), factory: factory}, nil
}

func (m *DefaultKey[K, V]) Mutable() bool { return true }

func (m *DefaultKey[K, V]) Get(key K) (V, error) {
	if v, ok := m.store.data[key]; ok {
		return v, nil
	}
	v, err := m.factory(key)
	if err != nil {
		return v, err
	}
	m.store.put(key, v)
	return v, nil
}

func (m *DefaultKey[K, V]) Set(key K, value V) error { return m.store.Set(key, value) }

func (m *DefaultKey[K, V]) Delete(key K) error { return m.store.Delete(key) }

func (m *DefaultKey[K, V]) Keys() (iter.Seq[K], error) { return m.store.Keys() }

func (m *DefaultKey[K, V]) Items() (iter.Seq2[K, V], error) { return m.store.Items() }

func (m *DefaultKey[K, V]) Contains(key K) (bool, error) { return m.store.Contains(key) }

func (m *DefaultKey[K, V]) Len() (int, error) { return m.store.Len() }

func (m *DefaultKey[K, V]) Clear() error { return m.store.Clear() }
