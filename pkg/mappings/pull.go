package mappings

import (
	"fmt"
	"iter"
	"maps"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var _ types.Mapping[string, int] = (*Pull[string, int])(nil)

// Pull is a read-only mapping over an unbounded key domain. A fixed set of
// initial entries is consulted first; any other key is handed to the pull
// function. Pull cannot enumerate, count or hash itself.
type Pull[K comparable, V any] struct {
	initial map[K]V
	pull    func(K) (V, error)
}

// NewPull creates a Pull mapping. initial may be nil; it is copied.
// pull should return an error wrapping ErrMissingKey for keys it cannot
// supply.
// Returns ErrInvalidArgument if pull is nil.
func NewPull[K comparable, V any](pull func(K) (V, error), initial map[K]V) (*Pull[K, V], error) {
	if pull == nil {
		return nil, fmt.Errorf("%w: pull function is nil", types.ErrInvalidArgument)
	}
	return &Pull[K, V]{
		initial: maps.Clone(initial),
		pull:    pull,
	}, nil
}

func (m *Pull[K, V]) Mutable() bool { return false }

func (m *Pull[K, V]) Get(key K) (V, error) {
	if v, ok := m.initial[key]; ok {
		return v, nil
	}
	return m.pull(key)
}

func (m *Pull[K, V]) Set(K, V) error { return unmodifiable("set") }

func (m *Pull[K, V]) Delete(K) error { return unmodifiable("delete") }

func (m *Pull[K, V]) Keys() (iter.Seq[K], error) { return nil, notSupported("keys") }

func (m *Pull[K, V]) Len() (int, error) { return 0, notSupported("len") }

func (m *Pull[K, V]) Items() (iter.Seq2[K, V], error) { return nil, notSupported("items") }

func (m *Pull[K, V]) Hash() (uint64, error) { return 0, notSupported("hash") }
