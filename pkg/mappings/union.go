package mappings

import (
	"iter"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var _ types.Mapping[string, int] = (*Union[string, int])(nil)

// Union presents several mappings as one read-only mapping. Lookups scan the
// layers in order and the first layer holding the key wins. The layers are
// not owned and must outlive the view.
type Union[K comparable, V any] struct {
	layers []types.Mapping[K, V]
}

// NewUnion creates a view over layers, highest priority first.
func NewUnion[K comparable, V any](layers ...types.Mapping[K, V]) *Union[K, V] {
	return &Union[K, V]{layers: append([]types.Mapping[K, V](nil), layers...)}
}

func (m *Union[K, V]) Mutable() bool { return false }

func (m *Union[K, V]) Get(key K) (V, error) {
	for _, l := range m.layers {
		v, err := l.Get(key)
		if err == nil {
			return v, nil
		}
		if !IsMissing(err) {
			return v, err
		}
	}
	var zero V
	return zero, missing(key)
}

func (m *Union[K, V]) Set(K, V) error { return unmodifiable("set") }

func (m *Union[K, V]) Delete(K) error { return unmodifiable("delete") }

// Contains reports whether Get would succeed, so it names the same layer
// Get serves from even when a layer lists keys it cannot supply.
func (m *Union[K, V]) Contains(key K) (bool, error) {
	if _, err := m.Get(key); err != nil {
		if IsMissing(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Keys yields each layer's keys in that layer's own order, skipping any key
// already yielded.
func (m *Union[K, V]) Keys() (iter.Seq[K], error) {
	seqs := make([]iter.Seq[K], 0, len(m.layers))
	for _, l := range m.layers {
		keys, err := l.Keys()
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, keys)
	}
	return func(yield func(K) bool) {
		seen := make(map[K]struct{})
		for _, keys := range seqs {
			for k := range keys {
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				if !yield(k) {
					return
				}
			}
		}
	}, nil
}

// Layers returns the backing mappings, highest priority first.
func (m *Union[K, V]) Layers() []types.Mapping[K, V] {
	return append([]types.Mapping[K, V](nil), m.layers...)
}
