package mappings

import (
	"iter"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var (
	_ types.Mapping[string, int] = (*PreservingFolding[string, int])(nil)
	_ types.Mapping[string, int] = (*NonPreservingFolding[string, int])(nil)
)

// Folder normalizes a key before it is used for storage or lookup.
type Folder[K comparable] func(K) K

func identity[K comparable](k K) K { return k }

type foldEntry[K comparable, V any] struct {
	original K
	value    V
}

// PreservingFolding looks keys up by their folded form but remembers how
// each key was spelled when it was last set; iteration yields those
// spellings.
type PreservingFolding[K comparable, V any] struct {
	folder Folder[K]
	store  *Ordered[K, foldEntry[K, V]]
}

// NewPreservingFolding creates a folding mapping seeded with items, which
// may be nil. A nil folder leaves keys unchanged.
func NewPreservingFolding[K comparable, V any](folder Folder[K], items iter.Seq2[K, V]) *PreservingFolding[K, V] {
	if folder == nil {
		folder = identity[K]
	}
	m := &PreservingFolding[K, V]{
		folder: folder,
		store:  NewOrdered[K, foldEntry[K, V]](),
	}
	if items != nil {
		for k, v := range items {
			m.store.put(folder(k), foldEntry[K, V]{original: k, value: v})
		}
	}
	return m
}

func (m *PreservingFolding[K, V]) Mutable() bool { return true }

func (m *PreservingFolding[K, V]) Get(key K) (V, error) {
	e, ok := m.store.data[m.folder(key)]
	if !ok {
		var zero V
		return zero, missing(key)
	}
	return e.value, nil
}

// Set stores value under the folded key and records key as the spelling to
// report.
func (m *PreservingFolding[K, V]) Set(key K, value V) error {
	m.store.put(m.folder(key), foldEntry[K, V]{original: key, value: value})
	return nil
}

func (m *PreservingFolding[K, V]) Delete(key K) error {
	folded := m.folder(key)
	if _, ok := m.store.data[folded]; !ok {
		return missing(key)
	}
	return m.store.Delete(folded)
}

// Keys yields the remembered original spellings in insertion order.
func (m *PreservingFolding[K, V]) Keys() (iter.Seq[K], error) {
	return func(yield func(K) bool) {
		for _, folded := range m.store.order {
			if !yield(m.store.data[folded].original) {
				return
			}
		}
	}, nil
}

func (m *PreservingFolding[K, V]) Items() (iter.Seq2[K, V], error) {
	return func(yield func(K, V) bool) {
		for _, folded := range m.store.order {
			e := m.store.data[folded]
			if !yield(e.original, e.value) {
				return
			}
		}
	}, nil
}

func (m *PreservingFolding[K, V]) Contains(key K) (bool, error) {
	_, ok := m.store.data[m.folder(key)]
	return ok, nil
}

func (m *PreservingFolding[K, V]) Len() (int, error) { return m.store.Len() }

func (m *PreservingFolding[K, V]) Clear() error { return m.store.Clear() }

// Refold rebuilds the folded index from the remembered original keys. A nil
// folder keeps the current one, which is what a folder depending on outside
// state needs after that state changed. Originals that collide under the new
// folder collapse to the one set last.
func (m *PreservingFolding[K, V]) Refold(folder Folder[K]) {
	if folder != nil {
		m.folder = folder
	}
	old := m.store
	m.store = NewOrdered[K, foldEntry[K, V]]()
	for _, folded := range old.order {
		e := old.data[folded]
		m.store.put(m.folder(e.original), e)
	}
}

// Copy returns an independent mapping with the same folder and entries.
func (m *PreservingFolding[K, V]) Copy() *PreservingFolding[K, V] {
	items, _ := m.Items()
	return NewPreservingFolding(m.folder, items)
}

// NonPreservingFolding stores values under folded keys only; iteration
// yields the folded forms.
type NonPreservingFolding[K comparable, V any] struct {
	folder Folder[K]
	store  *Ordered[K, V]
}

// NewNonPreservingFolding creates a folding mapping seeded with items, which
// may be nil. A nil folder leaves keys unchanged.
func NewNonPreservingFolding[K comparable, V any](folder Folder[K], items iter.Seq2[K, V]) *NonPreservingFolding[K, V] {
	if folder == nil {
		folder = identity[K]
	}
	m := &NonPreservingFolding[K, V]{
		folder: folder,
		store:  NewOrdered[K, V](),
	}
	if items != nil {
		for k, v := range items {
			m.store.put(folder(k), v)
		}
	}
	return m
}

func (m *NonPreservingFolding[K, V]) Mutable() bool { return true }

func (m *NonPreservingFolding[K, V]) Get(key K) (V, error) {
	v, ok := m.store.data[m.folder(key)]
	if !ok {
		return v, missing(key)
	}
	return v, nil
}

func (m *NonPreservingFolding[K, V]) Set(key K, value V) error {
	m.store.put(m.folder(key), value)
	return nil
}

func (m *NonPreservingFolding[K, V]) Delete(key K) error {
	folded := m.folder(key)
	if _, ok := m.store.data[folded]; !ok {
		return missing(key)
	}
	return m.store.Delete(folded)
}

func (m *NonPreservingFolding[K, V]) Keys() (iter.Seq[K], error) { return m.store.Keys() }

func (m *NonPreservingFolding[K, V]) Items() (iter.Seq2[K, V], error) { return m.store.Items() }

func (m *NonPreservingFolding[K, V]) Contains(key K) (bool, error) {
	_, ok := m.store.data[m.folder(key)]
	return ok, nil
}

func (m *NonPreservingFolding[K, V]) Len() (int, error) { return m.store.Len() }

func (m *NonPreservingFolding[K, V]) Clear() error { return m.store.Clear() }

// Copy returns an independent mapping with the same folder and entries.
func (m *NonPreservingFolding[K, V]) Copy() *NonPreservingFolding[K, V] {
	items, _ := m.store.Items()
	return NewNonPreservingFolding(m.folder, items)
}
