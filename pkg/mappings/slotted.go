package mappings

import (
	"fmt"
	"iter"
	"math/bits"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var _ types.Mapping[string, int] = (*Slotted[int])(nil)

// schemaNamespace derives schema IDs; an ID depends only on the canonical
// key tuple.
var schemaNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("github.com/mesh-intelligence/mappings/slotted"))

// Schema is a fixed layout: a sorted, duplicate-free key tuple and the slot
// index of each key. Schemas are obtained from a Registry, which returns the
// same *Schema for the same key set, so schemas may be compared with ==.
type Schema struct {
	id    uuid.UUID
	keys  []string
	index map[string]int
}

// ID returns a name-based UUID derived from the canonical key tuple. It is
// stable across processes.
func (s *Schema) ID() uuid.UUID { return s.id }

// Keys returns the declared keys in slot order.
func (s *Schema) Keys() []string { return slices.Clone(s.keys) }

// Len returns the number of declared keys.
func (s *Schema) Len() int { return len(s.keys) }

// Slot returns the slot index of key.
func (s *Schema) Slot(key string) (int, bool) {
	i, ok := s.index[key]
	return i, ok
}

func (s *Schema) String() string {
	return fmt.Sprintf("schema %s %v", s.id, s.keys)
}

// Registry caches schemas by canonical key tuple. It never evicts: a schema
// lives as long as the registry. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	schemas map[string]*Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// defaultRegistry backs MakeSchema for the life of the process.
var defaultRegistry = NewRegistry()

// MakeSchema returns the process-wide schema for keys. Order and duplicates
// in keys do not matter.
func MakeSchema(keys ...string) *Schema {
	return defaultRegistry.Make(keys...)
}

// Make returns the schema for keys, creating and registering it on first
// request. Concurrent first requests for one key set get the same schema.
func (r *Registry) Make(keys ...string) *Schema {
	canon := slices.Compact(slices.Sorted(slices.Values(keys)))
	id := canonicalID(canon)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.schemas[id]; ok {
		return s
	}
	s := &Schema{
		id:    uuid.NewSHA1(schemaNamespace, []byte(id)),
		keys:  canon,
		index: make(map[string]int, len(canon)),
	}
	for i, k := range canon {
		s.index[k] = i
	}
	r.schemas[id] = s
	return s
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.schemas)
}

// canonicalID length-prefixes each key so that no two tuples share an
// encoding.
func canonicalID(keys []string) string {
	var b []byte
	for _, k := range keys {
		b = strconv.AppendInt(b, int64(len(k)), 10)
		b = append(b, ':')
		b = append(b, k...)
	}
	return string(b)
}

// Slotted is a mutable mapping restricted to the keys of its schema. Values
// live in a slot slice indexed through the schema, with a bitmap recording
// which slots are assigned. Many Slotted instances sharing one schema pay
// for the key table once.
type Slotted[V any] struct {
	schema   *Schema
	slots    []V
	assigned []uint64
}

// NewSlotted creates an empty instance of schema.
func NewSlotted[V any](schema *Schema) *Slotted[V] {
	return &Slotted[V]{
		schema:   schema,
		slots:    make([]V, len(schema.keys)),
		assigned: make([]uint64, (len(schema.keys)+63)/64),
	}
}

// SlottedFrom creates an instance of schema holding items.
// Returns ErrKeyNotAllowed if an item's key is not declared by schema.
func SlottedFrom[V any](schema *Schema, items iter.Seq2[string, V]) (*Slotted[V], error) {
	m := NewSlotted[V](schema)
	for k, v := range items {
		if err := m.Set(k, v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Schema returns the layout m was created with.
func (m *Slotted[V]) Schema() *Schema { return m.schema }

func (m *Slotted[V]) Mutable() bool { return true }

func (m *Slotted[V]) isSet(i int) bool { return m.assigned[i/64]&(1<<(uint(i)%64)) != 0 }

// Get returns the value in key's slot. Undeclared keys and unassigned slots
// both report ErrMissingKey.
func (m *Slotted[V]) Get(key string) (V, error) {
	i, ok := m.schema.index[key]
	if !ok || !m.isSet(i) {
		var zero V
		return zero, missing(key)
	}
	return m.slots[i], nil
}

// Set assigns key's slot.
// Returns ErrKeyNotAllowed if key is not declared by the schema.
func (m *Slotted[V]) Set(key string, value V) error {
	i, ok := m.schema.index[key]
	if !ok {
		return fmt.Errorf("%w: %q is not in %v", types.ErrKeyNotAllowed, key, m.schema.keys)
	}
	m.slots[i] = value
	m.assigned[i/64] |= 1 << (uint(i) % 64)
	return nil
}

func (m *Slotted[V]) Delete(key string) error {
	i, ok := m.schema.index[key]
	if !ok || !m.isSet(i) {
		return missing(key)
	}
	var zero V
	m.slots[i] = zero
	m.assigned[i/64] &^= 1 << (uint(i) % 64)
	return nil
}

// Keys yields assigned keys in schema order.
func (m *Slotted[V]) Keys() (iter.Seq[string], error) {
	return func(yield func(string) bool) {
		for i, k := range m.schema.keys {
			if m.isSet(i) && !yield(k) {
				return
			}
		}
	}, nil
}

func (m *Slotted[V]) Items() (iter.Seq2[string, V], error) {
	return func(yield func(string, V) bool) {
		for i, k := range m.schema.keys {
			if m.isSet(i) && !yield(k, m.slots[i]) {
				return
			}
		}
	}, nil
}

func (m *Slotted[V]) Contains(key string) (bool, error) {
	i, ok := m.schema.index[key]
	return ok && m.isSet(i), nil
}

func (m *Slotted[V]) Len() (int, error) {
	n := 0
	for _, w := range m.assigned {
		n += bits.OnesCount64(w)
	}
	return n, nil
}

func (m *Slotted[V]) Clear() error {
	clear(m.slots)
	clear(m.assigned)
	return nil
}
