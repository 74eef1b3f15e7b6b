package mappings

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"iter"
	"maps"
	"reflect"
	"slices"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

var (
	_ types.Mapping[string, int] = (*Immutable[string, int])(nil)
	_ types.Hasher               = (*Immutable[string, int])(nil)
)

// hashSeed is fixed for the life of the process so that equal immutable
// mappings hash equally wherever they were built.
var hashSeed = maphash.MakeSeed()

// Immutable is a frozen snapshot. Every mutation fails with ErrUnmodifiable
// and leaves the contents untouched. Its hash depends only on its entries,
// never on the order they were supplied in.
type Immutable[K comparable, V any] struct {
	entries *Ordered[K, V]

	hashed  bool
	hash    uint64
	hashErr error
}

// NewImmutable snapshots m.
func NewImmutable[K comparable, V any](m map[K]V) *Immutable[K, V] {
	return ImmutableFrom(maps.All(m))
}

// ImmutableFrom snapshots items. Later duplicates overwrite earlier ones;
// iteration follows first appearance.
func ImmutableFrom[K comparable, V any](items iter.Seq2[K, V]) *Immutable[K, V] {
	return &Immutable[K, V]{entries: OrderedFrom(items)}
}

// Freeze snapshots any mapping.
func Freeze[K comparable, V any](m types.Mapping[K, V]) (*Immutable[K, V], error) {
	items, err := Items(m)
	if err != nil {
		return nil, err
	}
	return ImmutableFrom(items), nil
}

func (m *Immutable[K, V]) Mutable() bool { return false }

func (m *Immutable[K, V]) Get(key K) (V, error) { return m.entries.Get(key) }

func (m *Immutable[K, V]) Set(K, V) error { return unmodifiable("set") }

func (m *Immutable[K, V]) Delete(K) error { return unmodifiable("delete") }

func (m *Immutable[K, V]) Clear() error { return unmodifiable("clear") }

func (m *Immutable[K, V]) Keys() (iter.Seq[K], error) { return m.entries.Keys() }

func (m *Immutable[K, V]) Items() (iter.Seq2[K, V], error) { return m.entries.Items() }

func (m *Immutable[K, V]) Contains(key K) (bool, error) { return m.entries.Contains(key) }

func (m *Immutable[K, V]) Len() (int, error) { return m.entries.Len() }

// Hash returns a content hash: the per-entry hashes are sorted before being
// combined, so insertion history does not matter. Entries holding values
// Go cannot compare (slices, maps, funcs) make the mapping unhashable.
func (m *Immutable[K, V]) Hash() (uint64, error) {
	if !m.hashed {
		m.hash, m.hashErr = m.computeHash()
		m.hashed = true
	}
	return m.hash, m.hashErr
}

func (m *Immutable[K, V]) computeHash() (sum uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			sum, err = 0, fmt.Errorf("%w: hash of unhashable value: %v", types.ErrNotSupported, r)
		}
	}()
	pairs := make([]uint64, 0, len(m.entries.order))
	for k, v := range m.entries.data {
		var h maphash.Hash
		h.SetSeed(hashSeed)
		maphash.WriteComparable(&h, k)
		maphash.WriteComparable(&h, any(v))
		pairs = append(pairs, h.Sum64())
	}
	slices.Sort(pairs)
	buf := make([]byte, 0, 8*len(pairs))
	for _, p := range pairs {
		buf = binary.LittleEndian.AppendUint64(buf, p)
	}
	return maphash.Bytes(hashSeed, buf), nil
}

// Equal reports whether other holds exactly the entries of m. Values are
// compared with reflect.DeepEqual.
func (m *Immutable[K, V]) Equal(other types.Mapping[K, V]) (bool, error) {
	return EqualFunc[K, V](m, other, func(a, b V) bool { return reflect.DeepEqual(a, b) })
}

// Thaw returns a mutable copy of the snapshot.
func (m *Immutable[K, V]) Thaw() *Ordered[K, V] {
	items, _ := m.entries.Items()
	return OrderedFrom(items)
}
