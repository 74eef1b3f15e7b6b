package types

import "iter"

// Mapping is the contract every mapping variant implements. Derived
// operations (membership, size, pop, clear, comparison and so on) are built
// from these primitives by package mappings and work uniformly for every
// implementation.
type Mapping[K comparable, V any] interface {
	// Get returns the value stored under key.
	// Returns ErrMissingKey if the key is absent.
	Get(key K) (V, error)

	// Set stores value under key.
	// Returns ErrUnmodifiable if the mapping does not accept mutation.
	Set(key K, value V) error

	// Delete removes the entry for key.
	// Returns ErrMissingKey if the key is absent, ErrUnmodifiable if the
	// mapping does not accept mutation.
	Delete(key K) error

	// Keys returns a sequence over the keys currently present. Order is
	// unspecified unless the implementation documents otherwise.
	// Returns ErrNotSupported if the key domain cannot be enumerated.
	Keys() (iter.Seq[K], error)

	// Mutable reports whether Set, Delete and the mutating derived
	// operations are permitted. The value is fixed per concrete type.
	Mutable() bool
}

// Container is implemented by mappings that answer membership faster than
// a full Get.
type Container[K comparable] interface {
	Contains(key K) (bool, error)
}

// Sizer is implemented by mappings that know their size without counting
// keys.
type Sizer interface {
	Len() (int, error)
}

// Clearer is implemented by mappings that can drop every entry at once.
type Clearer interface {
	Clear() error
}

// ItemIterator is implemented by mappings that can yield entries without a
// Get per key.
type ItemIterator[K comparable, V any] interface {
	Items() (iter.Seq2[K, V], error)
}

// Hasher is implemented by mappings that define a content hash.
// Mappings that are structurally unhashable return ErrNotSupported.
type Hasher interface {
	Hash() (uint64, error)
}
