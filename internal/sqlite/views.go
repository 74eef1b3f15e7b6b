package sqlite

import (
	"github.com/mesh-intelligence/mappings/internal/logger"
	"github.com/mesh-intelligence/mappings/pkg/mappings"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

// view checks the store is attached and ns is usable before handing out a
// mapping. The mapping itself queries lazily, so it reports ErrStoreDetached
// if the store is detached by the time it is read.
func (s *Store) view(ns string) error {
	if ns == "" {
		return types.ErrNamespaceEmpty
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkAttached()
}

// keySource reads the keys of ns on first use.
func (s *Store) keySource(ns string) mappings.KeySource[string] {
	return mappings.KeysFrom(func() ([]string, error) {
		keys, err := s.keys(ns)
		if err == nil {
			logger.Debug("namespace keys loaded", "ns", ns, "count", len(keys))
		}
		return keys, err
	})
}

// Lazy returns a read-only mapping over ns that issues one query per value.
func (s *Store) Lazy(ns string) (types.Mapping[string, string], error) {
	if err := s.view(ns); err != nil {
		return nil, err
	}
	m, err := mappings.NewLazy(s.keySource(ns), func(key string) (string, error) {
		return s.value(ns, key)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Snapshot returns a read-only mapping over ns that loads every value in one
// query on first value access. Entries written after that load are not seen.
func (s *Store) Snapshot(ns string) (types.Mapping[string, string], error) {
	if err := s.view(ns); err != nil {
		return nil, err
	}
	m, err := mappings.NewLazyFull(s.keySource(ns), func([]string) (map[string]string, error) {
		values, err := s.values(ns)
		if err == nil {
			logger.Debug("namespace loaded", "ns", ns, "count", len(values))
		}
		return values, err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Pull returns a mapping that serves pinned first and queries ns for every
// other key. It cannot be enumerated.
func (s *Store) Pull(ns string, pinned map[string]string) (types.Mapping[string, string], error) {
	if err := s.view(ns); err != nil {
		return nil, err
	}
	m, err := mappings.NewPull(func(key string) (string, error) {
		return s.value(ns, key)
	}, pinned)
	if err != nil {
		return nil, err
	}
	return m, nil
}
