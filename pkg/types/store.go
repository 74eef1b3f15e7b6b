package types

import (
	"errors"
	"time"
)

// Entry is one persisted key/value pair of a metadata namespace.
type Entry struct {
	EntryID   string    `json:"entry_id" yaml:"entry_id"`
	Namespace string    `json:"namespace" yaml:"namespace"`
	Key       string    `json:"key" yaml:"key"`
	Value     string    `json:"value" yaml:"value"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store persists namespaced string entries and hands out read-only mapping
// views over a namespace. Callers attach to a backend, read and write, and
// detach when done.
type Store interface {
	// Attach opens the backend described by config, creating DataDir if it
	// does not exist. Returns ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Put creates or replaces the entry for key in ns and returns its ID.
	// Replacing keeps the ID.
	Put(ns, key, value string) (string, error)

	// Remove deletes the entry for key in ns.
	// Returns ErrMissingKey if there is none.
	Remove(ns, key string) error

	// Entry returns the stored entry for key in ns.
	// Returns ErrMissingKey if there is none.
	Entry(ns, key string) (Entry, error)

	// Namespaces lists namespaces holding at least one entry, sorted.
	Namespaces() ([]string, error)

	// Lazy returns a mapping whose key set is read on first use and whose
	// values are read one query per key.
	Lazy(ns string) (Mapping[string, string], error)

	// Snapshot returns a mapping that reads every value of ns in one query
	// on first value access.
	Snapshot(ns string) (Mapping[string, string], error)

	// Pull returns a non-enumerable mapping that answers pinned keys from
	// pinned and everything else with a query.
	Pull(ns string, pinned map[string]string) (Mapping[string, string], error)
}

// Store lifecycle and argument errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrNamespaceEmpty  = errors.New("namespace must not be empty")
	ErrKeyEmpty        = errors.New("key must not be empty")
)
