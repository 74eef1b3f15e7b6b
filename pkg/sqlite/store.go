// Package sqlite exposes the SQLite metadata store while keeping its
// implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/mappings/internal/sqlite"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

// NewStore creates a detached metadata store.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".mapctl-db",
//	})
//	defer store.Detach()
//	settings, err := store.Snapshot("settings")
func NewStore() types.Store {
	return sqlite.NewStore()
}
