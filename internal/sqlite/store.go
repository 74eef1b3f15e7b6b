// Package sqlite implements the metadata store on SQLite. Each namespace is
// a set of string entries that can be read back through the lazy, snapshot
// and pull mappings of pkg/mappings.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/mappings/internal/logger"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

var _ types.Store = (*Store)(nil)

// Store implements types.Store. The sqlite backend keeps a database file in
// DataDir; the memory backend keeps a private in-memory database that is
// dropped on Detach.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewStore creates a detached store. Call Attach before use.
func NewStore() *Store {
	return &Store{}
}

// Attach validates config and opens the backend it names.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dsn, err := dataSource(config)
	if err != nil {
		return err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dsn, err)
	}
	// One connection: an in-memory database is private to its connection,
	// and a file database gets serialized writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	s.db = db
	s.config = config
	s.attached = true
	logger.Debug("store attached", "backend", config.Backend, "dsn", dsn)
	return nil
}

// dataSource returns the database/sql DSN for config, creating DataDir for
// the sqlite backend.
func dataSource(config types.Config) (string, error) {
	if config.Backend == types.BackendMemory {
		return ":memory:", nil
	}
	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dataDir, dbFileName), nil
}

// Detach closes the database. After Detach every operation, including reads
// through mappings obtained earlier, returns ErrStoreDetached. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	s.db = nil
	s.attached = false
	logger.Debug("store detached", "backend", s.config.Backend)
	return nil
}

// Config returns the configuration of the current attachment.
func (s *Store) Config() types.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// checkAttached must be called with s.mu held.
func (s *Store) checkAttached() error {
	if !s.attached {
		return types.ErrStoreDetached
	}
	return nil
}
