package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

// timeLayout is how created_at and updated_at are stored.
const timeLayout = time.RFC3339Nano

func missingEntry(ns, key string) error {
	return fmt.Errorf("%w: %s/%s", types.ErrMissingKey, ns, key)
}

func validateRef(ns, key string) error {
	if ns == "" {
		return types.ErrNamespaceEmpty
	}
	if key == "" {
		return types.ErrKeyEmpty
	}
	return nil
}

// Put creates or replaces the entry for key in ns. A new entry gets a UUID
// v7; a replaced entry keeps its ID and creation time.
func (s *Store) Put(ns, key, value string) (string, error) {
	if err := validateRef(ns, key); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAttached(); err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning put: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)

	var id string
	err = tx.QueryRow("SELECT entry_id FROM entries WHERE namespace = ? AND key = ?", ns, key).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		newID, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating UUID v7: %w", err)
		}
		id = newID.String()
		if _, err := tx.Exec(
			"INSERT INTO entries (entry_id, namespace, key, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			id, ns, key, value, now, now,
		); err != nil {
			return "", fmt.Errorf("inserting %s/%s: %w", ns, key, err)
		}
	case err != nil:
		return "", fmt.Errorf("looking up %s/%s: %w", ns, key, err)
	default:
		if _, err := tx.Exec("UPDATE entries SET value = ?, updated_at = ? WHERE entry_id = ?", value, now, id); err != nil {
			return "", fmt.Errorf("updating %s/%s: %w", ns, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing put: %w", err)
	}
	return id, nil
}

// Remove deletes the entry for key in ns.
func (s *Store) Remove(ns, key string) error {
	if err := validateRef(ns, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAttached(); err != nil {
		return err
	}

	res, err := s.db.Exec("DELETE FROM entries WHERE namespace = ? AND key = ?", ns, key)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", ns, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", ns, key, err)
	}
	if n == 0 {
		return missingEntry(ns, key)
	}
	return nil
}

// Entry returns the full entry for key in ns.
func (s *Store) Entry(ns, key string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return types.Entry{}, err
	}

	row := s.db.QueryRow(
		"SELECT entry_id, namespace, key, value, created_at, updated_at FROM entries WHERE namespace = ? AND key = ?",
		ns, key,
	)
	e, err := hydrateEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Entry{}, missingEntry(ns, key)
	}
	if err != nil {
		return types.Entry{}, fmt.Errorf("getting %s/%s: %w", ns, key, err)
	}
	return e, nil
}

func hydrateEntry(row *sql.Row) (types.Entry, error) {
	var (
		e                types.Entry
		created, updated string
	)
	if err := row.Scan(&e.EntryID, &e.Namespace, &e.Key, &e.Value, &created, &updated); err != nil {
		return types.Entry{}, err
	}
	var err error
	if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return types.Entry{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return types.Entry{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return e, nil
}

// Namespaces lists the namespaces holding entries, sorted.
func (s *Store) Namespaces() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return nil, err
	}
	return s.queryStrings("SELECT DISTINCT namespace FROM entries ORDER BY namespace")
}

// keys returns the keys of ns in insertion order.
func (s *Store) keys(ns string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return nil, err
	}
	return s.queryStrings("SELECT key FROM entries WHERE namespace = ? ORDER BY rowid", ns)
}

// value returns the value for key in ns.
func (s *Store) value(ns, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return "", err
	}

	var v string
	err := s.db.QueryRow("SELECT value FROM entries WHERE namespace = ? AND key = ?", ns, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", missingEntry(ns, key)
	}
	if err != nil {
		return "", fmt.Errorf("getting %s/%s: %w", ns, key, err)
	}
	return v, nil
}

// values returns every value of ns.
func (s *Store) values(ns string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT key, value FROM entries WHERE namespace = ?", ns)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", ns, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", ns, err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", ns, err)
	}
	return out, nil
}

// queryStrings must be called with s.mu held.
func (s *Store) queryStrings(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	return out, nil
}
