package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/highlight/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/pubsub"
)

// Store is a SQLite-backed configuration store.
type Store struct {
	db     *sql.DB
	path   string
	config *configStore
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.highlight/data/settings.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".highlight", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "settings.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}
	s.config = &configStore{store: s}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ConfigStore returns a ConfigStore interface backed by this store.
// Every call returns the same instance, so subscriptions are shared.
func (s *Store) ConfigStore() driven.ConfigStore {
	return s.config
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_settings.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Config Store ====================

// configStore implements driven.ConfigStore.
type configStore struct {
	store *Store
	hub   pubsub.Hub
}

var _ driven.ConfigStore = (*configStore)(nil)

// Get returns the stored value for each key of defaults, or the default.
func (c *configStore) Get(defaults map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(defaults))
	for key, def := range defaults {
		var raw string
		err := c.store.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&raw)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			result[key] = def
		case err != nil:
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrStoreUnavailable, key, err)
		default:
			var v any
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				return nil, fmt.Errorf("%w: decoding %s: %v", domain.ErrMalformedConfig, key, err)
			}
			result[key] = v
		}
	}
	return result, nil
}

// Set upserts values in one transaction and notifies subscribers of the
// keys whose stored value changed. A nil value deletes the key.
func (c *configStore) Set(values map[string]any) error {
	tx, err := c.store.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	changes := make(domain.ChangeSet)
	for key, value := range values {
		old, existed, err := readValue(tx, key)
		if err != nil {
			return err
		}

		if value == nil {
			if !existed {
				continue
			}
			if _, err := tx.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
				return fmt.Errorf("deleting %s: %w", key, err)
			}
			changes[key] = domain.Change{OldValue: old}
			continue
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshalling %s: %w", key, err)
		}
		// Compare in decoded JSON form, which is what Get returns.
		var canonical any
		if err := json.Unmarshal(encoded, &canonical); err != nil {
			return fmt.Errorf("canonicalising %s: %w", key, err)
		}

		_, err = tx.Exec(`
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, string(encoded))
		if err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}

		prev := map[string]any{}
		if existed {
			prev[key] = old
		}
		for k, change := range domain.Diff(prev, map[string]any{key: canonical}) {
			changes[k] = change
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}

	c.hub.Publish(changes)
	return nil
}

// Subscribe registers a change listener. Only writes made through this
// store are observed.
func (c *configStore) Subscribe(listener func(domain.ChangeSet)) func() {
	return c.hub.Subscribe(listener)
}

// Path returns the database file path.
func (c *configStore) Path() string {
	return c.store.path
}

func readValue(tx *sql.Tx, key string) (any, bool, error) {
	var raw string
	err := tx.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// An unreadable old value is replaced; report it as absent.
		return nil, false, nil
	}
	return v, true, nil
}
