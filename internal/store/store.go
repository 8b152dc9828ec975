package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Tier selects which isolation level a settings operation targets.
type Tier string

const (
	// TierSync holds settings intended to follow the user across machines.
	TierSync Tier = "sync"
	// TierLocal holds machine-only settings.
	TierLocal Tier = "local"
	// TierSession holds process-lifetime settings, never persisted.
	TierSession Tier = "session"
)

// ReadError wraps a failed read from the underlying storage.
type ReadError struct {
	Tier Tier
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("store: read from %s tier failed: %v", e.Tier, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failed write to the underlying storage.
type WriteError struct {
	Tier Tier
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: write to %s tier failed: %v", e.Tier, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store is a namespaced key/value settings store. The sync and local tiers are
// backed by SQLite; the session tier lives in memory and is lost when the
// process exits. Accessed by every surface without transactional guarantees:
// concurrent writers are last-write-wins.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	session map[string]string
}

// Open opens (or creates) the settings database at the given path and seeds
// first-run defaults.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			tier       TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (tier, key)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	s := &Store{db: db, session: make(map[string]string)}
	if err := s.bootstrap(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// bootstrap seeds settings the rest of the system assumes exist. Matches the
// install-time initialization of the repository key.
func (s *Store) bootstrap(ctx context.Context) error {
	vals, err := s.Get(ctx, []string{KeyRepository}, TierSync)
	if err != nil {
		return err
	}
	if _, ok := vals[KeyRepository]; !ok {
		return s.Set(ctx, map[string]string{KeyRepository: ""}, TierSync)
	}
	return nil
}

// Get fetches the requested keys from a tier. Keys with no stored value are
// absent from the returned map.
func (s *Store) Get(ctx context.Context, keys []string, tier Tier) (map[string]string, error) {
	if err := validateTier(tier); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))

	if tier == TierSession {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, k := range keys {
			if v, ok := s.session[k]; ok {
				out[k] = v
			}
		}
		return out, nil
	}

	if len(keys) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, 0, len(keys)+1)
	args = append(args, string(tier))
	for _, k := range keys {
		args = append(args, k)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE tier = ? AND key IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, &ReadError{Tier: tier, Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, &ReadError{Tier: tier, Err: err}
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, &ReadError{Tier: tier, Err: err}
	}
	return out, nil
}

// Set writes every key/value pair into a tier, overwriting existing values.
func (s *Store) Set(ctx context.Context, data map[string]string, tier Tier) error {
	if err := validateTier(tier); err != nil {
		return err
	}
	if tier == TierSession {
		s.mu.Lock()
		defer s.mu.Unlock()
		for k, v := range data {
			s.session[k] = v
		}
		return nil
	}
	for k, v := range data {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO settings (tier, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(tier, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			string(tier), k, v)
		if err != nil {
			return &WriteError{Tier: tier, Err: err}
		}
	}
	return nil
}

// Remove deletes the given keys from a tier. Missing keys are not an error.
func (s *Store) Remove(ctx context.Context, keys []string, tier Tier) error {
	if err := validateTier(tier); err != nil {
		return err
	}
	if tier == TierSession {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, k := range keys {
			delete(s.session, k)
		}
		return nil
	}
	for _, k := range keys {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM settings WHERE tier = ? AND key = ?`, string(tier), k); err != nil {
			return &WriteError{Tier: tier, Err: err}
		}
	}
	return nil
}

// Clear removes everything stored in a tier.
func (s *Store) Clear(ctx context.Context, tier Tier) error {
	if err := validateTier(tier); err != nil {
		return err
	}
	if tier == TierSession {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.session = make(map[string]string)
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE tier = ?`, string(tier)); err != nil {
		return &WriteError{Tier: tier, Err: err}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// validateTier rejects tiers the store does not know about. An unknown tier is
// a caller bug, never silently mapped to a default.
func validateTier(tier Tier) error {
	switch tier {
	case TierSync, TierLocal, TierSession:
		return nil
	default:
		return fmt.Errorf("store: unsupported tier %q", tier)
	}
}
