// Package fragcache provides a SQLite-backed cache of rendered fragments keyed
// by entry name and content signature, so unchanged content bundles skip
// re-evaluation across build cycles.
package fragcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a fragment cache. Safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens a fragment cache at path. Use ":memory:" for a cache
// scoped to the process lifetime.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open fragment cache: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize fragment cache schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fragments (
		entry TEXT NOT NULL,
		signature TEXT NOT NULL,
		html TEXT NOT NULL,
		created INTEGER NOT NULL,
		PRIMARY KEY (entry, signature)
	);
	CREATE INDEX IF NOT EXISTS idx_fragments_entry ON fragments(entry);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Signature computes the content signature of a compiled payload. Two payloads
// with equal signatures render identically.
func Signature(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached fragment for entry at the given signature.
func (s *Store) Get(ctx context.Context, entry, signature string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var html string
	err := s.db.QueryRowContext(ctx,
		"SELECT html FROM fragments WHERE entry = ? AND signature = ?",
		entry, signature,
	).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fragment cache get %s: %w", entry, err)
	}
	return html, true, nil
}

// Put stores a rendered fragment, superseding any older signatures for the
// entry (a content bundle has exactly one current signature).
func (s *Store) Put(ctx context.Context, entry, signature, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fragment cache put %s: %w", entry, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM fragments WHERE entry = ?", entry); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("fragment cache put %s: %w", entry, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO fragments (entry, signature, html, created) VALUES (?, ?, ?, ?)",
		entry, signature, html, time.Now().Unix(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("fragment cache put %s: %w", entry, err)
	}
	return tx.Commit()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
