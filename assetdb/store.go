// Package assetdb is a SQLite-backed peel.AssetStore. Payloads survive
// restarts, so a persistent asset table can be shared between sessions.
//
// Usage:
//
//	st, err := assetdb.Open("assets.db")
//	importer := peel.NewImporter(store, extractor, peel.ImporterOptions{Assets: st})
package assetdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phanxgames/peel"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	store      TEXT NOT NULL,
	key        TEXT NOT NULL,
	mime       TEXT NOT NULL DEFAULT '',
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (unixepoch()),
	PRIMARY KEY (store, key)
)`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store keeps asset payloads in an SQLite table keyed by (store, key).
type Store struct {
	db *sql.DB
}

var _ peel.AssetStore = (*Store)(nil)

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("assetdb: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("assetdb: open: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("assetdb: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("assetdb: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores data under ref, replacing any previous payload.
func (s *Store) Put(ctx context.Context, ref peel.AssetRef, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (store, key, mime, data) VALUES (?, ?, ?, ?)
		ON CONFLICT (store, key) DO UPDATE SET mime = excluded.mime, data = excluded.data`,
		ref.Store, ref.Key, ref.MIME, data)
	if err != nil {
		return fmt.Errorf("assetdb: put %s/%s: %w", ref.Store, ref.Key, err)
	}
	return nil
}

// Get returns the payload stored under ref, or an error wrapping
// peel.ErrAssetNotFound.
func (s *Store) Get(ctx context.Context, ref peel.AssetRef) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM assets WHERE store = ? AND key = ?`, ref.Store, ref.Key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assetdb: %s/%s: %w", ref.Store, ref.Key, peel.ErrAssetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("assetdb: get %s/%s: %w", ref.Store, ref.Key, err)
	}
	return data, nil
}

// Delete removes the payload under ref. Deleting a missing ref is not an
// error.
func (s *Store) Delete(ctx context.Context, ref peel.AssetRef) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM assets WHERE store = ? AND key = ?`, ref.Store, ref.Key); err != nil {
		return fmt.Errorf("assetdb: delete %s/%s: %w", ref.Store, ref.Key, err)
	}
	return nil
}

// Len returns the number of stored payloads.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("assetdb: count: %w", err)
	}
	return n, nil
}
