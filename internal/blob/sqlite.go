package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps blobs in a local SQLite database. This is the default
// backend for single-machine deployments; no external service required.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (or creates) the blob database at the given path,
// creating parent directories as needed.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating blob dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening blob db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		name       TEXT PRIMARY KEY,
		content    BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put stores content under name, replacing any previous row.
func (s *SQLiteStore) Put(ctx context.Context, name string, content []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (name, content, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		name, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("putting blob %s: %w", name, err)
	}
	return nil
}

// Get fetches the blob content by name.
func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM blobs WHERE name = ?`, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting blob %s: %w", name, err)
	}
	return content, nil
}

// Head returns the blob's metadata without its content.
func (s *SQLiteStore) Head(ctx context.Context, name string) (*Metadata, error) {
	meta := &Metadata{Name: name}
	err := s.db.QueryRowContext(ctx,
		`SELECT length(content), updated_at FROM blobs WHERE name = ?`, name).
		Scan(&meta.Size, &meta.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("heading blob %s: %w", name, err)
	}
	return meta, nil
}
