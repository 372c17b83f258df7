package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps blobs in a single `blobs` table. Put is an upsert, so
// overwrites are idempotent and atomic per row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects a pool and pings the database.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Put stores content under name, replacing any previous row.
func (s *PostgresStore) Put(ctx context.Context, name string, content []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO blobs (name, content, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET content = EXCLUDED.content, updated_at = now()`,
		name, content)
	if err != nil {
		return fmt.Errorf("putting blob %s: %w", name, err)
	}
	return nil
}

// Get fetches the blob content by name.
func (s *PostgresStore) Get(ctx context.Context, name string) ([]byte, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM blobs WHERE name = $1`, name).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting blob %s: %w", name, err)
	}
	return content, nil
}

// Head returns the blob's metadata without its content.
func (s *PostgresStore) Head(ctx context.Context, name string) (*Metadata, error) {
	meta := &Metadata{Name: name}
	err := s.pool.QueryRow(ctx,
		`SELECT octet_length(content), updated_at FROM blobs WHERE name = $1`, name).
		Scan(&meta.Size, &meta.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("heading blob %s: %w", name, err)
	}
	return meta, nil
}
