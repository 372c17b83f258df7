package blob

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/config"
)

// Open creates the configured blob store backend. The returned close func is
// a no-op for backends without connections to release.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := OpenSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case config.BackendPostgres:
		store, err := NewPostgresStore(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendHTTP:
		return NewHTTPStore(cfg.HTTP.BaseURL, cfg.HTTP.Token), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
