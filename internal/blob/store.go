// Package blob abstracts the remote document store behind a small key/value
// contract: put, get, and an existence check. Absence of a blob is reported
// as ErrNotFound, distinct from transport or server failures.
package blob

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and Head when no blob exists under the
// requested name. Callers treat it as "no document yet", never as a failure.
var ErrNotFound = errors.New("blob not found")

// Metadata describes a stored blob without its content.
type Metadata struct {
	Name      string
	Size      int64
	UpdatedAt time.Time
}

// Store is the backing blob store contract. Put overwrites any existing
// content under the same name; writes are idempotent.
type Store interface {
	Put(ctx context.Context, name string, content []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Head(ctx context.Context, name string) (*Metadata, error)
}

// IsNotFound reports whether err is the absent-blob case.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
