// Package gateway is the persistence layer for the application document. It
// translates between the in-memory AppData and the blob store's single
// well-known blob, and owns no state of its own.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/blob"
	"github.com/claude/liftlog/internal/models"
)

// DefaultBlobName is the well-known name of the application document.
const DefaultBlobName = "trainer-data.json"

// Gateway loads and saves the whole application document. Absence of the
// document is a valid first-run state, not an error.
type Gateway struct {
	store blob.Store
	name  string
	log   *slog.Logger
}

// New creates a gateway over the given store. name falls back to
// DefaultBlobName when empty.
func New(store blob.Store, name string, log *slog.Logger) *Gateway {
	if name == "" {
		name = DefaultBlobName
	}
	return &Gateway{store: store, name: name, log: log}
}

// Load fetches the document. A missing blob yields the default empty
// document; any other failure (transport, malformed content) surfaces as an
// error so the caller can degrade to an explicit error state.
func (g *Gateway) Load(ctx context.Context) (models.AppData, error) {
	content, err := g.store.Get(ctx, g.name)
	if blob.IsNotFound(err) {
		g.log.Info("no document yet, returning default", "blob", g.name)
		return models.Default(), nil
	}
	if err != nil {
		return models.AppData{}, fmt.Errorf("loading document: %w", err)
	}

	var data models.AppData
	if err := json.Unmarshal(content, &data); err != nil {
		return models.AppData{}, fmt.Errorf("decoding document: %w", err)
	}
	if data.Sessions == nil {
		data.Sessions = []models.SessionLog{}
	}
	return data, nil
}

// Save serializes the full document and overwrites the stored blob. No
// retries: on failure the previously stored document is untouched.
func (g *Gateway) Save(ctx context.Context, data models.AppData) error {
	content, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := g.store.Put(ctx, g.name, content); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Exists reports whether the document has been written at least once.
func (g *Gateway) Exists(ctx context.Context) (bool, error) {
	_, err := g.store.Head(ctx, g.name)
	if blob.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking document: %w", err)
	}
	return true, nil
}

// BlobName returns the well-known document name.
func (g *Gateway) BlobName() string {
	return g.name
}
