package blob

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "blobs.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestSQLiteGetMissing verifies absent blobs report ErrNotFound rather than
// a generic error.
func TestSQLiteGetMissing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get(context.Background(), "nope"); !IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := store.Head(context.Background(), "nope"); !IsNotFound(err) {
		t.Errorf("Head(missing) error = %v, want ErrNotFound", err)
	}
}

// TestSQLitePutGetRoundTrip verifies stored content comes back byte-identical.
func TestSQLitePutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	content := []byte(`{"profile":null,"sessions":[]}`)
	if err := store.Put(ctx, "data.json", content); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "data.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %s, want %s", got, content)
	}

	meta, err := store.Head(ctx, "data.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if meta.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", meta.Size, len(content))
	}
}

// TestSQLitePutOverwrites verifies a second put replaces content without
// duplication.
func TestSQLitePutOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "data.json", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "data.json", []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "data.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %s, want second", got)
	}
}

// TestSQLitePutIdempotent verifies writing the same content twice succeeds
// and yields the same stored content.
func TestSQLitePutIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	content := []byte("same")
	if err := store.Put(ctx, "data.json", content); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "data.json", content); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "data.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "same" {
		t.Errorf("content = %s, want same", got)
	}
}
