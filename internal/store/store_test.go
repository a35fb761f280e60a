package store

import (
	"context"
	"testing"

	"lectern/internal/config"
	"lectern/internal/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), config.DefaultConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, CollectionDocuments, "doc-1", []byte(`{"title":"Walden"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	payload, err := s.Get(ctx, CollectionDocuments, "doc-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(payload) != `{"title":"Walden"}` {
		t.Errorf("payload = %q", payload)
	}
}

func TestGet_MissingRecord(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), CollectionDocuments, "nope")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get missing = %v, want NOT_FOUND", err)
	}
}

func TestPut_OverwritesAtomically(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, CollectionPositions, "doc-1", []byte("locator-a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, CollectionPositions, "doc-1", []byte("locator-b")); err != nil {
		t.Fatalf("Put (overwrite) failed: %v", err)
	}

	payload, err := s.Get(ctx, CollectionPositions, "doc-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(payload) != "locator-b" {
		t.Errorf("payload = %q, want %q (last write wins)", payload, "locator-b")
	}
}

func TestDelete_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, CollectionDocuments, "doc-1", []byte("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, CollectionDocuments, "doc-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// Deleting again is a no-op, not an error.
	if err := s.Delete(ctx, CollectionDocuments, "doc-1"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}

	if _, err := s.Get(ctx, CollectionDocuments, "doc-1"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get after delete = %v, want NOT_FOUND", err)
	}
}

func TestListAll_OrderedByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if err := s.Put(ctx, CollectionDocuments, id, []byte(id)); err != nil {
			t.Fatalf("Put %s failed: %v", id, err)
		}
	}
	// A record in another collection must not leak in.
	if err := s.Put(ctx, CollectionPositions, "a", []byte("loc")); err != nil {
		t.Fatalf("Put position failed: %v", err)
	}

	records, err := s.ListAll(ctx, CollectionDocuments)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, want := range []string{"a", "b", "c"} {
		if records[i].ID != want {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, want)
		}
	}
}

func TestListAll_EmptyCollection(t *testing.T) {
	s := openTestStore(t)

	records, err := s.ListAll(context.Background(), CollectionCache)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Put(ctx, CollectionDocuments, "doc-1", []byte("persisted")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	payload, err := s2.Get(ctx, CollectionDocuments, "doc-1")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(payload) != "persisted" {
		t.Errorf("payload = %q, want %q", payload, "persisted")
	}
}
