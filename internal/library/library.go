// Package library is the durable catalog of imported documents, stored in
// the documents collection of the persistent store.
package library

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"lectern/internal/errors"
	"lectern/internal/store"
)

// ReleaseFunc is notified after a document is removed so the session layer
// can free any ephemeral resources (content handles) bound to that id.
type ReleaseFunc func(documentID string)

// Library wraps the documents collection.
type Library struct {
	store *store.Store
	clock func() time.Time

	mu      sync.Mutex
	release []ReleaseFunc

	// recMu serializes read-modify-write cycles on document records so a
	// concurrent Touch and UpdateProgress cannot lose each other's write,
	// and a Remove cannot race a Touch into resurrecting the record.
	recMu sync.Mutex
}

// New creates a Library over the given store.
func New(s *store.Store) *Library {
	return &Library{store: s, clock: time.Now}
}

// WithClock overrides the time source. Tests use it to control LastOpened.
func (l *Library) WithClock(clock func() time.Time) *Library {
	l.clock = clock
	return l
}

// OnRelease registers a hook invoked after a successful Remove.
func (l *Library) OnRelease(fn ReleaseFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.release = append(l.release, fn)
}

// Add imports content into the catalog. Empty or unrecognized content is
// rejected as INVALID_DOCUMENT. A fresh id is assigned and the record is
// persisted with Progress=0 and LastOpened=now.
func (l *Library) Add(ctx context.Context, content []byte, meta Metadata) (*DocumentRecord, error) {
	if len(content) == 0 {
		return nil, errors.NewInvalidDocument("document content is empty")
	}
	format, ok := DetectFormat(content)
	if !ok {
		return nil, errors.NewInvalidDocument("unrecognized document format")
	}

	meta = sniffMetadata(content, format, meta)

	now := l.clock()
	rec := &DocumentRecord{
		ID:         newID(now),
		Title:      meta.Title,
		Author:     meta.Author,
		CoverURL:   meta.CoverURL,
		Content:    content,
		Format:     format,
		Progress:   0,
		LastOpened: now,
		AddedAt:    now,
	}

	if err := l.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record for id, or NOT_FOUND.
func (l *Library) Get(ctx context.Context, id string) (*DocumentRecord, error) {
	payload, err := l.store.Get(ctx, store.CollectionDocuments, id)
	if err != nil {
		return nil, err
	}
	rec := &DocumentRecord{}
	if err := json.Unmarshal(payload, rec); err != nil {
		return nil, errors.NewStorageIO("decode document "+id, err)
	}
	return rec, nil
}

// List returns all records ordered by LastOpened descending, most recently
// opened first.
func (l *Library) List(ctx context.Context) ([]DocumentRecord, error) {
	records, err := l.store.ListAll(ctx, store.CollectionDocuments)
	if err != nil {
		return nil, err
	}

	out := make([]DocumentRecord, 0, len(records))
	for _, r := range records {
		rec := DocumentRecord{}
		if err := json.Unmarshal(r.Payload, &rec); err != nil {
			return nil, errors.NewStorageIO("decode document "+r.ID, err)
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastOpened.After(out[j].LastOpened)
	})
	return out, nil
}

// Remove deletes the record and its saved position, then notifies the
// release hooks. Removing a missing id is a no-op and hooks do not fire.
func (l *Library) Remove(ctx context.Context, id string) error {
	l.recMu.Lock()
	if _, err := l.store.Get(ctx, store.CollectionDocuments, id); err != nil {
		l.recMu.Unlock()
		if errors.Is(err, errors.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := l.store.Delete(ctx, store.CollectionDocuments, id); err != nil {
		l.recMu.Unlock()
		return err
	}
	if err := l.store.Delete(ctx, store.CollectionPositions, id); err != nil {
		l.recMu.Unlock()
		return err
	}
	l.recMu.Unlock()

	l.mu.Lock()
	hooks := make([]ReleaseFunc, len(l.release))
	copy(hooks, l.release)
	l.mu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
	return nil
}

// Touch sets LastOpened to now. A missing id is NOT_FOUND.
func (l *Library) Touch(ctx context.Context, id string) error {
	l.recMu.Lock()
	defer l.recMu.Unlock()

	rec, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	rec.LastOpened = l.clock()
	return l.put(ctx, rec)
}

// UpdateProgress clamps percent to [0,100] and persists it, returning the
// stored value. The read and write run under the record mutex so a
// concurrent Touch cannot be lost.
func (l *Library) UpdateProgress(ctx context.Context, id string, percent int) (int, error) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	l.recMu.Lock()
	defer l.recMu.Unlock()

	rec, err := l.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	rec.Progress = percent
	if err := l.put(ctx, rec); err != nil {
		return 0, err
	}
	return percent, nil
}

// put serializes and upserts a record.
func (l *Library) put(ctx context.Context, rec *DocumentRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.NewStorageIO("encode document "+rec.ID, err)
	}
	return l.store.Put(ctx, store.CollectionDocuments, rec.ID, payload)
}

// newID generates a ULID for a freshly imported document.
func newID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
