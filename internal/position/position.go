// Package position persists per-document reading locators and derives
// progress percentages from them. A locator is an opaque token produced by
// the rendering engine; it is stored and returned verbatim, never parsed.
package position

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lectern/internal/errors"
	"lectern/internal/store"
)

// PercentageFunc converts a locator to a fraction in [0,1]. It is supplied
// by the rendering engine once its location index is built and may be nil
// or failing before that.
type PercentageFunc func(locator string) (float64, error)

// Entry is the persisted locator for one document. At most one entry per
// document; saves overwrite.
type Entry struct {
	DocumentID string    `json:"document_id"`
	Locator    string    `json:"locator"`
	SavedAt    time.Time `json:"saved_at"`
}

// Tracker wraps the positions collection.
type Tracker struct {
	store *store.Store
	clock func() time.Time
}

// New creates a Tracker over the given store.
func New(s *store.Store) *Tracker {
	return &Tracker{store: s, clock: time.Now}
}

// WithClock overrides the time source for tests.
func (t *Tracker) WithClock(clock func() time.Time) *Tracker {
	t.clock = clock
	return t
}

// Load returns the last saved locator for a document. ok is false when the
// document has never been opened.
func (t *Tracker) Load(ctx context.Context, documentID string) (locator string, ok bool, err error) {
	payload, err := t.store.Get(ctx, store.CollectionPositions, documentID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	e := Entry{}
	if err := json.Unmarshal(payload, &e); err != nil {
		return "", false, errors.NewStorageIO("decode position "+documentID, err)
	}
	return e.Locator, true, nil
}

// Save persists the locator, overwriting any previous entry (last write
// wins).
func (t *Tracker) Save(ctx context.Context, documentID, locator string) error {
	payload, err := json.Marshal(Entry{
		DocumentID: documentID,
		Locator:    locator,
		SavedAt:    t.clock(),
	})
	if err != nil {
		return errors.NewStorageIO("encode position "+documentID, err)
	}
	return t.store.Put(ctx, store.CollectionPositions, documentID, payload)
}

// Clear removes the saved position for a document. Clearing a missing
// entry is a no-op.
func (t *Tracker) Clear(ctx context.Context, documentID string) error {
	return t.store.Delete(ctx, store.CollectionPositions, documentID)
}

// ComputeProgress converts a locator to an integer percent via the
// engine-provided percentage function, flooring the fraction. It never
// panics and never blocks a save: a nil, failing, or out-of-range function
// reports PROGRESS_UNAVAILABLE and the caller keeps its previous value.
func ComputeProgress(locator string, fn PercentageFunc) (int, error) {
	if fn == nil {
		return 0, errors.NewProgressUnavailable("percentage function not available")
	}

	pct, err := func() (p float64, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("percentage function panicked: %v", r)
			}
		}()
		return fn(locator)
	}()
	if err != nil {
		return 0, errors.NewProgressUnavailable(err.Error())
	}
	if pct < 0 || pct > 1 {
		return 0, errors.NewProgressUnavailable(fmt.Sprintf("percentage out of range: %v", pct))
	}
	return int(pct * 100), nil
}
