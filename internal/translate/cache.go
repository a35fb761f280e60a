// Package translate resolves on-screen words to translations. Resolution
// consults the bundled dictionary, then the persisted TTL cache, then the
// remote provider, whose result is written back into the cache. Concurrent
// lookups for the same normalized word share one in-flight remote call.
package translate

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"lectern/internal/config"
	"lectern/internal/dictionary"
	"lectern/internal/errors"
	"lectern/internal/store"
	"lectern/internal/word"
)

// notFoundSentinel marks a definitive provider miss in the persisted cache
// so a permanently missing word is not re-fetched on every selection. The
// NUL prefix keeps it out of the space of real translations.
const notFoundSentinel = "\x00not-found"

// Source identifies which step of the resolution chain produced a result.
type Source string

const (
	SourceDictionary Source = "dictionary"
	SourceCache      Source = "cache"
	SourceRemote     Source = "remote"
	SourceNone       Source = "none"
)

// Result is a resolved lookup. Word is the normalized form; the UI uses it
// as the tooltip identity key. Generation orders overlapping lookups.
type Result struct {
	Word        string
	Translation string
	Found       bool
	Source      Source
	Generation  int64
}

// entry is one persisted cache record. Entries older than the TTL are
// treated as absent and refreshed; there is no LRU eviction.
type entry struct {
	Value     string `json:"value"`
	FetchedAt int64  `json:"fetched_at"`
}

// blob is the singleton cache payload persisted in the cache collection.
type blob struct {
	Entries map[string]entry `json:"entries"`
}

// Cache is the process-wide translation cache. Construct one per process
// and share it; its lifetime is tied to the store, not to any session.
type Cache struct {
	store    *store.Store
	dict     *dictionary.Dictionary
	provider Provider
	cfg      *config.Config
	clock    func() time.Time
	ttl      time.Duration

	generation atomic.Int64
	flight     singleflight.Group

	// mu serializes read-modify-write cycles on the persisted blob.
	mu sync.Mutex
}

// NewCache creates a Cache. provider may be nil, in which case words beyond
// the dictionary and cache resolve as unavailable.
func NewCache(s *store.Store, d *dictionary.Dictionary, p Provider, cfg *config.Config) *Cache {
	ttlDays := cfg.CacheTTLDays
	if ttlDays <= 0 {
		ttlDays = 7
	}
	return &Cache{
		store:    s,
		dict:     d,
		provider: p,
		cfg:      cfg,
		clock:    time.Now,
		ttl:      time.Duration(ttlDays) * 24 * time.Hour,
	}
}

// WithClock overrides the time source. Tests use it to age cache entries
// past the TTL.
func (c *Cache) WithClock(clock func() time.Time) *Cache {
	c.clock = clock
	return c
}

// NextGeneration assigns a new lookup generation. Callers that need to
// compare a result against the latest issued lookup take a generation here
// and pass it to LookupGeneration.
func (c *Cache) NextGeneration() int64 {
	return c.generation.Add(1)
}

// Generation returns the most recently assigned generation.
func (c *Cache) Generation() int64 {
	return c.generation.Load()
}

// Lookup resolves a raw selected word, assigning a fresh generation.
func (c *Cache) Lookup(ctx context.Context, rawWord string) (*Result, error) {
	return c.LookupGeneration(ctx, rawWord, c.NextGeneration())
}

// LookupGeneration resolves a raw selected word under an already assigned
// generation. Resolution order: bundled dictionary, unexpired cache entry,
// remote provider with write-back. A word no source knows resolves with
// Found=false; LOOKUP_UNAVAILABLE is returned only when the dictionary and
// cache miss and the provider cannot be reached.
func (c *Cache) LookupGeneration(ctx context.Context, rawWord string, generation int64) (*Result, error) {
	key := word.Normalize(rawWord)
	if key == "" {
		return &Result{Word: key, Found: false, Source: SourceNone, Generation: generation}, nil
	}

	if tr, ok := c.dict.Lookup(key); ok {
		return &Result{Word: key, Translation: tr, Found: true, Source: SourceDictionary, Generation: generation}, nil
	}

	if e, ok, err := c.readEntry(ctx, key); err == nil && ok {
		if e.Value == notFoundSentinel {
			return &Result{Word: key, Found: false, Source: SourceCache, Generation: generation}, nil
		}
		return &Result{Word: key, Translation: e.Value, Found: true, Source: SourceCache, Generation: generation}, nil
	}

	// One remote call per key; concurrent lookups for the same key adopt
	// the shared outcome. The flight carries a context detached from this
	// caller's cancellation so cancelling one waiter cannot abort the call
	// for the others, and the result still populates the cache. The
	// provider's own timeout bounds the call.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.flight.Do(key, func() (any, error) {
		return c.resolveRemote(flightCtx, key)
	})
	if err != nil {
		return nil, errors.NewLookupUnavailable(key, err)
	}

	res := v.(remoteOutcome)
	return &Result{
		Word:        key,
		Translation: res.translation,
		Found:       res.found,
		Source:      SourceRemote,
		Generation:  generation,
	}, nil
}

// remoteOutcome is the shared result of one in-flight provider call.
type remoteOutcome struct {
	translation string
	found       bool
}

// resolveRemote calls the provider and writes the outcome back into the
// persisted cache. A definitive miss is cached under the sentinel; an
// unreachable provider caches nothing so the next lookup retries. A failed
// write-back is logged and the fetched result is still returned: a storage
// failure degrades caching, not the lookup itself.
func (c *Cache) resolveRemote(ctx context.Context, key string) (remoteOutcome, error) {
	if c.provider == nil {
		return remoteOutcome{}, goerrors.New("no translation provider configured")
	}

	tr, err := c.provider.Translate(ctx, key, c.cfg.SourceLang, c.cfg.TargetLang)
	if err != nil {
		if goerrors.Is(err, ErrWordNotFound) {
			if werr := c.writeEntry(ctx, key, notFoundSentinel); werr != nil {
				log.Printf("translation cache write failed for %q: %v", key, werr)
			}
			return remoteOutcome{found: false}, nil
		}
		return remoteOutcome{}, err
	}

	if werr := c.writeEntry(ctx, key, tr); werr != nil {
		log.Printf("translation cache write failed for %q: %v", key, werr)
	}
	return remoteOutcome{translation: tr, found: true}, nil
}

// readEntry returns the unexpired cache entry for key, if any. An entry
// whose age is at or beyond the TTL is treated as absent.
func (c *Cache) readEntry(ctx context.Context, key string) (entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.loadBlob(ctx)
	if err != nil {
		return entry{}, false, err
	}
	e, ok := b.Entries[key]
	if !ok {
		return entry{}, false, nil
	}
	age := c.clock().Sub(time.Unix(e.FetchedAt, 0))
	if age >= c.ttl {
		return entry{}, false, nil
	}
	return e, true, nil
}

// writeEntry stamps and stores one entry. The load and store happen under
// the blob mutex so concurrent writers for different keys cannot lose
// updates.
func (c *Cache) writeEntry(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.loadBlob(ctx)
	if err != nil {
		return err
	}
	b.Entries[key] = entry{Value: value, FetchedAt: c.clock().Unix()}
	return c.storeBlob(ctx, b)
}

// Sweep removes expired entries from the persisted blob and returns how
// many were dropped. The TTL is the only eviction mechanism.
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.loadBlob(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	now := c.clock()
	for key, e := range b.Entries {
		if now.Sub(time.Unix(e.FetchedAt, 0)) >= c.ttl {
			delete(b.Entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := c.storeBlob(ctx, b); err != nil {
		return 0, err
	}
	return removed, nil
}

// loadBlob reads the singleton cache payload, returning an empty blob when
// none has been persisted yet. Callers hold c.mu.
func (c *Cache) loadBlob(ctx context.Context) (*blob, error) {
	payload, err := c.store.Get(ctx, store.CollectionCache, store.CacheBlobID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return &blob{Entries: make(map[string]entry)}, nil
		}
		return nil, err
	}

	b := &blob{}
	if err := json.Unmarshal(payload, b); err != nil {
		return nil, errors.NewStorageIO("decode translation cache", err)
	}
	if b.Entries == nil {
		b.Entries = make(map[string]entry)
	}
	return b, nil
}

// storeBlob persists the singleton cache payload. Callers hold c.mu.
func (c *Cache) storeBlob(ctx context.Context, b *blob) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return errors.NewStorageIO("encode translation cache", err)
	}
	return c.store.Put(ctx, store.CollectionCache, store.CacheBlobID, payload)
}
