// Package dictionary holds the bundled word dictionary consulted before the
// translation cache and the remote provider. It is synchronous and always
// available, which keeps common words working offline.
package dictionary

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"lectern/internal/word"
)

// Dictionary maps normalized words to translations.
type Dictionary struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{entries: make(map[string]string)}
}

// NewBuiltin returns a dictionary pre-populated with the bundled
// common-word entries.
func NewBuiltin() *Dictionary {
	d := New()
	for w, tr := range builtinEntries {
		d.entries[w] = tr
	}
	return d
}

// Lookup returns the translation for a normalized word.
func (d *Dictionary) Lookup(normalized string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tr, ok := d.entries[normalized]
	return tr, ok
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// set stores one entry under its normalized key and reports whether the key
// already existed. Empty keys and empty translations are rejected.
func (d *Dictionary) set(rawWord, translation string) (existed bool, err error) {
	key := word.Normalize(rawWord)
	if key == "" {
		return false, fmt.Errorf("word normalizes to empty")
	}
	if translation == "" {
		return false, fmt.Errorf("translation is empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, existed = d.entries[key]
	d.entries[key] = translation
	return existed, nil
}

// LoadJSON merges a {"word": "translation"} object into the dictionary and
// returns the number of entries merged. Keys are normalized on the way in.
func (d *Dictionary) LoadJSON(r io.Reader) (int, error) {
	var raw map[string]string
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return 0, fmt.Errorf("failed to parse dictionary JSON: %w", err)
	}

	merged := 0
	for w, tr := range raw {
		if _, err := d.set(w, tr); err != nil {
			continue
		}
		merged++
	}
	return merged, nil
}
