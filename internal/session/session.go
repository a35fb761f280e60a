// Package session orchestrates the library, position tracker, and
// translation cache in response to rendering-engine events, and owns the
// supersession rule for overlapping word lookups.
package session

import (
	"context"
	"log"
	"sync"

	"lectern/internal/errors"
	"lectern/internal/library"
	"lectern/internal/position"
	"lectern/internal/translate"
	"lectern/internal/word"
)

// Event names a session event stream.
type Event string

const (
	// EventRelocated fires after a relocation has been processed; the
	// payload is a RelocationUpdate.
	EventRelocated Event = "relocated"
	// EventTooltip fires when the tooltip state changes; the payload is a
	// TooltipState.
	EventTooltip Event = "tooltip"
)

// RelocationUpdate is the payload of EventRelocated.
type RelocationUpdate struct {
	Locator  string
	Progress int
}

// Rect is the screen-space bounding rectangle of a text selection, carried
// through from the rendering engine so the UI can anchor the tooltip.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// TooltipState is the payload of EventTooltip. Word is the normalized
// selection, which the UI uses as the toggle identity key. Unavailable
// distinguishes "service unreachable" from a legitimate "no translation".
type TooltipState struct {
	Word        string
	Translation string
	Found       bool
	Visible     bool
	Unavailable bool
	Anchor      Rect
}

// State is a snapshot of a session for the UI layer.
type State struct {
	DocumentID string
	Locator    string
	Progress   int
	Tooltip    TooltipState
}

// Controller builds sessions over the stores and releases per-document
// resources when a document is removed from the library.
type Controller struct {
	library *library.Library
	tracker *position.Tracker
	cache   *translate.Cache

	mu       sync.Mutex
	sessions map[string][]*Session
}

// NewController wires the controller into the library's removal hook.
func NewController(lib *library.Library, tracker *position.Tracker, cache *translate.Cache) *Controller {
	c := &Controller{
		library:  lib,
		tracker:  tracker,
		cache:    cache,
		sessions: make(map[string][]*Session),
	}
	lib.OnRelease(c.releaseDocument)
	return c
}

// Open starts a reading session: the document is touched, the saved
// locator (if any) is resumed, and the session is registered for resource
// release. A missing document is NOT_FOUND.
func (c *Controller) Open(ctx context.Context, documentID string) (*Session, error) {
	rec, err := c.library.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := c.library.Touch(ctx, documentID); err != nil {
		return nil, err
	}

	locator, _, err := c.tracker.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ctrl:     c,
		doc:      rec,
		locator:  locator,
		progress: rec.Progress,
		handlers: make(map[Event]map[int]func(any)),
	}

	c.mu.Lock()
	c.sessions[documentID] = append(c.sessions[documentID], s)
	c.mu.Unlock()
	return s, nil
}

// Close tears down every open session.
func (c *Controller) Close() {
	c.mu.Lock()
	var all []*Session
	for _, list := range c.sessions {
		all = append(all, list...)
	}
	c.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}

// releaseDocument closes all sessions of a removed document and drops
// their content handles.
func (c *Controller) releaseDocument(documentID string) {
	c.mu.Lock()
	list := c.sessions[documentID]
	delete(c.sessions, documentID)
	c.mu.Unlock()
	for _, s := range list {
		s.Close()
	}
}

// forget removes one closed session from the registry.
func (c *Controller) forget(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.sessions[s.doc.ID]
	for i, other := range list {
		if other == s {
			c.sessions[s.doc.ID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(c.sessions[s.doc.ID]) == 0 {
		delete(c.sessions, s.doc.ID)
	}
}

// Session is one open reading session. Its mutex serializes event handling
// so relocations apply in arrival order.
type Session struct {
	ctrl *Controller
	doc  *library.DocumentRecord

	mu        sync.Mutex
	closed    bool
	locator   string
	progress  int
	tooltip   TooltipState
	latestGen int64

	handlers map[Event]map[int]func(any)
	nextSub  int
}

// DocumentID returns the id of the document this session reads.
func (s *Session) DocumentID() string {
	return s.doc.ID
}

// Content returns the document payload for the rendering engine, or nil
// once the session is closed.
func (s *Session) Content() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.doc.Content
}

// Current returns a snapshot of the session state.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		DocumentID: s.doc.ID,
		Locator:    s.locator,
		Progress:   s.progress,
		Tooltip:    s.tooltip,
	}
}

// On subscribes a handler to an event stream and returns its disposer.
// Handlers run without the session mutex held, so they may read session
// state; they stop firing for events that arrive after Close.
func (s *Session) On(event Event, fn func(payload any)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	if s.handlers[event] == nil {
		s.handlers[event] = make(map[int]func(any))
	}
	id := s.nextSub
	s.nextSub++
	s.handlers[event][id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers[event], id)
	}
}

// Close tears down the session: subscriptions are unregistered, the
// content handle is dropped, and later events are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.handlers = make(map[Event]map[int]func(any))
	s.mu.Unlock()
	s.ctrl.forget(s)
}

// HandleRelocated processes a page-change event from the rendering engine.
// The locator is adopted in memory and saved first; progress is computed
// and persisted after. A failed save keeps the in-memory locator and is
// retried implicitly on the next relocation. A failed progress computation
// keeps the previous percentage and never fails the relocation.
func (s *Session) HandleRelocated(ctx context.Context, locator string, fn position.PercentageFunc) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.locator = locator
	saveErr := s.ctrl.tracker.Save(ctx, s.doc.ID, locator)
	if saveErr != nil {
		log.Printf("position save failed for %s, keeping in-memory locator: %v", s.doc.ID, saveErr)
	}

	if pct, err := position.ComputeProgress(locator, fn); err == nil {
		if stored, uerr := s.ctrl.library.UpdateProgress(ctx, s.doc.ID, pct); uerr == nil {
			s.progress = stored
		}
	}

	update := RelocationUpdate{Locator: s.locator, Progress: s.progress}
	hs := s.snapshotHandlers(EventRelocated)
	s.mu.Unlock()

	for _, h := range hs {
		h(update)
	}
	return saveErr
}

// HandleSelection processes a selected-text event. Selecting the word
// already shown toggles the tooltip off. Otherwise a lookup is issued; its
// result is applied only if no newer lookup was issued by this session in
// the meantime (stale resolutions return SUPERSEDED and change nothing).
func (s *Session) HandleSelection(ctx context.Context, rawText string, anchor Rect) (*TooltipState, error) {
	key := word.Normalize(rawText)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil
	}
	if key == "" || (s.tooltip.Visible && s.tooltip.Word == key) {
		state := TooltipState{Word: key}
		s.tooltip = state
		hs := s.snapshotHandlers(EventTooltip)
		s.mu.Unlock()
		for _, h := range hs {
			h(state)
		}
		return &state, nil
	}
	gen := s.ctrl.cache.NextGeneration()
	s.latestGen = gen
	s.mu.Unlock()

	res, err := s.ctrl.cache.LookupGeneration(ctx, rawText, gen)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil
	}
	if gen != s.latestGen {
		s.mu.Unlock()
		return nil, errors.NewSuperseded(key, gen, s.latestGen)
	}

	var state TooltipState
	switch {
	case err != nil && errors.Is(err, errors.ErrLookupUnavailable):
		state = TooltipState{Word: key, Visible: true, Unavailable: true, Anchor: anchor}
	case err != nil:
		s.mu.Unlock()
		return nil, err
	default:
		state = TooltipState{
			Word:        res.Word,
			Translation: res.Translation,
			Found:       res.Found,
			Visible:     true,
			Anchor:      anchor,
		}
	}

	s.tooltip = state
	hs := s.snapshotHandlers(EventTooltip)
	s.mu.Unlock()

	for _, h := range hs {
		h(state)
	}
	return &state, nil
}

// snapshotHandlers copies an event's handlers so they can run after the
// session mutex is released. Callers hold s.mu.
func (s *Session) snapshotHandlers(event Event) []func(any) {
	hs := make([]func(any), 0, len(s.handlers[event]))
	for _, h := range s.handlers[event] {
		hs = append(hs, h)
	}
	return hs
}
