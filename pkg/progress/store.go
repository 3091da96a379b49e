// Package progress persists onboarding state for one browsing session:
// which checklist items each role has completed, whether onboarding was
// dismissed, and a one-shot request to auto-start a tour after navigation.
//
// Backends may fail (disabled storage, a full disk, a dead Redis). The Store
// logs and swallows those failures: onboarding degrades, the app keeps going.
package progress

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vanderheijden86/spotlight/pkg/debug"
	"github.com/vanderheijden86/spotlight/pkg/metrics"
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// ErrStorageUnavailable is returned by backends that cannot reach storage.
var ErrStorageUnavailable = errors.New("progress storage unavailable")

// Backend is session-agnostic key/value storage. Keys already carry the
// session id. Backends that expire data expire a whole session at once,
// measured from its last write, never single keys.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Take reads and deletes key in one step.
	Take(ctx context.Context, key string) (value string, ok bool, err error)
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithOnFirstComplete registers a callback for an item's first completion in
// this session.
func WithOnFirstComplete(fn func(role, itemID string)) Option {
	return func(s *Store) { s.onFirstComplete = fn }
}

// Store is the session-scoped progress record. Access is expected to be
// sequential; the mutex only guards against hosts that touch it from a
// background command.
type Store struct {
	backend Backend
	session string
	timeout time.Duration

	onFirstComplete func(role, itemID string)

	mu        sync.Mutex
	completed map[string]bool
	dismissed bool
}

// New returns a store for session on backend.
func New(backend Backend, session string, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		session:   session,
		timeout:   2 * time.Second,
		completed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the session id.
func (s *Store) Session() string { return s.session }

const keyPrefix = "spotlight:"

func (s *Store) key(parts ...string) string {
	return keyPrefix + s.session + ":" + strings.Join(parts, ":")
}

// sessionPrefix returns the "spotlight:<session>:" part of key. A key outside
// that layout is its own session.
func sessionPrefix(key string) string {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return key
	}
	i := strings.IndexByte(rest, ':')
	if i < 0 {
		return key
	}
	return key[:len(keyPrefix)+i+1]
}

func completedKey(role, itemID string) []string {
	return []string{"done", role, itemID}
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// MarkComplete sets the item's flag for role. It is idempotent and never
// reverts; it reports whether this call was the first completion.
func (s *Store) MarkComplete(role, itemID string) bool {
	defer metrics.Timer(metrics.ProgressIO)()
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.key(completedKey(role, itemID)...)
	if s.completed[k] {
		return false
	}
	first := !s.loadCompletedLocked(k)
	s.completed[k] = true

	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Set(ctx, k, "1"); err != nil {
		debug.Warn("progress: mark %s/%s complete: %v", role, itemID, err)
	}
	if first && s.onFirstComplete != nil {
		s.onFirstComplete(role, itemID)
	}
	return first
}

// IsComplete reports whether role has completed itemID in this session.
func (s *Store) IsComplete(role, itemID string) bool {
	defer metrics.Timer(metrics.ProgressIO)()
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.key(completedKey(role, itemID)...)
	if s.completed[k] {
		return true
	}
	if s.loadCompletedLocked(k) {
		s.completed[k] = true
		return true
	}
	return false
}

func (s *Store) loadCompletedLocked(k string) bool {
	ctx, cancel := s.ctx()
	defer cancel()
	v, ok, err := s.backend.Get(ctx, k)
	if err != nil {
		debug.Warn("progress: read %s: %v", k, err)
		return false
	}
	return ok && v == "1"
}

// Checklist fills Completed on a copy of items for role.
func (s *Store) Checklist(role string, items []tour.ChecklistItem) []tour.ChecklistItem {
	out := make([]tour.ChecklistItem, len(items))
	for i, item := range items {
		item.Completed = s.IsComplete(role, item.ID)
		out[i] = item
	}
	return out
}

// Remaining counts incomplete items.
func (s *Store) Remaining(role string, items []tour.ChecklistItem) int {
	n := 0
	for _, item := range items {
		if !s.IsComplete(role, item.ID) {
			n++
		}
	}
	return n
}

// Dismiss records that the user skipped onboarding.
func (s *Store) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed = true
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Set(ctx, s.key("dismissed"), "1"); err != nil {
		debug.Warn("progress: dismiss onboarding: %v", err)
	}
}

// Dismissed reports whether onboarding was dismissed in this session.
func (s *Store) Dismissed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dismissed {
		return true
	}
	ctx, cancel := s.ctx()
	defer cancel()
	v, ok, err := s.backend.Get(ctx, s.key("dismissed"))
	if err != nil {
		debug.Warn("progress: read dismissed flag: %v", err)
		return false
	}
	s.dismissed = ok && v == "1"
	return s.dismissed
}

// RequestAutoStart asks the next page to start tourID once it loads. A newer
// request replaces an unconsumed one.
func (s *Store) RequestAutoStart(tourID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Set(ctx, s.key("autostart"), tourID); err != nil {
		debug.Warn("progress: request auto-start of %q: %v", tourID, err)
	}
}

// ConsumeAutoStart returns the pending tour id and clears it. A second call
// returns ok=false until the next request.
func (s *Store) ConsumeAutoStart() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.ctx()
	defer cancel()
	v, ok, err := s.backend.Take(ctx, s.key("autostart"))
	if err != nil {
		debug.Warn("progress: consume auto-start: %v", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Clear erases role's onboarding state in this session, as if the session's
// storage had been cleared: the listed items become incomplete again, the
// dismissal is forgotten and any pending auto-start is dropped.
func (s *Store) Clear(role string, items []tour.ChecklistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := []string{s.key("dismissed"), s.key("autostart")}
	for _, item := range items {
		k := s.key(completedKey(role, item.ID)...)
		keys = append(keys, k)
		delete(s.completed, k)
	}
	s.dismissed = false

	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.backend.Delete(ctx, keys...); err != nil {
		debug.Warn("progress: clear %s onboarding: %v", role, err)
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
