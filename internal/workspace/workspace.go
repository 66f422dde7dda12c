// Package workspace keeps editable documents in memory, keyed by ID and
// evicted after a period without use.
package workspace

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/editor"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("document not found")

// Session is one open document. Tool calls on a session run one at a time.
type Session struct {
	mu sync.Mutex

	ID          string
	Title       string
	Source      string
	ContentHash string
	CreatedAt   time.Time

	doc *editor.Document

	// guarded by the store's lock
	lastUsed time.Time
}

// Info is a JSON-safe description of a session.
type Info struct {
	ID          string    `json:"doc_id"`
	Title       string    `json:"title,omitempty"`
	Source      string    `json:"source"`
	ContentHash string    `json:"content_hash,omitempty"`
	Size        int       `json:"size"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsed    time.Time `json:"last_used"`
}

// Do runs fn with exclusive use of the session's document.
func (s *Session) Do(fn func(doc *editor.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc)
}

// Document returns the session's editor. Use Do for multi-step work.
func (s *Session) Document() *editor.Document { return s.doc }

// Store is a thread-safe session registry with TTL eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create opens a new session on doc. raw, when given, is the source the
// document was built from and is only used for its content hash.
func (s *Store) Create(doc *doctree.Node, title, source string, raw []byte) *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Title:     title,
		Source:    source,
		CreatedAt: now,
		doc:       editor.New(doc),
		lastUsed:  now,
	}
	if len(raw) > 0 {
		sess.ContentHash = ContentHashHex(raw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a live session and marks it used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	now := s.now()
	if now.Sub(sess.lastUsed) > s.ttl {
		delete(s.sessions, id)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sess.lastUsed = now
	return sess, nil
}

// Delete closes a session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Info describes a session.
func (s *Store) Info(sess *Session) Info {
	s.mu.Lock()
	lastUsed := sess.lastUsed
	s.mu.Unlock()
	return Info{
		ID:          sess.ID,
		Title:       sess.Title,
		Source:      sess.Source,
		ContentHash: sess.ContentHash,
		Size:        sess.doc.Size(),
		Version:     sess.doc.Version(),
		CreatedAt:   sess.CreatedAt,
		LastUsed:    lastUsed,
	}
}

// List describes every session, oldest first.
func (s *Store) List() []Info {
	s.mu.Lock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.Unlock()

	out := make([]Info, 0, len(list))
	for _, sess := range list {
		out = append(out, s.Info(sess))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes expired sessions and returns how many it removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Start runs Cleanup every interval until ctx is done. The returned
// channel is closed once the janitor has stopped.
func (s *Store) Start(ctx context.Context, interval time.Duration, onCleanup func(removed int)) <-chan struct{} {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(); n > 0 && onCleanup != nil {
					onCleanup(n)
				}
			}
		}
	}()
	return done
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
