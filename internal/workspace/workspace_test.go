package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/editor"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(ttl)
	s.now = clock.Now
	return s, clock
}

func TestContentHashHex_Consistency(t *testing.T) {
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h := ContentHashHex([]byte("hello world")); h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestStore_CreateGet(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	sess := store.Create(doctree.NewDoc(doctree.TextParagraph("hi")), "Notes", "markdown", []byte("hi"))

	if sess.ID == "" {
		t.Fatal("expected a session ID")
	}
	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sess {
		t.Error("expected the same session back")
	}
	info := store.Info(got)
	if info.Size != 6 {
		t.Errorf("expected size 6, got %d", info.Size)
	}
	if info.ContentHash != ContentHashHex([]byte("hi")) {
		t.Errorf("expected content hash, got %q", info.ContentHash)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	if _, err := store.Get("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_TTLCleanup(t *testing.T) {
	store, clock := newTestStore(time.Minute)
	old := store.Create(nil, "", "blank", nil)

	clock.Advance(2 * time.Minute)
	fresh := store.Create(nil, "", "blank", nil)

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if _, err := store.Get(old.ID); !errors.Is(err, ErrNotFound) {
		t.Error("expected expired session to be cleaned up")
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Errorf("expected fresh session to survive, got %v", err)
	}
}

func TestStore_GetExtendsLifetime(t *testing.T) {
	store, clock := newTestStore(time.Minute)
	sess := store.Create(nil, "", "blank", nil)

	for i := 0; i < 3; i++ {
		clock.Advance(40 * time.Second)
		if _, err := store.Get(sess.ID); err != nil {
			t.Fatalf("round %d: expected session alive, got %v", i, err)
		}
	}
	clock.Advance(61 * time.Second)
	if _, err := store.Get(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expiry after idle ttl, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected expired session removed on access, got %d", store.Len())
	}
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	sess := store.Create(nil, "", "blank", nil)
	if !store.Delete(sess.ID) {
		t.Error("expected delete to report an existing session")
	}
	if store.Delete(sess.ID) {
		t.Error("expected second delete to report nothing")
	}
}

func TestStore_ListOldestFirst(t *testing.T) {
	store, clock := newTestStore(time.Hour)
	a := store.Create(nil, "a", "blank", nil)
	clock.Advance(time.Second)
	b := store.Create(nil, "b", "blank", nil)

	list := store.List()
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Errorf("expected [a b], got %+v", list)
	}
}

func TestSession_DoSerializes(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	sess := store.Create(nil, "", "blank", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sess.Do(func(doc *editor.Document) error {
				return doc.Chain().InsertContentAt(1, doctree.NewText("x")).Run()
			})
		}()
	}
	wg.Wait()

	if v := sess.Document().Version(); v != 20 {
		t.Errorf("expected version 20, got %d", v)
	}
	if got := sess.Document().Doc().TextContent(); len(got) != 20 {
		t.Errorf("expected 20 characters, got %q", got)
	}
}

func TestStore_StartStopsWithContext(t *testing.T) {
	store, clock := newTestStore(time.Minute)
	store.Create(nil, "", "blank", nil)
	clock.Advance(time.Hour)

	removed := make(chan int, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := store.Start(ctx, time.Millisecond, func(n int) {
		select {
		case removed <- n:
		default:
		}
	})

	select {
	case n := <-removed:
		if n != 1 {
			t.Errorf("expected 1 removed, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected janitor to clean up")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected janitor to stop")
	}
}
