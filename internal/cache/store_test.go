package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// gatedFetcher blocks until released, then returns its configured result.
// It makes fetch completion order fully deterministic in tests.
type gatedFetcher struct {
	gate  chan struct{}
	data  any
	err   error
	calls atomic.Int32
}

func newGatedFetcher(data any, err error) *gatedFetcher {
	return &gatedFetcher{gate: make(chan struct{}), data: data, err: err}
}

func (g *gatedFetcher) fetch(ctx context.Context) (any, error) {
	g.calls.Add(1)
	<-g.gate
	return g.data, g.err
}

func (g *gatedFetcher) release() { close(g.gate) }

// notified returns a channel that receives the key of every entry transition.
func notified(s *Store) <-chan Key {
	ch := make(chan Key, 64)
	s.Subscribe(func(k Key) { ch <- k })
	return ch
}

func awaitKey(t *testing.T, ch <-chan Key, want Key) {
	t.Helper()
	for {
		select {
		case k := <-ch:
			if k == want {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("no notification for %v", want)
		}
	}
}

func TestRead_SingleFlight(t *testing.T) {
	s := NewStore(zerolog.Nop())
	ch := notified(s)
	key := ChatsKey()
	f := newGatedFetcher("chats-v1", nil)

	// Concurrent reads of a missing entry share one fetch.
	r1 := s.Read(context.Background(), key, f.fetch)
	r2 := s.Read(context.Background(), key, f.fetch)
	if !r1.Loading || !r2.Loading {
		t.Fatalf("expected both reads loading, got %+v %+v", r1, r2)
	}

	f.release()
	awaitKey(t, ch, key)

	if got := f.calls.Load(); got != 1 {
		t.Fatalf("expected a single fetch, got %d", got)
	}

	r3 := s.Read(context.Background(), key, f.fetch)
	if r3.Loading || r3.Err != nil || r3.Data != "chats-v1" {
		t.Fatalf("expected settled data, got %+v", r3)
	}
	if got := f.calls.Load(); got != 1 {
		t.Fatalf("settled entry must not refetch, got %d fetches", got)
	}
}

func TestRead_ErrorIsStickyUntilInvalidate(t *testing.T) {
	s := NewStore(zerolog.Nop())
	ch := notified(s)
	key := MessagesKey("c1")

	boom := errors.New("boom")
	f1 := newGatedFetcher(nil, boom)
	s.Read(context.Background(), key, f1.fetch)
	f1.release()
	awaitKey(t, ch, key)

	// The error is surfaced and no new fetch starts on subsequent reads.
	f2 := newGatedFetcher("never", nil)
	r := s.Read(context.Background(), key, f2.fetch)
	if !errors.Is(r.Err, boom) || r.Loading {
		t.Fatalf("expected sticky error, got %+v", r)
	}
	if f2.calls.Load() != 0 {
		t.Fatalf("errored entry must not refetch before invalidation")
	}

	// Invalidation clears the error and triggers a refetch.
	s.Invalidate(key)
	f3 := newGatedFetcher("recovered", nil)
	r = s.Read(context.Background(), key, f3.fetch)
	if !r.Loading || r.Err != nil {
		t.Fatalf("expected loading refetch after invalidate, got %+v", r)
	}
	f3.release()
	awaitKey(t, ch, key)
	r = s.Read(context.Background(), key, f3.fetch)
	if r.Data != "recovered" || r.Err != nil {
		t.Fatalf("expected recovery, got %+v", r)
	}
}

func TestRead_FailedRefetchKeepsPreviousValue(t *testing.T) {
	s := NewStore(zerolog.Nop())
	ch := notified(s)
	key := ChatsKey()

	f1 := newGatedFetcher("v1", nil)
	s.Read(context.Background(), key, f1.fetch)
	f1.release()
	awaitKey(t, ch, key)

	s.Invalidate(key)

	f2 := newGatedFetcher(nil, errors.New("down"))
	s.Read(context.Background(), key, f2.fetch)
	f2.release()
	awaitKey(t, ch, key)

	r := s.Read(context.Background(), key, f2.fetch)
	if r.Data != "v1" {
		t.Fatalf("previous value must be kept as fallback, got %+v", r)
	}
	if r.Err == nil {
		t.Fatalf("refetch failure must be surfaced alongside the fallback")
	}
}

func TestInvalidate_IsPerKey(t *testing.T) {
	s := NewStore(zerolog.Nop())
	ch := notified(s)
	k1 := MessagesKey("c1")
	k2 := MessagesKey("c2")

	f1 := newGatedFetcher("m1", nil)
	f2 := newGatedFetcher("m2", nil)
	s.Read(context.Background(), k1, f1.fetch)
	s.Read(context.Background(), k2, f2.fetch)
	f1.release()
	f2.release()
	awaitKey(t, ch, k1)
	awaitKey(t, ch, k2)

	s.Invalidate(k1)

	// k2 stays settled, k1 refetches.
	r2 := s.Read(context.Background(), k2, f2.fetch)
	if r2.Loading || r2.Data != "m2" {
		t.Fatalf("unrelated key must be untouched, got %+v", r2)
	}
	f3 := newGatedFetcher("m1-v2", nil)
	r1 := s.Read(context.Background(), k1, f3.fetch)
	if !r1.Loading {
		t.Fatalf("invalidated key must refetch, got %+v", r1)
	}
	if f2.calls.Load() != 1 {
		t.Fatalf("unrelated key must not refetch")
	}
}

func TestComplete_OutOfOrderDiscard(t *testing.T) {
	s := NewStore(zerolog.Nop())
	ch := notified(s)
	key := ChatsKey()

	// First fetch starts, then the entry is invalidated while it is still in
	// flight, and a replacement fetch starts.
	stale := newGatedFetcher("stale", nil)
	s.Read(context.Background(), key, stale.fetch)

	s.Invalidate(key)

	fresh := newGatedFetcher("fresh", nil)
	r := s.Read(context.Background(), key, fresh.fetch)
	if !r.Loading {
		t.Fatalf("expected replacement fetch to be in flight")
	}

	// The stale fetch resolves first; its result must be discarded.
	stale.release()
	fresh.release()
	awaitKey(t, ch, key)

	deadline := time.After(5 * time.Second)
	for {
		r = s.Read(context.Background(), key, fresh.fetch)
		if !r.Loading {
			break
		}
		select {
		case <-ch:
		case <-deadline:
			t.Fatalf("entry never settled")
		}
	}
	if r.Data != "fresh" {
		t.Fatalf("out-of-order completion leaked into the entry: %+v", r)
	}
}

func TestClear_DropsEverythingAndDiscardsInFlight(t *testing.T) {
	s := NewStore(zerolog.Nop())
	ch := notified(s)
	k1 := ChatsKey()
	k2 := CurrentUserKey("fp")

	f1 := newGatedFetcher("chats", nil)
	s.Read(context.Background(), k1, f1.fetch)
	f1.release()
	awaitKey(t, ch, k1)

	// k2's fetch is still in flight when the store is cleared.
	inflight := newGatedFetcher("user", nil)
	s.Read(context.Background(), k2, inflight.fetch)

	s.Clear()
	inflight.release()

	// Neither old data nor the in-flight completion survives.
	f2 := newGatedFetcher("chats-new", nil)
	r := s.Read(context.Background(), k1, f2.fetch)
	if r.Data != nil || !r.Loading {
		t.Fatalf("cleared entry must restart empty, got %+v", r)
	}

	f3 := newGatedFetcher("user-new", nil)
	r = s.Read(context.Background(), k2, f3.fetch)
	if r.Data != nil || !r.Loading {
		t.Fatalf("in-flight completion must not survive Clear, got %+v", r)
	}
}

func TestSubscribe_Cancel(t *testing.T) {
	s := NewStore(zerolog.Nop())
	key := ChatsKey()

	var count atomic.Int32
	cancel := s.Subscribe(func(Key) { count.Add(1) })

	f := newGatedFetcher("v", nil)
	s.Read(context.Background(), key, f.fetch)
	f.release()

	deadline := time.After(5 * time.Second)
	for count.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("subscriber never notified")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	before := count.Load()
	s.Invalidate(key)
	if count.Load() != before {
		t.Fatalf("cancelled subscriber must not be notified")
	}
}

func TestKeys(t *testing.T) {
	if ChatsKey() != (Key{Kind: "chats"}) {
		t.Fatalf("unexpected chats key: %+v", ChatsKey())
	}
	if MessagesKey("c1") == MessagesKey("c2") {
		t.Fatalf("message keys must be chat-scoped")
	}
	if CurrentUserKey("a") == CurrentUserKey("b") {
		t.Fatalf("current-user keys must be token-scoped")
	}
	if got := MessagesKey("c1").String(); got == "" {
		t.Fatalf("expected printable key")
	}
}
