// Package cache implements the keyed read cache that synchronizes chat-list,
// chat-detail, and profile reads across the client.
//
// Contract:
//   - Read returns the entry's current snapshot and starts a background
//     fetch when the entry is missing or stale. At most one fetch per key is
//     in flight at a time; concurrent readers share it.
//   - A failed fetch marks the entry errored but preserves the previous
//     value for display fallback. Errored entries are not refetched until
//     invalidated.
//   - Invalidate marks an entry stale so the next Read refetches; it never
//     issues a network call itself.
//   - Completions are applied in generation order: a fetch issued before an
//     invalidation is discarded if it resolves after the invalidation's
//     replacement fetch was issued.
//
// Subscribers are notified after every entry transition so the UI can
// re-read affected keys.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Fetcher loads the value for a key. It runs on a background goroutine with
// the context of the Read call that started it.
type Fetcher func(ctx context.Context) (any, error)

// Result is a point-in-time snapshot of a cache entry.
//
// Data holds the most recent successful value, which may be non-nil even
// while Loading (a refetch in progress) or when Err is set (previous value
// kept as fallback).
type Result struct {
	Data      any
	Loading   bool
	Err       error
	FetchedAt time.Time
}

// entry is the internal cache slot for one key.
type entry struct {
	data      any
	hasData   bool
	err       error
	fetchedAt time.Time

	// stale marks the entry for refetch on next Read.
	stale bool
	// gen is the entry's current generation; bumped by Invalidate. Fetch
	// completions carrying an older generation are discarded.
	gen uint64
	// fetching/fetchGen track the single in-flight fetch for this entry.
	fetching bool
	fetchGen uint64
}

func (e *entry) settled() bool { return e.hasData || e.err != nil }

// Store is the resource query cache. It is safe for concurrent use; all
// writes go through Read completions and Invalidate, never directly.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	gen     uint64
	log     zerolog.Logger

	subs   map[int]func(Key)
	nextID int
}

// NewStore constructs an empty cache.
func NewStore(log zerolog.Logger) *Store {
	return &Store{
		entries: make(map[Key]*entry),
		log:     log,
		subs:    make(map[int]func(Key)),
	}
}

// nextGen returns a store-unique generation number. Generations stay unique
// across Clear so a fetch that survives a reset can never be misapplied to a
// recreated entry.
func (s *Store) nextGen() uint64 {
	s.gen++
	return s.gen
}

// Read returns the current snapshot for key and starts a fetch when the
// entry is missing or stale. Concurrent Reads of the same key share one
// in-flight fetch.
func (s *Store) Read(ctx context.Context, key Key, fetch Fetcher) Result {
	s.mu.Lock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{gen: s.nextGen()}
		s.entries[key] = e
	}

	if e.settled() && !e.stale {
		res := s.snapshot(e)
		s.mu.Unlock()
		return res
	}

	// Share the in-flight fetch when one exists for the current generation;
	// otherwise start a new one. An in-flight fetch for an older generation
	// has been superseded by Invalidate and its result will be discarded.
	if !(e.fetching && e.fetchGen == e.gen) {
		e.fetching = true
		e.fetchGen = e.gen
		issued := e.gen
		go func() {
			data, err := fetch(ctx)
			s.complete(key, issued, data, err)
		}()
	}

	res := s.snapshot(e)
	s.mu.Unlock()
	return res
}

// snapshot builds a Result under the lock.
func (s *Store) snapshot(e *entry) Result {
	loading := !e.settled() || e.stale || (e.fetching && e.fetchGen == e.gen)
	res := Result{
		Loading:   loading,
		FetchedAt: e.fetchedAt,
	}
	if e.hasData {
		res.Data = e.data
	}
	if e.err != nil && !loading {
		res.Err = e.err
	}
	return res
}

// complete applies a fetch result, discarding it when the entry's generation
// moved on while the fetch was in flight.
func (s *Store) complete(key Key, issued uint64, data any, err error) {
	s.mu.Lock()

	e, ok := s.entries[key]
	if !ok || issued != e.gen {
		// Superseded by Invalidate or Clear. Release the fetching flag only
		// if no newer fetch has been started since.
		if ok && e.fetching && e.fetchGen == issued {
			e.fetching = false
		}
		s.mu.Unlock()
		s.log.Debug().Stringer("key", key).Uint64("gen", issued).Msg("discarded stale fetch result")
		return
	}

	e.fetching = false
	e.stale = false
	if err != nil {
		e.err = err
	} else {
		e.data = data
		e.hasData = true
		e.err = nil
		e.fetchedAt = time.Now()
	}

	fns := s.subscribers()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Invalidate marks the entry for key stale so the next Read refetches it.
// Entries for other keys are untouched. Invalidating an unknown key is a
// no-op.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.gen = s.nextGen()
	e.stale = true
	e.err = nil
	fns := s.subscribers()
	s.mu.Unlock()

	s.log.Debug().Stringer("key", key).Msg("invalidated")
	for _, fn := range fns {
		fn(key)
	}
}

// Clear drops every entry. Used when the session changes, since all cached
// reads are session-scoped. In-flight fetches resolve against the old
// generations and are discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.entries = make(map[Key]*entry)
	fns := s.subscribers()
	s.mu.Unlock()

	for _, k := range keys {
		for _, fn := range fns {
			fn(k)
		}
	}
}

// Subscribe registers fn to run after every entry transition, with the
// affected key. The returned function cancels the subscription.
func (s *Store) Subscribe(fn func(Key)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// subscribers snapshots the subscriber list; callers must hold the lock and
// invoke the returned functions after releasing it.
func (s *Store) subscribers() []func(Key) {
	fns := make([]func(Key), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}
