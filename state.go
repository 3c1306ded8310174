package smartcontent

import (
	"fmt"
	"sort"
	"sync"
)

// InitialGeneration is the cache generation of a handle before its first
// successful fetch.
const InitialGeneration int64 = 1

// Status is the stage a handle is in.
type Status int

const (
	// StatusIdle means no fetch was attempted yet.
	StatusIdle Status = iota
	// StatusFetching means a search function call is in flight.
	StatusFetching
	// StatusReady means the last fetch succeeded.
	StatusReady
	// StatusError means the last fetch failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Errors holds the last failure of each handle operation.
type Errors struct {
	// Search is the error of the last failed search, or nil.
	Search error
}

// Snapshot is a consistent copy of a handle state.
type Snapshot[C any] struct {
	Content        C
	Loading        bool
	Error          Errors
	CacheTimestamp int64
	Status         Status
}

// PanicError is recorded when a search function panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("search function panicked: %v", e.Value)
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// state is the data owned by a single cache key.
type state[C any] struct {
	// slot serializes fetches: a search holds the token while it decides and fetches.
	slot chan struct{}

	mu      sync.RWMutex
	content C
	errs    Errors
	gen     int64
	status  Status

	subsMu sync.Mutex
	subs   map[int]func(Snapshot[C])
	nextID int
}

func newState[C any](generation int64) *state[C] {
	s := &state[C]{
		slot:   make(chan struct{}, 1),
		gen:    generation,
		status: StatusIdle,
		subs:   make(map[int]func(Snapshot[C])),
	}
	s.slot <- struct{}{}

	return s
}

func (s *state[C]) snapshot() Snapshot[C] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *state[C]) snapshotLocked() Snapshot[C] {
	return Snapshot[C]{
		Content:        s.content,
		Loading:        s.status == StatusFetching,
		Error:          s.errs,
		CacheTimestamp: s.gen,
		Status:         s.status,
	}
}

func (s *state[C]) generation() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.gen
}

// update applies f under the write lock and notifies subscribers with the result.
func (s *state[C]) update(f func(s *state[C])) {
	s.mu.Lock()
	f(s)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *state[C]) startFetch() {
	s.update(func(s *state[C]) {
		s.status = StatusFetching
	})
}

func (s *state[C]) finishFetch(content C) int64 {
	var gen int64
	s.update(func(s *state[C]) {
		s.content = content
		s.gen++
		s.errs.Search = nil
		s.status = StatusReady
		gen = s.gen
	})

	return gen
}

func (s *state[C]) failFetch(err error) {
	s.update(func(s *state[C]) {
		s.errs.Search = err
		s.status = StatusError
	})
}

func (s *state[C]) subscribe(fn func(Snapshot[C])) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// notify calls subscribers in subscription order. Subscribers must not call
// Search on the same key synchronously. Subscriber panics are dropped.
func (s *state[C]) notify(snap Snapshot[C]) {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot[C]), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		callSubscriber(fn, snap)
	}
}

func callSubscriber[C any](fn func(Snapshot[C]), snap Snapshot[C]) {
	defer func() {
		_ = recover()
	}()

	fn(snap)
}
