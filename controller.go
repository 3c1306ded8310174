package smartcontent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SearchFunc fetches content for the given params. It is called by handles on
// a cache miss or a forced search.
type SearchFunc[P, C any] func(ctx context.Context, params P) (C, error)

// Sentinel errors returned by the factory.
var (
	// ErrNilSearchFunc is returned by New when no search function is given.
	ErrNilSearchFunc = errors.New("smartcontent: search function is nil")
	// ErrInvalidKey is returned when a handle is requested for an empty key.
	ErrInvalidKey    = errors.New("smartcontent: cache key is empty")
)

// Factory creates handles sharing one search function. State is kept per cache
// key: handles requested for the same key see the same state.
type Factory[P, C any] struct {
	search    SearchFunc[P, C]
	validator Validator
	marker    *RegistryValidator
	logger    zerolog.Logger
	metrics   *metrics

	mu     sync.Mutex
	states map[string]*state[C]
}

// New creates a factory calling search on cache misses and forced searches.
func New[P, C any](search SearchFunc[P, C], options ...Option) (*Factory[P, C], error) {
	if search == nil {
		return nil, ErrNilSearchFunc
	}

	cfg := defaultConfig()
	for _, o := range options {
		if err := o(&cfg); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	m, err := newMetrics(cfg.meter)
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	logger := cfg.logger.With().Str("component", "smartcontent").Logger()

	f := &Factory[P, C]{
		search:    search,
		validator: cfg.validator,
		logger:    logger,
		metrics:   m,
		states:    make(map[string]*state[C]),
	}
	if cfg.registry != nil {
		f.marker = NewRegistryValidator(cfg.registry, cfg.registryTTL, logger)
	}

	// An explicit validator wins; the registry is still marked on every fetch.
	switch {
	case f.validator != nil:
	case f.marker != nil:
		f.validator = f.marker
	default:
		f.validator = Never
	}

	return f, nil
}

// Handle returns a handle for key. A new key starts at InitialGeneration.
func (f *Factory[P, C]) Handle(key string) (*Handle[P, C], error) {
	return f.HandleWithGeneration(key, InitialGeneration)
}

// HandleWithGeneration returns a handle for key. If the key has no state yet,
// its cache generation starts at generation; otherwise generation is ignored.
func (f *Factory[P, C]) HandleWithGeneration(key string, generation int64) (*Handle[P, C], error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	f.mu.Lock()
	st, found := f.states[key]
	if !found {
		st = newState[C](generation)
		f.states[key] = st
	}
	f.mu.Unlock()

	return &Handle[P, C]{key: key, factory: f, state: st}, nil
}

// Release drops the state of key. Handles obtained earlier keep working on
// the dropped state; new handles start from scratch.
func (f *Factory[P, C]) Release(key string) {
	f.mu.Lock()
	delete(f.states, key)
	f.mu.Unlock()
}

// Close closes the freshness registry, if one was configured.
func (f *Factory[P, C]) Close() {
	if f.marker != nil {
		f.marker.registry.Close()
	}
}

// Handle gives access to the state of a single cache key.
// It is safe for concurrent use.
type Handle[P, C any] struct {
	key     string
	factory *Factory[P, C]
	state   *state[C]
}

// Key returns the cache key of the handle.
func (h *Handle[P, C]) Key() string { return h.key }

// Content returns the content of the last successful fetch. Before the first
// one it is the zero value of C; an empty Content still encodes as a JSON [].
func (h *Handle[P, C]) Content() C { return h.state.snapshot().Content }

// Loading reports whether a search function call is in flight.
func (h *Handle[P, C]) Loading() bool { return h.state.snapshot().Loading }

// Error returns the last failure of each operation.
func (h *Handle[P, C]) Error() Errors { return h.state.snapshot().Error }

// CacheTimestamp returns the generation of the held content.
func (h *Handle[P, C]) CacheTimestamp() int64 { return h.state.generation() }

// Status returns the stage the handle is in.
func (h *Handle[P, C]) Status() Status { return h.state.snapshot().Status }

// Snapshot returns a consistent copy of the whole state.
func (h *Handle[P, C]) Snapshot() Snapshot[C] { return h.state.snapshot() }

// Subscribe registers fn to be called after every state change of the key.
// A panicking subscriber is skipped, it never leaves the state half updated.
// The returned function removes the subscription.
func (h *Handle[P, C]) Subscribe(fn func(Snapshot[C])) (unsubscribe func()) {
	return h.state.subscribe(fn)
}

type searchOptions struct {
	force bool
}

// SearchOption modifies a single Search call.
type SearchOption func(*searchOptions)

// Force makes Search fetch even if the held content is valid.
func Force() SearchOption {
	return WithForce(true)
}

// WithForce sets the force flag to force.
func WithForce(force bool) SearchOption {
	return func(o *searchOptions) {
		o.force = force
	}
}

// Search fetches content for params unless the held content is still valid.
//
// Failures of the search function are not returned. They are recorded in
// Error().Search, leaving content and cache generation untouched.
// Calls for the same key are serialized. If ctx is done while the call waits
// for another fetch of the key, Search returns without touching the state.
// A call that does not have to wait always decides and, if needed, fetches.
func (h *Handle[P, C]) Search(ctx context.Context, params P, opts ...SearchOption) {
	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}

	f, st := h.factory, h.state
	start := time.Now()

	// Only a call that has to wait for another fetch can give up on ctx.
	select {
	case <-st.slot:
	default:
		select {
		case <-st.slot:
		case <-ctx.Done():
			f.logger.Debug().Str("key", h.key).Err(ctx.Err()).Msg("Search abandoned while waiting for in-flight fetch.")
			f.metrics.recordSearch(ctx, resultCanceled, time.Since(start))
			return
		}
	}
	defer func() { st.slot <- struct{}{} }()

	if !o.force && f.validator.IsCacheValid(ctx, h.key, st.generation()) {
		f.logger.Debug().Str("key", h.key).Msg("Content is valid, skipping fetch.")
		f.metrics.recordSearch(ctx, resultHit, time.Since(start))
		return
	}

	st.startFetch()

	content, err := f.call(ctx, params)
	if err != nil {
		st.failFetch(err)
		f.logger.Warn().Str("key", h.key).Err(err).Msg("Search failed.")
		f.metrics.recordSearch(ctx, resultError, time.Since(start))
		return
	}

	gen := st.finishFetch(content)
	f.logger.Debug().Str("key", h.key).Int64("generation", gen).Bool("forced", o.force).Msg("Content fetched.")

	if f.marker != nil {
		if err := f.marker.MarkFetched(ctx, h.key, gen); err != nil {
			f.logger.Error().Err(err).Str("key", h.key).Msg("Writing freshness registry failed.")
		}
	}

	f.metrics.recordSearch(ctx, resultFetch, time.Since(start))
}

// call runs the search function, turning a panic into a *PanicError.
func (f *Factory[P, C]) call(ctx context.Context, params P) (content C, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()

	return f.search(ctx, params)
}
