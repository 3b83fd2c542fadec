package lifecycle

import (
	"slices"
	"sync"
)

// Generation orders refreshes and local mutations. Each refresh and each mutation draws
// the next value from a single counter owned by the collection.
type Generation uint64

// Snapshot is a consistent copy of a collection's state.
type Snapshot[T any] struct {
	State      DisplayState
	Items      []T
	Err        error
	Generation Generation
}

// Collection is a locally cached list with full-refresh semantics.
//
// A refresh result is applied only when its generation is newer than the last applied
// generation, so a refresh issued before a local mutation cannot overwrite that mutation.
// Failed refreshes leave the items untouched.
type Collection[T any] struct {
	mu       sync.Mutex
	items    []T
	loaded   bool
	err      error
	errGen   Generation
	inflight int
	issued   Generation
	applied  Generation
}

// NewCollection creates an empty, never-loaded collection.
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{}
}

// BeginRefresh marks a refresh as in flight and returns its generation.
func (c *Collection[T]) BeginRefresh() Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	c.inflight++
	return c.issued
}

// Settle records the outcome of the refresh gen. On success items replace the cache
// entirely; on failure err is recorded and the cache is kept. A success only clears an error
// recorded by an older refresh. It returns false when the result was discarded because
// something newer has already been applied.
func (c *Collection[T]) Settle(gen Generation, items []T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight > 0 {
		c.inflight--
	}
	if gen <= c.applied {
		return false
	}

	if err != nil {
		if gen > c.errGen {
			c.err = err
			c.errGen = gen
		}
		return true
	}

	c.applied = gen
	c.items = cloneNonNil(items)
	c.loaded = true
	if gen > c.errGen {
		c.err = nil
	}
	return true
}

// Mutate applies fn to the cached items as one local mutation and clears the last refresh
// error, since the items now reflect a confirmed remote write. Refreshes issued before the
// mutation will be discarded when they settle.
func (c *Collection[T]) Mutate(fn func([]T) []T) Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	c.applied = c.issued
	c.items = cloneNonNil(fn(slices.Clone(c.items)))
	c.err = nil
	return c.applied
}

// Invalidate advances the generation without touching the items or the last error. It is
// used when a local fact that lives outside the collection changes.
func (c *Collection[T]) Invalidate() Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	c.applied = c.issued
	return c.applied
}

// Reset forgets all cached items and errors and discards refreshes in flight.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	c.applied = c.issued
	c.items = nil
	c.loaded = false
	c.err = nil
}

// Items returns a copy of the cached items.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Find returns the first cached item matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Err returns the error of the latest failed refresh, or nil.
func (c *Collection[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Loaded reports whether at least one refresh has succeeded.
func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// State returns the display state.
func (c *Collection[T]) State() DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Snapshot returns state, items and error read under one lock.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{
		State:      c.stateLocked(),
		Items:      slices.Clone(c.items),
		Err:        c.err,
		Generation: c.applied,
	}
}

func (c *Collection[T]) stateLocked() DisplayState {
	switch {
	case c.inflight > 0:
		return StateLoading
	case c.err != nil:
		return StateFailed
	case !c.loaded:
		return StateIdle
	case len(c.items) == 0:
		return StateEmpty
	default:
		return StatePopulated
	}
}

func cloneNonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return slices.Clone(items)
}
