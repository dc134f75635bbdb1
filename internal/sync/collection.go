// Package sync keeps an in-memory resource collection consistent with a
// sequence of confirmed create/update/delete calls without refetching the
// whole collection after each one.
package sync

import (
	"sync"

	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

// Record is any resource with a stable identifier. RecordRevision may return
// zero for resources the backend does not version.
type Record interface {
	RecordID() int64
	RecordRevision() int64
}

// ApplyStatus tags the outcome of an in-place replacement.
type ApplyStatus int

const (
	// Applied means the record was replaced in place.
	Applied ApplyStatus = iota
	// NoMatch means no record with that id was held; the collection is
	// unchanged and the caller may still treat the server call as a success.
	NoMatch
	// StaleConflict means the held record carries a newer revision than the
	// incoming one; the collection is unchanged.
	StaleConflict
)

// Collection holds one view's records in server insertion order. Mutations
// are confirmed-first: callers apply a change only after the server accepted
// it, so a failed call leaves the collection exactly as it was.
type Collection[T Record] struct {
	mu       sync.Mutex
	items    []T
	index    map[int64]int
	inflight map[int64]struct{}
	loaded   bool
}

// NewCollection returns an empty collection.
func NewCollection[T Record]() *Collection[T] {
	return &Collection[T]{
		index:    make(map[int64]int),
		inflight: make(map[int64]struct{}),
	}
}

// Reset replaces the whole collection with a fresh server fetch.
func (c *Collection[T]) Reset(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.reindex()
	c.loaded = true
}

// Loaded reports whether an initial fetch has been applied.
func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Items returns a copy of the collection in order.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of held records.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[id]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// IDs returns the identifier set in insertion order.
func (c *Collection[T]) IDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int64, len(c.items))
	for i, item := range c.items {
		out[i] = item.RecordID()
	}
	return out
}

// Append adds the server's canonical record for a confirmed create at the
// tail, regardless of any date or sort field. If the id is somehow already
// held the record is replaced in place instead, so a duplicate is never kept.
func (c *Collection[T]) Append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[item.RecordID()]; ok {
		c.items[i] = item
		return
	}
	c.items = append(c.items, item)
	c.index[item.RecordID()] = len(c.items) - 1
}

// Replace swaps the matching record in place for a confirmed update. Records
// not matching the id are untouched.
func (c *Collection[T]) Replace(item T) ApplyStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[item.RecordID()]
	if !ok {
		return NoMatch
	}
	held := c.items[i]
	if item.RecordRevision() != 0 && held.RecordRevision() > item.RecordRevision() {
		return StaleConflict
	}
	c.items[i] = item
	return Applied
}

// Remove filters out the record for a confirmed delete.
func (c *Collection[T]) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.reindex()
	return true
}

// Begin marks a mutation against id as in flight. A second mutation against
// the same record while one is pending is rejected, mirroring the
// disable-while-pending rule for the triggering control.
func (c *Collection[T]) Begin(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[id]; busy {
		return apperrors.ErrMutationBusy
	}
	c.inflight[id] = struct{}{}
	return nil
}

// End clears the in-flight mark set by Begin.
func (c *Collection[T]) End(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
}

// reindex must be called with mu held.
func (c *Collection[T]) reindex() {
	c.index = make(map[int64]int, len(c.items))
	for i, item := range c.items {
		c.index[item.RecordID()] = i
	}
}
