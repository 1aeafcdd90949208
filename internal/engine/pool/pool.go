// Package pool provides append-only arenas addressed by typed handles.
//
// A Pool never removes or reuses a slot, so a Handle stays valid for the
// lifetime of the pool. Pointers returned by Get are only valid until the
// next Add on the same pool, because Add may grow the backing slice.
package pool

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Faultbox/warg/internal/engine/invariant"
)

var (
	ErrInvalidHandle = errors.New("invalid handle")
	ErrForeignHandle = errors.New("handle belongs to another pool")
)

var nextOwner atomic.Uint32

// Handle identifies an element of a Pool[T]. The zero Handle is invalid.
type Handle[T any] struct {
	index uint32
	owner uint32
}

// IsValid reports whether h was issued by some pool.
func (h Handle[T]) IsValid() bool { return h.owner != 0 }

// Index returns the slot index of h.
func (h Handle[T]) Index() uint32 { return h.index }

func (h Handle[T]) String() string {
	if !h.IsValid() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d@%d)", h.index, h.owner)
}

// Pool is an append-only collection of T.
type Pool[T any] struct {
	owner uint32
	items []T
}

// New creates an empty pool with room for capacity elements.
func New[T any](capacity int) *Pool[T] {
	return &Pool[T]{
		owner: nextOwner.Add(1),
		items: make([]T, 0, capacity),
	}
}

// Add appends v and returns its handle.
func (p *Pool[T]) Add(v T) Handle[T] {
	p.items = append(p.items, v)
	return Handle[T]{index: uint32(len(p.items) - 1), owner: p.owner}
}

// HandleAt returns the handle of slot i.
func (p *Pool[T]) HandleAt(i uint32) (Handle[T], error) {
	if int(i) >= len(p.items) {
		return Handle[T]{}, fmt.Errorf("%w: index %d of %d", ErrInvalidHandle, i, len(p.items))
	}
	return Handle[T]{index: i, owner: p.owner}, nil
}

// Get resolves h. The pointer is invalidated by the next Add.
func (p *Pool[T]) Get(h Handle[T]) (*T, error) {
	if h.owner != p.owner {
		if !h.IsValid() {
			return nil, fmt.Errorf("%w: zero handle", ErrInvalidHandle)
		}
		return nil, fmt.Errorf("%w: %s", ErrForeignHandle, h)
	}
	if int(h.index) >= len(p.items) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrInvalidHandle, h.index, len(p.items))
	}
	return &p.items[h.index], nil
}

// MustGet resolves h and panics with an invariant violation when it
// does not belong to this pool.
func (p *Pool[T]) MustGet(h Handle[T]) *T {
	v, err := p.Get(h)
	if err != nil {
		invariant.Fail("pool.Get", "%v", err)
	}
	return v
}

// Contains reports whether h resolves in this pool.
func (p *Pool[T]) Contains(h Handle[T]) bool {
	return h.owner == p.owner && int(h.index) < len(p.items)
}

// Len returns the number of elements.
func (p *Pool[T]) Len() int { return len(p.items) }

// Each calls fn for every element in insertion order until fn returns false.
// fn must not call Add.
func (p *Pool[T]) Each(fn func(Handle[T], *T) bool) {
	for i := range p.items {
		if !fn(Handle[T]{index: uint32(i), owner: p.owner}, &p.items[i]) {
			return
		}
	}
}
