package memory

import "fmt"

// Pool is a fixed-capacity object pool with a free-list of indices:
// objects are never individually freed back to the Go allocator, only
// returned to the pool's free-list for reuse.
//
// Pool is not safe for concurrent use; callers needing concurrent
// rent/release add their own synchronization around it.
type Pool[T any] struct {
	items []T
	free  []int32 // indices of available slots, LIFO
	inUse []bool
}

// NewPool creates a pool of exactly capacity pre-allocated zero-valued
// items, all initially free.
func NewPool[T any](capacity int) *Pool[T] {
	p := &Pool[T]{
		items: make([]T, capacity),
		free:  make([]int32, capacity),
		inUse: make([]bool, capacity),
	}
	for i := range p.free {
		// Fill free list back-to-front so index 0 is rented first.
		p.free[capacity-1-i] = int32(i)
	}
	return p
}

// Rent removes and returns the index of a free item, or (-1, false) if the
// pool is exhausted.
func (p *Pool[T]) Rent() (int32, bool) {
	n := len(p.free)
	if n == 0 {
		return -1, false
	}
	idx := p.free[n-1]
	p.free = p.free[:n-1]
	p.inUse[idx] = true
	return idx, true
}

// Release returns an item to the free list. It panics if idx is out of
// range or already free, since that indicates a double-release bug.
func (p *Pool[T]) Release(idx int32) {
	if int(idx) < 0 || int(idx) >= len(p.items) {
		panic(fmt.Sprintf("memory: pool release out of range index %d", idx))
	}
	if !p.inUse[idx] {
		panic(fmt.Sprintf("memory: pool double release of index %d", idx))
	}
	p.inUse[idx] = false
	p.free = append(p.free, idx)
	var zero T
	p.items[idx] = zero
}

// At returns a pointer to the item at idx, whether or not it is currently
// rented (callers that track rented state themselves may bypass
// Rent/Release and index directly).
func (p *Pool[T]) At(idx int32) *T { return &p.items[idx] }

// Len returns the pool's total capacity.
func (p *Pool[T]) Len() int { return len(p.items) }

// InUse reports whether idx is currently rented.
func (p *Pool[T]) InUse(idx int32) bool { return p.inUse[idx] }

// Available returns the number of items currently free.
func (p *Pool[T]) Available() int { return len(p.free) }
