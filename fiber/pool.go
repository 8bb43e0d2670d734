package fiber

import (
	"math/rand/v2"
	"sync/atomic"
)

// Class distinguishes the two stack-slot capacity classes spec.md §3.1
// describes. Go goroutine stacks grow on demand, so the distinction
// carries no sizing consequence here; it is kept because callers still
// want to budget and debug the two populations separately (deep
// recursive jobs request Extended, everything else takes Normal).
type Class int

const (
	Normal Class = iota
	Extended
)

// Default slot counts, matching spec.md §3.1's 128 normal / 32 extended
// split.
const (
	DefaultNormalSlots   = 128
	DefaultExtendedSlots = 32
)

type slot struct {
	free  atomic.Bool
	fiber *Fiber
}

// Pool rents and releases fibers from two fixed-size slices, one per
// Class. Rent scans its slice starting at a randomized offset rather than
// always at index 0, so repeated rent/release cycles don't pile
// contention on the first few slots.
type Pool struct {
	normal   []slot
	extended []slot
}

// NewPool creates a pool with normalCount Normal-class slots and
// extendedCount Extended-class slots, each backed by its own persistent
// goroutine.
func NewPool(normalCount, extendedCount int) *Pool {
	if normalCount <= 0 {
		normalCount = DefaultNormalSlots
	}
	if extendedCount <= 0 {
		extendedCount = DefaultExtendedSlots
	}
	p := &Pool{
		normal:   make([]slot, normalCount),
		extended: make([]slot, extendedCount),
	}
	for i := range p.normal {
		p.normal[i].free.Store(true)
		p.normal[i].fiber = newFiber(i, Normal)
	}
	for i := range p.extended {
		p.extended[i].free.Store(true)
		p.extended[i].fiber = newFiber(i, Extended)
	}
	return p
}

// Rent returns a free fiber of the requested class, or ok=false if every
// slot in that class is currently occupied. Callers that must succeed
// (job.System's worker loop) busy-spin on Rent themselves; Pool never
// blocks.
func (p *Pool) Rent(class Class) (*Fiber, bool) {
	slots := p.slotsFor(class)
	if len(slots) == 0 {
		return nil, false
	}
	start := rand.IntN(len(slots))
	for i := 0; i < len(slots); i++ {
		idx := (start + i) % len(slots)
		if slots[idx].free.CompareAndSwap(true, false) {
			return slots[idx].fiber, true
		}
	}
	return nil, false
}

// Release returns f to the pool, making it eligible for Rent again. f
// must have been obtained from this Pool and must not be in the middle of
// executing a dispatched task.
func (p *Pool) Release(f *Fiber) {
	slots := p.slotsFor(f.class)
	slots[f.index].free.Store(true)
}

// Shutdown stops every fiber's background goroutine. The pool must not be
// used again afterward.
func (p *Pool) Shutdown() {
	for i := range p.normal {
		p.normal[i].fiber.stop()
	}
	for i := range p.extended {
		p.extended[i].fiber.stop()
	}
}

func (p *Pool) slotsFor(class Class) []slot {
	if class == Extended {
		return p.extended
	}
	return p.normal
}
