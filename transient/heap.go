// Package transient implements the frame graph's transient resource
// heap: a single fixed-budget backing allocation that hands out byte
// ranges ("placements") to resources whose lifetime the frame graph
// compiler has determined does not overlap with some other transient
// resource's, so the two can alias the same physical bytes.
package transient

import (
	"errors"
	"fmt"
	"sync"

	"github.com/forgecore/engine/internal/cache"
)

// ErrBudgetExceeded is returned when a placement cannot be satisfied even
// after evicting every aliasable idle placement.
var ErrBudgetExceeded = errors.New("transient: heap budget exceeded")

// Placement is a byte range within the heap's backing allocation.
type Placement struct {
	Offset uint64
	Size   uint64
}

// Heap tracks a budget-bounded backing allocation and aliases released
// placements (via an LRU-ordered idle list, same shape as a GPU texture
// memory manager's eviction list) into new requests instead of growing
// the backing allocation whenever possible.
type Heap struct {
	mu sync.Mutex

	budgetBytes uint64
	usedBytes   uint64 // bytes currently backing either an active or idle placement
	highWater   uint64

	active map[Placement]struct{}
	idle   *cache.LRUList[Placement] // front = most recently released
	nodes  map[Placement]*cache.Node[Placement]

	evictionCount uint64
}

// Stats reports the heap's current occupancy.
type Stats struct {
	BudgetBytes     uint64
	UsedBytes       uint64
	HighWaterBytes  uint64
	ActiveCount     int
	IdleCount       int
	EvictionCount   uint64
	UtilizationPctX float64 // used/budget, 0..1
}

// NewHeap creates a heap with the given byte budget.
func NewHeap(budgetBytes uint64) *Heap {
	return &Heap{
		budgetBytes: budgetBytes,
		active:      make(map[Placement]struct{}),
		idle:        cache.NewLRUList[Placement](),
		nodes:       make(map[Placement]*cache.Node[Placement]),
	}
}

// Alloc reserves size bytes, preferring to alias an idle placement of
// sufficient size over growing the backing allocation. It returns
// ErrBudgetExceeded only if growing is required and no amount of
// evicting idle placements makes room.
func (h *Heap) Alloc(size uint64) (Placement, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if size == 0 {
		return Placement{}, fmt.Errorf("transient: zero-size allocation")
	}

	if p, ok := h.reuseIdleLocked(size); ok {
		h.active[p] = struct{}{}
		return p, nil
	}

	if err := h.makeRoomLocked(size); err != nil {
		return Placement{}, err
	}

	p := Placement{Offset: h.usedBytes, Size: size}
	h.usedBytes += size
	if h.usedBytes > h.highWater {
		h.highWater = h.usedBytes
	}
	h.active[p] = struct{}{}
	return p, nil
}

// Release marks p as no longer in use, making its bytes available for
// aliasing by a future Alloc. p must have come from this Heap's Alloc and
// must not already be released.
func (h *Heap) Release(p Placement) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.active[p]; !ok {
		return
	}
	delete(h.active, p)
	h.nodes[p] = h.idle.PushFront(p)
}

// reuseIdleLocked finds the first idle placement of at least size bytes,
// removing it from the idle list. First fit, scanning from the
// most-recently-released entry, since recently-retired resources are the
// most likely to share the requesting resource's size class within the
// same frame.
func (h *Heap) reuseIdleLocked(size uint64) (Placement, bool) {
	var found Placement
	var ok bool
	h.idle.Range(func(p Placement) bool {
		if p.Size >= size {
			found, ok = p, true
			return false
		}
		return true
	})
	if !ok {
		return Placement{}, false
	}
	h.idle.Remove(h.nodes[found])
	delete(h.nodes, found)
	return found, true
}

// makeRoomLocked grows the backing allocation if the budget allows, or
// permanently evicts idle placements (oldest-released first) to make
// room, returning ErrBudgetExceeded if that still isn't enough.
func (h *Heap) makeRoomLocked(size uint64) error {
	if h.usedBytes+size <= h.budgetBytes {
		return nil
	}
	for h.usedBytes+size > h.budgetBytes && h.idle.Len() > 0 {
		p, _ := h.idle.RemoveOldest()
		delete(h.nodes, p)
		h.usedBytes -= p.Size
		h.evictionCount++
	}
	if h.usedBytes+size > h.budgetBytes {
		return fmt.Errorf("%w: need %d bytes, %d available",
			ErrBudgetExceeded, size, h.budgetBytes-h.usedBytes)
	}
	return nil
}

// Stats returns a snapshot of the heap's occupancy.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	var util float64
	if h.budgetBytes > 0 {
		util = float64(h.usedBytes) / float64(h.budgetBytes)
	}
	return Stats{
		BudgetBytes:     h.budgetBytes,
		UsedBytes:       h.usedBytes,
		HighWaterBytes:  h.highWater,
		ActiveCount:     len(h.active),
		IdleCount:       h.idle.Len(),
		EvictionCount:   h.evictionCount,
		UtilizationPctX: util,
	}
}

// Reset releases every active placement and clears the idle list,
// returning the heap to empty without changing its budget. Call this
// between frames that don't carry any transient resource across the
// frame boundary.
func (h *Heap) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = make(map[Placement]struct{})
	h.idle = cache.NewLRUList[Placement]()
	h.nodes = make(map[Placement]*cache.Node[Placement])
	h.usedBytes = 0
}
