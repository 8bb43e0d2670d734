// Package bindless implements flat, bindlessly-indexed descriptor
// tables: fixed-capacity SRV/UAV/Sampler slot arrays that shaders index
// directly instead of binding through per-draw descriptor sets.
package bindless

import (
	"fmt"
	"sync"

	"github.com/forgecore/engine/internal/ring"
)

// Kind selects which of the three flat descriptor arrays a Slot belongs
// to. Each kind has its own independent capacity and free list.
type Kind int

const (
	KindSRV Kind = iota
	KindUAV
	KindSampler
	kindCount
)

// Slot is an index into one of the flat descriptor arrays. The shader
// binds this value directly (as a root constant or push constant) rather
// than a descriptor set.
type Slot uint32

type pendingFree struct {
	kind Kind
	slot Slot
}

// Table manages the three flat descriptor arrays. Freeing a slot does
// not make it immediately reusable: in-flight command buffers on the GPU
// may still reference it through a previously bound root constant, so
// Free only schedules the slot for recycling framesInFlight frames from
// now. Call AdvanceFrame once per frame to age the schedule forward.
type Table struct {
	mu sync.Mutex

	capacity [kindCount]int
	free     [kindCount][]Slot
	inUse    [kindCount][]bool

	pending *ring.Buffer[pendingFree]
}

// Capacities sizes each of the three flat arrays.
type Capacities struct {
	SRV     int
	UAV     int
	Sampler int
}

// NewTable creates a Table with the given per-kind capacities, recycling
// freed slots only after framesInFlight frames have advanced.
func NewTable(caps Capacities, framesInFlight int) *Table {
	t := &Table{
		pending: ring.NewBuffer[pendingFree](framesInFlight),
	}
	sizes := [kindCount]int{caps.SRV, caps.UAV, caps.Sampler}
	for k := Kind(0); k < kindCount; k++ {
		n := sizes[k]
		t.capacity[k] = n
		t.inUse[k] = make([]bool, n)
		t.free[k] = make([]Slot, n)
		for i := 0; i < n; i++ {
			t.free[k][n-1-i] = Slot(i)
		}
	}
	return t
}

// Allocate reserves a slot of the given kind, or returns ok=false if that
// kind's array is fully occupied (including slots still pending
// recycling).
func (t *Table) Allocate(kind Kind) (Slot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	free := t.free[kind]
	n := len(free)
	if n == 0 {
		return 0, false
	}
	slot := free[n-1]
	t.free[kind] = free[:n-1]
	t.inUse[kind][slot] = true
	return slot, true
}

// Free schedules slot for recycling framesInFlight frames from now. It
// panics if slot was not currently allocated from kind's array.
func (t *Table) Free(kind Kind, slot Slot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(slot) >= len(t.inUse[kind]) || !t.inUse[kind][slot] {
		panic(fmt.Sprintf("bindless: free of unallocated slot %d (kind %d)", slot, kind))
	}
	t.inUse[kind][slot] = false
	t.pending.Push(pendingFree{kind: kind, slot: slot})
}

// AdvanceFrame ages the recycling schedule forward by one frame, moving
// any slots freed framesInFlight frames ago back onto their kind's free
// list.
func (t *Table) AdvanceFrame() {
	t.mu.Lock()
	defer t.mu.Unlock()
	matured := t.pending.Advance()
	for _, m := range matured {
		t.free[m.kind] = append(t.free[m.kind], m.slot)
	}
}

// Available reports how many slots of kind are currently allocatable
// (free and not pending recycling).
func (t *Table) Available(kind Kind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.free[kind])
}

// Capacity reports the total slot count for kind.
func (t *Table) Capacity(kind Kind) int {
	return t.capacity[kind]
}
