// Package ring implements a fixed-capacity circular buffer used wherever
// the engine needs a bounded per-frame history: the bindless table's
// per-frame pending-free lists index into one frame slot at a time and
// rotate forward once per frame.
package ring

// Buffer is a fixed-size ring of frame slots, each holding a slice of T
// accumulated during that frame. Advance rotates to the next slot,
// returning its previous contents (the items from `depth` frames ago,
// whatever was left over from the last time this slot was current) so the
// caller can act on them (destroy GPU objects, recycle descriptor slots)
// before the slot is reused.
type Buffer[T any] struct {
	slots [][]T
	cur   int
}

// NewBuffer creates a ring with the given depth (for example
// frames_in_flight). depth must be at least 1.
func NewBuffer[T any](depth int) *Buffer[T] {
	if depth < 1 {
		depth = 1
	}
	return &Buffer[T]{slots: make([][]T, depth)}
}

// Push appends v to the current slot.
func (b *Buffer[T]) Push(v T) {
	b.slots[b.cur] = append(b.slots[b.cur], v)
}

// Depth returns the number of slots in the ring.
func (b *Buffer[T]) Depth() int { return len(b.slots) }

// Advance rotates to the next slot and returns that slot's previous
// contents, clearing it for reuse.
func (b *Buffer[T]) Advance() []T {
	b.cur = (b.cur + 1) % len(b.slots)
	old := b.slots[b.cur]
	b.slots[b.cur] = nil
	return old
}

// Current returns the slice backing the slot that is currently being
// accumulated into.
func (b *Buffer[T]) Current() []T { return b.slots[b.cur] }
