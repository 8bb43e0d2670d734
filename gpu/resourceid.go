package gpu

import "sync"

// ResourceID identifies a DeviceObject by slot index plus a generation
// counter. The generation lets a stale ID (held past Release) be detected
// instead of silently aliasing whatever object the slot was reused for,
// the same class of bug bindless descriptor reuse is prone to.
type ResourceID struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether id is the zero value, used as "no resource".
func (id ResourceID) IsZero() bool { return id == ResourceID{} }

// ResourceIDAllocator hands out ResourceIDs from a free-listed index
// space, bumping the generation of an index every time it is reused.
type ResourceIDAllocator struct {
	mu          sync.Mutex
	generations []uint32
	free        []uint32
	next        uint32
}

// NewResourceIDAllocator creates an empty allocator.
func NewResourceIDAllocator() *ResourceIDAllocator {
	return &ResourceIDAllocator{}
}

// Alloc reserves a ResourceID, reusing a released index (with its
// generation bumped) if one is available.
func (a *ResourceIDAllocator) Alloc() ResourceID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		return ResourceID{Index: idx, Generation: a.generations[idx]}
	}
	idx := a.next
	a.next++
	a.generations = append(a.generations, 0)
	return ResourceID{Index: idx, Generation: 0}
}

// Release returns id's index to the free list and bumps its generation,
// invalidating any other ResourceID still referencing that index.
func (a *ResourceIDAllocator) Release(id ResourceID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if int(id.Index) >= len(a.generations) || a.generations[id.Index] != id.Generation {
		return // already stale; double-release is a no-op, not a crash
	}
	a.generations[id.Index]++
	a.free = append(a.free, id.Index)
}

// Valid reports whether id still refers to a live allocation (its
// generation matches the index's current generation).
func (a *ResourceIDAllocator) Valid(id ResourceID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(id.Index) < len(a.generations) && a.generations[id.Index] == id.Generation
}
