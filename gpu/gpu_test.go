package gpu

import "testing"

type fakeObject struct {
	name     string
	destroys *int
}

func (f *fakeObject) DebugName() string { return f.name }
func (f *fakeObject) Destroy()          { *f.destroys++ }

func TestResourceIDAllocatorReuseBumpsGeneration(t *testing.T) {
	a := NewResourceIDAllocator()
	id1 := a.Alloc()
	if id1.Generation != 0 {
		t.Fatalf("want generation 0, got %d", id1.Generation)
	}
	a.Release(id1)
	id2 := a.Alloc()
	if id2.Index != id1.Index {
		t.Fatalf("want reused index %d, got %d", id1.Index, id2.Index)
	}
	if id2.Generation != id1.Generation+1 {
		t.Fatalf("want bumped generation, got %d", id2.Generation)
	}
	if a.Valid(id1) {
		t.Fatal("stale id1 should no longer be valid")
	}
	if !a.Valid(id2) {
		t.Fatal("id2 should be valid")
	}
}

func TestResourceIDAllocatorDoubleReleaseIsNoop(t *testing.T) {
	a := NewResourceIDAllocator()
	id := a.Alloc()
	a.Release(id)
	a.Release(id) // must not corrupt the free list
	n1 := a.Alloc()
	n2 := a.Alloc()
	if n1.Index == n2.Index {
		t.Fatal("double release should not hand out the same index twice concurrently")
	}
}

func TestDisposeQueueDelaysUntilFramesInFlightElapse(t *testing.T) {
	q := NewDisposeQueue(2)
	destroys := 0
	q.Retire(10, &fakeObject{name: "tex", destroys: &destroys})

	if n := q.Advance(10); n != 0 {
		t.Fatalf("want 0 disposed immediately, got %d", n)
	}
	if n := q.Advance(11); n != 0 {
		t.Fatalf("want 0 disposed one frame later, got %d", n)
	}
	if n := q.Advance(12); n != 1 {
		t.Fatalf("want 1 disposed after framesInFlight elapsed, got %d", n)
	}
	if destroys != 1 {
		t.Fatalf("want Destroy called once, got %d", destroys)
	}
	if q.Pending() != 0 {
		t.Fatalf("want 0 pending, got %d", q.Pending())
	}
}

func TestDisposeQueueKeepsUnmaturedEntries(t *testing.T) {
	q := NewDisposeQueue(3)
	var d1, d2 int
	q.Retire(1, &fakeObject{name: "a", destroys: &d1})
	q.Retire(5, &fakeObject{name: "b", destroys: &d2})

	if n := q.Advance(4); n != 1 {
		t.Fatalf("want only the first entry disposed, got %d", n)
	}
	if d1 != 1 || d2 != 0 {
		t.Fatalf("want d1=1 d2=0, got d1=%d d2=%d", d1, d2)
	}
	if q.Pending() != 1 {
		t.Fatalf("want 1 still pending, got %d", q.Pending())
	}
}
