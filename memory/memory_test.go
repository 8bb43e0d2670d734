package memory

import "testing"

func TestLinearAllocGrows(t *testing.T) {
	l := NewLinear(8)
	a := l.Alloc(4, 4)
	if len(a) != 4 {
		t.Fatalf("want len 4, got %d", len(a))
	}
	b := l.Alloc(16, 8)
	if len(b) != 16 {
		t.Fatalf("want len 16, got %d", len(b))
	}
	if l.Capacity() < l.Used() {
		t.Fatalf("capacity %d smaller than used %d", l.Capacity(), l.Used())
	}
	l.Reset()
	if l.Used() != 0 {
		t.Fatalf("want used 0 after reset, got %d", l.Used())
	}
	if l.HighWater() == 0 {
		t.Fatalf("expected high water mark to persist across reset")
	}
}

func TestLinearAlignment(t *testing.T) {
	l := NewLinear(64)
	l.Alloc(1, 1)
	l.Alloc(8, 8)
	if l.Used()%8 != 0 {
		t.Fatalf("want 8-byte aligned total usage, got %d", l.Used())
	}
}

func TestSlabAppendAndReset(t *testing.T) {
	type rec struct{ n int }
	s := NewSlab[rec](0)
	i0 := s.Append(rec{n: 1})
	i1 := s.Append(rec{n: 2})
	if i0 != 0 || i1 != 1 {
		t.Fatalf("want indices 0,1 got %d,%d", i0, i1)
	}
	if s.At(i1).n != 2 {
		t.Fatalf("want 2, got %d", s.At(i1).n)
	}
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("want 0 after reset, got %d", s.Len())
	}
}

func TestPoolRentRelease(t *testing.T) {
	p := NewPool[int](4)
	if p.Available() != 4 {
		t.Fatalf("want 4 available, got %d", p.Available())
	}
	idx, ok := p.Rent()
	if !ok {
		t.Fatal("expected rent to succeed")
	}
	*p.At(idx) = 42
	if !p.InUse(idx) {
		t.Fatal("expected slot to be in use")
	}
	p.Release(idx)
	if p.InUse(idx) {
		t.Fatal("expected slot to be free after release")
	}
	if *p.At(idx) != 0 {
		t.Fatal("expected released slot to be zeroed")
	}
}

func TestPoolExhaustion(t *testing.T) {
	p := NewPool[struct{}](2)
	p.Rent()
	p.Rent()
	if _, ok := p.Rent(); ok {
		t.Fatal("expected pool exhaustion")
	}
}

func TestPoolDoubleReleasePanics(t *testing.T) {
	p := NewPool[int](1)
	idx, _ := p.Rent()
	p.Release(idx)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on double release")
		}
	}()
	p.Release(idx)
}
