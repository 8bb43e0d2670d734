package transient

import "testing"

func TestHeapAllocGrowsWithinBudget(t *testing.T) {
	h := NewHeap(1024)
	p1, err := h.Alloc(256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.Size != 256 {
		t.Fatalf("want size 256, got %d", p1.Size)
	}
	p2, err := h.Alloc(256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p2.Offset == p1.Offset {
		t.Fatal("want distinct offsets for two live placements")
	}
}

func TestHeapAliasesReleasedPlacement(t *testing.T) {
	h := NewHeap(1024)
	p1, _ := h.Alloc(256)
	h.Release(p1)

	p2, err := h.Alloc(200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p2.Offset != p1.Offset {
		t.Fatalf("want aliasing to reuse released placement's offset %d, got %d", p1.Offset, p2.Offset)
	}
	stats := h.Stats()
	if stats.UsedBytes != 256 {
		t.Fatalf("want used bytes unchanged by aliasing, got %d", stats.UsedBytes)
	}
}

func TestHeapBudgetExceededWithoutIdlePlacements(t *testing.T) {
	h := NewHeap(512)
	if _, err := h.Alloc(256); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.Alloc(256); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.Alloc(1); err == nil {
		t.Fatal("expected budget exceeded error")
	}
}

func TestHeapEvictsIdlePlacementsToMakeRoom(t *testing.T) {
	h := NewHeap(512)
	p1, _ := h.Alloc(100)
	h.Release(p1)

	// p1 is idle but too small to satisfy this request by reuse, forcing
	// it to be permanently evicted to make room for a larger placement.
	if _, err := h.Alloc(450); err != nil {
		t.Fatalf("expected eviction to make room, got error: %v", err)
	}
	stats := h.Stats()
	if stats.EvictionCount == 0 {
		t.Fatal("expected at least one eviction")
	}
}

func TestHeapResetClearsOccupancy(t *testing.T) {
	h := NewHeap(1024)
	h.Alloc(256)
	h.Reset()
	stats := h.Stats()
	if stats.UsedBytes != 0 || stats.ActiveCount != 0 || stats.IdleCount != 0 {
		t.Fatalf("want empty heap after reset, got %+v", stats)
	}
}
