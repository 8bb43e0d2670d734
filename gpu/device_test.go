package gpu

import (
	"testing"

	"github.com/forgecore/engine/bindless"
	"github.com/forgecore/engine/transient"
)

func newTestDevice(t *testing.T, cacheCapacity int) (*Device, *transient.Heap) {
	t.Helper()
	heap := transient.NewHeap(1 << 20)
	d := NewDevice(NullDeviceHandle{}, Capabilities{}, heap, DeviceConfig{
		FramesInFlight: 2,
		Bindless:       bindless.Capacities{SRV: 4, UAV: 4, Sampler: 1},
		CacheCapacity:  cacheCapacity,
	})
	return d, heap
}

func TestDeviceCreateImageAliasHitReusesResource(t *testing.T) {
	d, heap := newTestDevice(t, 8)
	placement, err := heap.Alloc(1024)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	desc := ResourceDesc{Width: 64, Height: 64, MipLevels: 1}
	r1, err := d.CreateImage("a", desc, placement)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	r2, err := d.CreateImage("a-alias", desc, placement)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	if r1 != r2 {
		t.Fatal("want the same Resource reused on an alias hit at the same (desc, offset)")
	}
	if d.LiveResourceCount() != 1 {
		t.Fatalf("want 1 live resource, got %d", d.LiveResourceCount())
	}
}

func TestDeviceCreateImageDifferentDescMissesCache(t *testing.T) {
	d, heap := newTestDevice(t, 8)
	placement, _ := heap.Alloc(1024)

	r1, err := d.CreateImage("a", ResourceDesc{Width: 64, Height: 64}, placement)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	r2, err := d.CreateImage("b", ResourceDesc{Width: 128, Height: 128}, placement)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	if r1 == r2 {
		t.Fatal("want distinct descs at the same offset to miss the cache")
	}
	if d.LiveResourceCount() != 2 {
		t.Fatalf("want 2 live resources, got %d", d.LiveResourceCount())
	}
}

func TestDeviceReleaseResetsHeapAtZeroCreatedCount(t *testing.T) {
	d, heap := newTestDevice(t, 8)
	p1, _ := heap.Alloc(256)
	p2, _ := heap.Alloc(256)

	r1, err := d.CreateImage("one", ResourceDesc{Width: 1, Height: 1}, p1)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	r2, err := d.CreateBuffer("two", ResourceDesc{Size: 256}, p2)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	if heap.Stats().UsedBytes == 0 {
		t.Fatal("expected heap to report used bytes before release")
	}

	d.ReleaseImage(r1)
	if heap.Stats().UsedBytes == 0 {
		t.Fatal("heap must not reset until every created resource is released")
	}
	d.ReleaseBuffer(r2)
	if got := heap.Stats(); got.UsedBytes != 0 || got.ActiveCount != 0 {
		t.Fatalf("want heap reset to pristine once created_resource_count hits zero, got %+v", got)
	}
}

func TestDeviceEvictionRetiresResourceOntoDisposeQueue(t *testing.T) {
	d, heap := newTestDevice(t, 1) // soft limit 1 forces eviction on the second distinct resource
	p1, _ := heap.Alloc(64)
	p2, _ := heap.Alloc(64)

	if _, err := d.CreateImage("a", ResourceDesc{Width: 1, Height: 1}, p1); err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	if _, err := d.CreateImage("b", ResourceDesc{Width: 2, Height: 2}, p2); err != nil {
		t.Fatalf("CreateImage: %v", err)
	}

	if d.DisposeQueue().Pending() != 1 {
		t.Fatalf("want the evicted resource retired onto the dispose queue, got %d pending", d.DisposeQueue().Pending())
	}
	if n := d.DisposeQueue().Advance(10); n != 1 {
		t.Fatalf("want the evicted resource disposed once its frames-in-flight delay elapses, got %d", n)
	}
}

func TestDeviceOutOfBindlessSlotsReturnsError(t *testing.T) {
	d, heap := newTestDevice(t, 8) // only 4 SRV slots configured
	for i := 0; i < 4; i++ {
		p, _ := heap.Alloc(64)
		if _, err := d.CreateImage("img", ResourceDesc{Width: uint32(i + 1), Height: 1}, p); err != nil {
			t.Fatalf("CreateImage %d: %v", i, err)
		}
	}
	p, _ := heap.Alloc(64)
	if _, err := d.CreateImage("overflow", ResourceDesc{Width: 99, Height: 1}, p); err == nil {
		t.Fatal("expected an error once the SRV bindless table is exhausted")
	}
}
