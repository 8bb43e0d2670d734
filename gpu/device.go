// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu provides the engine's device, resource, and deferred
// disposal abstractions. It receives a GPU device from the host
// application rather than creating one itself (the same "gg does not own
// the device" principle the render package follows), and adds the
// resource-lifecycle pieces that principle leaves to the caller: a
// generation-checked ResourceID allocator and a frames-in-flight deferred
// DisposeQueue.
package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/forgecore/engine/bindless"
	"github.com/forgecore/engine/internal/cache"
	"github.com/forgecore/engine/transient"
)

// DeviceHandle is the integration point between the engine and the host
// application's GPU context: the engine receives a device, queue, and
// adapter instead of creating them, so GPU resources are shared rather
// than duplicated across the process.
type DeviceHandle = gpucontext.DeviceProvider

// Capabilities describes the limits and optional features of the device
// behind a DeviceHandle, used by the transient heap and frame graph
// compiler to decide aliasing and barrier strategy.
type Capabilities struct {
	MaxTextureSize          uint32
	MaxBindGroups           uint32
	MaxBindlessDescriptors  uint32
	SupportsCompute         bool
	SupportsStorageTextures bool
	VendorName              string
	DeviceName              string
}

// NullDeviceHandle is a DeviceHandle whose every accessor returns nil,
// used in tests and for headless/CPU-only code paths.
type NullDeviceHandle struct{}

func (NullDeviceHandle) Device() gpucontext.Device   { return nil }
func (NullDeviceHandle) Queue() gpucontext.Queue     { return nil }
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

var _ DeviceHandle = NullDeviceHandle{}

// Format and Usage are re-exported under engine-domain names so callers
// outside this package don't need to import gputypes directly for the
// common cases.
type Format = gputypes.TextureFormat

const (
	FormatUndefined = gputypes.TextureFormatUndefined
)

// resourceCacheKey is the (desc, offset) pair spec.md §4.5's transient
// resource cache hashes to decide alias-hit vs. construct-new. Every
// field of ResourceDesc is comparable, so this struct is used directly
// as a map key rather than through a hand-rolled hash.
type resourceCacheKey struct {
	desc   ResourceDesc
	offset uint64
}

// DeviceConfig sizes the pieces a Device owns.
type DeviceConfig struct {
	// FramesInFlight bounds how long the DisposeQueue and bindless.Table
	// hold a retired object/slot before recycling it.
	FramesInFlight int
	// Bindless sizes the three flat descriptor arrays.
	Bindless bindless.Capacities
	// CacheCapacity soft-limits how many transient Resources stay cached
	// for aliasing reuse before the oldest are evicted to the dispose
	// queue. Zero means unlimited.
	CacheCapacity int
}

// Device owns the dispose queue, the resource-ID allocator, the
// bindless descriptor table, and the transient-resource object cache:
// spec.md §3.4's Device Object Ownership and §4.5's Transient Resource
// Heap both describe the device as the thing that turns a heap's raw
// byte ranges into concrete, bindless-addressable Resources, not the
// heap itself (transient.Heap only ever hands out offsets).
type Device struct {
	Handle DeviceHandle
	Caps   Capabilities

	mu       sync.Mutex
	ids      *ResourceIDAllocator
	dispose  *DisposeQueue
	bindless *bindless.Table
	heap     *transient.Heap
	objects  *cache.ObjectCache[resourceCacheKey, *Resource]
	registry map[ResourceID]*Resource // intrusive registry for leak detection

	createdResourceCount int
	frame                uint64
}

// NewDevice creates a Device backed by heap: every transient Resource it
// creates must have been placed in that same heap, since placements are
// only meaningful relative to the heap that issued them.
func NewDevice(handle DeviceHandle, caps Capabilities, heap *transient.Heap, cfg DeviceConfig) *Device {
	d := &Device{
		Handle:   handle,
		Caps:     caps,
		ids:      NewResourceIDAllocator(),
		dispose:  NewDisposeQueue(cfg.FramesInFlight),
		bindless: bindless.NewTable(cfg.Bindless, cfg.FramesInFlight),
		heap:     heap,
		registry: make(map[ResourceID]*Resource),
	}
	d.objects = cache.NewObjectCache[resourceCacheKey, *Resource](cfg.CacheCapacity, d.onEvictResource)
	return d
}

// Bindless returns the Table backing d's shader-visible descriptor
// slots.
func (d *Device) Bindless() *bindless.Table { return d.bindless }

// DisposeQueue returns the queue d defers Resource.Destroy calls to.
func (d *Device) DisposeQueue() *DisposeQueue { return d.dispose }

// CreateImage implements spec.md §4.5's create_image: look up the
// transient-resource cache by (desc, placement.Offset); a hit reuses the
// concrete Resource cached for that byte range, updating its placement to
// the one passed in, a miss allocates a ResourceID and an SRV bindless
// slot and constructs a fresh one.
func (d *Device) CreateImage(name string, desc ResourceDesc, placement transient.Placement) (*Resource, error) {
	desc.Kind = ResourceKindImage
	return d.createResource(name, desc, placement, bindless.KindSRV)
}

// CreateBuffer implements spec.md §4.5's create_buffer, mirroring
// CreateImage with a UAV bindless slot.
func (d *Device) CreateBuffer(name string, desc ResourceDesc, placement transient.Placement) (*Resource, error) {
	desc.Kind = ResourceKindBuffer
	return d.createResource(name, desc, placement, bindless.KindUAV)
}

func (d *Device) createResource(name string, desc ResourceDesc, placement transient.Placement, slotKind bindless.Kind) (*Resource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := resourceCacheKey{desc: desc, offset: placement.Offset}
	resource, _, err := d.objects.GetOrCreateErr(key, func() (*Resource, error) {
		slot, ok := d.bindless.Allocate(slotKind)
		if !ok {
			return nil, fmt.Errorf("gpu: out of bindless slots for kind %d", slotKind)
		}
		res := &Resource{
			name:      name,
			desc:      desc,
			id:        d.ids.Alloc(),
			slotKind:  slotKind,
			slot:      slot,
			placement: placement,
			device:    d,
		}
		d.registry[res.id] = res
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	d.createdResourceCount++
	resource.placement = placement
	return resource, nil
}

// ReleaseImage implements spec.md §4.5's release_image.
func (d *Device) ReleaseImage(r *Resource) { d.release(r) }

// ReleaseBuffer implements spec.md §4.5's release_buffer.
func (d *Device) ReleaseBuffer(r *Resource) { d.release(r) }

// release decrements the live transient-resource count; the Resource
// itself stays cached (that is the point of the transient cache, reuse
// across frames on alias hit) until the cache evicts it on capacity
// pressure. Hitting zero means every transient resource has given its
// bytes back, so the heap is reset to pristine exactly as spec.md §4.5's
// allocator.reset() describes.
func (d *Device) release(r *Resource) {
	d.mu.Lock()
	d.createdResourceCount--
	empty := d.createdResourceCount <= 0
	d.mu.Unlock()
	if empty {
		d.heap.Reset()
	}
}

// onEvictResource is the ObjectCache eviction callback: an evicted
// Resource is removed from the leak-detection registry and its
// destruction is deferred onto the DisposeQueue, since the GPU may still
// be executing a command buffer that references its bindless slot.
// Called only from createResource, with d.mu already held.
func (d *Device) onEvictResource(_ resourceCacheKey, r *Resource) {
	delete(d.registry, r.id)
	d.dispose.Retire(d.frame, r)
}

// retireResource frees r's bindless slot and resource ID; called only
// once the DisposeQueue has matured r's entry (see Resource.Destroy).
func (d *Device) retireResource(r *Resource) {
	d.bindless.Free(r.slotKind, r.slot)
	d.ids.Release(r.id)
}

// Advance ends the current frame: it ages the bindless recycle schedule
// forward, matures any dispose-queue entries whose frames-in-flight
// delay has elapsed, and advances the frame counter that evicted
// resources are stamped with when retired onto the dispose queue.
func (d *Device) Advance(completedFrame uint64) int {
	d.bindless.AdvanceFrame()
	n := d.dispose.Advance(completedFrame)
	d.mu.Lock()
	d.frame++
	d.mu.Unlock()
	return n
}

// LiveResourceCount reports how many resources are currently registered,
// i.e. not yet disposed; used for leak-detection assertions at shutdown.
func (d *Device) LiveResourceCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.registry)
}
