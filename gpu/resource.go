package gpu

import (
	"github.com/forgecore/engine/bindless"
	"github.com/forgecore/engine/transient"
)

// ResourceKind distinguishes an image resource from a buffer resource,
// the two concrete shapes a transient-heap placement backs.
type ResourceKind uint8

const (
	ResourceKindImage ResourceKind = iota
	ResourceKindBuffer
)

// ResourceDesc is the creation-parameter struct the transient-resource
// cache hashes on, per spec.md §4.5's "hash (desc, offset), look up in
// the resource cache" step. Every field is a comparable scalar, so
// (ResourceDesc, offset) can be used directly as a Go map key instead of
// hand-rolling a hash function: the same reasoning shaderlib.Library
// applies to its (name, defines) cache key, just without shaderlib's
// extra canonicalization step, since nothing here is a map.
type ResourceDesc struct {
	Kind ResourceKind

	Width, Height, Depth uint32
	MipLevels            uint32
	Format               Format

	Size uint64 // buffers only

	Usage uint32
}

// Resource is a transient Image or Buffer: a DeviceObject bound to one
// byte range of a transient.Heap, stamped with a device-wide ResourceID
// and a bindless descriptor slot a shader can index directly. Device's
// resource cache is what actually constructs these; nothing outside
// gpu constructs one directly.
type Resource struct {
	name string
	desc ResourceDesc
	id   ResourceID

	slotKind bindless.Kind
	slot     bindless.Slot

	placement transient.Placement
	device    *Device
}

// DebugName implements DeviceObject.
func (r *Resource) DebugName() string { return r.name }

// ResourceID is this resource's device-wide identity, also used as the
// intrusive registry key for leak detection (spec.md §3.4).
func (r *Resource) ResourceID() ResourceID { return r.id }

// BindlessSlot is the flat descriptor-table index a shader indexes to
// reach r without a bound descriptor set.
func (r *Resource) BindlessSlot() uint32 { return uint32(r.slot) }

// Placement is the byte range within the owning transient.Heap that r is
// currently bound to.
func (r *Resource) Placement() transient.Placement { return r.placement }

// Kind reports whether r is an image or a buffer.
func (r *Resource) Kind() ResourceKind { return r.desc.Kind }

// Destroy releases r's bindless slot and resource ID back to its Device.
// Called only from the Device's resource-cache eviction path (by way of
// the DisposeQueue, once the GPU is done with r), never directly: a
// cache hit may still resurrect the same Resource for a later alias of
// the same (desc, offset), so releasing a placement alone must not call
// this.
func (r *Resource) Destroy() {
	r.device.retireResource(r)
}
