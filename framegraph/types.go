// Package framegraph implements the per-frame declarative DAG of GPU
// passes and resources: a Builder records passes and their resource
// reads/writes, Compile culls dead work and assigns physical memory
// (aliasing through a transient.Heap) and a barrier plan, and Execute
// replays the compiled plan against a command list.
package framegraph

import (
	"github.com/forgecore/engine/gpu"
)

// ResourceIndex addresses a Resource Record within a Graph.
type ResourceIndex uint16

// PassIndex addresses a Pass Record within a Graph.
type PassIndex uint16

// InvalidHandle is the all-ones sentinel packed value shared by both
// handle types.
const InvalidHandle = ^uint32(0)

// RenderTargetHandle names a versioned access to an image resource:
// bits [0:16) resource index, [16:26) version, [26:32) access type.
type RenderTargetHandle struct{ packed uint32 }

// BufferHandle names a versioned access to a buffer resource, packed the
// same way as RenderTargetHandle.
type BufferHandle struct{ packed uint32 }

func packHandle(index ResourceIndex, version uint16, access uint8) uint32 {
	return uint32(index) | uint32(version&0x3ff)<<16 | uint32(access&0x3f)<<26
}

func (h RenderTargetHandle) ResourceIndex() ResourceIndex { return ResourceIndex(h.packed & 0xffff) }
func (h RenderTargetHandle) Version() uint16              { return uint16((h.packed >> 16) & 0x3ff) }
func (h RenderTargetHandle) AccessType() ImageAccessType  { return ImageAccessType((h.packed >> 26) & 0x3f) }
func (h RenderTargetHandle) Valid() bool                  { return h.packed != InvalidHandle }

func (h BufferHandle) ResourceIndex() ResourceIndex { return ResourceIndex(h.packed & 0xffff) }
func (h BufferHandle) Version() uint16              { return uint16((h.packed >> 16) & 0x3ff) }
func (h BufferHandle) AccessType() BufferAccessType { return BufferAccessType((h.packed >> 26) & 0x3f) }
func (h BufferHandle) Valid() bool                  { return h.packed != InvalidHandle }

// PassKind distinguishes a graphics pass from a compute pass; Execute
// binds a different pipeline-state surface for each.
type PassKind int

const (
	PassGraphics PassKind = iota
	PassCompute
)

// ImageAccessType enumerates the GPU-visible states an image resource
// can be in; Compile's barrier plan transitions between these.
type ImageAccessType uint8

const (
	ImageAccessUndefined ImageAccessType = iota
	ImageAccessShaderRead
	ImageAccessColorWrite
	ImageAccessDepthWrite
	ImageAccessCopySrc
	ImageAccessCopyDst
	ImageAccessStorageWrite
	ImageAccessPresent
)

// ImageReadType/ImageWriteType refine why an image is read or written, so
// the barrier plan and the bindless manager can choose the right access
// flags.
type ImageReadType uint8

const (
	ImageReadShader ImageReadType = iota
	ImageReadCopySrc
)

type ImageWriteType uint8

const (
	ImageWriteColorTarget ImageWriteType = iota
	ImageWriteDepthTarget
	ImageWriteCopyDst
	ImageWriteStorage
)

// BufferAccessType mirrors ImageAccessType for buffer resources.
type BufferAccessType uint8

const (
	BufferAccessUndefined BufferAccessType = iota
	BufferAccessShaderRead
	BufferAccessShaderWrite
	BufferAccessCopySrc
	BufferAccessCopyDst
	BufferAccessIndirectArgs
)

// ImageDesc describes a transient image resource's creation parameters.
type ImageDesc struct {
	Width, Height, Depth uint32
	MipLevels            uint32
	Format               gpu.Format
	Usage                uint32
}

// BufferDesc describes a transient buffer resource's creation
// parameters.
type BufferDesc struct {
	Size  uint64
	Usage uint32
}

// ImportedImage and ImportedBuffer wrap externally-owned resources
// (swapchain targets, persistent render targets) so the graph can track
// their access state without owning their memory.
type ImportedImage struct {
	Name   string
	Desc   ImageDesc
	Object gpu.DeviceObject
}

type ImportedBuffer struct {
	Name   string
	Desc   BufferDesc
	Object gpu.DeviceObject
}
