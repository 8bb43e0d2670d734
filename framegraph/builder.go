package framegraph

import (
	"fmt"

	"github.com/forgecore/engine/gpu"
	"github.com/forgecore/engine/memory"
	"github.com/forgecore/engine/transient"
)

// Graph records one frame's DAG of passes and resources. Every Pass
// Record and Access Edge lives in a memory.Slab owned by the Graph, so
// the whole graph becomes garbage at Reset, with no per-record free
// bookkeeping.
type Graph struct {
	arena     *memory.Linear
	heap      *transient.Heap
	device    *gpu.Device
	resources *memory.Slab[resourceRecord]
	passes    *memory.Slab[passRecord]
	edges     *memory.Slab[accessEdge]
}

// New creates an empty Graph. The Graph allocates nothing from arena; it
// only resets it in Reset, and the typed records live in Slabs. heap
// is where Compile carves physical memory for every surviving transient
// resource; it is expected to outlive a single frame, recycling bytes
// across Reset calls. device turns those byte ranges into concrete,
// bindless-addressable gpu.Resources during Compile; it may be nil, in
// which case Compile still carves placements but every non-imported
// resource resolves to a nil device object at Execute time (useful for
// tests that only exercise culling/barrier-plan logic).
func New(arena *memory.Linear, heap *transient.Heap, device *gpu.Device) *Graph {
	return &Graph{
		arena:     arena,
		heap:      heap,
		device:    device,
		resources: memory.NewSlab[resourceRecord](64),
		passes:    memory.NewSlab[passRecord](32),
		edges:     memory.NewSlab[accessEdge](256),
	}
}

// Reset clears the graph for reuse by the next frame, also resetting the
// backing arena.
func (g *Graph) Reset() {
	g.resources.Reset()
	g.passes.Reset()
	g.edges.Reset()
	if g.arena != nil {
		g.arena.Reset()
	}
}

// AddPass creates a new Pass Record and returns a PassBuilder for
// recording its resource accesses.
func (g *Graph) AddPass(name string, kind PassKind) *PassBuilder {
	idx := g.passes.Append(passRecord{name: name, kind: kind, accessHead: -1})
	return &PassBuilder{graph: g, passIndex: PassIndex(idx)}
}

// ImportRenderTarget wraps an externally-owned image so the graph tracks
// its access state without owning its memory.
func (g *Graph) ImportRenderTarget(img ImportedImage, access ImageAccessType) RenderTargetHandle {
	idx := g.resources.Append(resourceRecord{
		kind:               resourceImage,
		name:               img.Name,
		imageDesc:          img.Desc,
		isImported:         true,
		importedImage:      img,
		accessHead:         -1,
		currentImageAccess: access,
	})
	return RenderTargetHandle{packed: packHandle(ResourceIndex(idx), 0, uint8(access))}
}

// ImportBuffer wraps an externally-owned buffer, analogous to
// ImportRenderTarget.
func (g *Graph) ImportBuffer(buf ImportedBuffer, access BufferAccessType) BufferHandle {
	idx := g.resources.Append(resourceRecord{
		kind:                resourceBuffer,
		name:                buf.Name,
		bufferDesc:          buf.Desc,
		isImported:          true,
		importedBuffer:      buf,
		accessHead:          -1,
		currentBufferAccess: access,
	})
	return BufferHandle{packed: packHandle(ResourceIndex(idx), 0, uint8(access))}
}

// PassBuilder records one pass's resource accesses and execution
// function.
type PassBuilder struct {
	graph     *Graph
	passIndex PassIndex
}

// CreateImage registers a new transient image resource owned by this
// pass, returning a handle at version 0 with access Undefined.
func (b *PassBuilder) CreateImage(name string, desc ImageDesc) RenderTargetHandle {
	idx := b.graph.resources.Append(resourceRecord{
		kind:                resourceImage,
		name:                name,
		imageDesc:           desc,
		hasCreator:          true,
		creatorPass:         b.passIndex,
		accessHead:          -1,
		currentImageAccess:  ImageAccessUndefined,
	})
	return RenderTargetHandle{packed: packHandle(ResourceIndex(idx), 0, uint8(ImageAccessUndefined))}
}

// CreateBuffer registers a new transient buffer resource owned by this
// pass, analogous to CreateImage.
func (b *PassBuilder) CreateBuffer(name string, desc BufferDesc) BufferHandle {
	idx := b.graph.resources.Append(resourceRecord{
		kind:                resourceBuffer,
		name:                name,
		bufferDesc:          desc,
		hasCreator:          true,
		creatorPass:         b.passIndex,
		accessHead:          -1,
		currentBufferAccess: BufferAccessUndefined,
	})
	return BufferHandle{packed: packHandle(ResourceIndex(idx), 0, uint8(BufferAccessUndefined))}
}

// Read records a read access to h, asserting h is not a stale handle and
// that the resource is not still Undefined (reading an undefined
// resource is a build-time error per spec.md §4.2).
func (b *PassBuilder) Read(h RenderTargetHandle, rt ImageReadType) RenderTargetHandle {
	rec := b.resourceFor(h.ResourceIndex())
	b.checkCurrentVersion(rec, h.Version())
	if rec.currentImageAccess == ImageAccessUndefined && !rec.isImported {
		panic(fmt.Sprintf("framegraph: read of undefined resource %q", rec.name))
	}
	b.appendEdge(accessEdge{
		passIndex:     b.passIndex,
		resourceIndex: h.ResourceIndex(),
		version:       rec.version,
		isWrite:       false,
		imageRead:     rt,
	}, rec)
	rec.lastUser = b.passIndex
	return RenderTargetHandle{packed: packHandle(h.ResourceIndex(), rec.version, uint8(rec.currentImageAccess))}
}

// Write records a write access to h, bumping the resource's version and
// returning a new handle reflecting it.
func (b *PassBuilder) Write(h RenderTargetHandle, wt ImageWriteType) RenderTargetHandle {
	rec := b.resourceFor(h.ResourceIndex())
	b.checkCurrentVersion(rec, h.Version())
	newVersion := rec.version + 1
	if newVersion > 0x3ff {
		panic(fmt.Sprintf("framegraph: resource %q exceeded 1023 writes", rec.name))
	}
	rec.version = newVersion
	rec.currentImageAccess = imageWriteAccess(wt)
	rec.lastUser = b.passIndex
	b.appendEdge(accessEdge{
		passIndex:     b.passIndex,
		resourceIndex: h.ResourceIndex(),
		version:       newVersion,
		isWrite:       true,
		imageWrite:    wt,
	}, rec)
	return RenderTargetHandle{packed: packHandle(h.ResourceIndex(), newVersion, uint8(rec.currentImageAccess))}
}

// WriteRenderTarget is Write specialized for binding h as a color render
// target.
func (b *PassBuilder) WriteRenderTarget(h RenderTargetHandle) RenderTargetHandle {
	return b.Write(h, ImageWriteColorTarget)
}

// ReadBuffer records a read access to h, mirroring Read.
func (b *PassBuilder) ReadBuffer(h BufferHandle, atype BufferAccessType) BufferHandle {
	rec := b.resourceFor(h.ResourceIndex())
	b.checkCurrentVersion(rec, h.Version())
	if rec.currentBufferAccess == BufferAccessUndefined && !rec.isImported {
		panic(fmt.Sprintf("framegraph: read of undefined buffer %q", rec.name))
	}
	b.appendEdge(accessEdge{
		passIndex:     b.passIndex,
		resourceIndex: h.ResourceIndex(),
		version:       rec.version,
		isWrite:       false,
		bufferAccess:  atype,
	}, rec)
	rec.lastUser = b.passIndex
	return BufferHandle{packed: packHandle(h.ResourceIndex(), rec.version, uint8(rec.currentBufferAccess))}
}

// WriteBuffer records a write access to h, bumping its version, mirroring
// Write.
func (b *PassBuilder) WriteBuffer(h BufferHandle, atype BufferAccessType) BufferHandle {
	rec := b.resourceFor(h.ResourceIndex())
	b.checkCurrentVersion(rec, h.Version())
	newVersion := rec.version + 1
	if newVersion > 0x3ff {
		panic(fmt.Sprintf("framegraph: resource %q exceeded 1023 writes", rec.name))
	}
	rec.version = newVersion
	rec.currentBufferAccess = atype
	rec.lastUser = b.passIndex
	b.appendEdge(accessEdge{
		passIndex:     b.passIndex,
		resourceIndex: h.ResourceIndex(),
		version:       newVersion,
		isWrite:       true,
		bufferAccess:  atype,
	}, rec)
	return BufferHandle{packed: packHandle(h.ResourceIndex(), newVersion, uint8(atype))}
}

// SetFunction stores the callable Execute invokes with a *Context once
// this pass survives culling.
func (b *PassBuilder) SetFunction(fn func(*Context)) {
	b.graph.passes.At(int(b.passIndex)).fn = fn
}

func imageWriteAccess(wt ImageWriteType) ImageAccessType {
	switch wt {
	case ImageWriteColorTarget:
		return ImageAccessColorWrite
	case ImageWriteDepthTarget:
		return ImageAccessDepthWrite
	case ImageWriteCopyDst:
		return ImageAccessCopyDst
	case ImageWriteStorage:
		return ImageAccessStorageWrite
	default:
		return ImageAccessColorWrite
	}
}

func (b *PassBuilder) resourceFor(idx ResourceIndex) *resourceRecord {
	if int(idx) >= b.graph.resources.Len() {
		panic(fmt.Sprintf("framegraph: invalid resource index %d", idx))
	}
	return b.graph.resources.At(int(idx))
}

// checkCurrentVersion asserts h's version matches the resource's current
// version, catching stale handles — including the "two writers at the
// same version" case, since the second writer would still be holding the
// version the first writer already superseded.
func (b *PassBuilder) checkCurrentVersion(rec *resourceRecord, version uint16) {
	if version != rec.version {
		panic(fmt.Sprintf("framegraph: stale handle for resource %q (have version %d, handle is version %d)",
			rec.name, rec.version, version))
	}
}

// appendEdge appends edge to both the resource's and pass's access-edge
// chains.
func (b *PassBuilder) appendEdge(edge accessEdge, rec *resourceRecord) {
	pass := b.graph.passes.At(int(b.passIndex))
	edge.nextInResource = rec.accessHead
	edge.nextInPass = pass.accessHead
	idx := b.graph.edges.Append(edge)
	rec.accessHead = int32(idx)
	pass.accessHead = int32(idx)
}
