package framegraph

import (
	"fmt"
	"sort"

	"github.com/forgecore/engine/gpu"
	"github.com/forgecore/engine/transient"
)

// barrier records a required state transition Execute must flush before
// the pass that needs it runs.
type barrier struct {
	resourceIndex ResourceIndex
	isImage       bool
	fromImage     ImageAccessType
	toImage       ImageAccessType
	fromBuffer    BufferAccessType
	toBuffer      BufferAccessType
}

type compiledPass struct {
	index       PassIndex
	name        string
	kind        PassKind
	fn          func(*Context)
	preBarriers []barrier
}

// physicalAssignment is a resource's physical backing after Compile:
// object is the imported DeviceObject for an imported resource, or the
// gpu.Resource the Device constructed (or reused via alias hit) for a
// transient one, nil if the Graph has no Device. A transient resource
// that nothing reads gets no physicalAssignment at all. placement is only
// meaningful for transient resources.
type physicalAssignment struct {
	object    gpu.DeviceObject
	placement transient.Placement
	isPlaced  bool
}

// CompiledPlan is the output of Graph.Compile: the surviving passes in
// execution order, each with its pre-barrier batch, and the physical
// resource assignment every surviving resource was given.
type CompiledPlan struct {
	graph    *Graph
	passes   []compiledPass
	physical map[ResourceIndex]physicalAssignment
}

// Compile runs the four-stage algorithm from spec.md §4.3: ref-count
// init, cull, lifetime-interval computation, and physical assignment via
// the Graph's transient.Heap, followed by the barrier plan. It must be
// called after every pass has been recorded and before Execute.
func (g *Graph) Compile() (*CompiledPlan, error) {
	g.initRefCounts()
	g.cull()

	intervals := g.computeLifetimeIntervals()
	physical, err := g.assignPhysical(g.heap, g.device, intervals)
	if err != nil {
		return nil, err
	}

	plan := &CompiledPlan{graph: g, physical: physical}
	if err := g.buildBarrierPlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (g *Graph) initRefCounts() {
	n := g.resources.Len()
	for i := 0; i < n; i++ {
		rec := g.resources.At(i)
		rec.refCount = 0
		if rec.isImported {
			rec.refCount++ // the outside world observes every imported resource
		}
	}
	for e := 0; e < g.edges.Len(); e++ {
		edge := g.edges.At(e)
		if !edge.isWrite {
			g.resources.At(int(edge.resourceIndex)).refCount++
		}
	}

	np := g.passes.Len()
	for p := 0; p < np; p++ {
		pass := g.passes.At(p)
		pass.refCount = 0
		pass.culled = false
	}
	for e := 0; e < g.edges.Len(); e++ {
		edge := g.edges.At(e)
		if edge.isWrite {
			g.passes.At(int(edge.passIndex)).refCount++
		}
	}
	for p := 0; p < np; p++ {
		pass := g.passes.At(p)
		if pass.refCount == 0 {
			pass.culled = true
		}
	}
}

func (g *Graph) cull() {
	var worklist []ResourceIndex
	n := g.resources.Len()
	for i := 0; i < n; i++ {
		rec := g.resources.At(i)
		if rec.refCount == 0 && !rec.isImported {
			worklist = append(worklist, ResourceIndex(i))
		}
	}

	for len(worklist) > 0 {
		r := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		rec := g.resources.At(int(r))
		if !rec.hasCreator {
			continue
		}
		producer := g.passes.At(int(rec.creatorPass))
		producer.refCount--
		if producer.refCount > 0 {
			continue
		}
		producer.culled = true
		for e := producer.accessHead; e != -1; {
			edge := g.edges.At(int(e))
			if !edge.isWrite {
				readee := g.resources.At(int(edge.resourceIndex))
				readee.refCount--
				if readee.refCount == 0 && !readee.isImported {
					worklist = append(worklist, edge.resourceIndex)
				}
			}
			e = edge.nextInPass
		}
	}
}

type lifetimeInterval struct {
	index              ResourceIndex
	firstUse, lastUse  PassIndex
}

func (g *Graph) computeLifetimeIntervals() []lifetimeInterval {
	var out []lifetimeInterval
	n := g.resources.Len()
	for i := 0; i < n; i++ {
		rec := g.resources.At(i)
		if rec.isImported || rec.refCount == 0 {
			continue
		}
		if rec.hasCreator && g.passes.At(int(rec.creatorPass)).culled {
			continue
		}
		first, last := PassIndex(^uint16(0)), PassIndex(0)
		seen := false
		if rec.hasCreator {
			first, last = rec.creatorPass, rec.creatorPass
			seen = true
		}
		for e := rec.accessHead; e != -1; {
			edge := g.edges.At(int(e))
			if !g.passes.At(int(edge.passIndex)).culled {
				if !seen || edge.passIndex < first {
					first = edge.passIndex
				}
				if !seen || edge.passIndex > last {
					last = edge.passIndex
				}
				seen = true
			}
			e = edge.nextInResource
		}
		if seen {
			out = append(out, lifetimeInterval{index: ResourceIndex(i), firstUse: first, lastUse: last})
		}
	}
	return out
}

// assignPhysical places every surviving transient resource into heap,
// releasing placements whose resource's interval has already ended
// before allocating the next one so non-overlapping resources alias the
// same bytes. When device is non-nil, each placement is also turned into
// a concrete gpu.Resource through device's transient-resource cache
// (spec.md §4.5): a placement reused by this allocation scheme (same
// byte range as something device cached before) resolves to the exact
// same Resource, a new one constructs and registers one.
func (g *Graph) assignPhysical(heap *transient.Heap, device *gpu.Device, intervals []lifetimeInterval) (map[ResourceIndex]physicalAssignment, error) {
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].firstUse < intervals[j].firstUse })

	result := make(map[ResourceIndex]physicalAssignment, len(intervals))

	type alive struct {
		lastUse   PassIndex
		placement transient.Placement
		object    gpu.DeviceObject
		kind      resourceKind
	}
	var aliveList []alive

	for _, iv := range intervals {
		kept := aliveList[:0]
		for _, a := range aliveList {
			if a.lastUse < iv.firstUse {
				heap.Release(a.placement)
				releaseDeviceResource(device, a.kind, a.object)
			} else {
				kept = append(kept, a)
			}
		}
		aliveList = kept

		rec := g.resources.At(int(iv.index))
		size := resourceByteSize(rec)
		placement, err := heap.Alloc(size)
		if err != nil {
			return nil, fmt.Errorf("framegraph: assigning physical memory for %q: %w", rec.name, err)
		}

		var object gpu.DeviceObject
		if device != nil {
			obj, err := createDeviceResource(device, rec, placement)
			if err != nil {
				return nil, fmt.Errorf("framegraph: creating device resource for %q: %w", rec.name, err)
			}
			object = obj
		}

		result[iv.index] = physicalAssignment{object: object, placement: placement, isPlaced: true}
		aliveList = append(aliveList, alive{lastUse: iv.lastUse, placement: placement, object: object, kind: rec.kind})
	}
	for _, a := range aliveList {
		heap.Release(a.placement)
		releaseDeviceResource(device, a.kind, a.object)
	}

	// Imported resources carry their own device object straight through.
	n := g.resources.Len()
	for i := 0; i < n; i++ {
		rec := g.resources.At(i)
		if !rec.isImported {
			continue
		}
		var obj gpu.DeviceObject
		if rec.kind == resourceImage {
			obj = rec.importedImage.Object
		} else {
			obj = rec.importedBuffer.Object
		}
		result[ResourceIndex(i)] = physicalAssignment{object: obj}
	}

	return result, nil
}

// resourceDesc builds the gpu.ResourceDesc device.CreateImage/CreateBuffer
// hash on from a Resource Record's creation parameters.
func resourceDesc(rec *resourceRecord) gpu.ResourceDesc {
	if rec.kind == resourceBuffer {
		return gpu.ResourceDesc{Size: rec.bufferDesc.Size, Usage: rec.bufferDesc.Usage}
	}
	d := rec.imageDesc
	return gpu.ResourceDesc{
		Width: d.Width, Height: d.Height, Depth: d.Depth,
		MipLevels: d.MipLevels, Format: d.Format, Usage: d.Usage,
	}
}

func createDeviceResource(device *gpu.Device, rec *resourceRecord, placement transient.Placement) (gpu.DeviceObject, error) {
	desc := resourceDesc(rec)
	if rec.kind == resourceBuffer {
		return device.CreateBuffer(rec.name, desc, placement)
	}
	return device.CreateImage(rec.name, desc, placement)
}

func releaseDeviceResource(device *gpu.Device, kind resourceKind, obj gpu.DeviceObject) {
	if device == nil || obj == nil {
		return
	}
	res, ok := obj.(*gpu.Resource)
	if !ok {
		return
	}
	if kind == resourceBuffer {
		device.ReleaseBuffer(res)
	} else {
		device.ReleaseImage(res)
	}
}

func resourceByteSize(rec *resourceRecord) uint64 {
	if rec.kind == resourceBuffer {
		if rec.bufferDesc.Size > 0 {
			return rec.bufferDesc.Size
		}
		return 1
	}
	d := rec.imageDesc
	bpp := uint64(4) // 4 bytes per texel for every format; no per-format size lookup is made
	depth := d.Depth
	if depth == 0 {
		depth = 1
	}
	size := uint64(d.Width) * uint64(d.Height) * uint64(depth) * bpp
	if size == 0 {
		return 1
	}
	return size
}
