package framegraph

import (
	"fmt"

	"github.com/forgecore/engine/gpu"
)

// CommandList is the minimal surface Execute needs from a device command
// recorder: barrier insertion and pass bracketing. The GPU-specific
// recording a pass function performs is opaque to the frame graph;
// CommandList only carries the parts Compile's barrier plan and Execute's
// pass bracketing must drive directly.
type CommandList interface {
	// ResourceBarrier transitions one resource between access states
	// before the next pass runs.
	ResourceBarrier(resource gpu.DeviceObject, fromImage, toImage ImageAccessType, fromBuffer, toBuffer BufferAccessType, isImage bool)
	// BeginPass/EndPass bracket one compiled pass's recording.
	BeginPass(name string, kind PassKind)
	EndPass()
}

// Context is handed to a pass's function during Execute. It accumulates
// the pipeline state that pass needs to record its draws, enforcing the
// set-once-per-draw rule from spec.md §4.4: Viewport, Scissor, and
// RenderTargets may each be set at most once before the next Draw.
type Context struct {
	plan      *CompiledPlan
	pass      *compiledPass
	cl        CommandList

	viewportSet bool
	scissorSet  bool
	targetsSet  bool

	viewport [4]float32
	scissor  [4]int32
	targets  []RenderTargetHandle
}

// SetViewport sets the pass's viewport exactly once; a second call before
// the next Draw/Dispatch panics.
func (c *Context) SetViewport(x, y, w, h float32) {
	if c.viewportSet {
		panic(fmt.Sprintf("framegraph: pass %q set viewport twice before a draw", c.pass.name))
	}
	c.viewport = [4]float32{x, y, w, h}
	c.viewportSet = true
}

// SetScissor sets the pass's scissor rect exactly once.
func (c *Context) SetScissor(x, y, w, h int32) {
	if c.scissorSet {
		panic(fmt.Sprintf("framegraph: pass %q set scissor twice before a draw", c.pass.name))
	}
	c.scissor = [4]int32{x, y, w, h}
	c.scissorSet = true
}

// SetRenderTargets binds the pass's render targets exactly once.
func (c *Context) SetRenderTargets(targets ...RenderTargetHandle) {
	if c.targetsSet {
		panic(fmt.Sprintf("framegraph: pass %q set render targets twice before a draw", c.pass.name))
	}
	c.targets = targets
	c.targetsSet = true
}

// Draw validates the required state has been set before handing the
// draw off to the command list, then clears the set-once flags so the
// next draw within this pass must set its own state.
func (c *Context) Draw(record func()) {
	if c.pass.kind != PassGraphics {
		panic(fmt.Sprintf("framegraph: pass %q is not a graphics pass", c.pass.name))
	}
	if !c.viewportSet || !c.targetsSet {
		panic(fmt.Sprintf("framegraph: pass %q issued a draw without viewport/render targets set", c.pass.name))
	}
	record()
	c.viewportSet = false
	c.scissorSet = false
	c.targetsSet = false
}

// Dispatch validates a compute pass has no outstanding graphics-only
// state requirements and hands off to record.
func (c *Context) Dispatch(record func()) {
	if c.pass.kind != PassCompute {
		panic(fmt.Sprintf("framegraph: pass %q is not a compute pass", c.pass.name))
	}
	record()
}

// DispatchMesh is Dispatch specialized for mesh-shader pipelines; it
// shares Dispatch's validation since mesh pipelines are dispatch-driven
// rather than vertex-buffer-driven.
func (c *Context) DispatchMesh(record func()) {
	c.Dispatch(record)
}

// Execute replays a compiled plan: for every surviving pass, in order,
// it flushes that pass's pre-barriers, constructs a fresh Context, and
// invokes the pass's recorded function between BeginPass/EndPass.
func (g *Graph) Execute(cp *CompiledPlan, cl CommandList) error {
	if cp.graph != g {
		return fmt.Errorf("framegraph: CompiledPlan was produced by a different Graph")
	}

	for i := range cp.passes {
		pass := &cp.passes[i]

		for _, b := range pass.preBarriers {
			obj := g.physicalObject(cp, b.resourceIndex)
			cl.ResourceBarrier(obj, b.fromImage, b.toImage, b.fromBuffer, b.toBuffer, b.isImage)
		}

		if pass.fn == nil {
			continue
		}

		cl.BeginPass(pass.name, pass.kind)
		ctx := &Context{plan: cp, pass: pass, cl: cl}
		pass.fn(ctx)
		cl.EndPass()
	}

	return nil
}

// physicalObject resolves a resource's device-visible backing object:
// the imported object for an imported resource, or the gpu.Resource
// Compile's assignPhysical constructed (or reused via alias hit) through
// the Graph's Device for a transient one. nil when the Graph has no
// Device, and for a transient resource that no surviving pass reads,
// since Compile gives such a resource no physical assignment.
func (g *Graph) physicalObject(cp *CompiledPlan, idx ResourceIndex) gpu.DeviceObject {
	return cp.physical[idx].object
}
