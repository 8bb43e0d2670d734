// Package engine is the root of a small game-engine runtime core: a
// fiber-based job system, a declarative per-frame graph of GPU passes
// and resources, and the transient-heap/bindless/dispose-queue
// machinery a frame graph needs to actually allocate and synchronize
// GPU memory.
//
// # Overview
//
// The engine does not own a window, an ECS, or a renderer; it is the
// scheduling and resource-lifecycle layer those things sit on top of.
// A host application constructs a job.System, a transient.Heap, and a
// gpu.Device (which in turn owns a bindless.Table and a
// gpu.DisposeQueue), wires them into an env.Environment, and records
// each frame's work as a framegraph.Graph before compiling and
// executing it against its own command-list implementation. Compile
// turns every surviving transient resource into a concrete gpu.Resource
// through the Device, so Execute always has a real DeviceObject to
// barrier against, imported or transient.
//
// # Architecture
//
//   - job: M:N cooperative fiber scheduler (fiber, job packages).
//   - framegraph: per-frame DAG of passes/resources, compiled to a
//     physical memory assignment and barrier plan.
//   - transient: the frame graph's aliasing backing heap.
//   - bindless: flat, index-addressed SRV/UAV/Sampler descriptor tables,
//     owned by gpu.Device.
//   - gpu: device handle, resource IDs, transient resource objects, and
//     deferred disposal.
//   - copyqueue: paged transfer-queue command recording and replay.
//   - streamio: dedicated-goroutine async file I/O with priority and
//     cancellation.
//   - shaderlib: shader variant cache and compile-job dispatch.
//   - asset, ecs, env: the minimal external contracts the core consumes
//     rather than implements (texture asset loading, entity/chunk
//     views, and a thin service locator).
package engine
