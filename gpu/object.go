package gpu

// DeviceObject is any GPU-backed object the engine manages the lifetime
// of: textures, buffers, pipelines, descriptor allocations. Destroy
// releases the underlying GPU resource immediately and must only be
// called once the GPU is known to be finished with it (DisposeQueue
// exists to guarantee that).
type DeviceObject interface {
	DebugName() string
	Destroy()
}
