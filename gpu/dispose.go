package gpu

import "sync"

// DisposeQueue defers DeviceObject.Destroy until the GPU is known to be
// finished with it. An object retired during frame N is only safe to
// destroy once the GPU has completed frame N+framesInFlight; calling
// Destroy earlier risks destroying a resource a submitted-but-not-yet-
// executed command buffer still references.
//
// The active/free-list/maintain shape mirrors a GPU fence pool: entries
// carry a monotonic frame value, Advance polls how far the GPU has
// actually gotten and disposes everything that has matured, same as a
// fence pool recycling fences once their submission completes.
type DisposeQueue struct {
	mu             sync.Mutex
	framesInFlight uint64
	pending        []pendingDispose
}

type pendingDispose struct {
	retiredAt uint64
	obj       DeviceObject
}

// NewDisposeQueue creates a queue that delays disposal by framesInFlight
// frames. framesInFlight must be at least 1.
func NewDisposeQueue(framesInFlight int) *DisposeQueue {
	if framesInFlight < 1 {
		framesInFlight = 1
	}
	return &DisposeQueue{framesInFlight: uint64(framesInFlight)}
}

// Retire schedules obj for disposal once the GPU has completed at least
// framesInFlight frames past frame.
func (q *DisposeQueue) Retire(frame uint64, obj DeviceObject) {
	q.mu.Lock()
	q.pending = append(q.pending, pendingDispose{retiredAt: frame, obj: obj})
	q.mu.Unlock()
}

// Advance destroys every entry whose retirement frame has matured given
// the GPU's currently completed frame, and returns how many were
// disposed. Call this once per frame (or once per frame fence signal).
func (q *DisposeQueue) Advance(completedFrame uint64) int {
	q.mu.Lock()
	n := 0
	kept := q.pending[:0]
	var toDispose []DeviceObject
	for _, p := range q.pending {
		if completedFrame >= p.retiredAt+q.framesInFlight {
			toDispose = append(toDispose, p.obj)
		} else {
			kept = append(kept, p)
		}
	}
	q.pending = kept
	q.mu.Unlock()

	for _, obj := range toDispose {
		obj.Destroy()
	}
	return len(toDispose)
}

// Pending returns the number of objects still awaiting disposal.
func (q *DisposeQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
