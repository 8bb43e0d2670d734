package job

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

type fiberCtxKey struct{}

// WithFiberContext marks ctx as running on a job system fiber. System
// attaches this before invoking a Job's Execute; WaitGroup.Wait asserts
// it is present, since waiting from anywhere else would block an entire
// worker goroutine instead of just one fiber.
func WithFiberContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, fiberCtxKey{}, true)
}

func onFiber(ctx context.Context) bool {
	v, _ := ctx.Value(fiberCtxKey{}).(bool)
	return v
}

type waiter struct {
	next   *waiter
	resume chan struct{}
}

// WaitGroup is a fiber-suspending counter. Unlike sync.WaitGroup, Wait
// never blocks the calling OS thread: it parks only the calling fiber's
// goroutine on a channel, leaving the worker that dispatched it free to
// keep servicing the job queues.
type WaitGroup struct {
	counter atomic.Int32
	mu      sync.Mutex
	waiters *waiter
}

// NewWaitGroup creates a WaitGroup with the given initial counter value.
func NewWaitGroup(initial int32) *WaitGroup {
	wg := &WaitGroup{}
	wg.counter.Store(initial)
	return wg
}

// Add adjusts the counter by delta. As with sync.WaitGroup, callers must
// not Add concurrently with a Signal that could observe the counter drop
// to zero.
func (w *WaitGroup) Add(delta int32) {
	w.counter.Add(delta)
}

// Signal decrements the counter by delta and, once it reaches zero,
// resumes every fiber currently parked in Wait.
func (w *WaitGroup) Signal(delta int32) {
	v := w.counter.Add(-delta)
	if v < 0 {
		panic(fmt.Sprintf("job: WaitGroup counter went negative (%d)", v))
	}
	if v != 0 {
		return
	}
	w.mu.Lock()
	head := w.waiters
	w.waiters = nil
	w.mu.Unlock()
	for wt := head; wt != nil; {
		next := wt.next
		close(wt.resume)
		wt = next
	}
}

// Wait blocks the calling fiber until the counter reaches zero or ctx is
// canceled. ctx must be (or be derived from) a context passed through
// WithFiberContext; Wait panics otherwise.
func (w *WaitGroup) Wait(ctx context.Context) error {
	if !onFiber(ctx) {
		panic("job: WaitGroup.Wait called outside a job fiber")
	}
	if w.counter.Load() <= 0 {
		return nil
	}

	wt := &waiter{resume: make(chan struct{})}
	w.mu.Lock()
	if w.counter.Load() <= 0 {
		// Signal ran between the fast-path check above and acquiring mu.
		w.mu.Unlock()
		return nil
	}
	wt.next = w.waiters
	w.waiters = wt
	w.mu.Unlock()

	select {
	case <-wt.resume:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
