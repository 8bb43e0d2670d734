// Package fiber provides a fixed-capacity pool of reusable execution
// slots ("fibers") that job.System dispatches work onto.
//
// Go gives no supported way to switch a goroutine onto a manually managed
// stack, so a Fiber here is not a stack at all: it is a long-lived
// goroutine parked on a channel, rented out of a fixed-size Pool the same
// way spec.md's Fiber Slot array is rented, and returned to the pool when
// its current job finishes. Suspending inside a job (job.WaitGroup.Wait)
// blocks only that fiber's goroutine, never the worker that dispatched it.
package fiber
