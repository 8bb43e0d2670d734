// Package job implements the engine's job system: a fixed pool of worker
// goroutines that pull prioritized work from per-priority queues and
// execute it on fibers rented from a fiber.Pool, plus a WaitGroup
// primitive jobs use to suspend until dependent work completes.
//
// It is the Go realization of spec.md's Fiber Job System; see
// DESIGN.md's "Go-realization of fibers" entry for how the original
// manual stack-switching design maps onto goroutines and channels.
package job
