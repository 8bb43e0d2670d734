// Package streamio implements the async stream I/O system from
// spec.md §4.8: a dedicated goroutine (not a job.System worker, since it
// owns blocking OS read calls) drains a priority queue of read requests,
// optionally hands block decompression off to job.System workers, and
// invokes each request's callback with the result. Cancellation is
// cooperative via a Controller flag checked at block boundaries.
package streamio
