// Package memory provides the two allocation strategies the engine core
// relies on: a linear (bump) arena for per-frame records, and a fixed-size
// pool for long-lived, frequently recycled objects.
//
// Neither allocator is safe for concurrent use unless stated otherwise;
// callers serialize access the way the frame graph serializes its arena
// (single builder goroutine per frame) or guard the pool with their own
// lock.
package memory
