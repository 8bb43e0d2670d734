// Package ecs provides the minimal entity/chunk contract frame graph
// passes need to be driven by per-entity jobs: a stable EntityID and a
// read view over one chunk's component arrays. Archetype storage, query
// compilation, and system scheduling are out of scope; a real ECS
// world is expected to hand this package's callers a ChunkView per
// chunk it iterates.
package ecs
