package ecs

import "reflect"

// ChunkView is a read view over one archetype chunk's component arrays,
// the minimal surface framegraph passes need to pull per-entity data
// without this package owning storage, query compilation, or
// scheduling. A world implementation populates one ChunkView per chunk
// it iterates and hands it to a pass's per-entity job.
type ChunkView struct {
	entities []EntityID
	columns  map[reflect.Type]any
}

// NewChunkView builds a ChunkView over entities, with columns holding
// one component array per component type. Every array in columns must
// have the same length as entities.
func NewChunkView(entities []EntityID, columns map[reflect.Type]any) ChunkView {
	return ChunkView{entities: entities, columns: columns}
}

// Len returns the number of entities in the chunk.
func (v ChunkView) Len() int {
	return len(v.entities)
}

// Entity returns the EntityID at index i.
func (v ChunkView) Entity(i int) EntityID {
	return v.entities[i]
}

// GetComponentArray returns the typed backing array for component type
// T, and false if this chunk carries no column of that type.
func GetComponentArray[T any](v ChunkView) ([]T, bool) {
	col, ok := v.columns[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	arr, ok := col.([]T)
	return arr, ok
}
