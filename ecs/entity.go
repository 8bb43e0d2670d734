package ecs

// EntityID identifies an entity across worlds and component registries.
// World distinguishes independent simulations sharing one process;
// Registry distinguishes component-layout generations within a world
// (e.g. after a hot-reload); ID is the slot index within (World,
// Registry).
type EntityID struct {
	World    uint8
	Registry uint32
	ID       uint32
}

// IsZero reports whether id is the zero value, used as the "no entity"
// sentinel.
func (id EntityID) IsZero() bool {
	return id == EntityID{}
}
