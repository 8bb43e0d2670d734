package ecs

import (
	"reflect"
	"testing"
)

type position struct{ X, Y float32 }

func TestGetComponentArrayReturnsTypedColumn(t *testing.T) {
	entities := []EntityID{{ID: 1}, {ID: 2}}
	positions := []position{{X: 1}, {X: 2}}
	view := NewChunkView(entities, map[reflect.Type]any{
		reflect.TypeOf(position{}): positions,
	})

	got, ok := GetComponentArray[position](view)
	if !ok {
		t.Fatal("expected position column to be present")
	}
	if len(got) != 2 || got[1].X != 2 {
		t.Fatalf("unexpected column contents: %+v", got)
	}

	if _, ok := GetComponentArray[float64](view); ok {
		t.Fatal("expected no column for an unregistered component type")
	}
}

func TestChunkViewEntityAccess(t *testing.T) {
	entities := []EntityID{{ID: 7}, {ID: 9}}
	view := NewChunkView(entities, nil)
	if view.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", view.Len())
	}
	if view.Entity(1) != (EntityID{ID: 9}) {
		t.Fatalf("Entity(1) = %+v", view.Entity(1))
	}
}
