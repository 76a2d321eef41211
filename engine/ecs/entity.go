// Package ecs implements the entity/component world: per-entity
// component registration, fixed update and render sweep orders, and
// the destroy path that tears down owned external resources before
// the entity row. Entity ID model grounded on gazed-vu's eid/eids
// (index + edition, recycled through a free list), the same scheme
// engine/resources.ResourceID uses.
package ecs

import (
	"github.com/ironspire/engine/engine/core"
)

const idBits = 20
const edBits = 12
const maxEntityIndex = (1 << idBits) - 1
const maxEdition = (1 << edBits) - 1

// EntityID is a generation-counted handle: low idBits select a row in
// the world's component slices, high edBits detect stale references
// after Destroy.
type EntityID uint32

func (e EntityID) index() uint32 { return uint32(e) & maxEntityIndex }
func (e EntityID) edition() uint32 { return (uint32(e) >> idBits) & maxEdition }
func makeEntityID(index, edition uint32) EntityID {
	return EntityID(index | (edition << idBits))
}

type entityTable struct {
	editions []uint32
	free []uint32
}

func (t *entityTable) create() EntityID {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		return makeEntityID(idx, t.editions[idx])
	}
	idx := uint32(len(t.editions))
	t.editions = append(t.editions, 0)
	if idx > maxEntityIndex {
		core.LogError("ecs: entity id space exhausted")
	}
	return makeEntityID(idx, 0)
}

func (t *entityTable) valid(id EntityID) bool {
	idx := id.index()
	if int(idx) >= len(t.editions) {
		return false
	}
	return t.editions[idx] == id.edition()
}

func (t *entityTable) destroy(id EntityID) {
	idx := id.index()
	t.editions[idx]++
	t.free = append(t.free, idx)
}
