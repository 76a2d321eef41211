package ecs

import "testing"

func TestEntityTableFirstIsZeroIndex(t *testing.T) {
	tbl := &entityTable{}
	id := tbl.create()
	if id.index() != 0 {
		t.Errorf("expecting first entity index to be 0, got %d", id.index())
	}
	if id.edition() != 0 {
		t.Errorf("expecting first entity edition to be 0, got %d", id.edition())
	}
}

func TestEntityTableValidAfterCreate(t *testing.T) {
	tbl := &entityTable{}
	id := tbl.create()
	if !tbl.valid(id) {
		t.Errorf("expecting freshly created entity to be valid")
	}
}

func TestEntityTableInvalidAfterDestroy(t *testing.T) {
	tbl := &entityTable{}
	id := tbl.create()
	tbl.destroy(id)
	if tbl.valid(id) {
		t.Errorf("expecting destroyed entity to be invalid")
	}
}

func TestEntityTableRecyclesIndexWithBumpedEdition(t *testing.T) {
	tbl := &entityTable{}
	first := tbl.create()
	tbl.destroy(first)
	second := tbl.create()

	if second.index() != first.index() {
		t.Errorf("expecting recycled entity to reuse index %d, got %d", first.index(), second.index())
	}
	if second.edition() == first.edition() {
		t.Errorf("expecting recycled entity to have a bumped edition")
	}
	if tbl.valid(first) {
		t.Errorf("expecting the stale handle to remain invalid after recycling")
	}
	if !tbl.valid(second) {
		t.Errorf("expecting the recycled handle to be valid")
	}
}

func TestEntityTableUnallocatedIndexIsInvalid(t *testing.T) {
	tbl := &entityTable{}
	if tbl.valid(makeEntityID(7, 0)) {
		t.Errorf("expecting an unallocated index to be invalid")
	}
}
