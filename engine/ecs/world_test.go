package ecs

import "testing"

func TestCreateEntityAssignsTransform(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	if !w.Valid(id) {
		t.Fatalf("expecting freshly created entity to be valid")
	}
	if w.Transform(id) == nil {
		t.Errorf("expecting a CreateEntity to assign a fresh Transform")
	}
}

func TestDestroyEntityInvalidatesHandle(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	w.DestroyEntity(id)
	if w.Valid(id) {
		t.Errorf("expecting destroyed entity to be invalid")
	}
	if w.Transform(id) != nil {
		t.Errorf("expecting Transform to return nil for a destroyed entity")
	}
}

func TestDestroyEntityCallsExternalDestructors(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()

	destroyed := false
	w.SetAudioSource(id, &AudioSource{Destroy: func() { destroyed = true }})
	w.DestroyEntity(id)

	if !destroyed {
		t.Errorf("expecting DestroyEntity to call the AudioSource's Destroy hook")
	}
}

func TestUpdateTimerFiresOnceAndClampsWhenNotLooping(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()

	fired := 0
	w.SetTimer(id, &Timer{Duration: 1, OnFire: func(e EntityID) { fired++ }})

	w.Update(0.6)
	if fired != 0 {
		t.Errorf("expecting timer not to fire before duration elapses, fired=%d", fired)
	}
	w.Update(0.6)
	if fired != 1 {
		t.Errorf("expecting timer to fire exactly once once duration elapses, fired=%d", fired)
	}
	w.Update(1)
	if fired != 1 {
		t.Errorf("expecting non-looping timer to clamp instead of firing again, fired=%d", fired)
	}
}

func TestUpdateTimerLoopsWhenLoopSet(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()

	fired := 0
	w.SetTimer(id, &Timer{Duration: 1, Loop: true, OnFire: func(e EntityID) { fired++ }})

	w.Update(1)
	w.Update(1)
	if fired != 2 {
		t.Errorf("expecting a looping timer to fire twice across two full durations, fired=%d", fired)
	}
}
