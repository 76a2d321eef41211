package particle

import (
	"testing"

	"github.com/ironspire/engine/engine/math"
)

func TestNewEmitterPreallocatesPool(t *testing.T) {
	e := NewEmitter(16, SphereDistribution(1), math.NewVec3Zero(), 1, 1, 1)
	if len(e.Pool) != 16 {
		t.Errorf("expecting a pre-allocated pool of 16, got %d", len(e.Pool))
	}
	for i, p := range e.Pool {
		if p.Alive {
			t.Errorf("expecting slot %d to start dead", i)
		}
	}
}

func TestUpdateSpawnsAtSpawnRate(t *testing.T) {
	e := NewEmitter(4, SphereDistribution(1), math.NewVec3Zero(), 10, 2, 1) // spawn_rate=2/s
	e.Update(1)                                                            // exactly one second elapsed

	live := 0
	for _, p := range e.Pool {
		if p.Alive {
			live++
		}
	}
	if live != 2 {
		t.Errorf("expecting 2 particles spawned after 1s at spawn_rate=2, got %d", live)
	}
}

func TestUpdateKillsParticlesPastTheirLife(t *testing.T) {
	e := NewEmitter(4, SphereDistribution(1), math.NewVec3Zero(), 0.5, 100, 1)
	e.Update(0.01) // spawn a burst

	// Stop spawning, so the next Update's spawn step does not refill
	// the slots it has just killed.
	e.SpawnRate = 0
	e.Update(1) // well past MaxLife for all of them

	for i, p := range e.Pool {
		if p.Alive {
			t.Errorf("expecting slot %d to have died after exceeding its life", i)
		}
	}
}

func TestLiveTransformsOnlyIncludesAliveParticles(t *testing.T) {
	e := NewEmitter(4, SphereDistribution(1), math.NewVec3Zero(), 10, 100, 1)
	e.Update(0.01)

	var out []math.Mat4
	out = e.LiveTransforms(out)
	if len(out) == 0 {
		t.Errorf("expecting at least one live transform after spawning")
	}
	alive := 0
	for _, p := range e.Pool {
		if p.Alive {
			alive++
		}
	}
	if len(out) != alive {
		t.Errorf("expecting one transform per live particle (%d), got %d", alive, len(out))
	}
}

func TestTwoEmittersWithSameSeedMatch(t *testing.T) {
	a := NewEmitter(4, SphereDistribution(1), math.NewVec3Zero(), 10, 100, 42)
	b := NewEmitter(4, SphereDistribution(1), math.NewVec3Zero(), 10, 100, 42)

	a.Update(0.5)
	b.Update(0.5)

	for i := range a.Pool {
		if a.Pool[i].Velocity != b.Pool[i].Velocity {
			t.Errorf("expecting same-seed emitters to produce identical velocities at slot %d", i)
		}
	}
}
