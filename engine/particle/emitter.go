// Package particle implements per-emitter pools with distributions,
// gravity, and lifetimes. Pool-of-slots shape
// grounded on gazed-vu's particle.go: particles are pre-allocated once
// and recycled by index, never reallocated per frame.
package particle

import (
	"github.com/ironspire/engine/engine/math"
	"golang.org/x/exp/rand"
)

// Particle is one live or dead slot in an Emitter's pool.
type Particle struct {
	Position math.Vec3
	Velocity math.Vec3
	Age float32
	Life float32
	Alive bool
}

// DistributionFunc returns an initial velocity for a newly spawned
// particle, sampled from r (per-emitter seeded, not global, so emitter
// behavior is reproducible in tests).
type DistributionFunc func(r *rand.Rand) math.Vec3

// ConeDistribution spawns velocities within a cone around axis.
func ConeDistribution(axis math.Vec3, spread float32, speed float32) DistributionFunc {
	return func(r *rand.Rand) math.Vec3 {
		jitter := math.Vec3{
			X: (r.Float32()*2 - 1) * spread,
			Y: (r.Float32()*2 - 1) * spread,
			Z: (r.Float32()*2 - 1) * spread,
		}
		return axis.Add(jitter).Normalize().MulScalar(speed)
	}
}

// SphereDistribution spawns velocities uniformly over a sphere.
func SphereDistribution(speed float32) DistributionFunc {
	return func(r *rand.Rand) math.Vec3 {
		v := math.Vec3{X: r.Float32()*2 - 1, Y: r.Float32()*2 - 1, Z: r.Float32()*2 - 1}
		return v.Normalize().MulScalar(speed)
	}
}

// Emitter owns a fixed pool of particles spawned at SpawnRate per
// second, aged and gravity-integrated each Update, and rendered as one
// instanced draw per frame into the PARTICLE queue.
type Emitter struct {
	Pool []Particle
	Distribution DistributionFunc
	Gravity math.Vec3
	MaxLife float32
	SpawnRate float32
	Origin math.Vec3

	rng *rand.Rand
	spawnAccum float32
}

// NewEmitter pre-allocates maxParticles slots and seeds a private RNG
// from seed so two emitters with the same seed produce identical
// sequences (test determinism, per).
func NewEmitter(maxParticles int, dist DistributionFunc, gravity math.Vec3, maxLife, spawnRate float32, seed uint64) *Emitter {
	return &Emitter{
		Pool: make([]Particle, maxParticles),
		Distribution: dist,
		Gravity: gravity,
		MaxLife: maxLife,
		SpawnRate: spawnRate,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (e *Emitter) firstDead() int {
	for i := range e.Pool {
		if !e.Pool[i].Alive {
			return i
		}
	}
	return -1
}

// Update ages and gravity-integrates live particles, recycles dead
// slots by index, and spawns new particles at SpawnRate per second.
func (e *Emitter) Update(dt float32) {
	for i := range e.Pool {
		p := &e.Pool[i]
		if !p.Alive {
			continue
		}
		p.Age += dt
		if p.Age >= p.Life {
			p.Alive = false
			continue
		}
		p.Velocity = p.Velocity.Add(e.Gravity.MulScalar(dt))
		p.Position = p.Position.Add(p.Velocity.MulScalar(dt))
	}

	e.spawnAccum += e.SpawnRate * dt
	for e.spawnAccum >= 1 {
		e.spawnAccum--
		idx := e.firstDead()
		if idx < 0 {
			break
		}
		e.Pool[idx] = Particle{
			Position: e.Origin,
			Velocity: e.Distribution(e.rng),
			Life: e.MaxLife,
			Alive: true,
		}
	}
}

// LiveTransforms returns the model matrices of every live particle,
// the shape facade.Facade.QueueParticlesInstanced pushes into the
// PARTICLE queue as one PushInstanced call per emitter.
func (e *Emitter) LiveTransforms(out []math.Mat4) []math.Mat4 {
	out = out[:0]
	for _, p := range e.Pool {
		if p.Alive {
			out = append(out, math.NewMat4Translation(p.Position))
		}
	}
	return out
}
