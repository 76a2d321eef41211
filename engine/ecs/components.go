package ecs

import (
	"github.com/ironspire/engine/engine/anim"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/particle"
	"github.com/ironspire/engine/engine/resources"
)

// PhysicsBody is the external physics collaborator's per-body
// interface: the ECS only ever reads back the authoritative transform
// it last produced.
type PhysicsBody interface {
	Position() math.Vec3
	Rotation() math.Quaternion
	Destroy()
}

// Character is the external physics collaborator's character
// controller interface, distinct from a plain PhysicsBody for the
// update-order split (physics-body then character-body).
type Character interface {
	Position() math.Vec3
	Rotation() math.Quaternion
	Destroy()
}

// Renderable names the static model this entity submits every render
// sweep (static Renderable).
type Renderable struct {
	ModelID resources.ResourceID
	Transparency float32
	DepthMask bool
}

// InstancedRenderable is the same shape as Renderable but carries the
// per-instance transform set QueueModelInstanced expands.
type InstancedRenderable struct {
	ModelID resources.ResourceID
	Transforms []math.Mat4
	Transparency float32
	DepthMask bool
}

// Sampler pairs an animation sampler with the Renderable it must be
// co-located with: samplers/blenders must be paired with a Renderable
// component that names the skinned model.
type Sampler struct {
	*anim.Sampler
	TargetModelID resources.ResourceID
}

// Blender is the blended analogue of Sampler.
type Blender struct {
	*anim.Blender
	TargetModelID resources.ResourceID
}

// ParticleEmitter wraps a particle.Emitter for ECS scheduling.
type ParticleEmitter struct {
	*particle.Emitter
}

// Timer fires OnFire when Elapsed reaches Duration; Loop restarts it.
type Timer struct {
	Duration float32
	Elapsed float32
	Loop bool
	OnFire func(e EntityID)
}

// AudioSource is out of core scope but is tracked here so its destroy
// path participates in component teardown order.
type AudioSource struct {
	BufferID resources.ResourceID
	Playing bool
	Destroy func()
}
