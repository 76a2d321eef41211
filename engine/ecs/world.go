package ecs

import (
	"github.com/ironspire/engine/engine/anim"
	"github.com/ironspire/engine/engine/containers"
	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/resources"
)

// maxPendingDestroys bounds how many QueueDestroy calls can accumulate
// between flushes before the caller is forced to drain early.
const maxPendingDestroys = 256

// Renderer is the subset of the renderer façade's queue entry points
// the world's render sweep dispatches into. Kept as an
// interface so ecs never imports engine/renderer directly.
type Renderer interface {
	QueueModel(id resources.ResourceID, transform math.Mat4, transparency float32, depthMask bool)
	QueueModelInstanced(id resources.ResourceID, transforms []math.Mat4, transparency float32, depthMask bool)
	QueueAnimation(id resources.ResourceID, transform math.Mat4, palette [anim.JointsMax]math.Mat4)
	QueueAnimationInstanced(id resources.ResourceID, transforms []math.Mat4, palettes [][anim.JointsMax]math.Mat4)
	QueueParticlesInstanced(transforms []math.Mat4)
}

// World stores components in per-kind dense slices indexed by
// EntityID.index, mirroring gazed-vu's ents.editions append pattern
//. A nil slice element means the entity does not carry that
// component.
type World struct {
	entities entityTable

	transforms []*math.Transform
	physics []PhysicsBody
	characters []Character
	renderables []*Renderable
	instanced []*InstancedRenderable
	samplers []*Sampler
	blenders []*Blender
	emitters []*ParticleEmitter
	timers []*Timer
	audio []*AudioSource
	particleScratch []math.Mat4
	pickIDs []uint32 // id+1 of the pick identifier assigned via AssignPickID, 0 if none

	pendingDestroy *containers.RingQueue
}

func NewWorld() *World {
	return &World{pendingDestroy: containers.NewRingQueue(maxPendingDestroys)}
}

func (w *World) grow(idx uint32) {
	for uint32(len(w.transforms)) <= idx {
		w.transforms = append(w.transforms, nil)
		w.physics = append(w.physics, nil)
		w.characters = append(w.characters, nil)
		w.renderables = append(w.renderables, nil)
		w.instanced = append(w.instanced, nil)
		w.samplers = append(w.samplers, nil)
		w.blenders = append(w.blenders, nil)
		w.emitters = append(w.emitters, nil)
		w.timers = append(w.timers, nil)
		w.audio = append(w.audio, nil)
		w.pickIDs = append(w.pickIDs, 0)
	}
}

// CreateEntity allocates a new entity row and dispatches
// EVENT_ENTITY_ADDED,.
func (w *World) CreateEntity() EntityID {
	id := w.entities.create()
	w.grow(id.index())
	w.transforms[id.index()] = math.TransformCreate()
	core.EventFire(core.EventContext{Type: core.EventEntityAdded, Data: &core.EntityEvent{EntityID: uint32(id)}})
	return id
}

func (w *World) Valid(id EntityID) bool { return w.entities.valid(id) }

// AssignPickID hands id a stable object-pick identifier, suitable for
// decoding a color-id picking pass back to the entity it hit (the
// payload of EventObjectHoverIDChanged). Calling it again on an
// already-assigned entity returns the existing identifier.
func (w *World) AssignPickID(id EntityID) uint32 {
	idx := id.index()
	if existing := w.pickIDs[idx]; existing != 0 {
		return existing - 1
	}
	pick := core.IdentifierAquireNewID(id)
	w.pickIDs[idx] = pick + 1
	return pick
}

// EntityForPickID resolves a pick identifier, as decoded from a pick
// pass's color buffer, back to the entity that owns it.
func (w *World) EntityForPickID(pickID uint32) (EntityID, bool) {
	owner, ok := core.IdentifierOwner(pickID)
	if !ok {
		return 0, false
	}
	id, ok := owner.(EntityID)
	return id, ok
}

func (w *World) releasePickID(idx uint32) {
	if pick := w.pickIDs[idx]; pick != 0 {
		if err := core.IdentifierReleaseID(pick - 1); err != nil {
			core.LogWarn("ecs: %s", err)
		}
		w.pickIDs[idx] = 0
	}
}

func (w *World) Transform(id EntityID) *math.Transform {
	if !w.Valid(id) {
		return nil
	}
	return w.transforms[id.index()]
}

func (w *World) SetPhysicsBody(id EntityID, b PhysicsBody) { w.physics[id.index()] = b }
func (w *World) SetCharacter(id EntityID, c Character) { w.characters[id.index()] = c }
func (w *World) SetRenderable(id EntityID, r *Renderable) { w.renderables[id.index()] = r }
func (w *World) SetInstancedRenderable(id EntityID, r *InstancedRenderable) {
	w.instanced[id.index()] = r
}
func (w *World) SetSampler(id EntityID, s *Sampler) { w.samplers[id.index()] = s }
func (w *World) SetBlender(id EntityID, b *Blender) { w.blenders[id.index()] = b }
func (w *World) SetParticleEmitter(id EntityID, e *ParticleEmitter) { w.emitters[id.index()] = e }
func (w *World) SetTimer(id EntityID, t *Timer) { w.timers[id.index()] = t }
func (w *World) SetAudioSource(id EntityID, a *AudioSource) { w.audio[id.index()] = a }

// DestroyEntity tears down any component owning an external resource
// first, dispatches EVENT_ENTITY_DESTROYED, then frees the row.
func (w *World) DestroyEntity(id EntityID) {
	if !w.Valid(id) {
		return
	}
	idx := id.index()
	if b := w.physics[idx]; b != nil {
		b.Destroy()
	}
	if c := w.characters[idx]; c != nil {
		c.Destroy()
	}
	if a := w.audio[idx]; a != nil && a.Destroy != nil {
		a.Destroy()
	}
	core.EventFire(core.EventContext{Type: core.EventEntityDestroyed, Data: &core.EntityEvent{EntityID: uint32(id)}})

	w.transforms[idx] = nil
	w.physics[idx] = nil
	w.characters[idx] = nil
	w.renderables[idx] = nil
	w.instanced[idx] = nil
	w.samplers[idx] = nil
	w.blenders[idx] = nil
	w.emitters[idx] = nil
	w.timers[idx] = nil
	w.audio[idx] = nil
	w.releasePickID(idx)
	w.entities.destroy(id)
}

// QueueDestroy defers id's destruction until FlushDestroyed, so a
// component callback running mid-sweep (inside Update or Render) can
// ask for an entity to go away without mutating the component slices
// it and its siblings are currently being iterated over. Forces an
// early flush if the pending ring is already full.
func (w *World) QueueDestroy(id EntityID) {
	if w.pendingDestroy.IsFull() {
		w.FlushDestroyed()
	}
	w.pendingDestroy.Enqueue(id)
}

// FlushDestroyed drains every entity queued by QueueDestroy. Called
// once per frame, after both Update and Render have run.
func (w *World) FlushDestroyed() {
	for !w.pendingDestroy.IsEmpty() {
		v, err := w.pendingDestroy.Dequeue()
		if err != nil {
			break
		}
		w.DestroyEntity(v.(EntityID))
	}
}

// Update runs update sweep in entity-creation order: physics ->
// character -> sampler -> blender -> timer -> emitter. Each component
// that has an authoritative transform writes it into the entity's
// Transform via the transform API, never by mutating fields directly.
func (w *World) Update(dt float32) {
	for i, b := range w.physics {
		if b == nil {
			continue
		}
		w.transforms[i].SetPositionRotation(b.Position(), b.Rotation())
	}
	for i, c := range w.characters {
		if c == nil {
			continue
		}
		w.transforms[i].SetPositionRotation(c.Position(), c.Rotation())
	}
	for _, s := range w.samplers {
		if s == nil {
			continue
		}
		s.Advance(dt)
		s.Sample()
	}
	for _, b := range w.blenders {
		if b == nil {
			continue
		}
		b.Advance(dt)
		b.Sample()
	}
	for i, t := range w.timers {
		if t == nil {
			continue
		}
		w.updateTimer(makeEntityID(uint32(i), w.entities.editions[i]), t, dt)
	}
	for _, e := range w.emitters {
		if e == nil {
			continue
		}
		e.Update(dt)
	}
}

func (w *World) updateTimer(id EntityID, t *Timer, dt float32) {
	if !t.Loop && t.Elapsed >= t.Duration {
		return
	}
	t.Elapsed += dt
	if t.Elapsed < t.Duration {
		return
	}
	if t.OnFire != nil {
		t.OnFire(id)
	}
	if t.Loop {
		t.Elapsed -= t.Duration
	} else {
		t.Elapsed = t.Duration
	}
}

// Render runs render sweep in entity-creation order: static
// Renderable -> instanced Renderable -> sampler -> blender -> emitter,
// each dispatching the matching renderer.Queue* call.
func (w *World) Render(r Renderer) {
	for i, rend := range w.renderables {
		if rend == nil {
			continue
		}
		r.QueueModel(rend.ModelID, w.transforms[i].GetWorld(), rend.Transparency, rend.DepthMask)
	}
	for _, inst := range w.instanced {
		if inst == nil {
			continue
		}
		r.QueueModelInstanced(inst.ModelID, inst.Transforms, inst.Transparency, inst.DepthMask)
	}
	for i, s := range w.samplers {
		if s == nil {
			continue
		}
		r.QueueAnimation(s.TargetModelID, w.transforms[i].GetWorld(), s.Palette)
	}
	for i, b := range w.blenders {
		if b == nil {
			continue
		}
		r.QueueAnimation(b.TargetModelID, w.transforms[i].GetWorld(), b.Palette)
	}
	for _, e := range w.emitters {
		if e == nil {
			continue
		}
		w.particleScratch = e.LiveTransforms(w.particleScratch)
		r.QueueParticlesInstanced(w.particleScratch)
	}
}
