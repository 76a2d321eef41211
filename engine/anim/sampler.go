package anim

import "github.com/ironspire/engine/engine/math"

// Sampler is one skeleton driving one active animation at a time,
// with playback state and a reused skinning palette.
type Sampler struct {
	Skeleton *Skeleton

	Animations []*Animation
	CurrentAnimation int // index into Animations

	CurrentTime float32 // normalized [0,1]
	PlaySpeed float32
	IsLooping bool
	IsAnimating bool

	ctx SampleContext
	locals []SoaTransform
	models []math.Mat4
	Palette [JointsMax]math.Mat4
}

// NewSampler wires skeleton and the candidate animation set together
// with scratch buffers sized to the joint count.
func NewSampler(skel *Skeleton, animations []*Animation) *Sampler {
	n := len(skel.Joints)
	return &Sampler{
		Skeleton: skel,
		Animations: animations,
		PlaySpeed: 1,
		IsAnimating: true,
		locals: make([]SoaTransform, n),
		models: make([]math.Mat4, n),
	}
}

func (s *Sampler) animation() *Animation {
	if s.CurrentAnimation < 0 || s.CurrentAnimation >= len(s.Animations) {
		return nil
	}
	return s.Animations[s.CurrentAnimation]
}

// Advance implements steps 1-3: skip if not animating, clamp or
// wrap on duration, then step CurrentTime by dt*speed normalized by
// duration.
func (s *Sampler) Advance(dt float32) {
	if !s.IsAnimating {
		return
	}
	a := s.animation()
	if a == nil || a.Duration <= 0 {
		return
	}
	if s.CurrentTime >= 1 {
		if !s.IsLooping {
			return
		}
		s.CurrentTime = 0
	}
	s.CurrentTime += dt * s.PlaySpeed / a.Duration
	if s.IsLooping && (s.CurrentTime >= 1 || s.CurrentTime < 0) {
		s.CurrentTime -= math.Floor(s.CurrentTime)
	}
}

// Sample runs steps 4-6, writing a fresh skinning palette.
func (s *Sampler) Sample() {
	a := s.animation()
	if a == nil {
		return
	}
	SampleJob(a, &s.ctx, s.CurrentTime, s.locals)
	localMats := make([]math.Mat4, len(s.locals))
	for i, l := range s.locals {
		localMats[i] = l.ToMat4()
	}
	s.Skeleton.LocalToModel(localMats, s.models)
	s.Skeleton.Palette(s.models, &s.Palette)
}
