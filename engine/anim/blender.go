package anim

import "github.com/ironspire/engine/engine/math"

// BlendSample is one layer of a Blender: its own playhead, duration,
// weight, and sampling context (AnimationBlender).
type BlendSample struct {
	Animation *Animation
	Time float32
	Duration float32
	Weight float32
	ctx SampleContext
	locals []SoaTransform
}

// Blender combines up to AnimationBlendsMax samples into one skinning
// palette, weighted by position along BlendingRatio (Blending).
type Blender struct {
	Skeleton *Skeleton
	Samples []*BlendSample

	BlendingRatio float32
	BlendingThreshold float32
	IsAnimating bool
	IsLooping bool

	blendedLocals []SoaTransform
	models []math.Mat4
	Palette [JointsMax]math.Mat4
}

func NewBlender(skel *Skeleton, animations []*Animation) *Blender {
	n := len(skel.Joints)
	samples := make([]*BlendSample, 0, len(animations))
	for _, a := range animations {
		samples = append(samples, &BlendSample{
			Animation: a,
			Duration: a.Duration,
			locals: make([]SoaTransform, n),
		})
	}
	return &Blender{
		Skeleton: skel,
		Samples: samples,
		BlendingThreshold: 0.1,
		IsAnimating: true,
		blendedLocals: make([]SoaTransform, n),
		models: make([]math.Mat4, n),
	}
}

// computeWeights implements weight formula: N samples
// partition [0,1] into N-1 equal intervals; sample i sits at
// med = i/(N-1); weight = max(0, (interval - |ratio-med|) * (N-1)).
// N=1 is the boundary case: the single sample always has weight 1.
func (b *Blender) computeWeights() {
	n := len(b.Samples)
	if n == 0 {
		return
	}
	if n == 1 {
		b.Samples[0].Weight = 1
		return
	}
	interval := float32(1) / float32(n-1)
	for i, s := range b.Samples {
		med := float32(i) / float32(n-1)
		w := (interval - abs32(b.BlendingRatio-med)) * float32(n-1)
		if w < 0 {
			w = 0
		}
		s.Weight = w
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// blendedDuration is the weighted sum of the two neighboring samples'
// durations around BlendingRatio.
func (b *Blender) blendedDuration() float32 {
	var sum, wsum float32
	for _, s := range b.Samples {
		if s.Weight <= 0 {
			continue
		}
		sum += s.Duration * s.Weight
		wsum += s.Weight
	}
	if wsum <= 0 {
		return 1
	}
	return sum / wsum
}

// Advance steps every sample's own time by its per-sample speed
// (duration_i / blended_duration), honoring looping. Every sample's
// playhead moves regardless of its current weight, so a sample does
// not freeze or jump when it crosses back over BlendingRatio; only
// the sampling job in Sample skips samples too light to matter.
func (b *Blender) Advance(dt float32) {
	if !b.IsAnimating {
		return
	}
	b.computeWeights()
	blended := b.blendedDuration()
	for _, s := range b.Samples {
		speed := s.Duration / blended
		if s.Time >= 1 {
			if !b.IsLooping {
				continue
			}
			s.Time = 0
		}
		s.Time += dt * speed / s.Duration
		if b.IsLooping && s.Time >= 1 {
			s.Time -= math.Floor(s.Time)
		}
	}
}

// Sample runs a blending job combining every positive-weight sample's
// locals, then local->model->palette. BlendingThreshold gates only the
// summed weight: when the total falls below it the blend degenerates
// to the rest pose rather than dividing by a vanishing normalizer.
func (b *Blender) Sample() {
	b.computeWeights()
	n := len(b.blendedLocals)
	for i := 0; i < n; i++ {
		b.blendedLocals[i] = SoaTransform{Scale: math.NewVec3One(), Rotation: math.NewQuatIdentity()}
	}
	var totalWeight float32
	for _, s := range b.Samples {
		if s.Weight <= 0 {
			continue
		}
		SampleJob(s.Animation, &s.ctx, s.Time, s.locals)
		totalWeight += s.Weight
	}
	if totalWeight <= 0 || totalWeight < b.BlendingThreshold {
		return
	}
	for _, s := range b.Samples {
		if s.Weight <= 0 {
			continue
		}
		w := s.Weight / totalWeight
		for i := range b.blendedLocals {
			b.blendedLocals[i].Position = b.blendedLocals[i].Position.Add(s.locals[i].Position.MulScalar(w))
			b.blendedLocals[i].Scale = b.blendedLocals[i].Scale.Add(s.locals[i].Scale.MulScalar(w)).Sub(math.NewVec3One().MulScalar(w))
			b.blendedLocals[i].Rotation = b.blendedLocals[i].Rotation.Slerp(s.locals[i].Rotation, w)
		}
	}
	localMats := make([]math.Mat4, n)
	for i, l := range b.blendedLocals {
		localMats[i] = l.ToMat4()
	}
	b.Skeleton.LocalToModel(localMats, b.models)
	b.Skeleton.Palette(b.models, &b.Palette)
}
