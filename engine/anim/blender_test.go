package anim

import (
	"testing"

	"github.com/ironspire/engine/engine/math"
)

func TestComputeWeightsSingleSampleIsFullWeight(t *testing.T) {
	skel := newLinearSkeletonForBlend(t)
	b := NewBlender(skel, []*Animation{newAnimation(1)})

	b.computeWeights()

	if b.Samples[0].Weight != 1 {
		t.Errorf("expecting the lone sample's weight to be 1, got %.4f", b.Samples[0].Weight)
	}
}

func TestComputeWeightsTwoSamplesAtEndpointsAreExclusive(t *testing.T) {
	skel := newLinearSkeletonForBlend(t)
	b := NewBlender(skel, []*Animation{newAnimation(1), newAnimation(1)})
	b.BlendingRatio = 0

	b.computeWeights()

	if b.Samples[0].Weight != 1 {
		t.Errorf("expecting sample 0 at ratio 0 to have full weight, got %.4f", b.Samples[0].Weight)
	}
	if b.Samples[1].Weight != 0 {
		t.Errorf("expecting sample 1 at ratio 0 to have zero weight, got %.4f", b.Samples[1].Weight)
	}
}

func TestComputeWeightsMidpointSplitsEvenly(t *testing.T) {
	skel := newLinearSkeletonForBlend(t)
	b := NewBlender(skel, []*Animation{newAnimation(1), newAnimation(1)})
	b.BlendingRatio = 0.5

	b.computeWeights()

	if abs32(b.Samples[0].Weight-0.5) > 1e-4 || abs32(b.Samples[1].Weight-0.5) > 1e-4 {
		t.Errorf("expecting both samples to split weight evenly at the midpoint, got %.4f/%.4f", b.Samples[0].Weight, b.Samples[1].Weight)
	}
}

func TestBlenderSampleProducesAPalette(t *testing.T) {
	skel := newLinearSkeletonForBlend(t)
	b := NewBlender(skel, []*Animation{newAnimation(2)})
	b.Samples[0].Time = 0.5

	b.Sample() // must not panic with a single active sample
}

func newLinearSkeletonForBlend(t *testing.T) *Skeleton {
	return newLinearSkeleton(t)
}

func TestBlendedDurationWeighsNeighborDurations(t *testing.T) {
	skel := newLinearSkeleton(t)
	b := NewBlender(skel, []*Animation{newAnimation(1), newAnimation(2)})
	b.BlendingRatio = 0.5
	b.computeWeights()

	if got := b.blendedDuration(); abs32(got-1.5) > 1e-5 {
		t.Errorf("expecting a 50/50 blend of 1s and 2s clips to last 1.5s, got %.4f", got)
	}
	if w0, w1 := b.Samples[0].Weight, b.Samples[1].Weight; abs32(w0-0.5) > 1e-5 || abs32(w1-0.5) > 1e-5 {
		t.Errorf("expecting weights (0.5, 0.5), got (%.4f, %.4f)", w0, w1)
	}
}

func newStationaryAnimation(duration float32) *Animation {
	return &Animation{
		Name:     "idle",
		Duration: duration,
		Tracks: []JointTrack{{
			Positions: []PositionKey{{Time: 0, Value: math.NewVec3Zero()}, {Time: duration, Value: math.NewVec3Zero()}},
			Rotations: []RotationKey{{Time: 0, Value: math.NewQuatIdentity()}, {Time: duration, Value: math.NewQuatIdentity()}},
			Scales:    []ScaleKey{{Time: 0, Value: math.NewVec3One()}, {Time: duration, Value: math.NewVec3One()}},
		}},
	}
}

func TestSampleIncludesSmallPositiveWeights(t *testing.T) {
	skel := newLinearSkeletonForBlend(t)

	palette := func(ratio float32) [JointsMax]math.Mat4 {
		b := NewBlender(skel, []*Animation{newAnimation(1), newStationaryAnimation(1)})
		b.BlendingRatio = ratio
		for _, s := range b.Samples {
			s.Time = 0.5
		}
		b.Sample()
		return b.Palette
	}

	if palette(0.05) == palette(0) {
		t.Errorf("expecting a 95/5 blend to differ from a 100/0 blend; a small positive weight must not be dropped")
	}
}
