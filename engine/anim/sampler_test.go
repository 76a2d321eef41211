package anim

import (
	"testing"

	"github.com/ironspire/engine/engine/math"
)

func newLinearSkeleton(t *testing.T) *Skeleton {
	t.Helper()
	skel, err := NewSkeleton(0, []Joint{{Name: "root", Parent: -1, InverseBind: math.NewMat4Identity()}})
	if err != nil {
		t.Fatalf("unexpected error building skeleton: %s", err)
	}
	return skel
}

func newAnimation(duration float32) *Animation {
	return &Animation{
		Name:     "walk",
		Duration: duration,
		Tracks: []JointTrack{{
			Positions: []PositionKey{{Time: 0, Value: math.NewVec3Zero()}, {Time: duration, Value: math.Vec3{X: 2}}},
			Rotations: []RotationKey{{Time: 0, Value: math.NewQuatIdentity()}, {Time: duration, Value: math.NewQuatIdentity()}},
			Scales:    []ScaleKey{{Time: 0, Value: math.NewVec3One()}, {Time: duration, Value: math.NewVec3One()}},
		}},
	}
}

func TestSamplerAdvanceWrapsWhenLooping(t *testing.T) {
	s := NewSampler(newLinearSkeleton(t), []*Animation{newAnimation(2)})
	s.IsLooping = true
	s.CurrentTime = 0.99

	s.Advance(0.04)

	if got, want := s.CurrentTime, float32(0.01); abs32(got-want) > 1e-4 {
		t.Errorf("expecting wrapped CurrentTime %.4f, got %.4f", want, got)
	}
}

func TestSamplerAdvanceClampsWhenNotLooping(t *testing.T) {
	s := NewSampler(newLinearSkeleton(t), []*Animation{newAnimation(2)})
	s.IsLooping = false
	s.CurrentTime = 1

	s.Advance(0.5)

	if s.CurrentTime != 1 {
		t.Errorf("expecting a non-looping sampler to clamp at 1, got %.4f", s.CurrentTime)
	}
}

func TestSamplerSampleProducesNonIdentityPalette(t *testing.T) {
	s := NewSampler(newLinearSkeleton(t), []*Animation{newAnimation(2)})
	s.CurrentTime = 0.5

	s.Sample()

	identity := math.NewMat4Identity()
	if s.Palette[0] == identity {
		t.Errorf("expecting the sampled root joint's palette entry to move away from identity")
	}
}

func TestSamplerZeroSpeedHoldsTime(t *testing.T) {
	s := NewSampler(newLinearSkeleton(t), []*Animation{newAnimation(2)})
	s.PlaySpeed = 0
	s.CurrentTime = 0.25

	s.Advance(1)

	if s.CurrentTime != 0.25 {
		t.Errorf("expecting PlaySpeed 0 to hold CurrentTime at 0.25, got %.4f", s.CurrentTime)
	}
}

func TestSamplerNegativeSpeedRunsBackwards(t *testing.T) {
	s := NewSampler(newLinearSkeleton(t), []*Animation{newAnimation(2)})
	s.PlaySpeed = -1
	s.CurrentTime = 0.5

	s.Advance(0.2)

	if got, want := s.CurrentTime, float32(0.4); abs32(got-want) > 1e-4 {
		t.Errorf("expecting a reversed sampler to step back to %.4f, got %.4f", want, got)
	}
}
