package anim

import "github.com/ironspire/engine/engine/math"

// PositionKey, RotationKey, ScaleKey are time-stamped keyframes for
// one joint track (Animation).
type PositionKey struct {
	Time float32
	Value math.Vec3
}

type RotationKey struct {
	Time float32
	Value math.Quaternion
}

type ScaleKey struct {
	Time float32
	Value math.Vec3
}

// JointTrack holds the three independently-sampled keyframe streams
// for one joint, each sorted by Time ascending.
type JointTrack struct {
	Positions []PositionKey
	Rotations []RotationKey
	Scales []ScaleKey
}

// Animation is a named set of per-joint tracks over [0, Duration].
type Animation struct {
	Name string
	Duration float32
	PlaybackRate float32
	Tracks []JointTrack // indexed by joint index
}

// SoaTransform is a joint-local transform produced by a sample job:
// position, rotation, scale, ready to compose into a local matrix.
type SoaTransform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale math.Vec3
}

func (t SoaTransform) ToMat4() math.Mat4 {
	s := math.NewMat4Scale(t.Scale)
	r := t.Rotation.ToMat4()
	p := math.NewMat4Translation(t.Position)
	return s.Mul(r).Mul(p)
}

func lerpVec3(a, b math.Vec3, t float32) math.Vec3 {
	return math.Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

func sampleTrack(track JointTrack, ratioTime float32) SoaTransform {
	return SoaTransform{
		Position: samplePositions(track.Positions, ratioTime),
		Rotation: sampleRotations(track.Rotations, ratioTime),
		Scale: sampleScales(track.Scales, ratioTime),
	}
}

func samplePositions(keys []PositionKey, t float32) math.Vec3 {
	if len(keys) == 0 {
		return math.NewVec3Zero()
	}
	if len(keys) == 1 || t <= keys[0].Time {
		return keys[0].Value
	}
	for i := 1; i < len(keys); i++ {
		if t <= keys[i].Time {
			span := keys[i].Time - keys[i-1].Time
			if span <= 0 {
				return keys[i].Value
			}
			local := (t - keys[i-1].Time) / span
			return lerpVec3(keys[i-1].Value, keys[i].Value, local)
		}
	}
	return keys[len(keys)-1].Value
}

func sampleScales(keys []ScaleKey, t float32) math.Vec3 {
	if len(keys) == 0 {
		return math.NewVec3One()
	}
	if len(keys) == 1 || t <= keys[0].Time {
		return keys[0].Value
	}
	for i := 1; i < len(keys); i++ {
		if t <= keys[i].Time {
			span := keys[i].Time - keys[i-1].Time
			if span <= 0 {
				return keys[i].Value
			}
			local := (t - keys[i-1].Time) / span
			return lerpVec3(keys[i-1].Value, keys[i].Value, local)
		}
	}
	return keys[len(keys)-1].Value
}

func sampleRotations(keys []RotationKey, t float32) math.Quaternion {
	if len(keys) == 0 {
		return math.NewQuatIdentity()
	}
	if len(keys) == 1 || t <= keys[0].Time {
		return keys[0].Value
	}
	for i := 1; i < len(keys); i++ {
		if t <= keys[i].Time {
			span := keys[i].Time - keys[i-1].Time
			if span <= 0 {
				return keys[i].Value
			}
			local := (t - keys[i-1].Time) / span
			return keys[i-1].Value.Slerp(keys[i].Value, local)
		}
	}
	return keys[len(keys)-1].Value
}

// SampleContext is the per-sampler context handed to SampleJob. It
// holds no state: SampleJob scans every track from its first key on
// each call. Zero value is a valid context.
type SampleContext struct{}

// SampleJob runs the sample job of step 4: (animation, context,
// ratio) -> local SoA transforms, one per joint.
func SampleJob(a *Animation, _ *SampleContext, ratio float32, out []SoaTransform) {
	t := ratio * a.Duration
	for i, track := range a.Tracks {
		out[i] = sampleTrack(track, t)
	}
}
