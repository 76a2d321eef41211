// Package anim implements the skinning and blending animation core:
// skeletons, animations, samplers that advance and sample a single
// clip, and blenders that combine up to AnimationBlendsMax samples
// into one skinning palette. Grounded on the animator package shape
// of Carmen-Shannon-oxy-go's skinned rendering path, adapted to the
// engine's own Mat4/Quaternion types.
package anim

import (
	"fmt"

	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/math"
)

// JointsMax bounds the skinning palette size.
const JointsMax = 128

// AnimationBlendsMax bounds the number of simultaneous blend samples.
const AnimationBlendsMax = 8

// Joint is one node of a Skeleton's joint tree.
type Joint struct {
	Name string
	Parent int // -1 for the root
	LocalRest math.Mat4
	InverseBind math.Mat4
}

// Skeleton is an ozz-style joint tree: parent index < child index is
// enforced at construction so traversal can walk joints in array
// order with each joint's parent already resolved (invariant).
type Skeleton struct {
	Root int
	Joints []Joint
}

// NewSkeleton validates the topological invariant and returns an error
// rather than asserting: a malformed NBR skeleton is an asset error
// (category 2), not a programmer error.
func NewSkeleton(root int, joints []Joint) (*Skeleton, error) {
	for i, j := range joints {
		if i == root {
			continue
		}
		if j.Parent < 0 || j.Parent >= i {
			core.LogError("anim: joint %d (%q) parent %d violates topological order", i, j.Name, j.Parent)
			return nil, fmt.Errorf("%w: joint %d parent %d", core.ErrSkeletonTopology, i, j.Parent)
		}
	}
	return &Skeleton{Root: root, Joints: joints}, nil
}

// LocalToModel walks the joint array in order (parents always precede
// children, by the topological invariant) turning local rest-pose-
// relative transforms into model-space 4x4 matrices.
func (s *Skeleton) LocalToModel(locals []math.Mat4, out []math.Mat4) {
	for i, j := range s.Joints {
		if i == s.Root || j.Parent < 0 {
			out[i] = locals[i]
			continue
		}
		out[i] = locals[i].Mul(out[j.Parent])
	}
}

// Palette multiplies each model-space matrix by its joint's inverse
// bind matrix, producing the skinning palette a vertex shader consumes.
func (s *Skeleton) Palette(model []math.Mat4, out *[JointsMax]math.Mat4) {
	for i, j := range s.Joints {
		if i >= JointsMax {
			core.LogWarn("anim: skeleton has more than %d joints, truncating palette", JointsMax)
			break
		}
		out[i] = j.InverseBind.Mul(model[i])
	}
}
