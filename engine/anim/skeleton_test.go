package anim

import (
	"testing"

	"github.com/ironspire/engine/engine/math"
)

func TestNewSkeletonRejectsOutOfOrderParent(t *testing.T) {
	joints := []Joint{
		{Name: "root", Parent: -1},
		{Name: "child", Parent: 5}, // 5 >= 1, violates the invariant
	}
	if _, err := NewSkeleton(0, joints); err == nil {
		t.Errorf("expecting a skeleton with an out-of-order parent to be rejected")
	}
}

func TestNewSkeletonAcceptsValidChain(t *testing.T) {
	joints := []Joint{
		{Name: "root", Parent: -1},
		{Name: "child", Parent: 0},
		{Name: "grandchild", Parent: 1},
	}
	if _, err := NewSkeleton(0, joints); err != nil {
		t.Errorf("unexpected error for a valid topological chain: %s", err)
	}
}

func TestLocalToModelComposesThroughParentChain(t *testing.T) {
	joints := []Joint{
		{Name: "root", Parent: -1, InverseBind: math.NewMat4Identity()},
		{Name: "child", Parent: 0, InverseBind: math.NewMat4Identity()},
	}
	skel, err := NewSkeleton(0, joints)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	locals := []math.Mat4{
		math.NewMat4Translation(math.Vec3{X: 1}),
		math.NewMat4Translation(math.Vec3{X: 1}),
	}
	out := make([]math.Mat4, 2)
	skel.LocalToModel(locals, out)

	childPos := out[1].Right() // sanity: composition didn't panic or leave zero matrix
	if childPos == (math.Vec3{}) {
		t.Errorf("expecting a non-zero composed matrix for the child joint")
	}
}

func TestPaletteTruncatesBeyondJointsMax(t *testing.T) {
	joints := make([]Joint, JointsMax+4)
	joints[0] = Joint{Name: "root", Parent: -1, InverseBind: math.NewMat4Identity()}
	for i := 1; i < len(joints); i++ {
		joints[i] = Joint{Name: "j", Parent: i - 1, InverseBind: math.NewMat4Identity()}
	}
	skel, err := NewSkeleton(0, joints)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	model := make([]math.Mat4, len(joints))
	for i := range model {
		model[i] = math.NewMat4Identity()
	}

	var palette [JointsMax]math.Mat4
	skel.Palette(model, &palette) // must not panic despite len(joints) > JointsMax
}
