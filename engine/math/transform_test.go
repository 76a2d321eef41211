package math

import "testing"

func mat4Approx(t *testing.T, got, want Mat4, tolerance float32) {
	t.Helper()
	for i := range want.Data {
		d := got.Data[i] - want.Data[i]
		if d < -tolerance || d > tolerance {
			t.Fatalf("matrix element %d = %f, want %f", i, got.Data[i], want.Data[i])
			return
		}
	}
}

func TestTransformSetThenGetRoundTrips(t *testing.T) {
	tr := TransformCreate()
	pos := NewVec3(1, 2, 3)
	rot := NewQuatFromAxisAngle(NewVec3Up(), K_HALF_PI, true)
	scale := NewVec3(2, 2, 2)
	tr.SetPositionRotationScale(pos, rot, scale)

	if tr.Position != pos {
		t.Errorf("Position = %+v, want %+v", tr.Position, pos)
	}
	if tr.Rotation != rot {
		t.Errorf("Rotation = %+v, want %+v", tr.Rotation, rot)
	}
	if tr.Scale != scale {
		t.Errorf("Scale = %+v, want %+v", tr.Scale, scale)
	}

	want := NewMat4Scale(scale).Mul(rot.ToMat4().Mul(NewMat4Translation(pos)))
	mat4Approx(t, tr.GetLocal(), want, 1e-6)
}

func TestTransformMutationRecomputesLocal(t *testing.T) {
	tr := TransformCreate()
	if got := tr.GetLocal(); got != NewMat4Identity() {
		t.Fatalf("fresh transform's local matrix should be identity")
	}

	tr.SetPosition(NewVec3(5, 0, 0))
	local := tr.GetLocal()
	if local.Data[12] != 5 {
		t.Errorf("expecting SetPosition to drive the cached matrix's translation, got %f", local.Data[12])
	}
}

func TestQuatInverseUndoesRotation(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), K_QUARTER_PI, true)
	v := NewVec3(1, 2, 3)
	r := v.Transform(q.ToMat4()).Transform(q.Inverse().ToMat4())
	if !r.Compare(v, 1e-4) {
		t.Errorf("rotating by q then q^-1 should return the input, got %+v", r)
	}

	length := v.Transform(q.ToMat4()).Length()
	if d := length - v.Length(); d < -1e-4 || d > 1e-4 {
		t.Errorf("a unit-quaternion rotation should preserve length, got %f want %f", length, v.Length())
	}
}

func TestSlerpEndpointsReturnInputs(t *testing.T) {
	a := NewQuatIdentity()
	b := NewQuatFromAxisAngle(NewVec3Up(), K_HALF_PI, true)

	if got := a.Slerp(b, 0); got.Dot(a) < 0.9999 {
		t.Errorf("Slerp(0) should return the first rotation, got %+v", got)
	}
	if got := a.Slerp(b, 1); got.Dot(b) < 0.9999 {
		t.Errorf("Slerp(1) should return the second rotation, got %+v", got)
	}
}
