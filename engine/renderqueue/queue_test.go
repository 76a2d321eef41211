package renderqueue

import (
	"testing"

	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
)

// fakeBuffer stands in for a GPU buffer; only its identity is compared.
type fakeBuffer struct{ gpu.Buffer }

func triangleMesh() MeshData {
	// one SimpleVertexFlags triangle: pos(3)+normal(3)+uv(2) = 8 floats/vertex
	return MeshData{
		Vertices: make([]float32, 8*3),
		Indices:  []uint32{0, 1, 2},
	}
}

func TestPushComputesZeroOffsetsForFirstMesh(t *testing.T) {
	q := New(Opaque, SimpleVertexFlags)
	q.Push(triangleMesh(), math.NewMat4Identity(), MaterialInterface{})

	if len(q.Commands) != 1 {
		t.Fatalf("expecting exactly one draw command, got %d", len(q.Commands))
	}
	cmd := q.Commands[0]
	if cmd.BaseVertex != 0 || cmd.FirstElement != 0 || cmd.BaseInstance != 0 {
		t.Errorf("expecting all-zero offsets for the first push, got %+v", cmd)
	}
	if cmd.ElementsCount != 3 || cmd.InstanceCount != 1 {
		t.Errorf("expecting 3 elements / 1 instance, got %+v", cmd)
	}
}

func TestPushAccumulatesOffsetsAcrossCalls(t *testing.T) {
	q := New(Opaque, SimpleVertexFlags)
	q.Push(triangleMesh(), math.NewMat4Identity(), MaterialInterface{})
	q.Push(triangleMesh(), math.NewMat4Identity(), MaterialInterface{})

	cmd := q.Commands[1]
	if cmd.BaseVertex != 3 {
		t.Errorf("expecting base_vertex 3 (one triangle's worth of vertices in), got %d", cmd.BaseVertex)
	}
	if cmd.FirstElement != 3 {
		t.Errorf("expecting first_element 3, got %d", cmd.FirstElement)
	}
	if cmd.BaseInstance != 1 {
		t.Errorf("expecting base_instance 1 (one prior transform), got %d", cmd.BaseInstance)
	}
}

func TestPushInstancedSetsInstanceCount(t *testing.T) {
	q := New(Opaque, SimpleVertexFlags)
	transforms := []math.Mat4{math.NewMat4Identity(), math.NewMat4Identity(), math.NewMat4Identity()}
	q.PushInstanced(triangleMesh(), transforms, MaterialInterface{})

	if got := q.Commands[0].InstanceCount; got != 3 {
		t.Errorf("expecting instance_count 3, got %d", got)
	}
}

func TestClearResetsArenasButKeepsBuffers(t *testing.T) {
	q := New(Opaque, SimpleVertexFlags)
	q.Push(triangleMesh(), math.NewMat4Identity(), MaterialInterface{})
	buf := &fakeBuffer{}
	q.VertexBuffer = buf

	q.Clear()

	if !q.Empty() {
		t.Errorf("expecting Clear to empty the command arena")
	}
	if len(q.Vertices) != 0 || len(q.Indices) != 0 || len(q.Transforms) != 0 {
		t.Errorf("expecting Clear to reset every CPU arena")
	}
	if q.VertexBuffer != buf {
		t.Errorf("expecting Clear to keep the queue's GPU buffers")
	}
}

func TestEmptyQueueReportsEmpty(t *testing.T) {
	q := New(Debug, SimpleVertexFlags)
	if !q.Empty() {
		t.Errorf("expecting a freshly constructed queue to be empty")
	}
}
