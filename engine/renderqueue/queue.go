// Package renderqueue implements the per-frame CPU arenas and GPU
// upload targets of the renderer: one Queue per draw family (opaque,
// particle, debug, billboard), each owning pooled vertex/index/
// transform/material/animation/command arenas plus a compiled
// pipeline, with explicit push/push-instanced offset arithmetic.
package renderqueue

import (
	"github.com/ironspire/engine/engine/anim"
	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
)

// Type identifies one of the four render queue families.
type Type int

const (
	Opaque Type = iota
	Particle
	Debug
	Billboard
)

// VertexFlags describes which attributes a queue's vertex layout
// carries, used to derive componentsPerVertex for base-vertex
// arithmetic.
type VertexFlags uint32

const (
	VertexFlagPosition VertexFlags = 1 << iota
	VertexFlagNormal
	VertexFlagTangent
	VertexFlagUV
	VertexFlagJoints
	VertexFlagColor
	VertexFlagShapeSide
)

// SimpleVertexFlags, SkinnedVertexFlags, TwoDVertexFlags are the three
// vertex layouts the renderer's built-in pipelines use.
const (
	SimpleVertexFlags = VertexFlagPosition | VertexFlagNormal | VertexFlagUV
	SkinnedVertexFlags = VertexFlagPosition | VertexFlagNormal | VertexFlagTangent | VertexFlagJoints | VertexFlagUV
	TwoDVertexFlags = VertexFlagPosition | VertexFlagColor | VertexFlagUV | VertexFlagShapeSide
)

// componentsPerVertex returns the float32 component stride for a
// vertex layout, used by base_vertex division.
func componentsPerVertex(flags VertexFlags) uint32 {
	var n uint32
	if flags&VertexFlagPosition != 0 {
		n += 3
	}
	if flags&VertexFlagNormal != 0 {
		n += 3
	}
	if flags&VertexFlagTangent != 0 {
		n += 3
	}
	if flags&VertexFlagJoints != 0 {
		n += 8 // 4 joint ids + 4 joint weights
	}
	if flags&VertexFlagUV != 0 {
		n += 2
	}
	if flags&VertexFlagColor != 0 {
		n += 4
	}
	if flags&VertexFlagShapeSide != 0 {
		n += 2
	}
	return n
}

// MaterialInterface is the GPU-facing material record: five bindless
// texture handles plus scalars plus color, laid out to match the
// shader-side struct byte for byte.
type MaterialInterface struct {
	Albedo uint64
	Roughness uint64
	Metallic uint64
	Normal uint64
	Emissive uint64
	MetallicF float32
	RoughnessF float32
	EmissiveF float32
	Transparency float32
	_pad [4]byte
	Color math.Vec3
}

// Command is the 5xu32 indirect draw record consumed by
// DrawMultiIndirect.
type Command = gpu.DrawCommandIndirect

// Queue holds one draw family's CPU arenas and owned GPU buffers.
type Queue struct {
	Type Type
	VertexFlags VertexFlags

	Vertices []float32
	Indices []uint32
	Transforms []math.Mat4
	Materials []MaterialInterface
	Animations [][anim.JointsMax]math.Mat4
	Commands []Command

	Pipeline gpu.Pipeline
	VertexBuffer gpu.Buffer
	IndexBuffer gpu.Buffer
	TransformBuffer gpu.Buffer
	MaterialBuffer gpu.Buffer
	AnimationBuffer gpu.Buffer
	CommandBuffer gpu.Buffer
}

func New(t Type, flags VertexFlags) *Queue {
	return &Queue{Type: t, VertexFlags: flags}
}

// Clear resets every CPU arena at frame start; GPU buffers persist
// across frames and are only re-uploaded in Facade.End.
func (q *Queue) Clear() {
	q.Vertices = q.Vertices[:0]
	q.Indices = q.Indices[:0]
	q.Transforms = q.Transforms[:0]
	q.Materials = q.Materials[:0]
	q.Animations = q.Animations[:0]
	q.Commands = q.Commands[:0]
}

// MeshData is the minimal shape Push needs from a resource-manager
// mesh: interleaved vertex floats and u32 indices.
type MeshData struct {
	Vertices []float32
	Indices []uint32
}

// Push appends one mesh instance with a single transform/material,
// computing the indirect draw command's base-vertex/base-instance
// offsets from the arenas' current lengths.
func (q *Queue) Push(mesh MeshData, transform math.Mat4, mat MaterialInterface) {
	q.push(mesh, []math.Mat4{transform}, mat, nil)
}

// PushInstanced appends one mesh shared across len(transforms)
// instances, with instance_count = n and base_instance pointing at
// the first appended transform.
func (q *Queue) PushInstanced(mesh MeshData, transforms []math.Mat4, mat MaterialInterface) {
	q.push(mesh, transforms, mat, nil)
}

// PushAnimated additionally appends a skinning palette to the OPAQUE
// queue's animation arena.
func (q *Queue) PushAnimated(mesh MeshData, transform math.Mat4, mat MaterialInterface, palette [anim.JointsMax]math.Mat4) {
	q.push(mesh, []math.Mat4{transform}, mat, &palette)
}

func (q *Queue) push(mesh MeshData, transforms []math.Mat4, mat MaterialInterface, palette *[anim.JointsMax]math.Mat4) {
	priorVertices := uint32(len(q.Vertices))
	priorIndices := uint32(len(q.Indices))
	priorTransforms := uint32(len(q.Transforms))

	q.Vertices = append(q.Vertices, mesh.Vertices...)
	q.Indices = append(q.Indices, mesh.Indices...)
	q.Transforms = append(q.Transforms, transforms...)
	q.Materials = append(q.Materials, mat)
	if palette != nil {
		q.Animations = append(q.Animations, *palette)
	}

	cpv := componentsPerVertex(q.VertexFlags)
	baseVertex := priorVertices / cpv

	q.Commands = append(q.Commands, Command{
		ElementsCount: uint32(len(mesh.Indices)),
		InstanceCount: uint32(len(transforms)),
		FirstElement: priorIndices,
		BaseVertex: baseVertex,
		BaseInstance: priorTransforms,
	})
}

// Empty reports whether the queue has nothing to submit this frame,
// the boundary condition that a pass must not drive to GPU.
func (q *Queue) Empty() bool { return len(q.Commands) == 0 }

// VertexLayoutFor derives the gpu.VertexLayout matching flags, in the
// same attribute order componentsPerVertex counts in: position,
// normal, tangent, joint ids + joint weights, uv, color, shape/side.
func VertexLayoutFor(flags VertexFlags) gpu.VertexLayout {
	var attrs []gpu.VertexAttr
	var offset uint32

	add := func(name string, count uint32) {
		attrs = append(attrs, gpu.VertexAttr{Name: name, Offset: offset * 4, Count: count})
		offset += count
	}

	if flags&VertexFlagPosition != 0 {
		add("position", 3)
	}
	if flags&VertexFlagNormal != 0 {
		add("normal", 3)
	}
	if flags&VertexFlagTangent != 0 {
		add("tangent", 3)
	}
	if flags&VertexFlagJoints != 0 {
		add("joint_ids", 4)
		add("joint_weights", 4)
	}
	if flags&VertexFlagUV != 0 {
		add("uv", 2)
	}
	if flags&VertexFlagColor != 0 {
		add("color", 4)
	}
	if flags&VertexFlagShapeSide != 0 {
		add("shape_side", 2)
	}

	return gpu.VertexLayout{Stride: offset * 4, Attributes: attrs}
}
