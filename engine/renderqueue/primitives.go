package renderqueue

import (
	stdmath "math"

	"github.com/ironspire/engine/engine/math"
)

// NewCubeMesh builds a simple-layout (pos/normal/uv) cube MeshData of
// the given extents, one of the debug queue's two built-in
// primitives. Per-face vertices are not shared across faces so each
// face keeps its own flat normal.
func NewCubeMesh(width, height, depth float32) MeshData {
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	if depth == 0 {
		depth = 1
	}
	hw, hh, hd := width*0.5, height*0.5, depth*0.5

	type face struct {
		normal math.Vec3
		verts  [4]math.Vec3
	}
	faces := [6]face{
		{math.Vec3{X: 0, Y: 0, Z: 1}, [4]math.Vec3{ // front
			{X: -hw, Y: -hh, Z: hd}, {X: hw, Y: -hh, Z: hd}, {X: hw, Y: hh, Z: hd}, {X: -hw, Y: hh, Z: hd},
		}},
		{math.Vec3{X: 0, Y: 0, Z: -1}, [4]math.Vec3{ // back
			{X: hw, Y: -hh, Z: -hd}, {X: -hw, Y: -hh, Z: -hd}, {X: -hw, Y: hh, Z: -hd}, {X: hw, Y: hh, Z: -hd},
		}},
		{math.Vec3{X: -1, Y: 0, Z: 0}, [4]math.Vec3{ // left
			{X: -hw, Y: -hh, Z: -hd}, {X: -hw, Y: -hh, Z: hd}, {X: -hw, Y: hh, Z: hd}, {X: -hw, Y: hh, Z: -hd},
		}},
		{math.Vec3{X: 1, Y: 0, Z: 0}, [4]math.Vec3{ // right
			{X: hw, Y: -hh, Z: hd}, {X: hw, Y: -hh, Z: -hd}, {X: hw, Y: hh, Z: -hd}, {X: hw, Y: hh, Z: hd},
		}},
		{math.Vec3{X: 0, Y: -1, Z: 0}, [4]math.Vec3{ // bottom
			{X: -hw, Y: -hh, Z: -hd}, {X: hw, Y: -hh, Z: -hd}, {X: hw, Y: -hh, Z: hd}, {X: -hw, Y: -hh, Z: hd},
		}},
		{math.Vec3{X: 0, Y: 1, Z: 0}, [4]math.Vec3{ // top
			{X: -hw, Y: hh, Z: hd}, {X: hw, Y: hh, Z: hd}, {X: hw, Y: hh, Z: -hd}, {X: -hw, Y: hh, Z: -hd},
		}},
	}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	mesh := MeshData{
		Vertices: make([]float32, 0, 6*4*8),
		Indices:  make([]uint32, 0, 6*6),
	}
	for fi, f := range faces {
		base := uint32(fi * 4)
		for i := 0; i < 4; i++ {
			v := f.verts[i]
			mesh.Vertices = append(mesh.Vertices,
				v.X, v.Y, v.Z,
				f.normal.X, f.normal.Y, f.normal.Z,
				uvs[i].X, uvs[i].Y,
			)
		}
		mesh.Indices = append(mesh.Indices,
			base+0, base+1, base+2,
			base+0, base+2, base+3,
		)
	}
	return mesh
}

// NewSphereMesh builds a simple-layout UV-sphere MeshData of the
// given radius with the requested latitude/longitude segment counts,
// the debug queue's other built-in primitive. A latitude count below 3
// is replaced with 8 and a longitude count below 3 with 12, so a
// caller passing zero still gets a drawable shape.
func NewSphereMesh(radius float32, latSegments, lonSegments int) MeshData {
	if radius == 0 {
		radius = 1
	}
	if latSegments < 3 {
		latSegments = 8
	}
	if lonSegments < 3 {
		lonSegments = 12
	}

	mesh := MeshData{
		Vertices: make([]float32, 0, (latSegments+1)*(lonSegments+1)*8),
		Indices:  make([]uint32, 0, latSegments*lonSegments*6),
	}

	for lat := 0; lat <= latSegments; lat++ {
		theta := float64(lat) * stdmath.Pi / float64(latSegments)
		sinTheta, cosTheta := stdmath.Sin(theta), stdmath.Cos(theta)
		for lon := 0; lon <= lonSegments; lon++ {
			phi := float64(lon) * 2 * stdmath.Pi / float64(lonSegments)
			sinPhi, cosPhi := stdmath.Sin(phi), stdmath.Cos(phi)

			nx := float32(cosPhi * sinTheta)
			ny := float32(cosTheta)
			nz := float32(sinPhi * sinTheta)

			u := float32(lon) / float32(lonSegments)
			v := float32(lat) / float32(latSegments)

			mesh.Vertices = append(mesh.Vertices,
				nx*radius, ny*radius, nz*radius,
				nx, ny, nz,
				u, v,
			)
		}
	}

	stride := uint32(lonSegments + 1)
	for lat := 0; lat < latSegments; lat++ {
		for lon := 0; lon < lonSegments; lon++ {
			a := uint32(lat)*stride + uint32(lon)
			b := a + stride
			mesh.Indices = append(mesh.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return mesh
}
