package loaders

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	stdmath "github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/renderqueue"
	"github.com/ironspire/engine/engine/resources"
)

// LoadModel reads a glTF/GLB document and flattens every mesh
// primitive into interleaved vertex data: SkinnedVertexFlags-shaped
// (position, normal, tangent placeholder, joints, weights, uv) when the
// primitive has JOINTS_0 and WEIGHTS_0, SimpleVertexFlags-shaped
// (position, normal, uv) otherwise,
// grounded on the pack's qmuntal/gltf + modeler accessor readers.
// Materials referenced by name only; textures resolve later through
// the owning AssetManager.
func LoadModel(path string, params interface{}) (interface{}, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assets: open glTF %s: %w", path, err)
	}

	model := &resources.ModelData{}
	for _, mat := range doc.Materials {
		model.Materials = append(model.Materials, materialFromGLTF(mat))
	}

	for meshIdx, mesh := range doc.Meshes {
		for primIdx, prim := range mesh.Primitives {
			md, err := loadPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("assets: mesh %d primitive %d: %w", meshIdx, primIdx, err)
			}
			md.Name = fmt.Sprintf("%s.%d", mesh.Name, primIdx)
			if prim.Material != nil && int(*prim.Material) < len(model.Materials) {
				md.MaterialName = model.Materials[*prim.Material].Name
			}
			model.Meshes = append(model.Meshes, md)
		}
	}

	return model, nil
}

func materialFromGLTF(mat *gltf.Material) resources.MaterialData {
	md := resources.MaterialData{Name: mat.Name, Metallic: 1, Roughness: 1, Transparency: 1}
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.MetallicFactor != nil {
			md.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			md.Roughness = *pbr.RoughnessFactor
		}
		if c := pbr.BaseColorFactor; c != nil {
			md.Color.X, md.Color.Y, md.Color.Z = c[0], c[1], c[2]
			md.Transparency = c[3]
		}
	}
	if e := mat.EmissiveFactor; e[0]+e[1]+e[2] > 0 {
		md.Emissive = (e[0] + e[1] + e[2]) / 3
	}
	return md
}

func loadPrimitive(doc *gltf.Document, prim *gltf.Primitive) (resources.MeshData, error) {
	var out resources.MeshData

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return out, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return out, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if i, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[i], nil)
	}
	var texCoords [][2]float32
	if i, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		texCoords, _ = modeler.ReadTextureCoord(doc, doc.Accessors[i], nil)
	}
	var joints [][4]uint16
	if i, ok := prim.Attributes[gltf.JOINTS_0]; ok {
		joints, _ = modeler.ReadJoints(doc, doc.Accessors[i], nil)
	}
	var weights [][4]float32
	if i, ok := prim.Attributes[gltf.WEIGHTS_0]; ok {
		weights, _ = modeler.ReadWeights(doc, doc.Accessors[i], nil)
	}

	skinned := joints != nil && weights != nil
	flags := uint32(renderqueue.SimpleVertexFlags)
	if skinned {
		flags = uint32(renderqueue.SkinnedVertexFlags)
	}

	indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return out, fmt.Errorf("read indices: %w", err)
	}

	if normals == nil {
		normals = generateFlatNormals(positions, indices)
	}

	vertices := make([]float32, 0, len(positions)*14)
	for i, pos := range positions {
		vertices = append(vertices, pos[0], pos[1], pos[2])
		if normals != nil && i < len(normals) {
			vertices = append(vertices, normals[i][0], normals[i][1], normals[i][2])
		} else {
			vertices = append(vertices, 0, 1, 0)
		}
		if skinned {
			vertices = append(vertices, 0, 0, 0) // tangent: glTF tangent accessor not read yet
			for j := range joints[i] {
				vertices = append(vertices, float32(joints[i][j]), weights[i][j])
			}
		}
		if texCoords != nil && i < len(texCoords) {
			vertices = append(vertices, texCoords[i][0], texCoords[i][1])
		} else {
			vertices = append(vertices, 0, 0)
		}
	}

	out.Vertices = vertices
	out.Indices = indices
	out.VertexFlags = flags
	return out, nil
}

// generateFlatNormals fills in face normals for a primitive whose
// glTF accessor set has no NORMAL attribute, via
// math.GeometryGenerateNormals rather than leaving every vertex
// pointed straight up.
func generateFlatNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	verts := make([]stdmath.Vertex3D, len(positions))
	for i, p := range positions {
		verts[i].Position = stdmath.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	stdmath.GeometryGenerateNormals(uint32(len(verts)), verts, uint32(len(indices)), indices)
	normals := make([][3]float32, len(verts))
	for i, v := range verts {
		normals[i] = [3]float32{v.Normal.X, v.Normal.Y, v.Normal.Z}
	}
	return normals
}
