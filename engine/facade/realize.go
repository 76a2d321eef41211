package facade

import (
	"fmt"
	"path/filepath"

	"github.com/ironspire/engine/engine/batch2d"
	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/renderqueue"
	"github.com/ironspire/engine/engine/resources"
)

// Texture pairs a loaded image's CPU description with the GPU texture
// its pixels were uploaded to.
type Texture struct {
	Data *resources.TextureData
	GPU  gpu.Texture
}

// Material is a realized .amt/glTF material: the GPU-facing interface
// record with its map names resolved to bindless handles, plus the
// pipeline-state fields that ride alongside it rather than inside the
// 72-byte GPU record writeMaterial packs per material (the record is
// not padded out to 144 bytes).
type Material struct {
	Name      string
	Interface renderqueue.MaterialInterface

	DepthMask   bool
	StencilRef  uint32
	BlendFactor [4]float32
}

// Realize implements assets.Realizer: it turns loader CPU payloads
// into the engine-facing resources the manager stores, uploading
// texture pixels to the GPU, resolving material map names into
// bindless handles, and converting models into the queue-ready Model
// shape QueueModel consumes. Kinds with no GPU side (shaders,
// skeletons, animations) pass through unchanged.
func (f *Facade) Realize(path string, kind resources.Kind, data interface{}) (interface{}, error) {
	switch kind {
	case resources.KindTexture:
		td, ok := data.(*resources.TextureData)
		if !ok {
			return data, nil
		}
		return f.realizeTexture(path, td)
	case resources.KindMaterial:
		md, ok := data.(*resources.MaterialData)
		if !ok {
			return data, nil
		}
		return f.realizeMaterial(md), nil
	case resources.KindModel:
		mdl, ok := data.(*resources.ModelData)
		if !ok {
			return data, nil
		}
		return f.realizeModel(mdl), nil
	case resources.KindFont:
		fd, ok := data.(*resources.FontData)
		if !ok {
			return data, nil
		}
		return f.realizeFont(fd)
	default:
		return data, nil
	}
}

// realizeTexture uploads td's pixels as a bindless 2D texture and
// registers it under both its full path and base name, so material
// map fields can reference either.
func (f *Facade) realizeTexture(path string, td *resources.TextureData) (*Texture, error) {
	if td.ChannelCount != 4 {
		return nil, fmt.Errorf("texture %s: expecting 4 channels, got %d", path, td.ChannelCount)
	}
	gt, err := f.ctx.CreateTexture(gpu.TextureDesc{
		Kind: gpu.TextureKind2D, Format: gpu.FormatRGBA8,
		Width: td.Width, Height: td.Height,
		FilterMin: gpu.FilterMinMagLinear, FilterMag: gpu.FilterMinMagLinear,
		Wrap: gpu.WrapRepeat, Bindless: true,
		Pixels: td.Pixels,
	})
	if err != nil {
		return nil, err
	}
	tex := &Texture{Data: td, GPU: gt}
	f.textures[path] = tex
	f.textures[filepath.Base(path)] = tex
	return tex, nil
}

// textureHandle resolves a material's map name to a loaded texture's
// bindless handle; 0 means unresolved, which applyDefaultMaps then
// substitutes with the engine default.
func (f *Facade) textureHandle(name string) uint64 {
	if name == "" {
		return 0
	}
	tex, ok := f.textures[name]
	if !ok || tex.GPU == nil {
		return 0
	}
	return tex.GPU.BindlessID()
}

func (f *Facade) materialInterfaceFor(md *resources.MaterialData) renderqueue.MaterialInterface {
	mi := renderqueue.MaterialInterface{
		Albedo:       f.textureHandle(md.AlbedoMap),
		Roughness:    f.textureHandle(md.RoughnessMap),
		Metallic:     f.textureHandle(md.MetallicMap),
		Normal:       f.textureHandle(md.NormalMap),
		Emissive:     f.textureHandle(md.EmissiveMap),
		MetallicF:    md.Metallic,
		RoughnessF:   md.Roughness,
		EmissiveF:    md.Emissive,
		Transparency: md.Transparency,
		Color:        md.Color,
	}
	f.applyDefaultMaps(&mi)
	return mi
}

// realizeMaterial builds the GPU-facing material record and registers
// it by name for models that bind materials by MaterialName. Map names
// resolve against textures loaded so far; load order matters, the same
// way the binary cache's dependency ordering did.
func (f *Facade) realizeMaterial(md *resources.MaterialData) *Material {
	m := &Material{
		Name:        md.Name,
		Interface:   f.materialInterfaceFor(md),
		DepthMask:   md.DepthMask,
		StencilRef:  md.StencilRef,
		BlendFactor: [4]float32{md.BlendFactor.X, md.BlendFactor.Y, md.BlendFactor.Z, md.BlendFactor.W},
	}
	f.materials[md.Name] = m
	return m
}

// realizeModel converts a loaded ModelData into the Model shape the
// queue entry points consume: one queue-ready mesh plus one resolved
// material interface per sub-mesh.
func (f *Facade) realizeModel(mdl *resources.ModelData) *Model {
	byName := make(map[string]renderqueue.MaterialInterface, len(mdl.Materials))
	for i := range mdl.Materials {
		byName[mdl.Materials[i].Name] = f.materialInterfaceFor(&mdl.Materials[i])
	}

	out := &Model{
		Meshes:    make([]renderqueue.MeshData, 0, len(mdl.Meshes)),
		Materials: make([]renderqueue.MaterialInterface, 0, len(mdl.Meshes)),
	}
	for _, mesh := range mdl.Meshes {
		out.Meshes = append(out.Meshes, renderqueue.MeshData{Vertices: mesh.Vertices, Indices: mesh.Indices})
		mi, ok := byName[mesh.MaterialName]
		if !ok {
			if named, found := f.materials[mesh.MaterialName]; found {
				mi = named.Interface
			} else {
				mi = f.defaultMaterial
			}
		}
		out.Materials = append(out.Materials, mi)
	}
	return out
}

// realizeFont uploads the font's first pre-baked atlas page and wraps
// it as the batch2d.Font the overlay's text path draws with. A font
// with no baked page (raw face bytes only) passes through for the
// caller to re-bake.
func (f *Facade) realizeFont(fd *resources.FontData) (interface{}, error) {
	if len(fd.PageTextures) == 0 {
		return fd, nil
	}
	page := &fd.PageTextures[0]
	atlas, err := f.ctx.CreateTexture(gpu.TextureDesc{
		Kind: gpu.TextureKind2D, Format: gpu.FormatRGBA8,
		Width: page.Width, Height: page.Height,
		FilterMin: gpu.FilterMinMagLinear, FilterMag: gpu.FilterMinMagLinear,
		Wrap: gpu.WrapClamp,
		Pixels: page.Pixels,
	})
	if err != nil {
		return nil, err
	}
	return &batch2d.Font{Data: fd, Atlas: atlas}, nil
}
