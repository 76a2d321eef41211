package resources

import "github.com/ironspire/engine/engine/math"

// Header is the on-disk NBR (binary resource) file header every
// loader reads before dispatching on Kind: a magic/version pair plus
// the registry-driven Kind used by assets.Load.
type Header struct {
	Magic   uint32
	Version uint8
	Kind    Kind
}

// NBRMagic identifies a well-formed binary resource file.
const NBRMagic uint32 = 0xdaaaadd1

// TextureData is a loaded texture's CPU-side pixels, ready for
// gpu.TextureDesc. ChannelCount mirrors stb_image's reported channels.
type TextureData struct {
	Width, Height   uint32
	ChannelCount    uint32
	HasTransparency bool
	Pixels          []byte
}

// MaterialData is the author-facing material description a .amt file
// parses into: texture resource names to be resolved against the
// owning group, plus the scalar/color fields MaterialInterface packs
// for the GPU. Kept distinct from renderqueue.MaterialInterface so
// loaders never need to know about bindless IDs.
type MaterialData struct {
	Name string

	AlbedoMap    string
	RoughnessMap string
	MetallicMap  string
	NormalMap    string
	EmissiveMap  string

	Metallic     float32
	Roughness    float32
	Emissive     float32
	Transparency float32
	Color        math.Vec3

	DepthMask   bool
	StencilRef  uint32
	BlendFactor math.Vec4
}

// MeshData is one sub-mesh's interleaved vertex floats and u32
// indices as loaded from a model source, plus the material name it
// binds to within the owning ModelData.
type MeshData struct {
	Name         string
	MaterialName string
	Vertices     []float32
	Indices      []uint32
	VertexFlags  uint32 // renderqueue.VertexFlags bit pattern, set by the loader
}

// ModelData groups every sub-mesh and material a model file
// describes.
type ModelData struct {
	Meshes    []MeshData
	Materials []MaterialData
}

// SkyboxData is the six cubemap face images a skybox pass draws.
type SkyboxData struct {
	Faces [6]TextureData
}

// ShaderStage enumerates a shader config's compiled stages.
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStagePixel
	ShaderStageCompute
)

// ShaderData is a parsed shader config: source paths per stage plus
// the depth/stencil/cull defaults the pipeline is created with.
type ShaderData struct {
	Name   string
	Stages map[ShaderStage]string

	DepthTest   bool
	StencilTest bool
	CullBack    bool
}

// FontGlyph is one bitmap-font character's atlas rectangle and
// advance metrics.
type FontGlyph struct {
	Codepoint     int32
	X, Y          uint16
	Width, Height uint16
	XOffset, YOffset int16
	XAdvance      int16
	PageID        uint8
}

// FontKerning adjusts the advance between a specific codepoint pair.
type FontKerning struct {
	Codepoint0 int32
	Codepoint1 int32
	Amount     int16
}

// BitmapFontPage names one atlas texture image a bitmap font's
// glyphs are split across.
type BitmapFontPage struct {
	ID   uint8
	File string
}

// FontData is a loaded font resource: either a bitmap font's glyph
// table and page textures, or (FaceData != nil) a system font's raw
// face bytes for glyph rasterization at render time.
type FontData struct {
	Name       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasWidth, AtlasHeight uint32

	Glyphs       []FontGlyph
	Kernings     []FontKerning
	Pages        []BitmapFontPage
	PageTextures []TextureData

	FaceData []byte
}

// Glyph looks up the metrics for codepoint, returning the font's
// first glyph as a fallback so QueueText never panics on a missing
// character.
func (f *FontData) Glyph(codepoint int32) FontGlyph {
	for _, g := range f.Glyphs {
		if g.Codepoint == codepoint {
			return g
		}
	}
	if len(f.Glyphs) > 0 {
		return f.Glyphs[0]
	}
	return FontGlyph{}
}

// Kerning returns the kerning adjustment between a and b, or 0.
func (f *FontData) Kerning(a, b int32) int16 {
	for _, k := range f.Kernings {
		if k.Codepoint0 == a && k.Codepoint1 == b {
			return k.Amount
		}
	}
	return 0
}
