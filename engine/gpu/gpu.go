// Package gpu defines the abstract GPU contract of a small set of
// typed primitives (context, buffer, texture, cubemap, shader,
// pipeline) expressed as interfaces so a single concrete backend
// (engine/renderer/vulkan, via goki/vulkan) can implement them
// without the rest of the engine depending on Vulkan types directly.
// Modeled on gogpu-gg/gogpu-wgpu's layered gpucontext/gputypes split.
package gpu

import "github.com/ironspire/engine/engine/math"

// State is one of the six toggleable context states.
type State int

const (
	StateDepth State = iota
	StateStencil
	StateBlend
	StateMSAA
	StateCull
	StateScissor
)

// StateMask is a bitmask over State values.
type StateMask uint32

func (m StateMask) Has(s State) bool { return m&(1<<uint(s)) != 0 }
func MaskOf(states ...State) StateMask {
	var m StateMask
	for _, s := range states {
		m |= 1 << uint(s)
	}
	return m
}

// BufferType enumerates the typed buffer kinds.
type BufferType int

const (
	BufferTypeVertex BufferType = iota
	BufferTypeIndex
	BufferTypeUniform
	BufferTypeShaderStorage
	BufferTypeDrawIndirect
)

// BufferUsage is usage × access: {dynamic,static} × {draw,read}.
type BufferUsage int

const (
	BufferUsageDynamicDraw BufferUsage = iota
	BufferUsageDynamicRead
	BufferUsageStaticDraw
	BufferUsageStaticRead
)

// TextureKind enumerates the texture dimensionalities and special
// render-target kinds.
type TextureKind int

const (
	TextureKind1D TextureKind = iota
	TextureKind2D
	TextureKind3D
	TextureKind1DArray
	TextureKind2DArray
	TextureKindImage1D
	TextureKindImage2D
	TextureKindImage3D
	TextureKindDepthTarget
	TextureKindStencilTarget
	TextureKindDepthStencilTarget
)

// Format enumerates pixel/depth/stencil formats.
type Format int

const (
	FormatR8 Format = iota
	FormatR16
	FormatR16F
	FormatR32F
	FormatRG8
	FormatRG16
	FormatRG16F
	FormatRG32F
	FormatRGBA8
	FormatRGBA16
	FormatRGBA16F
	FormatRGBA32F
	FormatDepth16
	FormatDepth24
	FormatDepth32F
	FormatStencil8
	FormatDepthStencil24_8
)

// Filter enumerates the six min/mag filter combinations.
type Filter int

const (
	FilterMinMagLinear Filter = iota
	FilterMinMagNearest
	FilterMinLinearMagNearest
	FilterMinNearestMagLinear
	FilterMinTrilinearMagLinear
	FilterMinTrilinearMagNearest
)

// Wrap enumerates the texture wrap modes.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapMirror
	WrapClamp
	WrapBorder
)

// Access enumerates image-load-store access.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
)

// DrawMode enumerates the primitive topologies a Pipeline can draw.
type DrawMode int

const (
	DrawModePoint DrawMode = iota
	DrawModeTriangle
	DrawModeTriangleStrip
	DrawModeLine
	DrawModeLineStrip
)

// IndexType hints the width of indices a Pipeline expects.
type IndexType int

const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// VertexLayoutsMax and RenderTargetsMax mirror the engine's fixed ceilings.
const (
	VertexLayoutsMax = 2
	RenderTargetsMax = 4
)

// TextureDesc describes a texture at creation time. Pixels is nil for
// render-target kinds.
type TextureDesc struct {
	Kind          TextureKind
	Format        Format
	Width, Height uint32
	Depth         uint32
	FilterMin     Filter
	FilterMag     Filter
	Wrap          Wrap
	Access        Access
	Bindless      bool
	HasBorder     bool
	Border        math.Vec4
	CompareShadow bool
	Pixels        []byte
}

// Texture is an opaque GPU texture object. BindlessID returns a stable
// 64-bit identifier a shader can sample by without a binding slot; it
// is only meaningful when the texture was created with Bindless=true.
type Texture interface {
	Desc() TextureDesc
	BindlessID() uint64
	Destroy()
}

// CubemapDesc describes a six-face cubemap sharing one format/filter/wrap.
type CubemapDesc struct {
	Size      uint32
	Format    Format
	FilterMin Filter
	FilterMag Filter
	Wrap      Wrap
	Faces     [6][]byte
}

type Cubemap interface {
	Desc() CubemapDesc
	BindlessID() uint64
	Destroy()
}

// BufferDesc describes a buffer at creation/load time.
type BufferDesc struct {
	Type  BufferType
	Usage BufferUsage
	Size  uint64
	Data  []byte
}

type Buffer interface {
	Type() BufferType
	Size() uint64
	// UploadData replaces [offset, offset+len(data)) with data. A
	// request that would exceed Size is a programmer error.
	UploadData(offset uint64, data []byte)
	BindToPoint(index uint32)
	Destroy()
}

// UniformVar describes one active shader uniform as reported by Query.
type UniformVar struct {
	Name     string
	Type     string
	Location int32
}

// ShaderDesc carries either {Vertex,Pixel} source or {Compute} source.
type ShaderDesc struct {
	Vertex  string
	Pixel   string
	Compute string
}

// QueryResult is what Shader.Query returns: the active attributes,
// uniforms, uniform-block indices, and (for compute shaders) the
// work-group size.
type QueryResult struct {
	Attributes       []string
	Uniforms         []UniformVar
	UniformBlocks    map[string]uint32
	ComputeWorkGroup [3]uint32
}

type Shader interface {
	Query() QueryResult
	// AttachUniform binds buf at bindPoint for the named uniform block.
	AttachUniform(name string, buf Buffer, bindPoint uint32)
	Destroy()
}

// PipelineDesc configures a Pipeline at creation/update time.
type PipelineDesc struct {
	Shader         Shader
	VertexBuffers  []Buffer
	IndexBuffer    Buffer
	InstanceBuffer Buffer
	IndexType      IndexType
	VertexLayouts  [VertexLayoutsMax]VertexLayout
	LayoutCount    int
	DrawMode       DrawMode
	DepthMask      bool
	StencilRef     uint32
	BlendFactor    math.Vec4
}

// VertexAttr describes one interleaved vertex attribute slot.
type VertexAttr struct {
	Name   string
	Offset uint32
	Count  uint32 // number of float32 components
}

// VertexLayout describes one buffer's interleaved attribute set and
// its stride in bytes.
type VertexLayout struct {
	Stride     uint32
	Attributes []VertexAttr
}

type Pipeline interface {
	Desc() PipelineDesc
	Update(desc PipelineDesc)
	Destroy()
}

// FramebufferDesc describes a render target's attachments.
type FramebufferDesc struct {
	Width, Height uint32
	ColorFormats  []Format
	HasDepth      bool
	DepthFormat   Format
}

type Framebuffer interface {
	Desc() FramebufferDesc
	ColorAttachment(i int) Texture
	DepthAttachment() Texture
	Resize(width, height uint32)
	Destroy()
}

// Bindings gathers everything UseBindings attaches for a draw.
type Bindings struct {
	Shader   Shader
	Textures []Texture
	Images   []Texture
	Buffers  []Buffer
	Cubemaps []Cubemap
}

// DrawCommandIndirect is the packed indirect draw record consumed by
// DrawMultiIndirect.
type DrawCommandIndirect struct {
	ElementsCount uint32
	InstanceCount uint32
	FirstElement  uint32
	BaseVertex    uint32
	BaseInstance  uint32
}

// Context is the single entry point for issuing GPU work under a
// synchronous, single-threaded contract: every call here is a direct
// command-buffer submission, never queued across frames.
type Context interface {
	SetState(state State, enabled bool)
	SetViewport(x, y, w, h uint32)
	SetScissor(x, y, w, h uint32)
	SetTarget(fb Framebuffer) // nil targets the default framebuffer
	Clear(r, g, b, a float32)
	UseBindings(b Bindings)
	UsePipeline(p Pipeline)
	Draw(start uint32)
	DrawInstanced(start uint32, instanceCount uint32)
	// DrawMultiIndirect issues one draw per record in buf[offset:offset+count*stride].
	DrawMultiIndirect(buf Buffer, offset uint64, count uint32, stride uint32)
	Dispatch(x, y, z uint32)
	MemoryBarrier(mask uint32)
	Present()

	CreateBuffer(desc BufferDesc) (Buffer, error)
	CreateTexture(desc TextureDesc) (Texture, error)
	CreateCubemap(desc CubemapDesc) (Cubemap, error)
	CreateShader(desc ShaderDesc) (Shader, error)
	CreatePipeline(desc PipelineDesc) (Pipeline, error)
	CreateFramebuffer(desc FramebufferDesc) (Framebuffer, error)
}

// ContextConfig carries the creation-time settings handed to a
// backend's context constructor; vulkan.NewContext reads only
// StatesMask from it.
type ContextConfig struct {
	StatesMask  StateMask
	Vsync       bool
	MSAASamples uint32
	DepthDesc   TextureDesc
	StencilDesc TextureDesc
	BlendDesc   math.Vec4
	CullBack    bool
}
