// Package facade implements the renderer façade: frame lifecycle,
// skybox, default material/geometry, and the queue submission API the
// ECS world and application code drive each frame. It is the single
// long-lived instance threaded through application state that wires
// together engine/gpu, engine/renderqueue, engine/renderpass,
// engine/resources and engine/anim. Satisfies engine/ecs.Renderer so
// the world's render sweep can submit through it without ecs importing
// this package.
package facade

import (
	"fmt"
	stdmath "math"

	"github.com/ironspire/engine/engine/anim"
	"github.com/ironspire/engine/engine/batch2d"
	"github.com/ironspire/engine/engine/config"
	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/renderpass"
	"github.com/ironspire/engine/engine/renderqueue"
	"github.com/ironspire/engine/engine/resources"
)

// MaxInstances bounds the instance/models storage buffer.
const MaxInstances = 2048

// maxQueueVertexFloats/maxQueueIndices/maxQueueCommands size a queue's
// eagerly-created vertex/index/command buffers generously enough for
// a frame's worst case, since these buffers must exist (and stay put)
// before the queue's gpu.Pipeline is built in Init.
const (
	maxQueueVertexFloats = 1 << 20
	maxQueueIndices = 1 << 20
	maxQueueCommands = MaxInstances
)

// Default/debug material names; these are reserved resource names, so
// an author-authored material that happens to also be magenta is still
// a distinct resource from DebugMaterialName.
const (
	DefaultMaterialName = "default"
	DebugMaterialName = "debug"
)

// Model is a resource-manager-backed collection of sub-meshes, each
// with its own material, matching Mesh/Model.
type Model struct {
	Meshes []renderqueue.MeshData
	Materials []renderqueue.MaterialInterface
}

// Facade is the renderer façade: owns the GPU context, the resource
// manager, the four render queues, and the pass chain, and exposes
// the per-frame Begin/queue-*/End API.
type Facade struct {
	ctx gpu.Context
	resources *resources.Manager
	queues *renderqueue.Manager
	passes *renderpass.Chain

	matricesUBO gpu.Buffer
	lightsSSBO gpu.Buffer
	shadowVPBuffer gpu.Buffer

	screenSpacePipeline gpu.Pipeline
	screenSpaceBuffer gpu.Buffer
	hdrPipeline gpu.Pipeline
	hdrBuffer gpu.Buffer
	skyboxPipeline gpu.Pipeline
	skyboxBuffer gpu.Buffer
	skyboxes []gpu.Cubemap

	defaultTextures [5]gpu.Texture
	defaultMaterial renderqueue.MaterialInterface
	debugMaterial renderqueue.MaterialInterface

	// realized asset registries: loaded textures by path/base name,
	// loaded materials by name, for map-name and MaterialName
	// resolution in Realize.
	textures map[string]*Texture
	materials map[string]*Material

	overlay *batch2d.Renderer

	skyboxID uint32
	frameWidth, frameHeight uint32
}

// Init creates the context's default UBOs, the shadow-VP buffer, one
// GPU buffer set and compiled pipeline per render queue, the built-in
// screen-space/HDR/skybox pipelines, and the default pass chain
// described by passGraph (falls back to config.DefaultPassGraph when
// nil). Every queue buffer is created here (not lazily on first
// upload) so each queue's gpu.Pipeline can be built against stable
// buffer references.
func Init(ctx gpu.Context, passGraph *config.PassGraphDescriptor) (*Facade, error) {
	f := &Facade{
		ctx: ctx,
		resources: resources.NewManager(),
		queues: renderqueue.NewManager(),
		textures: make(map[string]*Texture),
		materials: make(map[string]*Material),
	}

	matBuf, err := ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeUniform, Usage: gpu.BufferUsageDynamicDraw, Size: 16*4*2 + 16})
	if err != nil {
		return nil, err
	}
	f.matricesUBO = matBuf

	lightsBuf, err := ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeShaderStorage, Usage: gpu.BufferUsageDynamicDraw, Size: 4096})
	if err != nil {
		return nil, err
	}
	f.lightsSSBO = lightsBuf

	shadowVP, err := ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeUniform, Usage: gpu.BufferUsageDynamicDraw, Size: 64})
	if err != nil {
		return nil, err
	}
	f.shadowVPBuffer = shadowVP

	if err := f.createDefaultTextures(); err != nil {
		return nil, err
	}
	f.defaultMaterial = renderqueue.MaterialInterface{Color: math.NewVec3One(), Transparency: 1}
	f.debugMaterial = renderqueue.MaterialInterface{Color: math.Vec3{X: 1, Y: 0, Z: 1}, Transparency: 0.5}
	f.applyDefaultMaps(&f.defaultMaterial)
	f.applyDefaultMaps(&f.debugMaterial)

	for _, q := range f.queues.Queues {
		if err := f.createQueuePipeline(q); err != nil {
			return nil, fmt.Errorf("facade: queue %d pipeline: %w", q.Type, err)
		}
	}

	if err := f.createBuiltinPipelines(); err != nil {
		return nil, err
	}
	if err := f.createOverlay(); err != nil {
		return nil, err
	}

	if passGraph == nil {
		passGraph = config.DefaultPassGraph()
	}
	deps := renderpass.Deps{
		LightsBuffer: f.lightsSSBO,
		ShadowVPBuffer: f.shadowVPBuffer,
		DrawSkybox: f.drawSkybox,
		HDRPipeline: f.hdrPipeline,
		BlitPipeline: f.screenSpacePipeline,
	}
	chain, err := renderpass.BuildDefault(passGraph, ctx, deps)
	if err != nil {
		return nil, err
	}
	f.passes = chain

	return f, nil
}

// solidTexture builds a 1x1 bindless RGBA8 texture holding one color.
func (f *Facade) solidTexture(r, g, b, a byte) (gpu.Texture, error) {
	return f.ctx.CreateTexture(gpu.TextureDesc{
		Kind: gpu.TextureKind2D, Format: gpu.FormatRGBA8,
		Width: 1, Height: 1,
		FilterMin: gpu.FilterMinMagNearest, FilterMag: gpu.FilterMinMagNearest,
		Wrap: gpu.WrapRepeat, Bindless: true,
		Pixels: []byte{r, g, b, a},
	})
}

// createDefaultTextures builds the five engine-default solid-color maps
// in MaterialInterface slot order: albedo, roughness, metallic, normal,
// emissive.
func (f *Facade) createDefaultTextures() error {
	colors := [5][4]byte{
		{255, 255, 255, 255},
		{255, 255, 255, 255},
		{0, 0, 0, 255},
		{128, 128, 255, 255},
		{0, 0, 0, 255},
	}
	for i, c := range colors {
		tex, err := f.solidTexture(c[0], c[1], c[2], c[3])
		if err != nil {
			return err
		}
		f.defaultTextures[i] = tex
	}
	return nil
}

// applyDefaultMaps substitutes the engine-default maps for any unset
// texture handle, so downstream code never branches on nullity.
func (f *Facade) applyDefaultMaps(m *renderqueue.MaterialInterface) {
	handles := [5]*uint64{&m.Albedo, &m.Roughness, &m.Metallic, &m.Normal, &m.Emissive}
	for i, h := range handles {
		if *h == 0 && f.defaultTextures[i] != nil {
			*h = f.defaultTextures[i].BindlessID()
		}
	}
}

// queueShaderName is the base name createQueuePipeline builds a
// queue's ShaderDesc strings from. The vulkan backend passes those
// strings' bytes to CreateShaderStage unchanged, as SPIR-V; no shader
// file is looked up by this name.
func queueShaderName(t renderqueue.Type) string {
	switch t {
	case renderqueue.Particle:
		return "builtin_particle"
	case renderqueue.Debug:
		return "builtin_debug"
	case renderqueue.Billboard:
		return "builtin_billboard"
	default:
		return "builtin_opaque"
	}
}

// createQueuePipeline eagerly allocates q's vertex/index/command/
// transform/material (and, for skinned queues, animation) buffers and
// compiles its draw pipeline against renderqueue.VertexLayoutFor(q.VertexFlags).
func (f *Facade) createQueuePipeline(q *renderqueue.Queue) error {
	vb, err := f.ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeVertex, Usage: gpu.BufferUsageDynamicDraw, Size: uint64(maxQueueVertexFloats) * 4})
	if err != nil {
		return err
	}
	q.VertexBuffer = vb

	ib, err := f.ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeIndex, Usage: gpu.BufferUsageDynamicDraw, Size: uint64(maxQueueIndices) * 4})
	if err != nil {
		return err
	}
	q.IndexBuffer = ib

	cb, err := f.ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeDrawIndirect, Usage: gpu.BufferUsageDynamicDraw, Size: uint64(maxQueueCommands) * 20})
	if err != nil {
		return err
	}
	q.CommandBuffer = cb

	tb, err := f.ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeShaderStorage, Usage: gpu.BufferUsageDynamicDraw, Size: uint64(MaxInstances) * 64})
	if err != nil {
		return err
	}
	q.TransformBuffer = tb

	mb, err := f.ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeShaderStorage, Usage: gpu.BufferUsageDynamicDraw, Size: uint64(MaxInstances) * 72})
	if err != nil {
		return err
	}
	q.MaterialBuffer = mb

	if q.VertexFlags&renderqueue.VertexFlagJoints != 0 {
		ab, err := f.ctx.CreateBuffer(gpu.BufferDesc{Type: gpu.BufferTypeShaderStorage, Usage: gpu.BufferUsageDynamicDraw, Size: uint64(MaxInstances) * anim.JointsMax * 64})
		if err != nil {
			return err
		}
		q.AnimationBuffer = ab
	}

	name := queueShaderName(q.Type)
	shader, err := f.ctx.CreateShader(gpu.ShaderDesc{Vertex: name + "_vertex", Pixel: name + "_pixel"})
	if err != nil {
		return err
	}

	layout := renderqueue.VertexLayoutFor(q.VertexFlags)
	pd := gpu.PipelineDesc{
		Shader: shader,
		VertexBuffers: []gpu.Buffer{q.VertexBuffer},
		IndexBuffer: q.IndexBuffer,
		InstanceBuffer: q.TransformBuffer,
		IndexType: gpu.IndexTypeUint32,
		VertexLayouts: [gpu.VertexLayoutsMax]gpu.VertexLayout{layout},
		LayoutCount: 1,
		DrawMode: gpu.DrawModeTriangle,
		// the debug queue's material is depth-mask off; every other
		// queue writes depth
		DepthMask: q.Type != renderqueue.Debug,
	}
	pipe, err := f.ctx.CreatePipeline(pd)
	if err != nil {
		return err
	}
	q.Pipeline = pipe
	return nil
}

// screenQuadLayout/screenQuadVertices/screenQuadIndices describe the
// NDC fullscreen quad shared by the screen-space blit and the HDR
// tonemap pass: position.xy, uv.xy.
var screenQuadLayout = gpu.VertexLayout{
	Stride: 16,
	Attributes: []gpu.VertexAttr{
		{Name: "position", Offset: 0, Count: 2},
		{Name: "uv", Offset: 8, Count: 2},
	},
}

var screenQuadVertices = []float32{
	-1, -1, 0, 0,
	1, -1, 1, 0,
	1, 1, 1, 1,
	-1, 1, 0, 1,
}

var screenQuadIndices = []uint32{0, 1, 2, 2, 3, 0}

// skyboxCubeVertices is a unit cube's positions wound for inward-
// facing (camera-interior) triangles, drawn without an index buffer.
var skyboxCubeVertices = []float32{
	-1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
	-1, -1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1,
	1, -1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1,
	-1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1, 1,
	-1, 1, -1, 1, 1, -1, 1, 1, 1, 1, 1, 1, -1, 1, 1, -1, 1, -1,
	-1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, -1, -1, -1, 1, 1, -1, 1,
}

// createBuiltinPipelines builds the fullscreen-quad pipeline used both
// for the façade's own screen-space present blit and, via a second
// shader, the HDR pass's exposure tonemap, plus the skybox cube
// pipeline DrawSkybox uses.
func (f *Facade) createBuiltinPipelines() error {
	quadVB, err := f.ctx.CreateBuffer(gpu.BufferDesc{
		Type: gpu.BufferTypeVertex, Usage: gpu.BufferUsageStaticDraw,
		Size: uint64(len(screenQuadVertices)) * 4, Data: float32SliceToBytes(screenQuadVertices),
	})
	if err != nil {
		return err
	}
	quadIB, err := f.ctx.CreateBuffer(gpu.BufferDesc{
		Type: gpu.BufferTypeIndex, Usage: gpu.BufferUsageStaticDraw,
		Size: uint64(len(screenQuadIndices)) * 4, Data: uint32SliceToBytes(screenQuadIndices),
	})
	if err != nil {
		return err
	}
	f.screenSpaceBuffer = quadVB

	screenShader, err := f.ctx.CreateShader(gpu.ShaderDesc{Vertex: "builtin_screenspace_vertex", Pixel: "builtin_screenspace_pixel"})
	if err != nil {
		return err
	}
	f.screenSpacePipeline, err = f.ctx.CreatePipeline(gpu.PipelineDesc{
		Shader: screenShader, VertexBuffers: []gpu.Buffer{quadVB}, IndexBuffer: quadIB,
		IndexType: gpu.IndexTypeUint32, VertexLayouts: [gpu.VertexLayoutsMax]gpu.VertexLayout{screenQuadLayout}, LayoutCount: 1,
		DrawMode: gpu.DrawModeTriangle,
	})
	if err != nil {
		return err
	}

	hdrShader, err := f.ctx.CreateShader(gpu.ShaderDesc{Vertex: "builtin_hdr_vertex", Pixel: "builtin_hdr_pixel"})
	if err != nil {
		return err
	}
	f.hdrBuffer = quadVB
	f.hdrPipeline, err = f.ctx.CreatePipeline(gpu.PipelineDesc{
		Shader: hdrShader, VertexBuffers: []gpu.Buffer{quadVB}, IndexBuffer: quadIB,
		IndexType: gpu.IndexTypeUint32, VertexLayouts: [gpu.VertexLayoutsMax]gpu.VertexLayout{screenQuadLayout}, LayoutCount: 1,
		DrawMode: gpu.DrawModeTriangle,
	})
	if err != nil {
		return err
	}

	cubeVB, err := f.ctx.CreateBuffer(gpu.BufferDesc{
		Type: gpu.BufferTypeVertex, Usage: gpu.BufferUsageStaticDraw,
		Size: uint64(len(skyboxCubeVertices)) * 4, Data: float32SliceToBytes(skyboxCubeVertices),
	})
	if err != nil {
		return err
	}
	f.skyboxBuffer = cubeVB
	skyboxShader, err := f.ctx.CreateShader(gpu.ShaderDesc{Vertex: "builtin_skybox_vertex", Pixel: "builtin_skybox_pixel"})
	if err != nil {
		return err
	}
	f.skyboxPipeline, err = f.ctx.CreatePipeline(gpu.PipelineDesc{
		Shader: skyboxShader, VertexBuffers: []gpu.Buffer{cubeVB},
		VertexLayouts: [gpu.VertexLayoutsMax]gpu.VertexLayout{{Stride: 12, Attributes: []gpu.VertexAttr{{Name: "position", Offset: 0, Count: 3}}}}, LayoutCount: 1,
		DrawMode: gpu.DrawModeTriangle,
	})
	return err
}

// overlayLayout matches batch2d's packed vertex: vec2 position, vec4
// color, vec2 uv, then the shape/sides pair as raw uint32s.
var overlayLayout = gpu.VertexLayout{
	Stride: 40,
	Attributes: []gpu.VertexAttr{
		{Name: "position", Offset: 0, Count: 2},
		{Name: "color", Offset: 8, Count: 4},
		{Name: "uv", Offset: 24, Count: 2},
		{Name: "shape", Offset: 32, Count: 1},
		{Name: "sides", Offset: 36, Count: 1},
	},
}

// createOverlay builds the 2D overlay pipeline and hands it, with the
// default albedo texture as the white batch key, to batch2d. The
// overlay's vertex buffer is owned by batch2d, which attaches it to the
// pipeline itself.
func (f *Facade) createOverlay() error {
	shader, err := f.ctx.CreateShader(gpu.ShaderDesc{Vertex: "builtin_overlay2d_vertex", Pixel: "builtin_overlay2d_pixel"})
	if err != nil {
		return err
	}
	pipe, err := f.ctx.CreatePipeline(gpu.PipelineDesc{
		Shader: shader,
		VertexLayouts: [gpu.VertexLayoutsMax]gpu.VertexLayout{overlayLayout},
		LayoutCount: 1,
		DrawMode: gpu.DrawModeTriangle,
	})
	if err != nil {
		return err
	}
	f.overlay, err = batch2d.New(f.ctx, f.defaultTextures[0], pipe)
	return err
}

// Overlay exposes the 2D batch renderer; primitives queued through it
// are flushed over the final composited frame at the end of End.
func (f *Facade) Overlay() *batch2d.Renderer { return f.overlay }

// RegisterSkybox attaches cm as a drawable skybox and returns the id
// a frame's FrameData.SkyboxID (via Facade.DrawSkybox) names to select
// it; 0 is reserved for "no skybox this frame".
func (f *Facade) RegisterSkybox(cm gpu.Cubemap) uint32 {
	f.skyboxes = append(f.skyboxes, cm)
	return uint32(len(f.skyboxes))
}

func (f *Facade) resolveSkybox(id uint32) gpu.Cubemap {
	if id == 0 || int(id) > len(f.skyboxes) {
		return nil
	}
	return f.skyboxes[id-1]
}

// drawSkybox is the renderpass.Deps.DrawSkybox callback: the light
// pass's Prepare hook calls it once the lighting framebuffer is bound,
// so the skybox fills whatever the opaque geometry didn't cover.
func (f *Facade) drawSkybox(ctx gpu.Context) {
	cm := f.resolveSkybox(f.skyboxID)
	if cm == nil || f.skyboxPipeline == nil {
		return
	}
	ctx.SetState(gpu.StateDepth, false)
	ctx.UseBindings(gpu.Bindings{Cubemaps: []gpu.Cubemap{cm}})
	ctx.UsePipeline(f.skyboxPipeline)
	ctx.Draw(0)
	ctx.SetState(gpu.StateDepth, true)
}

// Resources exposes the resource manager so asset loaders can push
// loaded models/materials into it.
func (f *Facade) Resources() *resources.Manager { return f.resources }

// PushModel registers a model in the default resource group and
// returns its handle.
func (f *Facade) PushModel(m *Model) resources.ResourceID {
	return f.resources.Push(resources.RESOURCE_CACHE_ID, resources.KindModel, m)
}

func (f *Facade) model(id resources.ResourceID) *Model {
	v, err := f.resources.Get(id)
	if err != nil {
		core.LogError("facade: %s", err)
		return nil
	}
	m, ok := v.(*Model)
	if !ok {
		core.LogError("facade: handle does not name a model")
		return nil
	}
	return m
}

// setQueueDepthMask flips q's pipeline depth-mask state when a queued
// material asks for a different one. Draws within a queue share one
// pipeline, so the state applies to the queue's whole frame; Begin
// restores each queue's default.
func (f *Facade) setQueueDepthMask(q *renderqueue.Queue, mask bool) {
	if q.Pipeline == nil {
		return
	}
	desc := q.Pipeline.Desc()
	if desc.DepthMask == mask {
		return
	}
	desc.DepthMask = mask
	q.Pipeline.Update(desc)
}

// Begin writes {view, projection, camera_pos} to the matrices UBO and
// clears every queue's CPU arenas, restoring per-queue pipeline
// defaults a previous frame's materials may have overridden.
func (f *Facade) Begin(frame *renderpass.FrameData) {
	f.queues.Begin()
	for _, q := range f.queues.Queues {
		f.setQueueDepthMask(q, q.Type != renderqueue.Debug)
	}
	var payload [16*4*2 + 16]byte
	writeMat4(payload[0:64], frame.View)
	writeMat4(payload[64:128], frame.Projection)
	writeVec3(payload[128:140], frame.CameraPosition)
	f.matricesUBO.UploadData(0, payload[:])
	f.skyboxID = frame.SkyboxID
}

func writeMat4(dst []byte, m math.Mat4) {
	for i, v := range m.Data {
		writeFloat32(dst[i*4:], v)
	}
}

func writeVec3(dst []byte, v math.Vec3) {
	writeFloat32(dst[0:], v.X)
	writeFloat32(dst[4:], v.Y)
	writeFloat32(dst[8:], v.Z)
}

func writeFloat32(dst []byte, v float32) {
	bits := stdmath.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func float32SliceToBytes(s []float32) []byte {
	out := make([]byte, len(s)*4)
	for i, v := range s {
		writeFloat32(out[i*4:], v)
	}
	return out
}

func uint32SliceToBytes(s []uint32) []byte {
	out := make([]byte, len(s)*4)
	for i, v := range s {
		out[i*4] = byte(v)
		out[i*4+1] = byte(v >> 8)
		out[i*4+2] = byte(v >> 16)
		out[i*4+3] = byte(v >> 24)
	}
	return out
}

func mat4SliceToBytes(s []math.Mat4) []byte {
	out := make([]byte, len(s)*64)
	for i, m := range s {
		writeMat4(out[i*64:], m)
	}
	return out
}

// writeMaterial packs one MaterialInterface in the same field order the
// shader-side struct expects: five bindless handles, four scalars, a
// 4-byte pad, then color.
func writeMaterial(dst []byte, m renderqueue.MaterialInterface) {
	writeUint64(dst[0:], m.Albedo)
	writeUint64(dst[8:], m.Roughness)
	writeUint64(dst[16:], m.Metallic)
	writeUint64(dst[24:], m.Normal)
	writeUint64(dst[32:], m.Emissive)
	writeFloat32(dst[40:], m.MetallicF)
	writeFloat32(dst[44:], m.RoughnessF)
	writeFloat32(dst[48:], m.EmissiveF)
	writeFloat32(dst[52:], m.Transparency)
	writeVec3(dst[60:], m.Color)
}

func writeUint64(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func materialSliceToBytes(s []renderqueue.MaterialInterface) []byte {
	out := make([]byte, len(s)*72)
	for i, m := range s {
		writeMaterial(out[i*72:], m)
	}
	return out
}

// animationSliceToBytes flattens the opaque queue's per-instance
// skinning palettes into one contiguous mat4 array, JointsMax matrices
// per instance, matching the animation storage block's layout.
func animationSliceToBytes(s [][anim.JointsMax]math.Mat4) []byte {
	out := make([]byte, len(s)*anim.JointsMax*64)
	off := 0
	for _, palette := range s {
		for _, m := range palette {
			writeMat4(out[off:], m)
			off += 64
		}
	}
	return out
}

func commandSliceToBytes(s []renderqueue.Command) []byte {
	out := make([]byte, len(s)*20)
	for i, c := range s {
		base := i * 20
		writeUint32(out[base:], c.ElementsCount)
		writeUint32(out[base+4:], c.InstanceCount)
		writeUint32(out[base+8:], c.FirstElement)
		writeUint32(out[base+12:], c.BaseVertex)
		writeUint32(out[base+16:], c.BaseInstance)
	}
	return out
}

func writeUint32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

// QueueMesh appends a single mesh instance into the OPAQUE queue.
func (f *Facade) QueueMesh(mesh renderqueue.MeshData, transform math.Mat4, mat renderqueue.MaterialInterface) {
	f.applyDefaultMaps(&mat)
	f.queues.Queue(renderqueue.Opaque).Push(mesh, transform, mat)
}

// QueueMeshInstanced appends a single mesh shared across n transforms.
func (f *Facade) QueueMeshInstanced(mesh renderqueue.MeshData, transforms []math.Mat4, mat renderqueue.MaterialInterface) {
	f.applyDefaultMaps(&mat)
	f.queues.Queue(renderqueue.Opaque).PushInstanced(mesh, transforms, mat)
}

// QueueModel expands model's resource handle into one push per
// sub-mesh, propagating transparency into each sub-mesh's material.
// Satisfies ecs.Renderer.
func (f *Facade) QueueModel(id resources.ResourceID, transform math.Mat4, transparency float32, depthMask bool) {
	m := f.model(id)
	if m == nil {
		return
	}
	q := f.queues.Queue(renderqueue.Opaque)
	f.setQueueDepthMask(q, depthMask)
	for i, mesh := range m.Meshes {
		mat := m.Materials[i]
		mat.Transparency = transparency
		f.applyDefaultMaps(&mat)
		q.Push(mesh, transform, mat)
	}
}

// QueueModelInstanced is QueueModel's instanced analogue. Satisfies
// ecs.Renderer.
func (f *Facade) QueueModelInstanced(id resources.ResourceID, transforms []math.Mat4, transparency float32, depthMask bool) {
	m := f.model(id)
	if m == nil {
		return
	}
	q := f.queues.Queue(renderqueue.Opaque)
	f.setQueueDepthMask(q, depthMask)
	for i, mesh := range m.Meshes {
		mat := m.Materials[i]
		mat.Transparency = transparency
		f.applyDefaultMaps(&mat)
		q.PushInstanced(mesh, transforms, mat)
	}
}

// QueueAnimation queues the model's sub-meshes with the sampler/
// blender's skinning palette attached. Satisfies ecs.Renderer.
func (f *Facade) QueueAnimation(id resources.ResourceID, transform math.Mat4, palette [anim.JointsMax]math.Mat4) {
	m := f.model(id)
	if m == nil {
		return
	}
	q := f.queues.Queue(renderqueue.Opaque)
	for i, mesh := range m.Meshes {
		mat := m.Materials[i]
		f.applyDefaultMaps(&mat)
		q.PushAnimated(mesh, transform, mat, palette)
	}
}

// QueueAnimationInstanced queues the model once per transform set,
// then appends one skinning palette per instance in the same order
// the transforms were appended: palettes[i] drives the instance at
// transforms[i]. Satisfies ecs.Renderer.
func (f *Facade) QueueAnimationInstanced(id resources.ResourceID, transforms []math.Mat4, palettes [][anim.JointsMax]math.Mat4) {
	m := f.model(id)
	if m == nil {
		return
	}
	q := f.queues.Queue(renderqueue.Opaque)
	for i, mesh := range m.Meshes {
		mat := m.Materials[i]
		f.applyDefaultMaps(&mat)
		q.PushInstanced(mesh, transforms, mat)
	}
	q.Animations = append(q.Animations, palettes...)
}

var unitQuad = renderqueue.MeshData{
	Vertices: []float32{
		-0.5, -0.5, 0, 0, 0, 1, 0, 0,
		0.5, -0.5, 0, 0, 0, 1, 1, 0,
		0.5, 0.5, 0, 0, 0, 1, 1, 1,
		-0.5, 0.5, 0, 0, 0, 1, 0, 1,
	},
	Indices: []uint32{0, 1, 2, 2, 3, 0},
}

// QueueParticlesInstanced pushes the billboard quad once per live
// particle transform into the PARTICLE queue. Satisfies ecs.Renderer.
func (f *Facade) QueueParticlesInstanced(transforms []math.Mat4) {
	if len(transforms) == 0 {
		return
	}
	f.queues.Queue(renderqueue.Particle).PushInstanced(unitQuad, transforms, f.defaultMaterial)
}

// QueueDebugCube/Sphere push a primitive into the DEBUG queue using
// the debug material (magenta, transparency 0.5).
func (f *Facade) QueueDebugCube(transform math.Mat4, mesh renderqueue.MeshData) {
	f.queues.Queue(renderqueue.Debug).Push(mesh, transform, f.debugMaterial)
}

func (f *Facade) QueueDebugCubeInstanced(transforms []math.Mat4, mesh renderqueue.MeshData) {
	f.queues.Queue(renderqueue.Debug).PushInstanced(mesh, transforms, f.debugMaterial)
}

// QueueDebugSphere/Instanced are QueueDebugCube's sphere analogue,
// sharing the same debug material and DEBUG queue.
func (f *Facade) QueueDebugSphere(transform math.Mat4, mesh renderqueue.MeshData) {
	f.queues.Queue(renderqueue.Debug).Push(mesh, transform, f.debugMaterial)
}

func (f *Facade) QueueDebugSphereInstanced(transforms []math.Mat4, mesh renderqueue.MeshData) {
	f.queues.Queue(renderqueue.Debug).PushInstanced(mesh, transforms, f.debugMaterial)
}

// DrawSkybox records the skybox resource to draw this frame; the
// light pass's Prepare callback reads it back via Facade.drawSkybox.
func (f *Facade) DrawSkybox(id uint32) { f.skyboxID = id }

// End uploads every non-empty queue's arenas to its GPU buffers, walks
// the pass chain driving each pass's Prepare/Submit callbacks, then
// blits the final pass's color output to the default framebuffer
// through the screen-space pipeline. No present is called here; that
// is the application's responsibility (Application.Run calls
// GfxContext.Present after Facade.End returns).
func (f *Facade) End(frame *renderpass.FrameData) {
	for _, q := range f.queues.Queues {
		if q.Empty() {
			continue
		}
		f.uploadQueue(q)
	}

	var last *renderpass.Pass
	f.passes.Walk(func(p *renderpass.Pass) {
		f.ctx.SetTarget(f.passes.ResolveFramebuffer(p.SelfIndex()))
		if p.Callbacks.Prepare != nil {
			p.Callbacks.Prepare(p, frame)
		}
		if p.Callbacks.Submit != nil {
			q := f.queues.Queue(p.QueueType)
			f.bindQueue(q)
			p.Callbacks.Submit(p, q)
		}
		last = p
	})

	f.ctx.SetTarget(nil)
	if last != nil && last.OutputCount > 0 && f.screenSpacePipeline != nil {
		f.ctx.UseBindings(gpu.Bindings{Textures: []gpu.Texture{last.Outputs[0]}})
		f.ctx.UsePipeline(f.screenSpacePipeline)
		f.ctx.Draw(0)
	}
	if f.overlay != nil {
		f.overlay.EndFrame()
	}
}

func (f *Facade) uploadQueue(q *renderqueue.Queue) {
	q.VertexBuffer.UploadData(0, float32SliceToBytes(q.Vertices))
	q.IndexBuffer.UploadData(0, uint32SliceToBytes(q.Indices))
	q.TransformBuffer.UploadData(0, mat4SliceToBytes(q.Transforms))
	q.MaterialBuffer.UploadData(0, materialSliceToBytes(q.Materials))
	if len(q.Animations) > 0 && q.AnimationBuffer != nil {
		q.AnimationBuffer.UploadData(0, animationSliceToBytes(q.Animations))
	}
	q.CommandBuffer.UploadData(0, commandSliceToBytes(q.Commands))
}

// bindQueue rewrites the shared descriptor set to the fixed contract:
// matrices(0), instance transforms(1), materials(2), lights(3),
// animation/skinning(4). A nil buffer (e.g. the animation buffer of a
// queue whose vertex layout has no joints) leaves its slot untouched.
func (f *Facade) bindQueue(q *renderqueue.Queue) {
	f.ctx.UseBindings(gpu.Bindings{
		Buffers: []gpu.Buffer{f.matricesUBO, q.TransformBuffer, q.MaterialBuffer, f.lightsSSBO, q.AnimationBuffer},
	})
}

// Resize dispatches a framebuffer resize to every pass chain member.
func (f *Facade) Resize(width, height uint32) {
	f.frameWidth, f.frameHeight = width, height
	f.passes.Resize(width, height)
}
