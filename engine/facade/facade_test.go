package facade

import (
	"testing"

	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/renderpass"
	"github.com/ironspire/engine/engine/renderqueue"
	"github.com/ironspire/engine/engine/resources"
)

type fakeBuffer struct {
	typ gpu.BufferType
	size uint64
	data []byte
}

func (b *fakeBuffer) Type() gpu.BufferType { return b.typ }
func (b *fakeBuffer) Size() uint64 { return b.size }
func (b *fakeBuffer) UploadData(offset uint64, data []byte) { b.data = append(b.data[:0], data...) }
func (b *fakeBuffer) BindToPoint(index uint32) {}
func (b *fakeBuffer) Destroy() {}

type fakeTexture struct{ id uint64 }

func (t *fakeTexture) Desc() gpu.TextureDesc { return gpu.TextureDesc{} }
func (t *fakeTexture) BindlessID() uint64 { return t.id }
func (t *fakeTexture) Destroy() {}

type fakeCubemap struct{}

func (c *fakeCubemap) Desc() gpu.CubemapDesc { return gpu.CubemapDesc{} }
func (c *fakeCubemap) BindlessID() uint64 { return 0 }
func (c *fakeCubemap) Destroy() {}

type fakeFramebuffer struct {
	color, depth fakeTexture
}

func (f *fakeFramebuffer) Desc() gpu.FramebufferDesc { return gpu.FramebufferDesc{} }
func (f *fakeFramebuffer) ColorAttachment(i int) gpu.Texture { return &f.color }
func (f *fakeFramebuffer) DepthAttachment() gpu.Texture { return &f.depth }
func (f *fakeFramebuffer) Resize(width, height uint32) {}
func (f *fakeFramebuffer) Destroy() {}

type fakeShader struct{}

func (s *fakeShader) Query() gpu.QueryResult { return gpu.QueryResult{} }
func (s *fakeShader) AttachUniform(name string, buf gpu.Buffer, bindPoint uint32) {}
func (s *fakeShader) Destroy() {}

type fakePipeline struct{ desc gpu.PipelineDesc }

func (p *fakePipeline) Desc() gpu.PipelineDesc { return p.desc }
func (p *fakePipeline) Update(desc gpu.PipelineDesc) { p.desc = desc }
func (p *fakePipeline) Destroy() {}

// fakeContext is a gpu.Context double returning real (not nil) fake
// objects from every Create* call, so Facade.Init's eager buffer/
// pipeline creation and Facade.End's upload/bind/draw sequence can run
// without a nil-interface panic.
type fakeContext struct {
	draws int
	presents int
	bindings []gpu.Bindings
	pipelines []gpu.Pipeline
	nextTextureID uint64
}

func (c *fakeContext) SetState(gpu.State, bool) {}
func (c *fakeContext) SetViewport(x, y, w, h uint32) {}
func (c *fakeContext) SetScissor(x, y, w, h uint32) {}
func (c *fakeContext) SetTarget(gpu.Framebuffer) {}
func (c *fakeContext) Clear(r, g, b, a float32) {}
func (c *fakeContext) UseBindings(b gpu.Bindings) { c.bindings = append(c.bindings, b) }
func (c *fakeContext) UsePipeline(p gpu.Pipeline) { c.pipelines = append(c.pipelines, p) }
func (c *fakeContext) Draw(start uint32) { c.draws++ }
func (c *fakeContext) DrawInstanced(start, count uint32) { c.draws++ }
func (c *fakeContext) DrawMultiIndirect(buf gpu.Buffer, offset uint64, count, stride uint32) {
	c.draws++
}
func (c *fakeContext) Dispatch(x, y, z uint32) {}
func (c *fakeContext) MemoryBarrier(mask uint32) {}
func (c *fakeContext) Present() { c.presents++ }
func (c *fakeContext) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	return &fakeBuffer{typ: desc.Type, size: desc.Size}, nil
}
func (c *fakeContext) CreateTexture(gpu.TextureDesc) (gpu.Texture, error) {
	c.nextTextureID++
	return &fakeTexture{id: c.nextTextureID}, nil
}
func (c *fakeContext) CreateCubemap(gpu.CubemapDesc) (gpu.Cubemap, error) { return &fakeCubemap{}, nil }
func (c *fakeContext) CreateShader(gpu.ShaderDesc) (gpu.Shader, error) { return &fakeShader{}, nil }
func (c *fakeContext) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	return &fakePipeline{desc: desc}, nil
}
func (c *fakeContext) CreateFramebuffer(gpu.FramebufferDesc) (gpu.Framebuffer, error) {
	return &fakeFramebuffer{}, nil
}

func triangleMesh() renderqueue.MeshData {
	return renderqueue.MeshData{
		Vertices: make([]float32, 8*3),
		Indices: []uint32{0, 1, 2},
	}
}

func TestInitBuildsQueuePipelinesAndBuffers(t *testing.T) {
	ctx := &fakeContext{}
	f, err := Init(ctx, nil)
	if err != nil {
		t.Fatalf("Init: %s", err)
	}
	for _, q := range f.queues.Queues {
		if q.Pipeline == nil {
			t.Errorf("expecting queue %d to have a compiled pipeline", q.Type)
		}
		if q.VertexBuffer == nil || q.IndexBuffer == nil || q.CommandBuffer == nil || q.TransformBuffer == nil || q.MaterialBuffer == nil {
			t.Errorf("expecting queue %d's GPU buffers to be created eagerly in Init", q.Type)
		}
	}
	if f.screenSpacePipeline == nil {
		t.Errorf("expecting Init to build the screen-space pipeline")
	}
	if f.hdrPipeline == nil {
		t.Errorf("expecting Init to build the HDR tonemap pipeline")
	}
	if f.skyboxPipeline == nil {
		t.Errorf("expecting Init to build the skybox pipeline")
	}
	opaque := f.queues.Queue(renderqueue.Opaque)
	if opaque.AnimationBuffer == nil {
		t.Errorf("expecting the skinned opaque queue to get an animation buffer")
	}
	particle := f.queues.Queue(renderqueue.Particle)
	if particle.AnimationBuffer != nil {
		t.Errorf("expecting a non-skinned queue to have no animation buffer")
	}
}

func TestEndDrawsWithoutPresenting(t *testing.T) {
	ctx := &fakeContext{}
	f, err := Init(ctx, nil)
	if err != nil {
		t.Fatalf("Init: %s", err)
	}

	frame := &renderpass.FrameData{View: math.NewMat4Identity(), Projection: math.NewMat4Identity()}
	f.Begin(frame)
	f.QueueMesh(triangleMesh(), math.NewMat4Identity(), renderqueue.MaterialInterface{})
	f.End(frame)

	if ctx.draws == 0 {
		t.Errorf("expecting End to issue at least one draw call")
	}
	if ctx.presents != 0 {
		t.Errorf("expecting End to never call Present itself; that is the application's job")
	}
}

func TestRegisterSkyboxRoundTrips(t *testing.T) {
	ctx := &fakeContext{}
	f, err := Init(ctx, nil)
	if err != nil {
		t.Fatalf("Init: %s", err)
	}

	cm := &fakeCubemap{}
	id := f.RegisterSkybox(cm)
	if id == 0 {
		t.Errorf("expecting a nonzero skybox id")
	}
	if got := f.resolveSkybox(id); got != cm {
		t.Errorf("expecting resolveSkybox(%d) to return the registered cubemap", id)
	}
	if f.resolveSkybox(0) != nil {
		t.Errorf("expecting id 0 to resolve to no skybox")
	}
}

func TestInitSubstitutesDefaultMapsIntoMaterials(t *testing.T) {
	ctx := &fakeContext{}
	f, err := Init(ctx, nil)
	if err != nil {
		t.Fatalf("Init: %s", err)
	}

	for i, tex := range f.defaultTextures {
		if tex == nil {
			t.Fatalf("expecting default texture %d to be created in Init", i)
		}
	}
	if f.defaultMaterial.Albedo == 0 || f.defaultMaterial.Normal == 0 {
		t.Errorf("expecting the default material's unset maps to be substituted with default texture handles")
	}
	if f.debugMaterial.Albedo == 0 {
		t.Errorf("expecting the debug material's unset maps to be substituted too")
	}

	mat := renderqueue.MaterialInterface{Albedo: 4242}
	f.applyDefaultMaps(&mat)
	if mat.Albedo != 4242 {
		t.Errorf("expecting an explicitly set map to be left alone, got %d", mat.Albedo)
	}
	if mat.Roughness == 0 {
		t.Errorf("expecting the remaining unset maps to still be substituted")
	}
}

func TestOverlayFlushesDuringEnd(t *testing.T) {
	ctx := &fakeContext{}
	f, err := Init(ctx, nil)
	if err != nil {
		t.Fatalf("Init: %s", err)
	}

	frame := &renderpass.FrameData{View: math.NewMat4Identity(), Projection: math.NewMat4Identity()}
	f.Begin(frame)
	f.Overlay().QueueQuad(nil, math.Vec2{X: -0.5, Y: -0.5}, math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{}, math.Vec2{X: 1, Y: 1}, math.Vec4{X: 1, W: 1})

	before := ctx.draws
	f.End(frame)
	if ctx.draws <= before {
		t.Errorf("expecting End to flush the queued overlay batch")
	}
}

func TestDebugQueuePipelineHasDepthMaskOff(t *testing.T) {
	ctx := &fakeContext{}
	f, err := Init(ctx, nil)
	if err != nil {
		t.Fatalf("Init: %s", err)
	}

	if f.queues.Queue(renderqueue.Debug).Pipeline.Desc().DepthMask {
		t.Errorf("expecting the debug queue's pipeline to be created with depth mask off")
	}
	if !f.queues.Queue(renderqueue.Opaque).Pipeline.Desc().DepthMask {
		t.Errorf("expecting the opaque queue's pipeline to write depth by default")
	}
}

func TestQueueModelDepthMaskDrivesPipelineState(t *testing.T) {
	ctx := &fakeContext{}
	f, err := Init(ctx, nil)
	if err != nil {
		t.Fatalf("Init: %s", err)
	}
	id := f.PushModel(&Model{
		Meshes:    []renderqueue.MeshData{triangleMesh()},
		Materials: []renderqueue.MaterialInterface{{}},
	})

	frame := &renderpass.FrameData{View: math.NewMat4Identity(), Projection: math.NewMat4Identity()}
	f.Begin(frame)
	f.QueueModel(id, math.NewMat4Identity(), 1, false)

	opaque := f.queues.Queue(renderqueue.Opaque)
	if opaque.Pipeline.Desc().DepthMask {
		t.Errorf("expecting a depth-mask-off renderable to flip the opaque pipeline's depth mask")
	}

	f.Begin(frame)
	if !opaque.Pipeline.Desc().DepthMask {
		t.Errorf("expecting Begin to restore the opaque queue's default depth mask")
	}
}

func TestRealizeUploadsTexturesAndResolvesModelMaterials(t *testing.T) {
	ctx := &fakeContext{}
	f, err := Init(ctx, nil)
	if err != nil {
		t.Fatalf("Init: %s", err)
	}

	texAny, err := f.Realize("crate_albedo.png", resources.KindTexture, &resources.TextureData{
		Width: 1, Height: 1, ChannelCount: 4, Pixels: []byte{0xff, 0xff, 0xff, 0xff},
	})
	if err != nil {
		t.Fatalf("Realize texture: %s", err)
	}
	tex, ok := texAny.(*Texture)
	if !ok || tex.GPU == nil {
		t.Fatalf("expecting a realized texture with an uploaded GPU object")
	}

	modelAny, err := f.Realize("crate.gltf", resources.KindModel, &resources.ModelData{
		Meshes: []resources.MeshData{{
			MaterialName: "crate",
			Vertices:     make([]float32, 19*3),
			Indices:      []uint32{0, 1, 2},
		}},
		Materials: []resources.MaterialData{{Name: "crate", AlbedoMap: "crate_albedo.png", Transparency: 1}},
	})
	if err != nil {
		t.Fatalf("Realize model: %s", err)
	}
	m, ok := modelAny.(*Model)
	if !ok {
		t.Fatalf("expecting Realize to produce the queue-ready Model shape")
	}
	if got := m.Materials[0].Albedo; got != tex.GPU.BindlessID() {
		t.Errorf("expecting the model's albedo map to resolve to the loaded texture's bindless handle, got %d", got)
	}

	id := f.resources.Push(resources.RESOURCE_CACHE_ID, resources.KindModel, m)
	frame := &renderpass.FrameData{View: math.NewMat4Identity(), Projection: math.NewMat4Identity()}
	f.Begin(frame)
	f.QueueModel(id, math.NewMat4Identity(), 1, true)
	if got := len(f.queues.Queue(renderqueue.Opaque).Commands); got != 1 {
		t.Errorf("expecting the realized model to queue one draw command, got %d", got)
	}
}
