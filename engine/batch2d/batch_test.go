package batch2d

import (
	"testing"

	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
)

type nullContext struct{ draws int }

func (c *nullContext) SetState(gpu.State, bool)                                 {}
func (c *nullContext) SetViewport(x, y, w, h uint32)                            {}
func (c *nullContext) SetScissor(x, y, w, h uint32)                             {}
func (c *nullContext) SetTarget(gpu.Framebuffer)                                {}
func (c *nullContext) Clear(r, g, b, a float32)                                 {}
func (c *nullContext) UseBindings(gpu.Bindings)                                 {}
func (c *nullContext) UsePipeline(gpu.Pipeline)                                 {}
func (c *nullContext) Draw(start uint32)                                        { c.draws++ }
func (c *nullContext) DrawInstanced(start, count uint32)                        { c.draws++ }
func (c *nullContext) DrawMultiIndirect(buf gpu.Buffer, offset uint64, count, stride uint32) {
	c.draws++
}
func (c *nullContext) Dispatch(x, y, z uint32)     {}
func (c *nullContext) MemoryBarrier(mask uint32)   {}
func (c *nullContext) Present()                    {}
func (c *nullContext) CreateBuffer(gpu.BufferDesc) (gpu.Buffer, error)           { return nil, nil }
func (c *nullContext) CreateTexture(gpu.TextureDesc) (gpu.Texture, error)        { return nil, nil }
func (c *nullContext) CreateCubemap(gpu.CubemapDesc) (gpu.Cubemap, error)        { return nil, nil }
func (c *nullContext) CreateShader(gpu.ShaderDesc) (gpu.Shader, error)           { return nil, nil }
func (c *nullContext) CreatePipeline(gpu.PipelineDesc) (gpu.Pipeline, error)     { return nil, nil }
func (c *nullContext) CreateFramebuffer(gpu.FramebufferDesc) (gpu.Framebuffer, error) {
	return nil, nil
}

func TestQueueQuadBuildsSixVertices(t *testing.T) {
	ctx := &nullContext{}
	r, err := New(ctx, nil, nil)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	r.QueueQuad(nil, math.Vec2{X: -1, Y: -1}, math.Vec2{X: 1, Y: 1}, math.Vec2{}, math.Vec2{X: 1, Y: 1}, math.Vec4{W: 1})

	b := r.batches[r.white]
	if len(b.vertices) != 6 {
		t.Errorf("expecting one quad to append 6 vertices, got %d", len(b.vertices))
	}
}

func TestEndFrameFlushesEveryBatch(t *testing.T) {
	ctx := &nullContext{}
	r, err := New(ctx, nil, nil)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	r.QueueQuad(nil, math.Vec2{}, math.Vec2{X: 1, Y: 1}, math.Vec2{}, math.Vec2{X: 1, Y: 1}, math.Vec4{W: 1})

	r.EndFrame()

	if ctx.draws == 0 {
		t.Errorf("expecting EndFrame to issue at least one draw call")
	}
	if len(r.batches[r.white].vertices) != 0 {
		t.Errorf("expecting EndFrame to clear the batch's vertex arena")
	}
}

func TestOverflowTriggersAFlushBeforeAppending(t *testing.T) {
	ctx := &nullContext{}
	r, err := New(ctx, nil, nil)
	if err != nil {
		t.Fatalf("New: %s", err)
	}

	quads := MaxVertices/6 + 1
	for i := 0; i < quads; i++ {
		r.QueueQuad(nil, math.Vec2{}, math.Vec2{X: 1, Y: 1}, math.Vec2{}, math.Vec2{X: 1, Y: 1}, math.Vec4{W: 1})
	}

	if ctx.draws == 0 {
		t.Errorf("expecting at least one automatic flush once MaxVertices is exceeded")
	}
}
