package renderpass

import (
	"fmt"

	"github.com/ironspire/engine/engine/config"
	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/renderqueue"
)

func queueTypeOf(name string) renderqueue.Type {
	switch name {
	case "particle":
		return renderqueue.Particle
	case "debug":
		return renderqueue.Debug
	case "billboard":
		return renderqueue.Billboard
	default:
		return renderqueue.Opaque
	}
}

// Deps bundles the facade-owned GPU objects the default pass kinds
// need but don't own: the lights storage buffer, the shadow pass's
// light-space view-projection buffer, and a callback that draws
// whatever skybox the frame requested. Keeping these as a struct lets
// renderpass stay decoupled from facade and resources.
type Deps struct {
	LightsBuffer gpu.Buffer
	ShadowVPBuffer gpu.Buffer
	DrawSkybox func(ctx gpu.Context)
	// HDRPipeline is the fullscreen-quad tonemap pipeline the hdr pass
	// draws with; the hdr pass is wired to the opaque queue purely for
	// bookkeeping (QueueType selection in the descriptor), but its draw
	// never reads that queue's geometry.
	HDRPipeline gpu.Pipeline
	// BlitPipeline is the plain fullscreen-quad copy the billboard pass
	// uses to bring the previous pass's color into its own attachment
	// before compositing its quads on top.
	BlitPipeline gpu.Pipeline
}

// kindCallbacks returns the prepare/submit/resize/destroy set for a
// pass kind. ctx is the owning gpu.Context every created framebuffer/
// texture belongs to; deps carries the cross-pass GPU resources the
// light and shadow kinds read or write.
func kindCallbacks(kind string, ctx gpu.Context, deps Deps) Callbacks {
	switch kind {
	case "shadow":
		return shadowCallbacks(ctx, deps)
	case "light":
		return lightCallbacks(ctx, deps)
	case "particle":
		return particleCallbacks()
	case "billboard":
		return billboardCallbacks(ctx, deps)
	case "hdr":
		return hdrCallbacks(ctx, deps)
	case "debug":
		return debugCallbacks()
	default:
		return Callbacks{}
	}
}

// BuildDefault walks a pass-graph descriptor and appends one pass
// per entry, wiring each pass's callback set from the kind registry
// instead of hard-coding the chain in Go control flow.
func BuildDefault(desc *config.PassGraphDescriptor, ctx gpu.Context, deps Deps) (*Chain, error) {
	c := NewChain()
	for _, pd := range desc.Passes {
		parentSlot := none
		if pd.Parent != "" {
			idx, ok := c.byName[pd.Parent]
			if !ok {
				return nil, fmt.Errorf("renderpass: pass %q references unknown parent %q", pd.Name, pd.Parent)
			}
			parentSlot = idx
		}

		kind := pd.Kind
		idx, err := c.Append(pd.Name, queueTypeOf(pd.Queue), parentSlot, kindCallbacks(kind, ctx, deps))
		if err != nil {
			return nil, err
		}
		c.slots[idx].GfxContext = ctx
		width, height := pd.Width, pd.Height
		if width == 0 {
			width = 1280
		}
		if height == 0 {
			height = 720
		}
		c.slots[idx].FrameWidth, c.slots[idx].FrameHeight = width, height
	}
	return c, nil
}

// usePipeline binds q's compiled pipeline, when it has one; a queue
// used purely in a unit test may have none.
func usePipeline(ctx gpu.Context, q *renderqueue.Queue) {
	if q.Pipeline != nil {
		ctx.UsePipeline(q.Pipeline)
	}
}

func shadowCallbacks(ctx gpu.Context, deps Deps) Callbacks {
	return Callbacks{
		Prepare: func(p *Pass, frame *FrameData) {
			if p.Framebuffer == nil {
				fb, err := ctx.CreateFramebuffer(gpu.FramebufferDesc{Width: 1280, Height: 1280, HasDepth: true, DepthFormat: gpu.FormatDepth24})
				if err != nil {
					return
				}
				p.Framebuffer = fb
			}
			up := math.NewVec3Up()
			vp := ComputeLightViewProjection(frame.Projection.Mul(frame.View), frame.DirLight.Direction, up)
			if deps.ShadowVPBuffer != nil {
				var payload [64]byte
				writeMat4(payload[:], vp)
				deps.ShadowVPBuffer.UploadData(0, payload[:])
			}
		},
		Submit: func(p *Pass, q *renderqueue.Queue) {
			if q.Empty() {
				p.ForwardOutputs()
				return
			}
			ctx.SetTarget(p.Framebuffer)
			ctx.Clear(0, 0, 0, 1)
			if deps.ShadowVPBuffer != nil {
				ctx.UseBindings(gpu.Bindings{Buffers: []gpu.Buffer{deps.ShadowVPBuffer}})
			}
			usePipeline(ctx, q)
			ctx.DrawMultiIndirect(q.CommandBuffer, 0, uint32(len(q.Commands)), 0)
			p.Outputs[0] = p.Framebuffer.DepthAttachment()
			p.OutputCount = 1
		},
		Resize: func(p *Pass, width, height uint32) {
			// shadow map resolution is fixed at 1280x1280 regardless of window size
		},
		Destroy: func(p *Pass) {
			if p.Framebuffer != nil {
				p.Framebuffer.Destroy()
			}
		},
	}
}

func lightCallbacks(ctx gpu.Context, deps Deps) Callbacks {
	return Callbacks{
		Prepare: func(p *Pass, frame *FrameData) {
			if p.Framebuffer == nil {
				fb, err := ctx.CreateFramebuffer(gpu.FramebufferDesc{
					Width: p.FrameWidth, Height: p.FrameHeight,
					ColorFormats: []gpu.Format{gpu.FormatRGBA16F}, HasDepth: true, DepthFormat: gpu.FormatDepth24,
				})
				if err != nil {
					return
				}
				p.Framebuffer = fb
			}
			ctx.SetTarget(p.Framebuffer)
			ctx.Clear(frame.Ambient.X, frame.Ambient.Y, frame.Ambient.Z, 1)

			if deps.LightsBuffer != nil {
				deps.LightsBuffer.UploadData(0, packLights(frame))
			}

			bindings := gpu.Bindings{}
			if shadow := p.Previous(); shadow != nil && shadow.OutputCount > 0 {
				bindings.Textures = append(bindings.Textures, shadow.Outputs[0])
			}
			if deps.LightsBuffer != nil {
				bindings.Buffers = append(bindings.Buffers, deps.LightsBuffer)
			}
			if len(bindings.Textures) > 0 || len(bindings.Buffers) > 0 {
				ctx.UseBindings(bindings)
			}

			if deps.DrawSkybox != nil {
				deps.DrawSkybox(ctx)
			}
		},
		Submit: func(p *Pass, q *renderqueue.Queue) {
			if !q.Empty() {
				usePipeline(ctx, q)
				ctx.DrawMultiIndirect(q.CommandBuffer, 0, uint32(len(q.Commands)), 0)
			}
			p.Outputs[0] = p.Framebuffer.ColorAttachment(0)
			p.OutputCount = 1
		},
		Resize: resizeByRecreate,
		Destroy: func(p *Pass) {
			if p.Framebuffer != nil {
				p.Framebuffer.Destroy()
			}
		},
	}
}

// resizeByRecreate drops the pass's framebuffer so the next Prepare
// rebuilds its attachments at the new frame size.
func resizeByRecreate(p *Pass, width, height uint32) {
	p.FrameWidth, p.FrameHeight = width, height
	if p.Framebuffer != nil {
		p.Framebuffer.Destroy()
		p.Framebuffer = nil
	}
}

// particleCallbacks inherits the light pass's framebuffer by reference
// (via ParentSlot), never owning or resizing it (Particle pass).
func particleCallbacks() Callbacks {
	return Callbacks{
		Submit: func(p *Pass, q *renderqueue.Queue) {
			if !q.Empty() {
				usePipeline(p.GfxContext, q)
				p.GfxContext.DrawMultiIndirect(q.CommandBuffer, 0, uint32(len(q.Commands)), 0)
			}
			// borrower: the drawn-into attachments are the owner's, so
			// the owner's outputs stay the chain's hand-off either way
			p.ForwardOutputs()
		},
	}
}

func billboardCallbacks(ctx gpu.Context, deps Deps) Callbacks {
	return Callbacks{
		Prepare: func(p *Pass, frame *FrameData) {
			if p.Framebuffer == nil {
				fb, err := ctx.CreateFramebuffer(gpu.FramebufferDesc{
					Width: p.FrameWidth, Height: p.FrameHeight,
					ColorFormats: []gpu.Format{gpu.FormatRGBA16F},
				})
				if err != nil {
					return
				}
				p.Framebuffer = fb
			}
			ctx.SetTarget(p.Framebuffer)
			// bring the previous pass's color in first so the billboards compose on top
			if prev := p.Previous(); prev != nil && prev.OutputCount > 0 && deps.BlitPipeline != nil {
				ctx.UseBindings(gpu.Bindings{Textures: []gpu.Texture{prev.Outputs[0]}})
				ctx.UsePipeline(deps.BlitPipeline)
				ctx.Draw(0)
			}
		},
		Submit: func(p *Pass, q *renderqueue.Queue) {
			if !q.Empty() {
				usePipeline(ctx, q)
				ctx.DrawMultiIndirect(q.CommandBuffer, 0, uint32(len(q.Commands)), 0)
			}
			p.Outputs[0] = p.Framebuffer.ColorAttachment(0)
			p.OutputCount = 1
		},
		Resize: resizeByRecreate,
		Destroy: func(p *Pass) {
			if p.Framebuffer != nil {
				p.Framebuffer.Destroy()
			}
		},
	}
}

func hdrCallbacks(ctx gpu.Context, deps Deps) Callbacks {
	return Callbacks{
		Prepare: func(p *Pass, frame *FrameData) {
			if p.Framebuffer == nil {
				fb, err := ctx.CreateFramebuffer(gpu.FramebufferDesc{
					Width: p.FrameWidth, Height: p.FrameHeight,
					ColorFormats: []gpu.Format{gpu.FormatRGBA8},
				})
				if err != nil {
					return
				}
				p.Framebuffer = fb
			}
			ctx.SetTarget(p.Framebuffer)
		},
		// Submit reads the previous pass's color attachment (billboard's,
		// by default) and blits it through deps.HDRPipeline, the
		// exposure tonemap + gamma (2.0) fullscreen-quad shader; q (the
		// opaque queue, picked only for the descriptor's QueueType field)
		// is unused here.
		Submit: func(p *Pass, q *renderqueue.Queue) {
			if prev := p.Previous(); prev != nil && prev.OutputCount > 0 {
				ctx.UseBindings(gpu.Bindings{Textures: []gpu.Texture{prev.Outputs[0]}})
			}
			if deps.HDRPipeline != nil {
				ctx.UsePipeline(deps.HDRPipeline)
			}
			ctx.Draw(0)
			p.Outputs[0] = p.Framebuffer.ColorAttachment(0)
			p.OutputCount = 1
		},
		Resize: resizeByRecreate,
		Destroy: func(p *Pass) {
			if p.Framebuffer != nil {
				p.Framebuffer.Destroy()
			}
		},
	}
}

// debugCallbacks borrows Light's framebuffer : submits the debug
// queue after the main lighting, before post.
func debugCallbacks() Callbacks {
	return Callbacks{
		Submit: func(p *Pass, q *renderqueue.Queue) {
			if !q.Empty() {
				usePipeline(p.GfxContext, q)
				p.GfxContext.DrawMultiIndirect(q.CommandBuffer, 0, uint32(len(q.Commands)), 0)
			}
			p.ForwardOutputs()
		},
	}
}
