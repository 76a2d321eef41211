// Package batch2d implements the 2D overlay renderer: a default
// white-texture batch plus one batch per unique texture encountered
// this frame, each flushed on MaxVertices overflow or at frame end.
// Generalizes the engine's UI batching shape to
// quads/circles/polygons/glyphs.
package batch2d

import (
	stdmath "math"

	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
)

// MaxVertices is the per-batch flush threshold.
const MaxVertices = 40000

// vertexSize is Vertex packed to its shader layout: vec2 pos, vec4
// color, vec2 uv, then the (shape, sides) pair, 4 bytes each.
const vertexSize = 8 + 16 + 8 + 4 + 4

// ShapeType selects the fragment-shader branch a vertex belongs to.
type ShapeType uint32

const (
	ShapeQuad ShapeType = iota
	ShapeCircle
	ShapePolygon
	ShapeText
)

// Vertex is one 2D batch vertex: NDC position, RGBA color, UV, and
// the (shape_type, sides) pair the fragment shader switches on.
type Vertex struct {
	Pos math.Vec2
	Color math.Vec4
	UV math.Vec2
	Shape ShapeType
	Sides uint32
}

type batch struct {
	texture gpu.Texture
	vertices []Vertex
}

func (b *batch) full() bool { return len(b.vertices)+6 > MaxVertices }

// Renderer owns the default white-texture batch plus a map of
// per-texture batches keyed by Go pointer identity.
type Renderer struct {
	ctx gpu.Context
	white gpu.Texture
	pipe gpu.Pipeline
	vertexBuffer gpu.Buffer
	batches map[gpu.Texture]*batch
	order []gpu.Texture // insertion order, for deterministic flush
}

// New allocates the renderer's one shared vertex buffer, sized for the
// worst case of a single fully-packed batch, and reused by every flush.
func New(ctx gpu.Context, white gpu.Texture, pipe gpu.Pipeline) (*Renderer, error) {
	vb, err := ctx.CreateBuffer(gpu.BufferDesc{
		Type: gpu.BufferTypeVertex,
		Usage: gpu.BufferUsageDynamicDraw,
		Size: uint64(MaxVertices * vertexSize),
	})
	if err != nil {
		return nil, err
	}
	if pipe != nil && vb != nil {
		desc := pipe.Desc()
		desc.VertexBuffers = []gpu.Buffer{vb}
		pipe.Update(desc)
	}
	return &Renderer{ctx: ctx, white: white, pipe: pipe, vertexBuffer: vb, batches: make(map[gpu.Texture]*batch)}, nil
}

func (r *Renderer) batchFor(tex gpu.Texture) *batch {
	if tex == nil {
		tex = r.white
	}
	b, ok := r.batches[tex]
	if !ok {
		b = &batch{texture: tex}
		r.batches[tex] = b
		r.order = append(r.order, tex)
	}
	return b
}

// push appends six CCW vertices (two triangles) for one primitive,
// flushing first if the batch would overflow MaxVertices.
func (r *Renderer) push(tex gpu.Texture, verts [6]Vertex) {
	b := r.batchFor(tex)
	if b.full() {
		r.flushBatch(b)
	}
	b.vertices = append(b.vertices, verts[:]...)
}

// QueueQuad submits an axis-aligned quad in NDC space.
func (r *Renderer) QueueQuad(tex gpu.Texture, min, max math.Vec2, uvMin, uvMax math.Vec2, color math.Vec4) {
	v := func(p, uv math.Vec2) Vertex { return Vertex{Pos: p, UV: uv, Color: color, Shape: ShapeQuad} }
	tl := v(math.Vec2{X: min.X, Y: max.Y}, math.Vec2{X: uvMin.X, Y: uvMax.Y})
	tr := v(math.Vec2{X: max.X, Y: max.Y}, math.Vec2{X: uvMax.X, Y: uvMax.Y})
	bl := v(math.Vec2{X: min.X, Y: min.Y}, math.Vec2{X: uvMin.X, Y: uvMin.Y})
	br := v(math.Vec2{X: max.X, Y: min.Y}, math.Vec2{X: uvMax.X, Y: uvMin.Y})
	r.push(tex, [6]Vertex{tl, bl, tr, tr, bl, br})
}

// QueueCircle submits a screen-space circle; the fragment shader
// computes a signed distance from the quad's centroid.
func (r *Renderer) QueueCircle(center math.Vec2, radius float32, color math.Vec4) {
	min := math.Vec2{X: center.X - radius, Y: center.Y - radius}
	max := math.Vec2{X: center.X + radius, Y: center.Y + radius}
	v := func(p, uv math.Vec2) Vertex { return Vertex{Pos: p, UV: uv, Color: color, Shape: ShapeCircle} }
	tl := v(math.Vec2{X: min.X, Y: max.Y}, math.Vec2{X: 0, Y: 1})
	tr := v(math.Vec2{X: max.X, Y: max.Y}, math.Vec2{X: 1, Y: 1})
	bl := v(math.Vec2{X: min.X, Y: min.Y}, math.Vec2{X: 0, Y: 0})
	br := v(math.Vec2{X: max.X, Y: min.Y}, math.Vec2{X: 1, Y: 0})
	r.push(nil, [6]Vertex{tl, bl, tr, tr, bl, br})
}

// QueuePolygon submits a regular polygon of n sides; the fragment
// shader computes a regular-polygon SDF from Sides.
func (r *Renderer) QueuePolygon(center math.Vec2, radius float32, sides uint32, color math.Vec4) {
	min := math.Vec2{X: center.X - radius, Y: center.Y - radius}
	max := math.Vec2{X: center.X + radius, Y: center.Y + radius}
	v := func(p, uv math.Vec2) Vertex {
		return Vertex{Pos: p, UV: uv, Color: color, Shape: ShapePolygon, Sides: sides}
	}
	tl := v(math.Vec2{X: min.X, Y: max.Y}, math.Vec2{X: 0, Y: 1})
	tr := v(math.Vec2{X: max.X, Y: max.Y}, math.Vec2{X: 1, Y: 1})
	bl := v(math.Vec2{X: min.X, Y: min.Y}, math.Vec2{X: 0, Y: 0})
	br := v(math.Vec2{X: max.X, Y: min.Y}, math.Vec2{X: 1, Y: 0})
	r.push(nil, [6]Vertex{tl, bl, tr, tr, bl, br})
}

func (r *Renderer) flushBatch(b *batch) {
	if len(b.vertices) == 0 {
		return
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.UploadData(0, packVertices(b.vertices))
	}
	r.ctx.UseBindings(gpu.Bindings{Textures: []gpu.Texture{b.texture}})
	r.ctx.UsePipeline(r.pipe)
	r.ctx.Draw(0)
	b.vertices = b.vertices[:0]
}

// packVertices lays out each Vertex as the shader expects: pos, color,
// uv, then shape/sides as raw uint32s.
func packVertices(vs []Vertex) []byte {
	out := make([]byte, len(vs)*vertexSize)
	for i, v := range vs {
		base := i * vertexSize
		writeF32(out[base:], v.Pos.X)
		writeF32(out[base+4:], v.Pos.Y)
		writeF32(out[base+8:], v.Color.X)
		writeF32(out[base+12:], v.Color.Y)
		writeF32(out[base+16:], v.Color.Z)
		writeF32(out[base+20:], v.Color.W)
		writeF32(out[base+24:], v.UV.X)
		writeF32(out[base+28:], v.UV.Y)
		writeU32(out[base+32:], uint32(v.Shape))
		writeU32(out[base+36:], v.Sides)
	}
	return out
}

func writeF32(dst []byte, v float32) {
	bits := stdmath.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func writeU32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

// EndFrame flushes every non-empty batch in insertion order.
func (r *Renderer) EndFrame() {
	for _, tex := range r.order {
		r.flushBatch(r.batches[tex])
	}
}
