package batch2d

import (
	"fmt"

	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/resources"
)

// Font pairs a pre-baked glyph atlas texture (keeping glyphs as
// pre-rasterized bitmaps uploaded once per font) with the
// BMFont-derived glyph metrics used to lay out a string.
type Font struct {
	Data  *resources.FontData
	Atlas gpu.Texture
}

func (f *Font) glyph(codepoint rune) (resources.FontGlyph, bool) {
	for _, g := range f.Data.Glyphs {
		if g.Codepoint == int32(codepoint) {
			return g, true
		}
	}
	return resources.FontGlyph{}, false
}

// QueueText walks text, advancing by each glyph's advance_x*(size/256),
// wrapping on '\n' and skipping-but-advancing on space/tab, pushing one
// six-vertex glyph quad per visible character.
func (r *Renderer) QueueText(font *Font, text string, pos math.Vec2, size float32, color math.Vec4) {
	scale := size / 256
	x, y := pos.X, pos.Y
	atlasW, atlasH := float32(font.Data.AtlasWidth), float32(font.Data.AtlasHeight)

	for _, ch := range text {
		switch ch {
		case '\n':
			x = pos.X
			y -= float32(font.Data.LineHeight) * scale
			continue
		case ' ', '\t':
			if g, ok := font.glyph(ch); ok {
				x += float32(g.XAdvance) * scale
			}
			continue
		}
		g, ok := font.glyph(ch)
		if !ok {
			continue
		}
		min := math.Vec2{X: x + float32(g.XOffset)*scale, Y: y - float32(g.YOffset)*scale - float32(g.Height)*scale}
		max := math.Vec2{X: min.X + float32(g.Width)*scale, Y: min.Y + float32(g.Height)*scale}
		uvMin := math.Vec2{X: float32(g.X) / atlasW, Y: (float32(g.Y) + float32(g.Height)) / atlasH}
		uvMax := math.Vec2{X: (float32(g.X) + float32(g.Width)) / atlasW, Y: float32(g.Y) / atlasH}

		v := func(p, uv math.Vec2) Vertex { return Vertex{Pos: p, UV: uv, Color: color, Shape: ShapeText} }
		tl := v(math.Vec2{X: min.X, Y: max.Y}, math.Vec2{X: uvMin.X, Y: uvMax.Y})
		tr := v(math.Vec2{X: max.X, Y: max.Y}, math.Vec2{X: uvMax.X, Y: uvMax.Y})
		bl := v(math.Vec2{X: min.X, Y: min.Y}, math.Vec2{X: uvMin.X, Y: uvMin.Y})
		br := v(math.Vec2{X: max.X, Y: min.Y}, math.Vec2{X: uvMax.X, Y: uvMin.Y})
		r.push(font.Atlas, [6]Vertex{tl, bl, tr, tr, bl, br})

		x += float32(g.XAdvance) * scale
	}
}

// RenderFPS composes "FPS: <int>" and queues it via QueueText.
func (r *Renderer) RenderFPS(font *Font, fps int, pos math.Vec2, size float32, color math.Vec4) {
	r.QueueText(font, fmt.Sprintf("FPS: %d", fps), pos, size, color)
}
