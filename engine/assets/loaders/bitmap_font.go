package loaders

import (
	"github.com/fzipp/bmfont"

	"github.com/ironspire/engine/engine/resources"
)

// LoadBitmapFont parses a .fnt BMFont descriptor into a FontData
// using github.com/fzipp/bmfont. Page textures are resolved and
// attached by the caller (assets.AssetManager owns the base path the
// .fnt's relative page names are joined against).
func LoadBitmapFont(path string, params interface{}) (interface{}, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, err
	}

	data := &resources.FontData{
		Name:        font.Descriptor.Info.Face,
		Size:        uint32(font.Descriptor.Info.Size),
		LineHeight:  int32(font.Descriptor.Common.LineHeight),
		Baseline:    int32(font.Descriptor.Common.Base),
		AtlasWidth:  uint32(font.Descriptor.Common.ScaleW),
		AtlasHeight: uint32(font.Descriptor.Common.ScaleH),
		Glyphs:      make([]resources.FontGlyph, 0, len(font.Descriptor.Chars)),
		Kernings:    make([]resources.FontKerning, 0, len(font.Descriptor.Kerning)),
		Pages:       make([]resources.BitmapFontPage, 0, len(font.Descriptor.Pages)),
	}

	for _, p := range font.Descriptor.Pages {
		data.Pages = append(data.Pages, resources.BitmapFontPage{ID: uint8(p.ID), File: p.File})
	}

	for _, g := range font.Descriptor.Chars {
		data.Glyphs = append(data.Glyphs, resources.FontGlyph{
			Codepoint: g.ID,
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		})
	}

	for pair, k := range font.Descriptor.Kerning {
		data.Kernings = append(data.Kernings, resources.FontKerning{
			Codepoint0: pair.First,
			Codepoint1: pair.Second,
			Amount:     int16(k.Amount),
		})
	}

	return data, nil
}
