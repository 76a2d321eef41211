package loaders

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ironspire/engine/engine/resources"
)

type tmpSystemFontConfig struct {
	Name     string `toml:"name"`
	Size     uint32 `toml:"default_size"`
	FontFile string `toml:"font_file"`
}

// asciiFirst..asciiLast is the codepoint range baked into the atlas;
// glyphs outside it fall back through FontData.Glyph.
const (
	asciiFirst = 32
	asciiLast  = 126
	atlasCols  = 16
)

// LoadSystemFont parses a .fontcfg TOML document naming a TTF/OTF face
// file, rasterizes the printable-ASCII range into a single atlas page
// at the configured size, and returns the FontData the 2D batch
// renderer consumes. The raw face bytes are kept alongside so callers
// can re-bake at other sizes.
func LoadSystemFont(path string, params interface{}) (interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := tmpSystemFontConfig{}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.FontFile == "" {
		return nil, fmt.Errorf("system font %s: missing font_file", path)
	}
	if cfg.Size == 0 {
		cfg.Size = 32
	}

	faceData, err := os.ReadFile(filepath.Join(filepath.Dir(path), cfg.FontFile))
	if err != nil {
		return nil, err
	}

	parsed, err := opentype.Parse(faceData)
	if err != nil {
		return nil, fmt.Errorf("system font %s: %w", path, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(cfg.Size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("system font %s: %w", path, err)
	}
	defer face.Close()

	metrics := face.Metrics()
	maxAdvance := 0
	for ch := rune(asciiFirst); ch <= asciiLast; ch++ {
		if advance, ok := face.GlyphAdvance(ch); ok && advance.Ceil() > maxAdvance {
			maxAdvance = advance.Ceil()
		}
	}
	cellW := maxAdvance + 1
	cellH := metrics.Height.Ceil() + 1
	rows := (asciiLast - asciiFirst + atlasCols) / atlasCols
	atlasW, atlasH := cellW*atlasCols, cellH*rows

	atlas := image.NewAlpha(image.Rect(0, 0, atlasW, atlasH))
	drawer := font.Drawer{Dst: atlas, Src: image.White, Face: face}

	fd := &resources.FontData{
		Name:        cfg.Name,
		Size:        cfg.Size,
		LineHeight:  int32(metrics.Height.Ceil()),
		Baseline:    int32(metrics.Ascent.Ceil()),
		AtlasWidth:  uint32(atlasW),
		AtlasHeight: uint32(atlasH),
		FaceData:    faceData,
	}

	for ch := rune(asciiFirst); ch <= asciiLast; ch++ {
		slot := int(ch - asciiFirst)
		cellX := (slot % atlasCols) * cellW
		cellY := (slot / atlasCols) * cellH

		bounds, advance, ok := face.GlyphBounds(ch)
		if !ok {
			continue
		}
		drawer.Dot = fixed.P(cellX, cellY+metrics.Ascent.Ceil())
		drawer.DrawString(string(ch))

		fd.Glyphs = append(fd.Glyphs, resources.FontGlyph{
			Codepoint: int32(ch),
			X:         uint16(cellX),
			Y:         uint16(cellY),
			Width:     uint16(cellW),
			Height:    uint16(cellH),
			XOffset:   int16(bounds.Min.X.Floor()),
			YOffset:   int16(-metrics.Ascent.Ceil()),
			XAdvance:  int16(advance.Ceil()),
		})
	}

	// Expand the alpha mask to RGBA8 so the atlas uploads like any
	// other texture; the text shader modulates by alpha.
	rgba := image.NewRGBA(atlas.Rect)
	draw.Draw(rgba, rgba.Rect, image.White, image.Point{}, draw.Src)
	for i, a := range atlas.Pix {
		rgba.Pix[i*4+3] = a
	}
	fd.PageTextures = []resources.TextureData{{
		Width:           uint32(atlasW),
		Height:          uint32(atlasH),
		ChannelCount:    4,
		HasTransparency: true,
		Pixels:          rgba.Pix,
	}}

	return fd, nil
}
