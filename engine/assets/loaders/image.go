package loaders

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"

	"github.com/ironspire/engine/engine/resources"
)

// decodeImage reads path through the registered stdlib/x-image decoders
// and converts the result to tightly-packed RGBA8, optionally flipping
// it vertically to match the renderer's UV origin.
func decodeImage(path string, flip bool) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)

	if flip {
		w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
		row := make([]byte, w*4)
		for y := 0; y < h/2; y++ {
			top := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			bottom := rgba.Pix[(h-1-y)*rgba.Stride : (h-1-y)*rgba.Stride+w*4]
			copy(row, top)
			copy(top, bottom)
			copy(bottom, row)
		}
	}

	return rgba, nil
}

// LoadImage decodes path (png/jpeg/bmp) into a TextureData. params,
// when a bool, flips the image vertically on load (the convention most
// texture formats need to match OpenGL/Vulkan's UV origin).
func LoadImage(path string, params interface{}) (interface{}, error) {
	flip, _ := params.(bool)

	rgba, err := decodeImage(path, flip)
	if err != nil {
		return nil, fmt.Errorf("assets: failed to decode image %s: %w", path, err)
	}

	hasAlpha := false
	for i := 3; i < len(rgba.Pix); i += 4 {
		if rgba.Pix[i] != 0xff {
			hasAlpha = true
			break
		}
	}

	return &resources.TextureData{
		Width:           uint32(rgba.Rect.Dx()),
		Height:          uint32(rgba.Rect.Dy()),
		ChannelCount:    4,
		HasTransparency: hasAlpha,
		Pixels:          rgba.Pix,
	}, nil
}
