// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SolidTexture returns a 1x1 texture of the given RGBA color.
func SolidTexture(r, g, b, a uint8) TextureStagingData {
	return TextureStagingData{Pixels: []byte{r, g, b, a}, Width: 1, Height: 1}
}

// ImportedTexture represents an image that has not been decoded yet.
// Either Data holds the encoded bytes or Path points at a file on disk.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g. "BaseColorMap").
	Name string

	// Path is the file path for textures read from disk.
	Path string

	// Data contains raw encoded image bytes.
	Data []byte
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either Data bytes or loads from Path on disk.
// Supports PNG, JPEG, BMP, TIFF and WebP.
//
// Returns:
//   - TextureStagingData: RGBA pixels (4 bytes per pixel, row-major) and dimensions
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture %s: %w", t.Name, err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return TextureStagingData{}, fmt.Errorf("texture %s has neither data nor path", t.Name)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
