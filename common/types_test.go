package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestImportedTextureDecode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	tex := &ImportedTexture{Name: "test", Data: buf.Bytes()}
	staged, err := tex.Decode()
	if err != nil {
		t.Fatalf("ImportedTexture.Decode: %v", err)
	}
	if staged.Width != 2 || staged.Height != 3 {
		t.Fatalf("ImportedTexture.Decode: got %dx%d, want 2x3", staged.Width, staged.Height)
	}
	if len(staged.Pixels) != 2*3*4 {
		t.Fatalf("ImportedTexture.Decode: got %d bytes", len(staged.Pixels))
	}
	off := (2*2 + 1) * 4
	if got := staged.Pixels[off : off+4]; got[0] != 10 || got[1] != 20 || got[2] != 30 || got[3] != 255 {
		t.Fatalf("ImportedTexture.Decode: pixel (1,2) = %v", got)
	}
}

func TestImportedTextureDecodeEmpty(t *testing.T) {
	if _, err := (&ImportedTexture{Name: "empty"}).Decode(); err == nil {
		t.Fatal("ImportedTexture.Decode: expected error for texture without data or path")
	}
}
