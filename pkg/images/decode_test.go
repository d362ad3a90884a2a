package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testPNG creates a small solid red PNG.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	red := color.RGBA{255, 0, 0, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, red)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeSize(t *testing.T) {
	size, err := DecodeSize(testPNG(t, 3, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size.Width != 3 || size.Height != 2 || size.Format != "png" {
		t.Errorf("expected 3x2 png, got %+v", size)
	}
}

func TestDecodeSize_Invalid(t *testing.T) {
	if _, err := DecodeSize(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if _, err := DecodeSize([]byte("hello")); err == nil {
		t.Error("expected an error for non-image data")
	}
}
