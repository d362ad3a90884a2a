package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned for a zero-length payload.
var ErrEmpty = errors.New("empty image data")

// Size is the intrinsic pixel size of a decoded image.
type Size struct {
	Width, Height int
	Format        string
}

// DecodeSize reads only the image header and reports its dimensions. Any
// format registered with the image package is accepted.
func DecodeSize(data []byte) (Size, error) {
	if len(data) == 0 {
		return Size{}, ErrEmpty
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Size{}, fmt.Errorf("decoding image header: %w", err)
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return Size{}, fmt.Errorf("invalid %s dimensions %dx%d", format, cfg.Width, cfg.Height)
	}
	return Size{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
