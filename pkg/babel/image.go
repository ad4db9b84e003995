package babel

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
)

// ImageInfo describes sniffed cover art bytes.
type ImageInfo struct {
	Format string // jpeg, png, or gif
	Width  int
	Height int
}

// SniffImage decodes an image header by signature. Only jpeg, png, and gif
// are acceptable cover formats; anything else is an error.
func SniffImage(data []byte) (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "unsupported image format")
	}
	switch format {
	case "jpeg", "png", "gif":
		return &ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
	default:
		return nil, errors.Errorf("unsupported image format %q", format)
	}
}
