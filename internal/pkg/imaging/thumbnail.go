package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// Thumbnail holds an encoded preview image
type Thumbnail struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Config for thumbnail generation
type Config struct {
	Width   int // default 300
	Height  int // default 400
	Quality int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default thumbnail settings (portrait card preview)
func DefaultConfig() Config {
	return Config{Width: 300, Height: 400, Quality: 85}
}

// Generator produces material card thumbnails from uploaded images
type Generator struct {
	config Config
}

// NewGenerator creates a thumbnail generator
func NewGenerator(config Config) *Generator {
	if config.Width <= 0 {
		config.Width = 300
	}
	if config.Height <= 0 {
		config.Height = 400
	}
	if config.Quality <= 0 {
		config.Quality = 85
	}
	return &Generator{config: config}
}

// Generate decodes an image and returns a center-cropped thumbnail
func (g *Generator) Generate(reader io.Reader) (*Thumbnail, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fill(img, g.config.Width, g.config.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	contentType := "image/jpeg"
	switch format {
	case "png":
		contentType = "image/png"
		err = png.Encode(&buf, thumb)
	default:
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: g.config.Quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &Thumbnail{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       thumb.Bounds().Dx(),
		Height:      thumb.Bounds().Dy(),
	}, nil
}
