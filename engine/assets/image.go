// Package assets loads external inputs for the engine. Loading is synchronous
// and happens at startup; decoded images are plain CPU staging data that the
// resource cache uploads.
package assets

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Image is decoded RGBA staging data, 4 bytes per pixel, row-major order.
type Image struct {
	Pix    []byte
	Width  uint32
	Height uint32
}

// DecodeImage decodes an image from raw file bytes to RGBA staging data.
// Supports PNG, JPEG, BMP, and TIFF.
//
// Parameters:
//   - data: raw encoded file contents.
//
// Returns:
//   - Image: decoded RGBA staging data.
//   - error: error if decoding fails.
func DecodeImage(data []byte) (Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return toRGBA(img), nil
}

// DecodeImageFile decodes an image file on disk to RGBA staging data.
//
// Parameters:
//   - path: path to the image file.
//
// Returns:
//   - Image: decoded RGBA staging data.
//   - error: error if the file cannot be opened or decoded.
func DecodeImageFile(path string) (Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image file %s: %w", path, err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) Image {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return Image{
		Pix:    rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}

// Float32RGBA converts the image's 8-bit channels to little-endian float32
// RGBA in [0, 1], 16 bytes per pixel. The environment precompute samples its
// source in a float format, so the equirectangular image is uploaded this way.
//
// Returns:
//   - []byte: float32 RGBA pixel data.
func (i Image) Float32RGBA() []byte {
	out := make([]byte, len(i.Pix)*4)
	for p := 0; p < len(i.Pix); p++ {
		v := float32(i.Pix[p]) / 255.0
		binary.LittleEndian.PutUint32(out[p*4:], math.Float32bits(v))
	}
	return out
}
