package assets

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{B: 255, A: 255})

	img, err := DecodeImage(encodePNG(t, src))
	require.NoError(t, err)

	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, uint32(1), img.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, img.Pix)
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, err := DecodeImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestDecodeImageFileMissing(t *testing.T) {
	_, err := DecodeImageFile("/nonexistent/texture.png")
	assert.Error(t, err)
}

func TestFloat32RGBA(t *testing.T) {
	img := Image{Pix: []byte{0, 128, 255, 255}, Width: 1, Height: 1}

	out := img.Float32RGBA()
	require.Len(t, out, 16)

	read := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(out[off:]))
	}
	assert.Equal(t, float32(0), read(0))
	assert.InDelta(t, 128.0/255.0, read(4), 1e-6)
	assert.Equal(t, float32(1), read(8))
	assert.Equal(t, float32(1), read(12))
}
