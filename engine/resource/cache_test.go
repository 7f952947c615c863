package resource

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The validation paths below run before any device or queue call, so they are
// exercised on a cache with no GPU context attached.

func TestCreateBufferRejectsOversizedInitialData(t *testing.T) {
	c := &cache{}

	_, err := c.CreateBuffer("test", 16, wgpu.BufferUsageUniform, make([]byte, 32))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestWriteBufferBounds(t *testing.T) {
	c := &cache{}
	h := BufferHandle{h: c.buffers.alloc(bufferEntry{size: 64})}

	tests := []struct {
		name   string
		offset uint64
		length int
	}{
		{name: "data past end", offset: 0, length: 65},
		{name: "offset past end", offset: 64, length: 1},
		{name: "offset plus data past end", offset: 60, length: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.WriteBuffer(h, tt.offset, make([]byte, tt.length))
			assert.ErrorIs(t, err, ErrOutOfBounds)
		})
	}
}

func TestBufferMethodsRejectStaleHandle(t *testing.T) {
	c := &cache{}
	h := BufferHandle{h: c.buffers.alloc(bufferEntry{size: 64})}
	_, err := c.buffers.release(h.h)
	require.NoError(t, err)

	err = c.WriteBuffer(h, 0, []byte{0})
	assert.ErrorIs(t, err, ErrStaleHandle)

	_, err = c.Buffer(h)
	assert.ErrorIs(t, err, ErrStaleHandle)

	_, err = c.BufferSize(h)
	assert.ErrorIs(t, err, ErrStaleHandle)

	err = c.ReleaseBuffer(h)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestBufferSize(t *testing.T) {
	c := &cache{}
	h := BufferHandle{h: c.buffers.alloc(bufferEntry{size: 272})}

	size, err := c.BufferSize(h)
	require.NoError(t, err)
	assert.Equal(t, uint64(272), size)
}

func TestUploadTextureValidation(t *testing.T) {
	c := &cache{}
	desc := TextureDesc{
		Format: wgpu.TextureFormatRGBA8Unorm,
		Width:  4,
		Height: 4,
		Layers: 6,
	}
	h := TextureHandle{h: c.textures.alloc(textureEntry{desc: desc})}

	err := c.UploadTexture(h, 6, make([]byte, 4*4*4))
	assert.ErrorIs(t, err, ErrOutOfBounds, "layer index past layer count")

	err = c.UploadTexture(h, 0, make([]byte, 4*4*4-1))
	assert.ErrorIs(t, err, ErrOutOfBounds, "short pixel data")

	err = c.UploadTexture(h, 0, make([]byte, 4*4*4+1))
	assert.ErrorIs(t, err, ErrOutOfBounds, "long pixel data")
}

func TestTextureMethodsRejectStaleHandle(t *testing.T) {
	c := &cache{}
	h := TextureHandle{h: c.textures.alloc(textureEntry{})}
	_, err := c.textures.release(h.h)
	require.NoError(t, err)

	_, err = c.TextureView(h)
	assert.ErrorIs(t, err, ErrStaleHandle)

	_, err = c.TextureArrayView(h)
	assert.ErrorIs(t, err, ErrStaleHandle)

	_, err = c.Texture(h)
	assert.ErrorIs(t, err, ErrStaleHandle)

	err = c.UploadTexture(h, 0, nil)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestSamplerRejectsStaleHandle(t *testing.T) {
	c := &cache{}
	h := SamplerHandle{h: c.samplers.alloc(samplerEntry{})}
	_, err := c.samplers.release(h.h)
	require.NoError(t, err)

	_, err = c.Sampler(h)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestValidateTextureDesc(t *testing.T) {
	tests := []struct {
		name    string
		desc    TextureDesc
		wantErr bool
	}{
		{
			name:    "valid 2d",
			desc:    TextureDesc{Format: wgpu.TextureFormatRGBA8UnormSrgb, Width: 256, Height: 256, Layers: 1},
			wantErr: false,
		},
		{
			name: "valid cubemap",
			desc: TextureDesc{
				Format: wgpu.TextureFormatRGBA32Float, Width: 1080, Height: 1080, Layers: 6,
				ViewDimension: wgpu.TextureViewDimensionCube,
			},
			wantErr: false,
		},
		{
			name:    "zero width",
			desc:    TextureDesc{Format: wgpu.TextureFormatRGBA8Unorm, Width: 0, Height: 4, Layers: 1},
			wantErr: true,
		},
		{
			name:    "zero layers",
			desc:    TextureDesc{Format: wgpu.TextureFormatRGBA8Unorm, Width: 4, Height: 4, Layers: 0},
			wantErr: true,
		},
		{
			name: "cube view without 6 layers",
			desc: TextureDesc{
				Format: wgpu.TextureFormatRGBA8Unorm, Width: 4, Height: 4, Layers: 2,
				ViewDimension: wgpu.TextureViewDimensionCube,
			},
			wantErr: true,
		},
		{
			name:    "unsupported upload format",
			desc:    TextureDesc{Format: wgpu.TextureFormatRG11B10Ufloat, Width: 4, Height: 4, Layers: 1},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTextureDesc(tt.desc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDescriptor)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultViewDimension(t *testing.T) {
	assert.Equal(t, wgpu.TextureViewDimension2D,
		defaultViewDimension(TextureDesc{Layers: 1}))
	assert.Equal(t, wgpu.TextureViewDimension2DArray,
		defaultViewDimension(TextureDesc{Layers: 6}))
	assert.Equal(t, wgpu.TextureViewDimensionCube,
		defaultViewDimension(TextureDesc{Layers: 6, ViewDimension: wgpu.TextureViewDimensionCube}))
}

func TestTexelSize(t *testing.T) {
	n, err := texelSize(wgpu.TextureFormatRGBA8UnormSrgb)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), n)

	n, err = texelSize(wgpu.TextureFormatRGBA32Float)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), n)

	_, err = texelSize(wgpu.TextureFormatDepth24Plus)
	assert.Error(t, err)
}
