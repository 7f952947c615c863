package resource

import (
	"fmt"
	"sync"

	"github.com/caldera3d/caldera/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureDesc describes a texture to be created through the cache. Layers
// greater than 1 create an array texture; Layers == 6 with a cube view
// dimension creates a cubemap.
type TextureDesc struct {
	Label  string
	Format wgpu.TextureFormat
	Width  uint32
	Height uint32
	Layers uint32
	Usage  wgpu.TextureUsage

	// ViewDimension selects the dimension of the default view. The zero value
	// picks D2 for single-layer textures and D2Array otherwise.
	ViewDimension wgpu.TextureViewDimension
}

// SamplerDesc describes a sampler to be created through the cache.
type SamplerDesc struct {
	Label       string
	Filter      wgpu.FilterMode
	MipFilter   wgpu.MipmapFilterMode
	AddressMode wgpu.AddressMode
}

// Cache owns all long-lived GPU resources and hands out generation-checked
// handles in their place. Handles stay valid until their resource is released;
// after that every use reports ErrStaleHandle rather than touching freed or
// reused GPU memory.
type Cache interface {
	// CreateBuffer allocates a GPU buffer of the given size and usage. If
	// initialData is non-nil it is written at offset zero and must fit within
	// size.
	//
	// Parameters:
	//   - label: debug label for the buffer.
	//   - size: buffer size in bytes.
	//   - usage: wgpu usage flags.
	//   - initialData: optional contents, may be nil.
	//
	// Returns:
	//   - BufferHandle: handle to the new buffer.
	//   - error: ErrOutOfBounds if initialData exceeds size.
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage, initialData []byte) (BufferHandle, error)

	// WriteBuffer uploads data into a buffer at the given byte offset. The
	// write is bounds-checked against the declared buffer size before any GPU
	// work is queued.
	WriteBuffer(h BufferHandle, offset uint64, data []byte) error

	// Buffer resolves a handle to the underlying wgpu buffer for binding. The
	// pointer is borrowed; the cache retains ownership.
	Buffer(h BufferHandle) (*wgpu.Buffer, error)

	// BufferSize reports the declared size of a buffer.
	BufferSize(h BufferHandle) (uint64, error)

	// CreateTexture allocates a texture and its default view per desc.
	CreateTexture(desc TextureDesc) (TextureHandle, error)

	// UploadTexture writes one full layer of pixel data into a texture. The
	// data length must match width*height*texel size for the texture's format.
	UploadTexture(h TextureHandle, layer uint32, pixels []byte) error

	// TextureView resolves a handle to the texture's default view.
	TextureView(h TextureHandle) (*wgpu.TextureView, error)

	// TextureArrayView returns a D2Array view over all layers of the texture,
	// creating it on first use. Storage bindings to cubemap layers use this
	// view, since storage textures cannot bind a cube view.
	TextureArrayView(h TextureHandle) (*wgpu.TextureView, error)

	// Texture resolves a handle to the underlying wgpu texture.
	Texture(h TextureHandle) (*wgpu.Texture, error)

	// CreateSampler allocates a sampler per desc.
	CreateSampler(desc SamplerDesc) (SamplerHandle, error)

	// Sampler resolves a handle to the underlying wgpu sampler.
	Sampler(h SamplerHandle) (*wgpu.Sampler, error)

	// ReleaseBuffer frees a buffer and invalidates its handle.
	ReleaseBuffer(h BufferHandle) error

	// ReleaseTexture frees a texture, its views, and invalidates its handle.
	ReleaseTexture(h TextureHandle) error

	// ReleaseSampler frees a sampler and invalidates its handle.
	ReleaseSampler(h SamplerHandle) error

	// ReleaseAll frees every resource the cache owns. All outstanding handles
	// become stale.
	ReleaseAll()
}

type bufferEntry struct {
	buf  *wgpu.Buffer
	size uint64
}

type textureEntry struct {
	tex       *wgpu.Texture
	view      *wgpu.TextureView
	arrayView *wgpu.TextureView
	desc      TextureDesc
}

type samplerEntry struct {
	smp *wgpu.Sampler
}

type cache struct {
	mu       sync.Mutex
	ctx      gpu.Context
	buffers  slotTable[bufferEntry]
	textures slotTable[textureEntry]
	samplers slotTable[samplerEntry]
}

var _ Cache = &cache{}

// NewCache creates a resource cache backed by the given GPU context.
//
// Parameters:
//   - ctx: the GPU context whose device and queue own the resources.
//
// Returns:
//   - Cache: the new cache.
func NewCache(ctx gpu.Context) Cache {
	return &cache{ctx: ctx}
}

func (c *cache) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage, initialData []byte) (BufferHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if uint64(len(initialData)) > size {
		return BufferHandle{}, fmt.Errorf("%w: initial data %d bytes into %d byte buffer", ErrOutOfBounds, len(initialData), size)
	}
	buf, err := c.ctx.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return BufferHandle{}, fmt.Errorf("create buffer %q: %w", label, err)
	}
	if len(initialData) > 0 {
		c.ctx.Queue().WriteBuffer(buf, 0, initialData)
	}
	h := c.buffers.alloc(bufferEntry{buf: buf, size: size})
	return BufferHandle{h: h}, nil
}

func (c *cache) WriteBuffer(h BufferHandle, offset uint64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.buffers.get(h.h)
	if err != nil {
		return err
	}
	if offset+uint64(len(data)) > e.size {
		return fmt.Errorf("%w: write of %d bytes at offset %d into %d byte buffer", ErrOutOfBounds, len(data), offset, e.size)
	}
	c.ctx.Queue().WriteBuffer(e.buf, offset, data)
	return nil
}

func (c *cache) Buffer(h BufferHandle) (*wgpu.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.buffers.get(h.h)
	if err != nil {
		return nil, err
	}
	return e.buf, nil
}

func (c *cache) BufferSize(h BufferHandle) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.buffers.get(h.h)
	if err != nil {
		return 0, err
	}
	return e.size, nil
}

func (c *cache) CreateTexture(desc TextureDesc) (TextureHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := validateTextureDesc(desc); err != nil {
		return TextureHandle{}, err
	}
	tex, err := c.ctx.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Layers,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return TextureHandle{}, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.Format,
		Dimension:       defaultViewDimension(desc),
		MipLevelCount:   1,
		ArrayLayerCount: desc.Layers,
	})
	if err != nil {
		tex.Release()
		return TextureHandle{}, fmt.Errorf("create texture view %q: %w", desc.Label, err)
	}
	h := c.textures.alloc(textureEntry{tex: tex, view: view, desc: desc})
	return TextureHandle{h: h}, nil
}

func (c *cache) UploadTexture(h TextureHandle, layer uint32, pixels []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.textures.get(h.h)
	if err != nil {
		return err
	}
	if layer >= e.desc.Layers {
		return fmt.Errorf("%w: layer %d of %d layer texture", ErrOutOfBounds, layer, e.desc.Layers)
	}
	texel, err := texelSize(e.desc.Format)
	if err != nil {
		return err
	}
	want := uint64(e.desc.Width) * uint64(e.desc.Height) * uint64(texel)
	if uint64(len(pixels)) != want {
		return fmt.Errorf("%w: layer upload of %d bytes, texture layer is %d bytes", ErrOutOfBounds, len(pixels), want)
	}
	c.ctx.Queue().WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  e.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  e.desc.Width * texel,
			RowsPerImage: e.desc.Height,
		},
		&wgpu.Extent3D{Width: e.desc.Width, Height: e.desc.Height, DepthOrArrayLayers: 1},
	)
	return nil
}

func (c *cache) TextureView(h TextureHandle) (*wgpu.TextureView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.textures.get(h.h)
	if err != nil {
		return nil, err
	}
	return e.view, nil
}

func (c *cache) TextureArrayView(h TextureHandle) (*wgpu.TextureView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.textures.get(h.h)
	if err != nil {
		return nil, err
	}
	if e.arrayView == nil {
		v, err := e.tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           e.desc.Label + " array",
			Format:          e.desc.Format,
			Dimension:       wgpu.TextureViewDimension2DArray,
			MipLevelCount:   1,
			ArrayLayerCount: e.desc.Layers,
		})
		if err != nil {
			return nil, fmt.Errorf("create array view %q: %w", e.desc.Label, err)
		}
		e.arrayView = v
	}
	return e.arrayView, nil
}

func (c *cache) Texture(h TextureHandle) (*wgpu.Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.textures.get(h.h)
	if err != nil {
		return nil, err
	}
	return e.tex, nil
}

func (c *cache) CreateSampler(desc SamplerDesc) (SamplerHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	smp, err := c.ctx.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  desc.AddressMode,
		AddressModeV:  desc.AddressMode,
		AddressModeW:  desc.AddressMode,
		MagFilter:     desc.Filter,
		MinFilter:     desc.Filter,
		MipmapFilter:  desc.MipFilter,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return SamplerHandle{}, fmt.Errorf("create sampler %q: %w", desc.Label, err)
	}
	h := c.samplers.alloc(samplerEntry{smp: smp})
	return SamplerHandle{h: h}, nil
}

func (c *cache) Sampler(h SamplerHandle) (*wgpu.Sampler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.samplers.get(h.h)
	if err != nil {
		return nil, err
	}
	return e.smp, nil
}

func (c *cache) ReleaseBuffer(h BufferHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.buffers.release(h.h)
	if err != nil {
		return err
	}
	e.buf.Release()
	return nil
}

func (c *cache) ReleaseTexture(h TextureHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.textures.release(h.h)
	if err != nil {
		return err
	}
	releaseTextureEntry(&e)
	return nil
}

func (c *cache) ReleaseSampler(h SamplerHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.samplers.release(h.h)
	if err != nil {
		return err
	}
	e.smp.Release()
	return nil
}

func (c *cache) ReleaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffers.each(func(e *bufferEntry) { e.buf.Release() })
	c.textures.each(func(e *textureEntry) { releaseTextureEntry(e) })
	c.samplers.each(func(e *samplerEntry) { e.smp.Release() })
	c.buffers.clear()
	c.textures.clear()
	c.samplers.clear()
}

func releaseTextureEntry(e *textureEntry) {
	if e.arrayView != nil {
		e.arrayView.Release()
	}
	e.view.Release()
	e.tex.Release()
}

func validateTextureDesc(desc TextureDesc) error {
	if desc.Width == 0 || desc.Height == 0 {
		return fmt.Errorf("%w: texture %q has zero dimension %dx%d", ErrInvalidDescriptor, desc.Label, desc.Width, desc.Height)
	}
	if desc.Layers == 0 {
		return fmt.Errorf("%w: texture %q has zero layers", ErrInvalidDescriptor, desc.Label)
	}
	if desc.ViewDimension == wgpu.TextureViewDimensionCube && desc.Layers != 6 {
		return fmt.Errorf("%w: cube texture %q needs 6 layers, got %d", ErrInvalidDescriptor, desc.Label, desc.Layers)
	}
	if _, err := texelSize(desc.Format); err != nil {
		return err
	}
	return nil
}

func defaultViewDimension(desc TextureDesc) wgpu.TextureViewDimension {
	if desc.ViewDimension != wgpu.TextureViewDimensionUndefined {
		return desc.ViewDimension
	}
	if desc.Layers > 1 {
		return wgpu.TextureViewDimension2DArray
	}
	return wgpu.TextureViewDimension2D
}

// texelSize reports the byte size of one texel for the formats the engine
// uploads from the CPU.
func texelSize(format wgpu.TextureFormat) (uint32, error) {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8Unorm:
		return 4, nil
	case wgpu.TextureFormatRGBA32Float:
		return 16, nil
	default:
		return 0, fmt.Errorf("%w: unsupported upload format %v", ErrInvalidDescriptor, format)
	}
}
