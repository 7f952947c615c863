package scene

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/caldera3d/caldera/engine/assets"
	"github.com/caldera3d/caldera/engine/resource"
)

// Material is a base-color texture plus sampler, held by handle. The resource
// cache keeps ownership of the GPU objects.
type Material struct {
	Texture resource.TextureHandle
	Sampler resource.SamplerHandle
}

// NewMaterial uploads the decoded image as an sRGB base-color texture and
// creates a matching linear/repeat sampler through the cache.
//
// Parameters:
//   - cache: the resource cache that will own the GPU objects
//   - label: debug label for the texture and sampler
//   - img: decoded RGBA staging data
//
// Returns:
//   - Material: the handles for binding
//   - error: error if creation or upload fails
func NewMaterial(cache resource.Cache, label string, img assets.Image) (Material, error) {
	tex, err := cache.CreateTexture(resource.TextureDesc{
		Label:  label,
		Format: wgpu.TextureFormatRGBA8UnormSrgb,
		Width:  img.Width,
		Height: img.Height,
		Layers: 1,
		Usage:  wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return Material{}, fmt.Errorf("material %q: %w", label, err)
	}
	if err := cache.UploadTexture(tex, 0, img.Pix); err != nil {
		return Material{}, fmt.Errorf("material %q: %w", label, err)
	}

	smp, err := cache.CreateSampler(resource.SamplerDesc{
		Label:       label,
		Filter:      wgpu.FilterModeLinear,
		MipFilter:   wgpu.MipmapFilterModeLinear,
		AddressMode: wgpu.AddressModeRepeat,
	})
	if err != nil {
		return Material{}, fmt.Errorf("material %q: %w", label, err)
	}

	return Material{Texture: tex, Sampler: smp}, nil
}
