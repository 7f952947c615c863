// Package environment produces the sky cubemap. A one-shot compute pass
// projects a decoded equirectangular image onto the six faces of an
// Rgba32Float cubemap, which is then immutable for the process lifetime.
package environment

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/caldera3d/caldera/engine/assets"
	"github.com/caldera3d/caldera/engine/gpu"
	"github.com/caldera3d/caldera/engine/resource"
	"github.com/caldera3d/caldera/engine/shader"
)

var (
	// ErrBadImageAspect indicates an equirectangular source whose width is
	// not exactly twice its height.
	ErrBadImageAspect = errors.New("environment: equirectangular image must have 2:1 aspect")

	// ErrDispatchFailed indicates the conversion pass could not be encoded
	// or submitted.
	ErrDispatchFailed = errors.New("environment: conversion dispatch failed")
)

// cubemapFormat is the face format of converted cubemaps.
const cubemapFormat = wgpu.TextureFormatRGBA32Float

// workgroupSize matches the @workgroup_size of the conversion shader.
const workgroupSize = 16

type converterImpl struct {
	mu *sync.Mutex

	ctx      gpu.Context
	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.ComputePipeline
}

// Converter turns equirectangular environment images into cubemaps. Build it
// once per device; each Convert call runs one compute dispatch.
type Converter interface {
	// Convert uploads the equirectangular image, dispatches the projection
	// compute pass, and returns the resulting cubemap texture handle. The
	// cubemap is owned by the cache and outlives the pass.
	//
	// Parameters:
	//   - cache: the resource cache that will own the created textures
	//   - equirect: decoded equirectangular RGBA staging data
	//   - faceSize: edge length of each cubemap face in pixels
	//
	// Returns:
	//   - resource.TextureHandle: handle to the 6-layer cubemap
	//   - error: ErrBadImageAspect for non-2:1 sources, ErrDispatchFailed if
	//     the pass cannot be encoded or submitted
	Convert(cache resource.Cache, equirect assets.Image, faceSize uint32) (resource.TextureHandle, error)
}

var _ Converter = &converterImpl{}

// NewConverter compiles the conversion pipeline for the given context.
//
// Parameters:
//   - ctx: the GPU context providing the device
//
// Returns:
//   - Converter: the new converter
//   - error: error if shader or pipeline creation fails
func NewConverter(ctx gpu.Context) (Converter, error) {
	device := ctx.Device()

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: shader.NameEquirectToCube,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shader.EquirectToCubeSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create conversion shader: %w", err)
	}
	defer module.Release()

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "equirect to cubemap",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				// The shader reads the source with textureLoad, so the
				// rgba32float view binds as unfilterable float and needs no
				// float32-filterable device feature.
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        cubemapFormat,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create conversion bind group layout: %w", err)
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "equirect to cubemap",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("create conversion pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "equirect to cubemap",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "compute_equirect_to_cubemap",
		},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("create conversion pipeline: %w", err)
	}

	return &converterImpl{
		mu:       &sync.Mutex{},
		ctx:      ctx,
		layout:   layout,
		pipeline: pipeline,
	}, nil
}

func (c *converterImpl) Convert(cache resource.Cache, equirect assets.Image, faceSize uint32) (resource.TextureHandle, error) {
	if err := validateEquirect(equirect, faceSize); err != nil {
		return resource.TextureHandle{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	src, err := cache.CreateTexture(resource.TextureDesc{
		Label:  "equirect source",
		Format: cubemapFormat,
		Width:  equirect.Width,
		Height: equirect.Height,
		Layers: 1,
		Usage:  wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return resource.TextureHandle{}, err
	}
	if err := cache.UploadTexture(src, 0, equirect.Float32RGBA()); err != nil {
		_ = cache.ReleaseTexture(src)
		return resource.TextureHandle{}, err
	}

	dst, err := cache.CreateTexture(resource.TextureDesc{
		Label:  "environment cubemap",
		Format: cubemapFormat,
		Width:  faceSize,
		Height: faceSize,
		Layers: 6,
		// CopySrc allows face readback for verification and debug capture.
		Usage: wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopySrc,
		ViewDimension: wgpu.TextureViewDimensionCube,
	})
	if err != nil {
		_ = cache.ReleaseTexture(src)
		return resource.TextureHandle{}, err
	}

	if err := c.dispatch(cache, src, dst, faceSize); err != nil {
		_ = cache.ReleaseTexture(src)
		_ = cache.ReleaseTexture(dst)
		return resource.TextureHandle{}, err
	}

	// The staged source is only needed during conversion.
	if err := cache.ReleaseTexture(src); err != nil {
		return resource.TextureHandle{}, err
	}
	return dst, nil
}

func (c *converterImpl) dispatch(cache resource.Cache, src, dst resource.TextureHandle, faceSize uint32) error {
	srcView, err := cache.TextureView(src)
	if err != nil {
		return err
	}
	dstView, err := cache.TextureArrayView(dst)
	if err != nil {
		return err
	}

	device := c.ctx.Device()
	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "equirect to cubemap",
		Layout: c.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: srcView},
			{Binding: 1, TextureView: dstView},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	defer bindGroup.Release()

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	groups := workgroupCount(faceSize)
	pass.DispatchWorkgroups(groups, groups, 6)
	pass.End()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	defer commands.Release()

	c.ctx.Queue().Submit(commands)
	return nil
}

func validateEquirect(equirect assets.Image, faceSize uint32) error {
	if equirect.Width == 0 || equirect.Height == 0 {
		return fmt.Errorf("%w: empty image", ErrBadImageAspect)
	}
	if equirect.Width != equirect.Height*2 {
		return fmt.Errorf("%w: got %dx%d", ErrBadImageAspect, equirect.Width, equirect.Height)
	}
	if faceSize == 0 {
		return fmt.Errorf("environment: face size must be positive")
	}
	return nil
}

// workgroupCount returns the per-axis dispatch count covering faceSize texels
// at the shader's workgroup size.
func workgroupCount(faceSize uint32) uint32 {
	return (faceSize + workgroupSize - 1) / workgroupSize
}
