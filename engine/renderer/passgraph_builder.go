package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/caldera3d/caldera/engine/gpu"
	"github.com/caldera3d/caldera/engine/renderer/pipeline"
	"github.com/caldera3d/caldera/engine/resource"
	"github.com/caldera3d/caldera/engine/shader"
)

type GraphBuilderOption func(*graphImpl)

// WithClearColor sets the color the first pass clears the frame target to.
//
// Parameters:
//   - r, g, b, a: clear color components in [0, 1]
//
// Returns:
//   - GraphBuilderOption: a function that sets the clear color
func WithClearColor(r, g, b, a float64) GraphBuilderOption {
	return func(gr *graphImpl) {
		gr.clearColor = wgpu.Color{R: r, G: g, B: b, A: a}
	}
}

// NewGraph compiles the three pass pipelines, resolves the scene's handles
// into bind groups, and returns a graph ready to record its first frame.
// Absent scene sections (zero-value handles) make the corresponding draws
// no-ops; the passes themselves always run.
//
// Parameters:
//   - ctx: the GPU context
//   - cache: the cache owning the scene's resources
//   - data: the resources to bind and draw
//   - opts: a variadic list of GraphBuilderOption functions
//
// Returns:
//   - Graph: the new pass graph
//   - error: error if layout, bind group, or pipeline creation fails
func NewGraph(ctx gpu.Context, cache resource.Cache, data SceneData, opts ...GraphBuilderOption) (Graph, error) {
	g := &graphImpl{
		mu:         &sync.Mutex{},
		ctx:        ctx,
		cache:      cache,
		data:       data,
		clearColor: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		state:      StateNotRecorded,
	}
	for _, opt := range opts {
		opt(g)
	}

	if err := g.createLayouts(); err != nil {
		g.Release()
		return nil, err
	}
	if err := g.createBindGroups(); err != nil {
		g.Release()
		return nil, err
	}
	if err := g.createPipelines(); err != nil {
		g.Release()
		return nil, err
	}
	return g, nil
}

func (g *graphImpl) createLayouts() error {
	device := g.ctx.Device()

	uniformEntry := func(visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		}
	}

	var err error
	g.cameraLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "camera",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(wgpu.ShaderStageVertex | wgpu.ShaderStageFragment)},
	})
	if err != nil {
		return fmt.Errorf("create camera layout: %w", err)
	}

	g.lightLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "light",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(wgpu.ShaderStageVertex | wgpu.ShaderStageFragment)},
	})
	if err != nil {
		return fmt.Errorf("create light layout: %w", err)
	}

	g.materialLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "material",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create material layout: %w", err)
	}

	g.envLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "environment",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimensionCube,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create environment layout: %w", err)
	}
	return nil
}

func (g *graphImpl) createBindGroups() error {
	device := g.ctx.Device()

	if g.data.CameraBuffer != (resource.BufferHandle{}) {
		buf, err := g.cache.Buffer(g.data.CameraBuffer)
		if err != nil {
			return err
		}
		group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "camera",
			Layout: g.cameraLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return fmt.Errorf("create camera bind group: %w", err)
		}
		g.cameraGroup = group
	}

	if g.data.LightBuffer != (resource.BufferHandle{}) {
		buf, err := g.cache.Buffer(g.data.LightBuffer)
		if err != nil {
			return err
		}
		group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "light",
			Layout: g.lightLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return fmt.Errorf("create light bind group: %w", err)
		}
		g.lightGroup = group
	}

	if g.data.Material.Texture != (resource.TextureHandle{}) {
		view, err := g.cache.TextureView(g.data.Material.Texture)
		if err != nil {
			return err
		}
		smp, err := g.cache.Sampler(g.data.Material.Sampler)
		if err != nil {
			return err
		}
		group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "material",
			Layout: g.materialLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: view},
				{Binding: 1, Sampler: smp},
			},
		})
		if err != nil {
			return fmt.Errorf("create material bind group: %w", err)
		}
		g.materialGroup = group
	}

	if g.data.Cubemap != (resource.TextureHandle{}) {
		view, err := g.cache.TextureView(g.data.Cubemap)
		if err != nil {
			return err
		}
		smp, err := g.cache.Sampler(g.data.CubemapSampler)
		if err != nil {
			return err
		}
		group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "environment",
			Layout: g.envLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: view},
				{Binding: 1, Sampler: smp},
			},
		})
		if err != nil {
			return fmt.Errorf("create environment bind group: %w", err)
		}
		g.envGroup = group
	}
	return nil
}

func (g *graphImpl) createPipelines() error {
	device := g.ctx.Device()
	colorFormat := g.ctx.SurfaceFormat()

	g.markerPipeline = pipeline.NewPipeline("light marker",
		pipeline.WithShaderSource(shader.LightMarkerSource),
		pipeline.WithBindGroupLayouts(g.cameraLayout, g.lightLayout),
		pipeline.WithVertexBuffers(meshVertexLayout()),
		pipeline.WithCullMode(wgpu.CullModeBack),
	)
	if err := g.markerPipeline.Build(device, colorFormat, gpu.DepthFormat); err != nil {
		return err
	}

	g.objectPipeline = pipeline.NewPipeline("objects",
		pipeline.WithShaderSource(shader.ObjectLitSource),
		pipeline.WithBindGroupLayouts(g.cameraLayout, g.lightLayout, g.materialLayout),
		pipeline.WithVertexBuffers(meshVertexLayout(), instanceVertexLayout()),
		pipeline.WithCullMode(wgpu.CullModeBack),
	)
	if err := g.objectPipeline.Build(device, colorFormat, gpu.DepthFormat); err != nil {
		return err
	}

	// The sky triangle sits exactly at the far plane, so it needs LessEqual
	// against the 1.0-cleared depth buffer and must not write depth.
	g.skyPipeline = pipeline.NewPipeline("sky",
		pipeline.WithShaderSource(shader.SkyboxSource),
		pipeline.WithBindGroupLayouts(g.cameraLayout, g.envLayout),
		pipeline.WithDepthCompare(wgpu.CompareFunctionLessEqual),
		pipeline.WithDepthWrite(false),
	)
	if err := g.skyPipeline.Build(device, colorFormat, gpu.DepthFormat); err != nil {
		return err
	}
	return nil
}
