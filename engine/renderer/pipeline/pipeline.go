// Package pipeline builds immutable render pipeline bundles: shader stages,
// vertex layout, bind group layouts, and fixed depth/blend/cull state are
// declared up front, compiled once, and only rebound afterwards.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

type pipelineImpl struct {
	label string

	source        string
	vertexEntry   string
	fragmentEntry string

	bindGroupLayouts []*wgpu.BindGroupLayout
	vertexBuffers    []wgpu.VertexBufferLayout

	depthWriteEnabled bool
	depthCompare      wgpu.CompareFunction
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState

	renderPipeline *wgpu.RenderPipeline
}

// Pipeline is a render pipeline bundle. Configure it with builder options,
// compile it once with Build, then bind its Handle during pass recording.
// The configuration is immutable after Build.
type Pipeline interface {
	// Label returns the pipeline's debug label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// DepthCompare returns the configured depth comparison function.
	//
	// Returns:
	//   - wgpu.CompareFunction: the depth comparison
	DepthCompare() wgpu.CompareFunction

	// DepthWriteEnabled returns whether the pipeline writes depth.
	//
	// Returns:
	//   - bool: true if depth writes are enabled
	DepthWriteEnabled() bool

	// Build compiles the pipeline for the given device and attachment
	// formats. Build may be called once; the result is cached.
	//
	// Parameters:
	//   - device: the device to compile against
	//   - colorFormat: the color attachment format
	//   - depthFormat: the depth attachment format
	//
	// Returns:
	//   - error: error if shader or pipeline creation fails
	Build(device *wgpu.Device, colorFormat, depthFormat wgpu.TextureFormat) error

	// Handle returns the compiled render pipeline, or nil before Build.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the compiled pipeline
	Handle() *wgpu.RenderPipeline

	// Release frees the compiled pipeline object.
	Release()
}

var _ Pipeline = &pipelineImpl{}

func (p *pipelineImpl) Label() string {
	return p.label
}

func (p *pipelineImpl) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipelineImpl) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipelineImpl) Handle() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipelineImpl) Build(device *wgpu.Device, colorFormat, depthFormat wgpu.TextureFormat) error {
	if p.renderPipeline != nil {
		return errors.New("pipeline already built")
	}
	if p.source == "" {
		return errors.New("pipeline has no shader source")
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.source,
		},
	})
	if err != nil {
		return fmt.Errorf("create shader module for %s: %w", p.label, err)
	}
	defer module.Release()

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.label,
		BindGroupLayouts: p.bindGroupLayouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout for %s: %w", p.label, err)
	}
	defer pipelineLayout.Release()

	created, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.label + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.vertexEntry,
			Buffers:    p.vertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.fragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    colorFormat,
					Blend:     p.blendState,
					WriteMask: p.writeMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      p.depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline for %s: %w", p.label, err)
	}

	p.renderPipeline = created
	return nil
}

func (p *pipelineImpl) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
