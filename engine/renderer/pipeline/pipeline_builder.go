package pipeline

import "github.com/cogentcore/webgpu/wgpu"

type PipelineBuilderOption func(*pipelineImpl)

// NewPipeline creates a render pipeline configuration with depth testing
// enabled (Less, write on), back-face culling off, triangle-list topology,
// and no blending, then applies the given options.
//
// Parameters:
//   - label: the pipeline's debug label
//   - opts: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the configured, not yet built pipeline
func NewPipeline(label string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipelineImpl{
		label:             label,
		vertexEntry:       "vs_main",
		fragmentEntry:     "fs_main",
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLess,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithShaderSource sets the WGSL source compiled for both stages.
//
// Parameters:
//   - source: the WGSL source text
//
// Returns:
//   - PipelineBuilderOption: a function that sets the shader source
func WithShaderSource(source string) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.source = source
	}
}

// WithEntryPoints overrides the vertex and fragment entry point names.
//
// Parameters:
//   - vertex: the vertex entry point
//   - fragment: the fragment entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.vertexEntry = vertex
		p.fragmentEntry = fragment
	}
}

// WithBindGroupLayouts sets the pipeline's bind group layouts in group order.
//
// Parameters:
//   - layouts: the bind group layouts
//
// Returns:
//   - PipelineBuilderOption: a function that sets the layouts
func WithBindGroupLayouts(layouts ...*wgpu.BindGroupLayout) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.bindGroupLayouts = layouts
	}
}

// WithVertexBuffers sets the vertex buffer layouts in slot order.
//
// Parameters:
//   - layouts: the vertex buffer layouts
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex layouts
func WithVertexBuffers(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.vertexBuffers = layouts
	}
}

// WithDepthWrite enables or disables depth writes.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - PipelineBuilderOption: a function that sets depth writes
func WithDepthWrite(enabled bool) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthCompare sets the depth comparison function. The sky pass uses
// LessEqual so fragments at the far plane survive against a cleared buffer.
//
// Parameters:
//   - compare: the depth comparison function
//
// Returns:
//   - PipelineBuilderOption: a function that sets the comparison
func WithDepthCompare(compare wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.depthCompare = compare
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.cullMode = mode
	}
}

// WithBlendState enables blending with the given state.
//
// Parameters:
//   - state: the blend state
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.blendState = state
	}
}
