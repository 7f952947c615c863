// Package renderer records and submits the frame's render pass graph: three
// fixed-order passes (light marker, instanced objects, sky) sharing one depth
// buffer and the swapchain's current target.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/caldera3d/caldera/engine/gpu"
	"github.com/caldera3d/caldera/engine/renderer/pipeline"
	"github.com/caldera3d/caldera/engine/resource"
	"github.com/caldera3d/caldera/engine/scene"
)

// PassState tracks a graph's progress through one frame.
type PassState int

const (
	// StateNotRecorded means no command stream exists for this frame yet.
	StateNotRecorded PassState = iota

	// StateRecording means passes are being encoded.
	StateRecording

	// StateSubmitted means the command stream went to the queue.
	StateSubmitted

	// StatePresented means the frame target was handed to the surface.
	StatePresented
)

// String returns the state's name.
func (s PassState) String() string {
	switch s {
	case StateNotRecorded:
		return "NotRecorded"
	case StateRecording:
		return "Recording"
	case StateSubmitted:
		return "Submitted"
	case StatePresented:
		return "Presented"
	default:
		return fmt.Sprintf("PassState(%d)", int(s))
	}
}

// ErrInvalidPassState indicates a graph method called out of order. The graph
// is single-use per frame: Record, Submit, Present, then Record again.
var ErrInvalidPassState = errors.New("renderer: invalid pass state")

// SceneData names every resource the graph binds. Zero-value handles mark a
// section absent: a fully zero SceneData records three passes with no draws,
// which clears the targets and presents the clear color.
type SceneData struct {
	// VertexBuffer and IndexBuffer hold the shared marker/object mesh.
	VertexBuffer resource.BufferHandle
	IndexBuffer  resource.BufferHandle
	IndexCount   uint32

	// InstanceBuffer holds packed model matrices; InstanceCount must match
	// the record count it was packed from.
	InstanceBuffer resource.BufferHandle
	InstanceCount  uint32

	CameraBuffer resource.BufferHandle
	LightBuffer  resource.BufferHandle

	Material scene.Material

	Cubemap        resource.TextureHandle
	CubemapSampler resource.SamplerHandle
}

// Graph is the per-frame render pass graph. It walks a strict state machine,
// NotRecorded to Recording to Submitted to Presented, and must be driven in
// that order each frame; out-of-order calls return ErrInvalidPassState.
type Graph interface {
	// State returns the graph's current frame state.
	//
	// Returns:
	//   - PassState: the current state
	State() PassState

	// Record encodes all three passes against the frame's target and the
	// context's shared depth buffer on a fresh command stream.
	//
	// Parameters:
	//   - frame: the acquired swapchain target
	//
	// Returns:
	//   - error: ErrInvalidPassState if a recording is already in flight
	Record(frame *gpu.Frame) error

	// Submit finishes the command stream and hands it to the queue.
	//
	// Returns:
	//   - error: ErrInvalidPassState unless Record completed first
	Submit() error

	// Present presents the frame target recorded against.
	//
	// Returns:
	//   - error: ErrInvalidPassState unless Submit completed first
	Present() error

	// Abort drops any in-flight recording and frame without submitting, so
	// nothing partial reaches the GPU, and rearms the graph.
	Abort()

	// Release frees the graph's pipelines and bind groups.
	Release()
}

type graphImpl struct {
	mu *sync.Mutex

	ctx   gpu.Context
	cache resource.Cache
	data  SceneData

	clearColor wgpu.Color

	markerPipeline pipeline.Pipeline
	objectPipeline pipeline.Pipeline
	skyPipeline    pipeline.Pipeline

	cameraLayout   *wgpu.BindGroupLayout
	lightLayout    *wgpu.BindGroupLayout
	materialLayout *wgpu.BindGroupLayout
	envLayout      *wgpu.BindGroupLayout

	cameraGroup   *wgpu.BindGroup
	lightGroup    *wgpu.BindGroup
	materialGroup *wgpu.BindGroup
	envGroup      *wgpu.BindGroup

	state   PassState
	encoder *wgpu.CommandEncoder
	frame   *gpu.Frame
}

var _ Graph = &graphImpl{}

func (g *graphImpl) State() PassState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *graphImpl) Record(frame *gpu.Frame) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateNotRecorded && g.state != StatePresented {
		return fmt.Errorf("%w: Record from %s", ErrInvalidPassState, g.state)
	}

	encoder, err := g.ctx.Device().CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create frame encoder: %w", err)
	}

	if err := g.recordMarkerPass(encoder, frame); err != nil {
		encoder.Release()
		return err
	}
	if err := g.recordObjectPass(encoder, frame); err != nil {
		encoder.Release()
		return err
	}
	if err := g.recordSkyPass(encoder, frame); err != nil {
		encoder.Release()
		return err
	}

	g.encoder = encoder
	g.frame = frame
	g.state = StateRecording
	return nil
}

func (g *graphImpl) Submit() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateRecording {
		return fmt.Errorf("%w: Submit from %s", ErrInvalidPassState, g.state)
	}

	commands, err := g.encoder.Finish(nil)
	if err != nil {
		g.releaseEncoderLocked()
		return fmt.Errorf("finish frame encoder: %w", err)
	}
	g.ctx.Queue().Submit(commands)
	commands.Release()
	g.releaseEncoderLocked()

	g.state = StateSubmitted
	return nil
}

func (g *graphImpl) Present() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateSubmitted {
		return fmt.Errorf("%w: Present from %s", ErrInvalidPassState, g.state)
	}

	g.frame.Present()
	g.frame = nil
	g.state = StatePresented
	return nil
}

func (g *graphImpl) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.releaseEncoderLocked()
	if g.frame != nil {
		g.frame.Drop()
		g.frame = nil
	}
	g.state = StateNotRecorded
}

func (g *graphImpl) releaseEncoderLocked() {
	if g.encoder != nil {
		g.encoder.Release()
		g.encoder = nil
	}
}

// recordMarkerPass clears both attachments and draws the light marker mesh.
func (g *graphImpl) recordMarkerPass(encoder *wgpu.CommandEncoder, frame *gpu.Frame) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "light marker",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       frame.View(),
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: g.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            g.ctx.DepthView(),
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer pass.End()

	if g.cameraGroup == nil || g.lightGroup == nil || g.data.IndexCount == 0 {
		return nil
	}
	vbuf, ibuf, err := g.meshBuffers()
	if err != nil {
		return err
	}

	pass.SetPipeline(g.markerPipeline.Handle())
	pass.SetBindGroup(0, g.cameraGroup, nil)
	pass.SetBindGroup(1, g.lightGroup, nil)
	pass.SetVertexBuffer(0, vbuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(ibuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	pass.DrawIndexed(g.data.IndexCount, 1, 0, 0, 0)
	return nil
}

// recordObjectPass loads both attachments and issues one instanced draw over
// every grid record.
func (g *graphImpl) recordObjectPass(encoder *wgpu.CommandEncoder, frame *gpu.Frame) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "objects",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    frame.View(),
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         g.ctx.DepthView(),
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		},
	})
	defer pass.End()

	if g.cameraGroup == nil || g.lightGroup == nil || g.materialGroup == nil ||
		g.data.IndexCount == 0 || g.data.InstanceCount == 0 {
		return nil
	}
	vbuf, ibuf, err := g.meshBuffers()
	if err != nil {
		return err
	}
	instances, err := g.cache.Buffer(g.data.InstanceBuffer)
	if err != nil {
		return err
	}

	pass.SetPipeline(g.objectPipeline.Handle())
	pass.SetBindGroup(0, g.cameraGroup, nil)
	pass.SetBindGroup(1, g.lightGroup, nil)
	pass.SetBindGroup(2, g.materialGroup, nil)
	pass.SetVertexBuffer(0, vbuf, 0, wgpu.WholeSize)
	pass.SetVertexBuffer(1, instances, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(ibuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	pass.DrawIndexed(g.data.IndexCount, g.data.InstanceCount, 0, 0, 0)
	return nil
}

// recordSkyPass draws the full-screen environment triangle at far depth with
// depth writes off, so it never overdraws geometry.
func (g *graphImpl) recordSkyPass(encoder *wgpu.CommandEncoder, frame *gpu.Frame) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "sky",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    frame.View(),
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         g.ctx.DepthView(),
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		},
	})
	defer pass.End()

	if g.cameraGroup == nil || g.envGroup == nil {
		return nil
	}

	pass.SetPipeline(g.skyPipeline.Handle())
	pass.SetBindGroup(0, g.cameraGroup, nil)
	pass.SetBindGroup(1, g.envGroup, nil)
	pass.Draw(3, 1, 0, 0)
	return nil
}

func (g *graphImpl) meshBuffers() (vertex, index *wgpu.Buffer, err error) {
	vertex, err = g.cache.Buffer(g.data.VertexBuffer)
	if err != nil {
		return nil, nil, err
	}
	index, err = g.cache.Buffer(g.data.IndexBuffer)
	if err != nil {
		return nil, nil, err
	}
	return vertex, index, nil
}

func (g *graphImpl) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.releaseEncoderLocked()
	for _, group := range []*wgpu.BindGroup{g.cameraGroup, g.lightGroup, g.materialGroup, g.envGroup} {
		if group != nil {
			group.Release()
		}
	}
	g.cameraGroup, g.lightGroup, g.materialGroup, g.envGroup = nil, nil, nil, nil

	for _, layout := range []*wgpu.BindGroupLayout{g.cameraLayout, g.lightLayout, g.materialLayout, g.envLayout} {
		if layout != nil {
			layout.Release()
		}
	}
	g.cameraLayout, g.lightLayout, g.materialLayout, g.envLayout = nil, nil, nil, nil

	for _, p := range []pipeline.Pipeline{g.markerPipeline, g.objectPipeline, g.skyPipeline} {
		if p != nil {
			p.Release()
		}
	}
}

// meshVertexLayout is vertex buffer slot 0: position, tex coords, normal.
func meshVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: scene.VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 2},
		},
	}
}

// instanceVertexLayout is vertex buffer slot 1: one model matrix per
// instance, four vec4 columns at shader locations 5 through 8.
func instanceVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: scene.InstanceStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 6},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 7},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 8},
		},
	}
}
