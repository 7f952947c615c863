package gpu

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is the format of the shared depth buffer created alongside the
// swapchain. All render pipelines targeting the swapchain must use it.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// gpuContext is the implementation of the Context interface.
type gpuContext struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	width  int
	height int

	// frameHeld guards against acquiring a second swapchain target before the
	// previous one was presented or dropped, which exhausts the swapchain.
	frameHeld bool

	forceFallbackAdapter bool
}

// Context owns the logical GPU device, its command submission queue, and the
// presentation surface/swapchain. It is constructed once and passed by
// reference to every component that needs device access; there is no ambient
// global. The Context also owns the shared depth buffer, which is recreated
// whenever the surface is reconfigured.
type Context interface {
	// Device returns the logical GPU device.
	//
	// Returns:
	//   - *wgpu.Device: the device handle
	Device() *wgpu.Device

	// Queue returns the command submission queue of the device.
	//
	// Returns:
	//   - *wgpu.Queue: the queue handle
	Queue() *wgpu.Queue

	// SurfaceFormat returns the negotiated presentation texture format.
	// Only valid after the first successful Reconfigure.
	//
	// Returns:
	//   - wgpu.TextureFormat: the swapchain color format
	SurfaceFormat() wgpu.TextureFormat

	// DepthView returns the view of the shared depth buffer sized to the
	// current surface. Only valid after the first successful Reconfigure.
	//
	// Returns:
	//   - *wgpu.TextureView: the depth attachment view
	DepthView() *wgpu.TextureView

	// Size returns the current surface dimensions in pixels.
	//
	// Returns:
	//   - width, height: surface dimensions
	Size() (width, height int)

	// Reconfigure reconfigures the surface/swapchain for new dimensions and
	// recreates the shared depth buffer to match. It must be called whenever
	// the presentation target's size changes and is idempotent for identical
	// dimensions.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	//
	// Returns:
	//   - error: ErrUnsupportedSurfaceConfig for invalid dimensions, or a wrapped
	//     device error if depth buffer creation fails
	Reconfigure(width, height int) error

	// AcquireFrame blocks until the swapchain yields a presentable target and
	// returns it. Exactly one frame may be held at a time; the returned Frame
	// must be presented or dropped before the next acquisition.
	//
	// Returns:
	//   - *Frame: the acquired presentable target
	//   - error: ErrSurfaceOutdated/ErrSurfaceLost (caller should Reconfigure and
	//     retry), ErrAcquireTimeout, ErrFrameInFlight, or a wrapped surface error
	AcquireFrame() (*Frame, error)

	// Release destroys the swapchain, depth buffer, device, adapter, and
	// instance, in dependency order. The Context must not be used afterwards.
	Release()
}

var _ Context = &gpuContext{}

// New creates a GPU Context for the given presentation surface. It creates the
// wgpu instance, requests a compatible adapter and logical device, and obtains
// the submission queue. The surface is not yet configured; call Reconfigure
// with the initial drawable size before acquiring frames.
//
// Parameters:
//   - surfaceDescriptor: the platform-specific surface descriptor (from the windowing collaborator)
//   - options: functional options for context configuration
//
// Returns:
//   - Context: the initialized context
//   - error: ErrAdapterNotFound or ErrDeviceCreationFailed (both wrapped with detail)
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...ContextBuilderOption) (Context, error) {
	runtime.LockOSThread()

	c := &gpuContext{
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(c)
	}

	c.instance = wgpu.CreateInstance(nil)
	c.surface = c.instance.CreateSurface(surfaceDescriptor)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallbackAdapter,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		c.instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrAdapterNotFound, err)
	}
	c.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Caldera Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		c.adapter.Release()
		c.instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceCreationFailed, err)
	}
	c.device = device
	c.queue = device.GetQueue()

	return c, nil
}

func (c *gpuContext) Device() *wgpu.Device {
	return c.device
}

func (c *gpuContext) Queue() *wgpu.Queue {
	return c.queue
}

func (c *gpuContext) SurfaceFormat() wgpu.TextureFormat {
	return c.surfaceFormat
}

func (c *gpuContext) DepthView() *wgpu.TextureView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depthView
}

func (c *gpuContext) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *gpuContext) Reconfigure(width, height int) error {
	if err := validateSurfaceConfig(width, height); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Idempotent for identical dimensions once configured.
	if c.depthView != nil && width == c.width && height == c.height {
		return nil
	}

	capabilities := c.surface.GetCapabilities(c.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("%w: surface reports no supported formats", ErrUnsupportedSurfaceConfig)
	}
	c.surfaceFormat = capabilities.Formats[0]

	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: c.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if c.depthView != nil {
		c.depthView.Release()
		c.depthView = nil
	}
	if c.depthTexture != nil {
		c.depthTexture.Release()
		c.depthTexture = nil
	}

	depthTexture, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Shared Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	depthView, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return fmt.Errorf("failed to create depth texture view: %w", err)
	}

	c.depthTexture = depthTexture
	c.depthView = depthView
	c.width = width
	c.height = height

	return nil
}

func (c *gpuContext) AcquireFrame() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frameHeld {
		return nil, ErrFrameInFlight
	}

	surfaceTexture, err := c.surface.GetCurrentTexture()
	if err != nil {
		return nil, classifySurfaceError(err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create swapchain view: %w", err)
	}

	c.frameHeld = true
	return &Frame{ctx: c, texture: surfaceTexture, view: view}, nil
}

func (c *gpuContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.depthView != nil {
		c.depthView.Release()
		c.depthView = nil
	}
	if c.depthTexture != nil {
		c.depthTexture.Release()
		c.depthTexture = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
		c.queue = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

// Frame is a single presentable swapchain target. It must be released by
// exactly one of Present or Drop before the next AcquireFrame call.
type Frame struct {
	ctx     *gpuContext
	texture *wgpu.Texture
	view    *wgpu.TextureView
	done    bool
}

// View returns the render-attachment view of the swapchain target.
//
// Returns:
//   - *wgpu.TextureView: the color attachment view for this frame
func (f *Frame) View() *wgpu.TextureView {
	return f.view
}

// Present hands the frame to the display and releases the swapchain target.
// Safe to call once; subsequent calls are no-ops.
func (f *Frame) Present() {
	if f.done {
		return
	}
	f.ctx.surface.Present()
	f.release()
}

// Drop releases the swapchain target without presenting. Used when a frame's
// work is discarded so no partial state reaches the display.
func (f *Frame) Drop() {
	if f.done {
		return
	}
	f.release()
}

func (f *Frame) release() {
	f.done = true
	f.view.Release()
	f.texture.Release()

	f.ctx.mu.Lock()
	f.ctx.frameHeld = false
	f.ctx.mu.Unlock()
}

// classifySurfaceError maps an acquisition failure from the underlying surface
// to one of the sentinel surface errors, preserving the original text.
//
// Parameters:
//   - err: the error returned by the surface
//
// Returns:
//   - error: a sentinel-wrapped error the Frame Driver can classify with errors.Is
func classifySurfaceError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return fmt.Errorf("%w: %v", ErrAcquireTimeout, err)
	case strings.Contains(msg, "outdated"):
		return fmt.Errorf("%w: %v", ErrSurfaceOutdated, err)
	case strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	default:
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
}
