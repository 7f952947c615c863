package gpu

import "github.com/cogentcore/webgpu/wgpu"

// ContextBuilderOption is a functional option used to configure a Context during construction.
type ContextBuilderOption func(*gpuContext)

// PresentMode controls how rendered frames are handed to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting,
	// capping frame rate to the monitor's refresh rate. This is the default and
	// acts as the render loop's natural frame-rate governor.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for
	// vertical blank. May cause tearing but provides the lowest latency.
	PresentModeUncapped
)

// WithPresentMode sets the surface present mode used on the next Reconfigure.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) ContextBuilderOption {
	return func(c *gpuContext) {
		switch mode {
		case PresentModeUncapped:
			c.presentMode = wgpu.PresentModeImmediate
		case PresentModeVSync:
			fallthrough
		default:
			c.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithForceFallbackAdapter forces selection of a software/fallback adapter.
// Useful on headless machines and CI where no hardware GPU is available.
//
// Parameters:
//   - force: true to require the fallback adapter
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) ContextBuilderOption {
	return func(c *gpuContext) {
		c.forceFallbackAdapter = force
	}
}
