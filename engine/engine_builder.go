package engine

import (
	"log"
	"time"

	"github.com/caldera3d/caldera/engine/gpu"
	"github.com/caldera3d/caldera/engine/profiler"
	"github.com/caldera3d/caldera/engine/renderer"
	"github.com/caldera3d/caldera/engine/uniforms"
	"github.com/caldera3d/caldera/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics output.
//
// Parameters:
//   - enabled: if true, enables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the simulation tick rate in ticks per second.
// Values <= 0 are treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets the window whose message loop and input the engine drives.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithContext sets the GPU context the engine acquires frames from.
//
// Parameters:
//   - ctx: the GPU context
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithContext(ctx gpu.Context) EngineBuilderOption {
	return func(e *engine) {
		e.ctx = ctx
	}
}

// WithUniforms sets the frame uniform manager updated before each submission.
//
// Parameters:
//   - m: the uniform manager
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUniforms(m uniforms.Manager) EngineBuilderOption {
	return func(e *engine) {
		e.uniforms = m
	}
}

// WithGraph sets the pass graph the render loop drives each frame.
//
// Parameters:
//   - g: the pass graph
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGraph(g renderer.Graph) EngineBuilderOption {
	return func(e *engine) {
		e.graph = g
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per
// second. Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}

// NewEngine creates an Engine with the provided options. The window, context,
// uniform manager, and graph options must all be supplied before Run.
// Registers a resize callback that reconfigures the surface and updates the
// camera's aspect ratio.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.ctx != nil {
				if err := e.ctx.Reconfigure(width, height); err != nil {
					log.Printf("resize reconfigure: %v", err)
					return
				}
			}
			if e.uniforms != nil {
				e.uniforms.Camera().Resize(width, height)
			}
		})
	}

	return e
}
