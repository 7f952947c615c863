// Package engine drives the frame loop: a render goroutine that acquires,
// records, submits, and presents each frame, a fixed-rate tick goroutine for
// simulation updates, and a quit protocol shared by both.
package engine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/caldera3d/caldera/engine/gpu"
	"github.com/caldera3d/caldera/engine/profiler"
	"github.com/caldera3d/caldera/engine/renderer"
	"github.com/caldera3d/caldera/engine/uniforms"
	"github.com/caldera3d/caldera/engine/window"
)

type engine struct {
	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window window.Window
	ctx    gpu.Context

	uniforms uniforms.Manager
	graph    renderer.Graph

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine owns the render and tick loops over one window, context, uniform
// manager, and pass graph. Run blocks on the window's message loop while the
// loops run in their own goroutines.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Context returns the GPU context the engine renders through.
	//
	// Returns:
	//   - gpu.Context: the context instance
	Context() gpu.Context

	// Uniforms returns the frame uniform manager.
	//
	// Returns:
	//   - uniforms.Manager: the manager instance
	Uniforms() uniforms.Manager

	// EnableProfiler enables frame statistics output to the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics output.
	DisableProfiler()

	// SetTickRate sets the simulation tick rate in ticks per second. Takes
	// effect immediately on a running engine.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each simulation tick.
	// Use this for input-independent animation, like instance rotation.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the loops and blocks on the window message loop until the
	// window closes or a fatal render error signals quit.
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple
	// times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Context() gpu.Context {
	return e.ctx
}

func (e *engine) Uniforms() uniforms.Manager {
	return e.uniforms
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel exactly once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, render, and quit goroutines.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleTick()
	go e.handleRender()
	go e.handleQuit()
}

// handleTick runs the fixed-rate simulation loop. Fires the tick callback at
// the configured rate and listens for dynamic rate changes. Exits when the
// quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop. Each iteration acquires a frame target,
// updates the uniform buffers, and drives the pass graph through record,
// submit, present. Per-frame failures abort the graph and skip the frame;
// unrecoverable surface failures quit the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if err := e.renderFrame(dt); err != nil {
				log.Printf("fatal render error: %v", err)
				e.signalQuit()
				return
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame runs one full frame. A non-nil return is fatal to the loop;
// recoverable per-frame errors are logged and counted as a skip instead.
func (e *engine) renderFrame(dt float32) error {
	frame, err := e.acquireFrame()
	if err != nil {
		return err
	}

	// Uniform writes and the graph's submission share the queue, so the
	// writes land before this frame's draws.
	if err := e.uniforms.Update(dt); err != nil {
		frame.Drop()
		return err
	}

	if err := e.graph.Record(frame); err != nil {
		frame.Drop()
		e.skipFrame(err)
		return nil
	}
	if err := e.graph.Submit(); err != nil {
		e.graph.Abort()
		e.skipFrame(err)
		return nil
	}
	if err := e.graph.Present(); err != nil {
		e.graph.Abort()
		e.skipFrame(err)
		return nil
	}

	if e.profiler != nil {
		e.profiler.Frame()
	}
	return nil
}

// acquireFrame acquires the next swapchain target. A lost or outdated surface
// gets one reconfigure-and-retry at the window's current size; a second
// failure is fatal.
func (e *engine) acquireFrame() (*gpu.Frame, error) {
	frame, err := e.ctx.AcquireFrame()
	if err == nil {
		return frame, nil
	}
	if !errors.Is(err, gpu.ErrSurfaceLost) && !errors.Is(err, gpu.ErrSurfaceOutdated) {
		return nil, err
	}

	log.Printf("surface needs reconfigure: %v", err)
	if err := e.ctx.Reconfigure(e.window.Width(), e.window.Height()); err != nil {
		return nil, err
	}
	return e.ctx.AcquireFrame()
}

func (e *engine) skipFrame(err error) {
	log.Printf("skipping frame: %v", err)
	if e.profiler != nil {
		e.profiler.Skip()
	}
}

// handleQuit blocks until the quit channel is closed.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the simulation tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send; replace any pending value.
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}
