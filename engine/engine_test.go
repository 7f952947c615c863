package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera3d/caldera/engine/gpu"
	"github.com/caldera3d/caldera/engine/window"
)

type fakeContext struct {
	gpu.Context

	acquireErrs    []error
	acquireCalls   int
	reconfigured   [][2]int
	reconfigureErr error
}

func (c *fakeContext) AcquireFrame() (*gpu.Frame, error) {
	err := c.acquireErrs[c.acquireCalls]
	c.acquireCalls++
	return nil, err
}

func (c *fakeContext) Reconfigure(width, height int) error {
	c.reconfigured = append(c.reconfigured, [2]int{width, height})
	return c.reconfigureErr
}

type fakeWindow struct {
	window.Window

	width, height int
}

func (w *fakeWindow) Width() int  { return w.width }
func (w *fakeWindow) Height() int { return w.height }

func TestAcquireFramePropagatesFatalErrors(t *testing.T) {
	ctx := &fakeContext{acquireErrs: []error{gpu.ErrAcquireTimeout}}
	e := &engine{ctx: ctx, window: &fakeWindow{}}

	_, err := e.acquireFrame()
	assert.ErrorIs(t, err, gpu.ErrAcquireTimeout)
	assert.Equal(t, 1, ctx.acquireCalls)
	assert.Empty(t, ctx.reconfigured)
}

func TestAcquireFrameReconfiguresOnOutdatedSurface(t *testing.T) {
	ctx := &fakeContext{acquireErrs: []error{gpu.ErrSurfaceOutdated, gpu.ErrSurfaceOutdated}}
	e := &engine{ctx: ctx, window: &fakeWindow{width: 800, height: 600}}

	_, err := e.acquireFrame()
	assert.ErrorIs(t, err, gpu.ErrSurfaceOutdated)
	assert.Equal(t, 2, ctx.acquireCalls, "retries exactly once")
	require.Len(t, ctx.reconfigured, 1)
	assert.Equal(t, [2]int{800, 600}, ctx.reconfigured[0])
}

func TestAcquireFrameReconfiguresOnLostSurface(t *testing.T) {
	ctx := &fakeContext{
		acquireErrs:    []error{gpu.ErrSurfaceLost},
		reconfigureErr: errors.New("no surface"),
	}
	e := &engine{ctx: ctx, window: &fakeWindow{width: 640, height: 480}}

	_, err := e.acquireFrame()
	assert.EqualError(t, err, "no surface")
	assert.Equal(t, 1, ctx.acquireCalls)
}

func TestSetTickRateBeforeRun(t *testing.T) {
	e := NewEngine().(*engine)

	e.SetTickRate(120)
	assert.Equal(t, time.Second/120, e.engineTickRate)

	e.SetTickRate(0)
	assert.Equal(t, time.Second/60, e.engineTickRate)
}

func TestSetTickRateWhileRunning(t *testing.T) {
	e := NewEngine().(*engine)
	e.running = true

	e.SetTickRate(30)
	e.SetTickRate(144)

	select {
	case rate := <-e.tickRateChannel:
		assert.Equal(t, time.Second/144, rate, "pending rate replaced by latest")
	default:
		t.Fatal("expected a pending tick rate")
	}
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := NewEngine().(*engine)

	e.SetRenderFrameLimit(60)
	assert.Equal(t, time.Second/60, e.renderFrameLimit)

	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}

func TestQuitIsIdempotent(t *testing.T) {
	e := NewEngine().(*engine)

	e.Quit()
	assert.NotPanics(t, e.Quit)

	select {
	case <-e.quitChannel:
	default:
		t.Fatal("quit channel not closed")
	}
}

func TestBuilderOptions(t *testing.T) {
	ctx := &fakeContext{}
	e := NewEngine(
		WithContext(ctx),
		WithTickRate(30),
		WithRenderFrameLimit(90),
		WithProfiling(true),
	).(*engine)

	assert.Same(t, ctx, e.ctx.(*fakeContext))
	assert.Equal(t, time.Second/30, e.engineTickRate)
	assert.Equal(t, time.Second/90, e.renderFrameLimit)
	assert.True(t, e.profilingEnabled)
}
