package environment_test

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"

	"github.com/caldera3d/caldera/engine/assets"
	"github.com/caldera3d/caldera/engine/environment"
	"github.com/caldera3d/caldera/engine/gpu"
	"github.com/caldera3d/caldera/engine/resource"
)

// headlessContext satisfies gpu.Context with a surface-free device so the
// compute path can run where an adapter exists. Tests skip otherwise.
type headlessContext struct {
	gpu.Context

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

func (c *headlessContext) Device() *wgpu.Device { return c.device }
func (c *headlessContext) Queue() *wgpu.Queue   { return c.queue }

func (c *headlessContext) Release() {
	if c.device != nil {
		c.device.Release()
	}
	if c.adapter != nil {
		c.adapter.Release()
	}
	if c.instance != nil {
		c.instance.Release()
	}
}

func newHeadlessContext(t *testing.T) *headlessContext {
	t.Helper()

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{})
	if err != nil {
		instance.Release()
		t.Skipf("no GPU adapter available: %v", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "headless test device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		t.Skipf("no GPU device available: %v", err)
	}

	return &headlessContext{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
	}
}

func TestConvertUniformColor(t *testing.T) {
	ctx := newHeadlessContext(t)
	defer ctx.Release()

	cache := resource.NewCache(ctx)
	defer cache.ReleaseAll()

	converter, err := environment.NewConverter(ctx)
	require.NoError(t, err)

	const faceSize = 16

	// A 2x1 solid-color equirect maps every cubemap texel to the same value.
	img := assets.Image{
		Width:  2,
		Height: 1,
		Pix: []byte{
			0x40, 0x80, 0xC0, 0xFF,
			0x40, 0x80, 0xC0, 0xFF,
		},
	}

	cubemap, err := converter.Convert(cache, img, faceSize)
	require.NoError(t, err)

	want := [4]float32{64.0 / 255.0, 128.0 / 255.0, 192.0 / 255.0, 1.0}
	for layer := uint32(0); layer < 6; layer++ {
		face := readFace(t, ctx, cache, cubemap, layer, faceSize)
		for i, got := range face {
			if diff := float64(got - want[i%4]); diff > 1e-6 || diff < -1e-6 {
				t.Fatalf("face %d texel %d channel %d: got %v, want %v",
					layer, i/4, i%4, got, want[i%4])
			}
		}
	}
}

// readFace copies one cubemap layer into a mappable buffer and decodes it as
// little-endian float32 RGBA.
func readFace(t *testing.T, ctx *headlessContext, cache resource.Cache, h resource.TextureHandle, layer, faceSize uint32) []float32 {
	t.Helper()

	const texelBytes = 16
	bytesPerRow := faceSize * texelBytes // 256-byte aligned at faceSize 16
	size := uint64(bytesPerRow * faceSize)

	readback, err := ctx.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "face readback",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	require.NoError(t, err)
	defer readback.Release()

	tex, err := cache.Texture(h)
	require.NoError(t, err)

	encoder, err := ctx.device.CreateCommandEncoder(nil)
	require.NoError(t, err)
	defer encoder.Release()

	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture: tex,
			Origin:  wgpu.Origin3D{Z: layer},
			Aspect:  wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Layout: wgpu.TextureDataLayout{
				BytesPerRow:  bytesPerRow,
				RowsPerImage: faceSize,
			},
			Buffer: readback,
		},
		&wgpu.Extent3D{Width: faceSize, Height: faceSize, DepthOrArrayLayers: 1},
	)
	require.NoError(t, err)

	commands, err := encoder.Finish(nil)
	require.NoError(t, err)
	defer commands.Release()
	ctx.queue.Submit(commands)

	out := make([]float32, faceSize*faceSize*4)
	done := false
	var mapErr error
	err = readback.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		done = true
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("map readback buffer: %s", status.String())
			return
		}
		raw := readback.GetMappedRange(0, uint(size))
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		mapErr = readback.Unmap()
	})
	require.NoError(t, err)
	for !done {
		ctx.device.Poll(true, nil)
	}
	require.NoError(t, mapErr)

	return out
}
