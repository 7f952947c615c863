package camera

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera3d/caldera/common"
)

func TestCameraUniformLayout(t *testing.T) {
	var u CameraUniform

	assert.EqualValues(t, 272, u.Size())
	assert.Equal(t, uintptr(0), unsafe.Offsetof(u.ViewPosition))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(u.View))
	assert.Equal(t, uintptr(80), unsafe.Offsetof(u.ViewProj))
	assert.Equal(t, uintptr(144), unsafe.Offsetof(u.InvProj))
	assert.Equal(t, uintptr(208), unsafe.Offsetof(u.InvView))
	assert.Len(t, u.Marshal(), 272)
}

func TestUniformViewPosition(t *testing.T) {
	cam := NewCamera(WithPosition(1, 2, 3))

	u := cam.Uniform()
	assert.Equal(t, [4]float32{1, 2, 3, 1}, u.ViewPosition)
}

func TestUniformInvViewIsViewTranspose(t *testing.T) {
	cam := NewCamera(WithPosition(3, 1, -2), WithYaw(0.7), WithPitch(0.2))

	u := cam.Uniform()
	view := cam.ViewMatrix()
	var want [16]float32
	common.Transpose4(want[:], view[:])
	assert.Equal(t, want, u.InvView)
}

func TestSetPoseClampsPitch(t *testing.T) {
	cam := NewCamera()

	cam.SetPose(0, 0, 0, 0, 2.0)
	assert.InDelta(t, safePitchLimit, cam.Pitch(), 1e-6)

	cam.SetPose(0, 0, 0, 0, -2.0)
	assert.InDelta(t, -safePitchLimit, cam.Pitch(), 1e-6)
}

func TestResizeIgnoresDegenerateDimensions(t *testing.T) {
	cam := NewCamera(WithAspect(2.0)).(*cameraImpl)

	cam.Resize(0, 600)
	cam.Resize(800, -1)
	assert.Equal(t, float32(2.0), cam.aspect)

	cam.Resize(800, 400)
	assert.Equal(t, float32(2.0), cam.aspect)

	cam.Resize(800, 200)
	assert.Equal(t, float32(4.0), cam.aspect)
}

func TestControllerForwardMovement(t *testing.T) {
	ctrl := NewController(WithSpeed(4))
	cam := NewCamera(WithController(ctrl))

	require.True(t, ctrl.ProcessKey(common.KeyW, true))
	cam.Update(1.0)

	// Yaw zero faces +X.
	x, y, z := cam.Position()
	assert.InDelta(t, 4.0, x, 1e-5)
	assert.InDelta(t, 0.0, y, 1e-5)
	assert.InDelta(t, 0.0, z, 1e-5)
}

func TestControllerMovementIsFrameRateIndependent(t *testing.T) {
	run := func(steps int) (float32, float32, float32) {
		ctrl := NewController(WithSpeed(4))
		cam := NewCamera(WithController(ctrl))
		ctrl.ProcessKey(common.KeyW, true)
		ctrl.ProcessKey(common.KeySpace, true)
		dt := float32(1.0) / float32(steps)
		for i := 0; i < steps; i++ {
			cam.Update(dt)
		}
		return cam.Position()
	}

	x1, y1, z1 := run(1)
	x2, y2, z2 := run(8)
	assert.InDelta(t, x1, x2, 1e-4)
	assert.InDelta(t, y1, y2, 1e-4)
	assert.InDelta(t, z1, z2, 1e-4)
}

func TestControllerKeyReleaseStopsMovement(t *testing.T) {
	ctrl := NewController(WithSpeed(4))
	cam := NewCamera(WithController(ctrl))

	ctrl.ProcessKey(common.KeyW, true)
	cam.Update(1.0)
	ctrl.ProcessKey(common.KeyW, false)
	x1, _, _ := cam.Position()
	cam.Update(1.0)
	x2, _, _ := cam.Position()

	assert.Equal(t, x1, x2)
}

func TestControllerMouseDeltaConsumedOnce(t *testing.T) {
	ctrl := NewController(WithSensitivity(1))
	cam := NewCamera(WithController(ctrl))

	ctrl.HandleMouse(10, 0)
	cam.Update(0.1)
	yaw1 := cam.Yaw()
	require.NotZero(t, yaw1)

	cam.Update(0.1)
	assert.Equal(t, yaw1, cam.Yaw())
}

func TestControllerIgnoresUnboundKeys(t *testing.T) {
	ctrl := NewController()
	assert.False(t, ctrl.ProcessKey(common.KeyQ, true))
}
