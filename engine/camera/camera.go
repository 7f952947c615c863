package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/caldera3d/caldera/common"
)

// safePitchLimit keeps the pitch strictly inside +/- pi/2 so the view basis
// never degenerates when looking straight up or down.
const safePitchLimit = math32.Pi/2 - 0.0001

type cameraImpl struct {
	mu *sync.Mutex

	position [3]float32
	yaw      float32
	pitch    float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	controller Controller
}

// Camera is a first-person fly camera. It holds a position plus yaw/pitch
// orientation and perspective settings, and computes view and projection
// matrices on demand. All angles are radians.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Yaw returns the horizontal view angle around +Y.
	//
	// Returns:
	//   - float32: yaw in radians
	Yaw() float32

	// Pitch returns the vertical view angle.
	//
	// Returns:
	//   - float32: pitch in radians
	Pitch() float32

	// SetPose sets position and orientation in one call. Pitch is clamped
	// to keep the view basis valid.
	//
	// Parameters:
	//   - x, y, z: world-space position
	//   - yaw, pitch: view angles in radians
	SetPose(x, y, z, yaw, pitch float32)

	// Resize updates the aspect ratio after a surface resize.
	//
	// Parameters:
	//   - width, height: new surface dimensions in pixels
	Resize(width, height int)

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// Controller returns the attached Controller, or nil.
	//
	// Returns:
	//   - Controller: the attached controller or nil
	Controller() Controller

	// Update advances the camera by one frame: the attached controller's
	// accumulated input is integrated over dt seconds. Without a controller
	// this does nothing.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Uniform packs the camera's current state into its GPU uniform layout.
	//
	// Returns:
	//   - CameraUniform: the packed uniform value
	Uniform() CameraUniform
}

var _ Camera = &cameraImpl{}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1], c.position[2]
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) SetPose(x, y, z, yaw, pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
	c.yaw = yaw
	c.pitch = clampPitch(pitch)
}

func (c *cameraImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = float32(width) / float32(height)
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrixLocked()
}

func (c *cameraImpl) viewMatrixLocked() [16]float32 {
	sinP, cosP := math32.Sincos(c.pitch)
	sinY, cosY := math32.Sincos(c.yaw)

	var view [16]float32
	common.LookTo(view[:],
		c.position[0], c.position[1], c.position[2],
		cosP*cosY, sinP, cosP*sinY,
		0, 1, 0,
	)
	return view
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrixLocked()
}

func (c *cameraImpl) projectionMatrixLocked() [16]float32 {
	var proj [16]float32
	common.Perspective(proj[:], c.fov, c.aspect, c.near, c.far)
	return proj
}

func (c *cameraImpl) Controller() Controller {
	return c.controller
}

func (c *cameraImpl) Update(dt float32) {
	if c.controller == nil {
		return
	}
	c.controller.Apply(c, dt)
}

func (c *cameraImpl) Uniform() CameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := c.viewMatrixLocked()
	proj := c.projectionMatrixLocked()

	var u CameraUniform
	u.ViewPosition = [4]float32{c.position[0], c.position[1], c.position[2], 1}
	common.Mul4(u.ViewProj[:], proj[:], view[:])
	u.View = view
	common.Invert4(u.InvProj[:], proj[:])
	common.Transpose4(u.InvView[:], view[:])
	return u
}

func clampPitch(pitch float32) float32 {
	if pitch < -safePitchLimit {
		return -safePitchLimit
	}
	if pitch > safePitchLimit {
		return safePitchLimit
	}
	return pitch
}
