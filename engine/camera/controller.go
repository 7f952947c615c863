package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/caldera3d/caldera/common"
)

// Controller accumulates raw input between frames and integrates it into a
// Camera once per frame. Key state is level-based (held keys contribute every
// frame); mouse and scroll deltas are edge-based and consumed by Apply.
type Controller interface {
	// ProcessKey records a key press or release. Reports whether the key is
	// one the controller responds to.
	//
	// Parameters:
	//   - keyCode: the virtual key code (see common key constants)
	//   - pressed: true on press, false on release
	//
	// Returns:
	//   - bool: true if the key was handled
	ProcessKey(keyCode uint32, pressed bool) bool

	// HandleMouse accumulates a mouse-look delta in pixels.
	//
	// Parameters:
	//   - dx, dy: cursor movement since the last event
	HandleMouse(dx, dy float64)

	// HandleScroll accumulates a scroll delta. Positive values dolly the
	// camera forward along its view direction.
	//
	// Parameters:
	//   - delta: scroll amount in lines
	HandleScroll(delta float64)

	// Apply integrates the accumulated input into the camera over dt seconds
	// and resets the edge-based deltas.
	//
	// Parameters:
	//   - cam: the camera to move
	//   - dt: elapsed time in seconds
	Apply(cam Camera, dt float32)
}

type controllerImpl struct {
	mu *sync.Mutex

	amountLeft     float32
	amountRight    float32
	amountForward  float32
	amountBackward float32
	amountUp       float32
	amountDown     float32

	rotateHorizontal float32
	rotateVertical   float32
	scroll           float32

	speed       float32
	sensitivity float32
}

var _ Controller = &controllerImpl{}

func (c *controllerImpl) ProcessKey(keyCode uint32, pressed bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	amount := float32(0)
	if pressed {
		amount = 1
	}
	switch keyCode {
	case common.KeyW, common.KeyUp:
		c.amountForward = amount
	case common.KeyS, common.KeyDown:
		c.amountBackward = amount
	case common.KeyA, common.KeyLeft:
		c.amountLeft = amount
	case common.KeyD, common.KeyRight:
		c.amountRight = amount
	case common.KeySpace:
		c.amountUp = amount
	case common.KeyLeftShift:
		c.amountDown = amount
	default:
		return false
	}
	return true
}

func (c *controllerImpl) HandleMouse(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotateHorizontal += float32(dx)
	c.rotateVertical += float32(dy)
}

func (c *controllerImpl) HandleScroll(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scroll += float32(delta)
}

func (c *controllerImpl) Apply(cam Camera, dt float32) {
	c.mu.Lock()
	forward := c.amountForward - c.amountBackward
	strafe := c.amountRight - c.amountLeft
	lift := c.amountUp - c.amountDown
	rotH := c.rotateHorizontal
	rotV := c.rotateVertical
	scroll := c.scroll
	c.rotateHorizontal = 0
	c.rotateVertical = 0
	c.scroll = 0
	speed := c.speed
	sensitivity := c.sensitivity
	c.mu.Unlock()

	x, y, z := cam.Position()
	yaw := cam.Yaw()
	pitch := cam.Pitch()

	sinY, cosY := math32.Sincos(yaw)
	x += cosY * forward * speed * dt
	z += sinY * forward * speed * dt
	x += -sinY * strafe * speed * dt
	z += cosY * strafe * speed * dt

	// Scroll dollies along the full view direction, pitch included.
	sinP, cosP := math32.Sincos(pitch)
	x += cosP * cosY * scroll * speed * sensitivity * dt
	y += sinP * scroll * speed * sensitivity * dt
	z += cosP * sinY * scroll * speed * sensitivity * dt

	y += lift * speed * dt

	yaw += rotH * sensitivity * dt
	pitch -= rotV * sensitivity * dt

	cam.SetPose(x, y, z, yaw, pitch)
}
