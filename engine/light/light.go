package light

import (
	"sync"

	"github.com/chewxy/math32"
)

type lightImpl struct {
	mu *sync.Mutex

	// basePosition is the orbit's reference point; the current position is
	// basePosition rotated about +Y by angle. Deriving from an absolute angle
	// keeps the orbit radius from drifting over many small steps.
	basePosition [3]float32
	angle        float32

	color [3]float32

	// angularVelocity is the orbit rate about +Y in radians per second.
	angularVelocity float32
}

// Light is a single point light that orbits the world +Y axis. Advancing it
// rotates the position in the XZ plane; height above the plane and distance
// from the axis are preserved exactly.
type Light interface {
	// Position returns the light's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space light position
	Position() (x, y, z float32)

	// SetPosition sets the light's world-space position directly. The orbit
	// continues from the new position.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// Color returns the light's RGB color.
	//
	// Returns:
	//   - r, g, b: color components
	Color() (r, g, b float32)

	// SetColor sets the light's RGB color.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// Advance rotates the light about +Y by angularVelocity * dt. The result
	// depends only on total elapsed time, not on how it is partitioned into
	// frames.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)

	// Uniform packs the light's current state into its GPU uniform layout.
	//
	// Returns:
	//   - LightUniform: the packed uniform value
	Uniform() LightUniform
}

var _ Light = &lightImpl{}

func (l *lightImpl) Position() (x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.positionLocked()
	return p[0], p[1], p[2]
}

func (l *lightImpl) positionLocked() [3]float32 {
	sin, cos := math32.Sincos(l.angle)
	x, z := l.basePosition[0], l.basePosition[2]
	return [3]float32{x*cos - z*sin, l.basePosition[1], x*sin + z*cos}
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.basePosition = [3]float32{x, y, z}
	l.angle = 0
}

func (l *lightImpl) Color() (r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color[0], l.color[1], l.color[2]
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) Advance(dt float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.angle += l.angularVelocity * dt
}

func (l *lightImpl) Uniform() LightUniform {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LightUniform{
		Position: l.positionLocked(),
		Color:    l.color,
	}
}
