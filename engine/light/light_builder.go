package light

import (
	"sync"

	"github.com/chewxy/math32"
)

type LightBuilderOption func(*lightImpl)

// NewLight creates a white point light orbiting at 60 degrees per second and
// applies the given options.
//
// Parameters:
//   - options: optional configuration functions
//
// Returns:
//   - Light: the new light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:              &sync.Mutex{},
		color:           [3]float32{1, 1, 1},
		angularVelocity: math32.Pi / 3,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// WithPosition sets the light's starting world-space position.
//
// Parameters:
//   - x, y, z: world-space position
//
// Returns:
//   - LightBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.basePosition = [3]float32{x, y, z}
	}
}

// WithColor sets the light's RGB color.
//
// Parameters:
//   - r, g, b: color components
//
// Returns:
//   - LightBuilderOption: a function that sets the color
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithAngularVelocity sets the orbit rate about +Y in radians per second.
//
// Parameters:
//   - radiansPerSecond: the orbit rate
//
// Returns:
//   - LightBuilderOption: a function that sets the orbit rate
func WithAngularVelocity(radiansPerSecond float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.angularVelocity = radiansPerSecond
	}
}
