package camera

import "sync"

type ControllerBuilderOption func(*controllerImpl)

// NewController creates a fly-camera controller with default movement speed
// and look sensitivity, and applies the given options.
//
// Parameters:
//   - options: optional configuration functions
//
// Returns:
//   - Controller: the new controller
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controllerImpl{
		mu:          &sync.Mutex{},
		speed:       4.0,
		sensitivity: 0.4,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithSpeed sets the movement speed in world units per second.
//
// Parameters:
//   - speed: movement speed
//
// Returns:
//   - ControllerBuilderOption: a function that sets the speed
func WithSpeed(speed float32) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.speed = speed
	}
}

// WithSensitivity sets the mouse-look sensitivity multiplier.
//
// Parameters:
//   - sensitivity: look sensitivity
//
// Returns:
//   - ControllerBuilderOption: a function that sets the sensitivity
func WithSensitivity(sensitivity float32) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.sensitivity = sensitivity
	}
}
