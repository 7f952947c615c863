package gpu

import "errors"

// Sentinel errors for device and surface lifecycle failures. Callers classify
// with errors.Is; wrapped variants carry the underlying wgpu error text.
var (
	// ErrAdapterNotFound indicates no compatible GPU adapter exists on this system.
	ErrAdapterNotFound = errors.New("gpu: no compatible adapter found")

	// ErrDeviceCreationFailed indicates feature/limit negotiation with the adapter failed.
	ErrDeviceCreationFailed = errors.New("gpu: device creation failed")

	// ErrUnsupportedSurfaceConfig indicates a surface configuration with invalid
	// dimensions or an unsupported format was requested.
	ErrUnsupportedSurfaceConfig = errors.New("gpu: unsupported surface configuration")

	// ErrSurfaceLost indicates the presentation surface is gone and must be recreated.
	ErrSurfaceLost = errors.New("gpu: surface lost")

	// ErrSurfaceOutdated indicates the surface no longer matches the window
	// (typically after a resize); the caller must Reconfigure and retry.
	ErrSurfaceOutdated = errors.New("gpu: surface outdated")

	// ErrAcquireTimeout indicates no presentable target became available within
	// the driver's deadline.
	ErrAcquireTimeout = errors.New("gpu: frame acquisition timed out")

	// ErrFrameInFlight indicates AcquireFrame was called while a previously
	// acquired frame has not yet been presented or dropped.
	ErrFrameInFlight = errors.New("gpu: previous frame not yet presented")
)

// validateSurfaceConfig checks requested surface dimensions before any call
// into the underlying surface. Zero or negative dimensions are rejected so a
// minimized window can never crash surface configuration.
//
// Parameters:
//   - width: requested surface width in pixels
//   - height: requested surface height in pixels
//
// Returns:
//   - error: ErrUnsupportedSurfaceConfig if the dimensions are invalid, otherwise nil
func validateSurfaceConfig(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrUnsupportedSurfaceConfig
	}
	return nil
}
