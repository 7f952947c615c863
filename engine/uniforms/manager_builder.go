package uniforms

import (
	"github.com/caldera3d/caldera/engine/camera"
	"github.com/caldera3d/caldera/engine/light"
	"github.com/caldera3d/caldera/engine/resource"
	"github.com/caldera3d/caldera/engine/scene"
)

type ManagerBuilderOption func(*managerImpl)

// WithCamera sets the camera the manager updates and uploads.
//
// Parameters:
//   - cam: the camera to manage
//
// Returns:
//   - ManagerBuilderOption: a function that sets the camera
func WithCamera(cam camera.Camera) ManagerBuilderOption {
	return func(m *managerImpl) {
		m.camera = cam
	}
}

// WithLight sets the light the manager advances and uploads.
//
// Parameters:
//   - lt: the light to manage
//
// Returns:
//   - ManagerBuilderOption: a function that sets the light
func WithLight(lt light.Light) ManagerBuilderOption {
	return func(m *managerImpl) {
		m.light = lt
	}
}

// WithInstances sets the initial instance records; their packed model
// matrices size the instance buffer for the manager's lifetime.
//
// Parameters:
//   - records: the records, in draw order
//
// Returns:
//   - ManagerBuilderOption: a function that sets the records
func WithInstances(records []scene.InstanceRecord) ManagerBuilderOption {
	return func(m *managerImpl) {
		m.instances = append([]scene.InstanceRecord(nil), records...)
	}
}

// NewManager creates a manager with a default camera and light, applies the
// options, and allocates the uniform and instance buffers through the cache.
//
// Parameters:
//   - cache: the cache to allocate buffers from
//   - options: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the new manager
//   - error: error if buffer allocation fails
func NewManager(cache resource.Cache, options ...ManagerBuilderOption) (Manager, error) {
	m := &managerImpl{
		cache:  cache,
		camera: camera.NewCamera(),
		light:  light.NewLight(),
	}
	for _, opt := range options {
		opt(m)
	}

	if err := m.createBuffers(); err != nil {
		m.Release()
		return nil, err
	}
	return m, nil
}
