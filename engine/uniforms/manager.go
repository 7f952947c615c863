// Package uniforms owns the per-frame GPU buffers (camera, light, instances)
// and writes the current simulation state into them before each submission.
package uniforms

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/caldera3d/caldera/engine/camera"
	"github.com/caldera3d/caldera/engine/light"
	"github.com/caldera3d/caldera/engine/resource"
	"github.com/caldera3d/caldera/engine/scene"
)

type managerImpl struct {
	mu sync.Mutex

	cache  resource.Cache
	camera camera.Camera
	light  light.Light

	instances []scene.InstanceRecord

	cameraBuffer   resource.BufferHandle
	lightBuffer    resource.BufferHandle
	instanceBuffer resource.BufferHandle
}

// Manager owns the uniform and instance buffers for one scene and keeps them
// current. Update must run before the frame's pass graph is submitted; writes
// and draws on the same queue keep their order.
type Manager interface {
	// Camera returns the camera whose uniform this manager uploads.
	//
	// Returns:
	//   - camera.Camera: the managed camera
	Camera() camera.Camera

	// Light returns the light whose uniform this manager uploads.
	//
	// Returns:
	//   - light.Light: the managed light
	Light() light.Light

	// CameraBuffer returns the handle of the camera uniform buffer.
	//
	// Returns:
	//   - resource.BufferHandle: the camera buffer handle
	CameraBuffer() resource.BufferHandle

	// LightBuffer returns the handle of the light uniform buffer.
	//
	// Returns:
	//   - resource.BufferHandle: the light buffer handle
	LightBuffer() resource.BufferHandle

	// InstanceBuffer returns the handle of the packed model-matrix buffer.
	//
	// Returns:
	//   - resource.BufferHandle: the instance buffer handle
	InstanceBuffer() resource.BufferHandle

	// InstanceCount returns how many instances the buffer currently packs.
	//
	// Returns:
	//   - uint32: the instance count
	InstanceCount() uint32

	// Instances returns a copy of the current instance records.
	//
	// Returns:
	//   - []scene.InstanceRecord: the records, in draw order
	Instances() []scene.InstanceRecord

	// SetInstances replaces the instance records and rewrites the packed
	// matrix buffer. The record count must match the count the buffer was
	// sized for.
	//
	// Parameters:
	//   - records: the new records, in draw order
	//
	// Returns:
	//   - error: error if the count changed or the write fails
	SetInstances(records []scene.InstanceRecord) error

	// Update advances the camera controller and light orbit by dt and
	// uploads both uniforms.
	//
	// Parameters:
	//   - dt: elapsed time in seconds since the previous update
	//
	// Returns:
	//   - error: error if a buffer write fails
	Update(dt float32) error

	// Release frees the manager's buffers.
	Release()
}

var _ Manager = &managerImpl{}

func (m *managerImpl) Camera() camera.Camera {
	return m.camera
}

func (m *managerImpl) Light() light.Light {
	return m.light
}

func (m *managerImpl) CameraBuffer() resource.BufferHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cameraBuffer
}

func (m *managerImpl) LightBuffer() resource.BufferHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lightBuffer
}

func (m *managerImpl) InstanceBuffer() resource.BufferHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instanceBuffer
}

func (m *managerImpl) InstanceCount() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(len(m.instances))
}

func (m *managerImpl) Instances() []scene.InstanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]scene.InstanceRecord, len(m.instances))
	copy(cp, m.instances)
	return cp
}

func (m *managerImpl) SetInstances(records []scene.InstanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(records) != len(m.instances) {
		return fmt.Errorf("instance count changed from %d to %d", len(m.instances), len(records))
	}
	m.instances = append(m.instances[:0], records...)
	if len(m.instances) == 0 {
		return nil
	}
	return m.cache.WriteBuffer(m.instanceBuffer, 0, scene.PackInstances(m.instances))
}

func (m *managerImpl) Update(dt float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.camera.Update(dt)
	m.light.Advance(dt)

	camUniform := m.camera.Uniform()
	if err := m.cache.WriteBuffer(m.cameraBuffer, 0, camUniform.Marshal()); err != nil {
		return fmt.Errorf("write camera uniform: %w", err)
	}
	lightUniform := m.light.Uniform()
	if err := m.cache.WriteBuffer(m.lightBuffer, 0, lightUniform.Marshal()); err != nil {
		return fmt.Errorf("write light uniform: %w", err)
	}
	return nil
}

func (m *managerImpl) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range []resource.BufferHandle{m.cameraBuffer, m.lightBuffer, m.instanceBuffer} {
		if h != (resource.BufferHandle{}) {
			_ = m.cache.ReleaseBuffer(h)
		}
	}
	m.cameraBuffer = resource.BufferHandle{}
	m.lightBuffer = resource.BufferHandle{}
	m.instanceBuffer = resource.BufferHandle{}
}

func (m *managerImpl) createBuffers() error {
	camUniform := m.camera.Uniform()
	lightUniform := m.light.Uniform()

	var err error
	m.cameraBuffer, err = m.cache.CreateBuffer("camera uniform", camUniform.Size(),
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, camUniform.Marshal())
	if err != nil {
		return fmt.Errorf("create camera buffer: %w", err)
	}

	m.lightBuffer, err = m.cache.CreateBuffer("light uniform", lightUniform.Size(),
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, lightUniform.Marshal())
	if err != nil {
		return fmt.Errorf("create light buffer: %w", err)
	}

	if len(m.instances) > 0 {
		packed := scene.PackInstances(m.instances)
		m.instanceBuffer, err = m.cache.CreateBuffer("instance matrices", uint64(len(packed)),
			wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, packed)
		if err != nil {
			return fmt.Errorf("create instance buffer: %w", err)
		}
	}
	return nil
}
