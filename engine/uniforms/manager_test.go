package uniforms

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera3d/caldera/engine/camera"
	"github.com/caldera3d/caldera/engine/light"
	"github.com/caldera3d/caldera/engine/resource"
	"github.com/caldera3d/caldera/engine/scene"
)

type bufferCall struct {
	label string
	size  uint64
	usage wgpu.BufferUsage
	data  []byte
}

// recordingCache captures buffer traffic so manager behavior is checkable
// without a GPU device.
type recordingCache struct {
	resource.Cache

	creates []bufferCall
	writes  []bufferCall
}

func (c *recordingCache) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage, initialData []byte) (resource.BufferHandle, error) {
	c.creates = append(c.creates, bufferCall{label: label, size: size, usage: usage, data: append([]byte(nil), initialData...)})
	return resource.BufferHandle{}, nil
}

func (c *recordingCache) WriteBuffer(_ resource.BufferHandle, _ uint64, data []byte) error {
	c.writes = append(c.writes, bufferCall{size: uint64(len(data)), data: append([]byte(nil), data...)})
	return nil
}

func (c *recordingCache) ReleaseBuffer(resource.BufferHandle) error {
	return nil
}

func TestNewManagerAllocatesBuffers(t *testing.T) {
	rec := &recordingCache{}
	records := scene.Grid(2, 3.0)

	m, err := NewManager(rec, WithInstances(records))
	require.NoError(t, err)
	require.Len(t, rec.creates, 3)

	var camUniform camera.CameraUniform
	assert.Equal(t, "camera uniform", rec.creates[0].label)
	assert.Equal(t, camUniform.Size(), rec.creates[0].size)
	assert.Len(t, rec.creates[0].data, int(camUniform.Size()), "initial camera upload fills the buffer")
	assert.NotZero(t, rec.creates[0].usage&wgpu.BufferUsageUniform)
	assert.NotZero(t, rec.creates[0].usage&wgpu.BufferUsageCopyDst)

	var lightUniform light.LightUniform
	assert.Equal(t, "light uniform", rec.creates[1].label)
	assert.Equal(t, lightUniform.Size(), rec.creates[1].size)
	assert.Len(t, rec.creates[1].data, int(lightUniform.Size()), "initial light upload fills the buffer")

	assert.Equal(t, "instance matrices", rec.creates[2].label)
	assert.EqualValues(t, 4*scene.InstanceStride, rec.creates[2].size)
	assert.NotZero(t, rec.creates[2].usage&wgpu.BufferUsageVertex)

	assert.EqualValues(t, 4, m.InstanceCount())
}

func TestNewManagerWithoutInstances(t *testing.T) {
	rec := &recordingCache{}

	m, err := NewManager(rec)
	require.NoError(t, err)

	assert.Len(t, rec.creates, 2)
	assert.Zero(t, m.InstanceCount())
}

func TestUpdateWritesBothUniforms(t *testing.T) {
	rec := &recordingCache{}
	cam := camera.NewCamera(camera.WithPosition(1, 2, 3))
	lt := light.NewLight(light.WithPosition(4, 2, 0))

	m, err := NewManager(rec, WithCamera(cam), WithLight(lt))
	require.NoError(t, err)

	require.NoError(t, m.Update(0.016))
	require.Len(t, rec.writes, 2)

	var camUniform camera.CameraUniform
	var lightUniform light.LightUniform
	assert.Equal(t, camUniform.Size(), rec.writes[0].size)
	assert.Equal(t, lightUniform.Size(), rec.writes[1].size)

	// The uploaded camera bytes open with the world position.
	current := cam.Uniform()
	expected := current.Marshal()
	assert.Equal(t, expected[:16], rec.writes[0].data[:16])
}

func TestUpdateAdvancesLight(t *testing.T) {
	rec := &recordingCache{}
	lt := light.NewLight(light.WithPosition(4, 2, 0), light.WithAngularVelocity(1.0))

	m, err := NewManager(rec, WithLight(lt))
	require.NoError(t, err)

	bx, by, bz := lt.Position()
	require.NoError(t, m.Update(0.5))
	ax, ay, az := lt.Position()

	assert.False(t, bx == ax && bz == az, "light did not orbit")
	assert.InDelta(t, by, ay, 1e-6)
}

func TestSetInstancesRepacks(t *testing.T) {
	rec := &recordingCache{}
	records := scene.Grid(2, 1.0)

	m, err := NewManager(rec, WithInstances(records))
	require.NoError(t, err)

	moved := m.Instances()
	moved[0].Position[1] = 5.0
	require.NoError(t, m.SetInstances(moved))

	require.Len(t, rec.writes, 1)
	assert.EqualValues(t, 4*scene.InstanceStride, rec.writes[0].size)
	assert.Equal(t, scene.PackInstances(moved), rec.writes[0].data)
}

func TestSetInstancesRejectsCountChange(t *testing.T) {
	rec := &recordingCache{}

	m, err := NewManager(rec, WithInstances(scene.Grid(2, 1.0)))
	require.NoError(t, err)

	err = m.SetInstances(scene.Grid(3, 1.0))
	assert.Error(t, err)
	assert.EqualValues(t, 4, m.InstanceCount())
}

func TestInstancesReturnsCopy(t *testing.T) {
	rec := &recordingCache{}

	m, err := NewManager(rec, WithInstances(scene.Grid(2, 1.0)))
	require.NoError(t, err)

	cp := m.Instances()
	cp[0].Position[0] = 99

	assert.NotEqual(t, cp[0].Position, m.Instances()[0].Position)
}
