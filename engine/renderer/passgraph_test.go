package renderer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caldera3d/caldera/engine/resource"
)

func newIdleGraph(state PassState) *graphImpl {
	return &graphImpl{
		mu:    &sync.Mutex{},
		state: state,
	}
}

func TestPassStateString(t *testing.T) {
	assert.Equal(t, "NotRecorded", StateNotRecorded.String())
	assert.Equal(t, "Recording", StateRecording.String())
	assert.Equal(t, "Submitted", StateSubmitted.String())
	assert.Equal(t, "Presented", StatePresented.String())
	assert.Equal(t, "PassState(42)", PassState(42).String())
}

func TestGraphSubmitBeforeRecord(t *testing.T) {
	g := newIdleGraph(StateNotRecorded)

	err := g.Submit()
	assert.ErrorIs(t, err, ErrInvalidPassState)
	assert.Equal(t, StateNotRecorded, g.State())
}

func TestGraphPresentBeforeSubmit(t *testing.T) {
	for _, state := range []PassState{StateNotRecorded, StateRecording, StatePresented} {
		g := newIdleGraph(state)

		err := g.Present()
		assert.ErrorIs(t, err, ErrInvalidPassState)
		assert.Equal(t, state, g.State())
	}
}

func TestGraphRecordWhileInFlight(t *testing.T) {
	for _, state := range []PassState{StateRecording, StateSubmitted} {
		g := newIdleGraph(state)

		err := g.Record(nil)
		assert.ErrorIs(t, err, ErrInvalidPassState)
		assert.Equal(t, state, g.State())
	}
}

func TestGraphAbortRearms(t *testing.T) {
	g := newIdleGraph(StateSubmitted)

	g.Abort()
	assert.Equal(t, StateNotRecorded, g.State())
}

func TestSceneDataZeroValueIsAbsent(t *testing.T) {
	var data SceneData

	assert.Equal(t, resource.BufferHandle{}, data.VertexBuffer)
	assert.Equal(t, resource.BufferHandle{}, data.CameraBuffer)
	assert.Equal(t, resource.TextureHandle{}, data.Cubemap)
	assert.Zero(t, data.IndexCount)
	assert.Zero(t, data.InstanceCount)
}

func TestMeshVertexLayout(t *testing.T) {
	layout := meshVertexLayout()

	assert.EqualValues(t, 32, layout.ArrayStride)
	assert.Len(t, layout.Attributes, 3)
	assert.EqualValues(t, 12, layout.Attributes[1].Offset)
	assert.EqualValues(t, 20, layout.Attributes[2].Offset)
}

func TestInstanceVertexLayout(t *testing.T) {
	layout := instanceVertexLayout()

	assert.EqualValues(t, 64, layout.ArrayStride)
	assert.Len(t, layout.Attributes, 4)
	for i, attr := range layout.Attributes {
		assert.EqualValues(t, i*16, attr.Offset)
		assert.EqualValues(t, 5+i, attr.ShaderLocation)
	}
}
