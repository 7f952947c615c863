package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	BuildModelMatrix(m[:], 1, 2, 3, 0.5, 0.25, 0.75, 1, 1, 1)

	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	Mul4(out[:], m[:], id[:])
	assert.Equal(t, m, out)
}

func TestMul4Aliasing(t *testing.T) {
	var a, b, want [16]float32
	BuildModelMatrix(a[:], 1, 0, 0, 0, 0.3, 0, 1, 1, 1)
	BuildModelMatrix(b[:], 0, 2, 0, 0.1, 0, 0, 1, 1, 1)

	Mul4(want[:], a[:], b[:])

	got := a
	Mul4(got[:], got[:], b[:])
	assert.Equal(t, want, got)
}

func TestInvert4RoundTrip(t *testing.T) {
	var m, inv, out [16]float32
	BuildModelMatrix(m[:], 4, -2, 7, 0.4, 1.1, -0.6, 1, 1, 1)

	require.True(t, Invert4(inv[:], m[:]))
	Mul4(out[:], m[:], inv[:])

	var id [16]float32
	Identity(id[:])
	for i := range out {
		assert.InDelta(t, id[i], out[i], 1e-5, "element %d", i)
	}
}

func TestInvert4Singular(t *testing.T) {
	var m, out [16]float32 // all-zero matrix has det 0
	assert.False(t, Invert4(out[:], m[:]))
}

func TestTranspose4(t *testing.T) {
	var m, tr, back [16]float32
	BuildModelMatrix(m[:], 1, 2, 3, 0.2, 0.4, 0.6, 1, 1, 1)
	Transpose4(tr[:], m[:])
	Transpose4(back[:], tr[:])
	assert.Equal(t, m, back)
	assert.Equal(t, m[1], tr[4])
	assert.Equal(t, m[12], tr[3])
}

func TestPerspectiveDepthRange(t *testing.T) {
	var p [16]float32
	Perspective(p[:], 1.0, 16.0/9.0, 0.1, 100)

	// A point on the near plane must map to NDC depth 0, the far plane to 1.
	nearZ := project(p, 0, 0, -0.1)
	farZ := project(p, 0, 0, -100)
	assert.InDelta(t, 0.0, nearZ, 1e-5)
	assert.InDelta(t, 1.0, farZ, 1e-4)
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	var v [16]float32
	LookAt(v[:], 3, 4, 5, 0, 0, 0, 0, 1, 0)

	x, y, z := transformPoint(v, 3, 4, 5)
	assert.InDelta(t, 0.0, x, 1e-5)
	assert.InDelta(t, 0.0, y, 1e-5)
	assert.InDelta(t, 0.0, z, 1e-5)
}

func TestLookToMatchesLookAt(t *testing.T) {
	var a, b [16]float32
	LookAt(a[:], 1, 2, 3, 1, 2, -7, 0, 1, 0)
	LookTo(b[:], 1, 2, 3, 0, 0, -10, 0, 1, 0)
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-5, "element %d", i)
	}
}

func TestTranslation(t *testing.T) {
	var m [16]float32
	Translation(m[:], 5, -6, 7)
	x, y, z := transformPoint(m, 0, 0, 0)
	assert.Equal(t, float32(5), x)
	assert.Equal(t, float32(-6), y)
	assert.Equal(t, float32(7), z)
}

// project applies a projection matrix to a point and returns NDC depth.
func project(m [16]float32, x, y, z float32) float32 {
	zc := m[2]*x + m[6]*y + m[10]*z + m[14]
	wc := m[3]*x + m[7]*y + m[11]*z + m[15]
	return zc / wc
}

// transformPoint applies a column-major matrix to a point (w=1).
func transformPoint(m [16]float32, x, y, z float32) (float32, float32, float32) {
	ox := m[0]*x + m[4]*y + m[8]*z + m[12]
	oy := m[1]*x + m[5]*y + m[9]*z + m[13]
	oz := m[2]*x + m[6]*y + m[10]*z + m[14]
	return ox, oy, oz
}
