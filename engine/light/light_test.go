package light

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightUniformLayout(t *testing.T) {
	u := LightUniform{
		Position: [3]float32{1, 2, 3},
		Color:    [3]float32{0.5, 0.25, 1},
	}

	assert.EqualValues(t, 32, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 32)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[12:16], "padding after position")
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[28:32], "padding after color")
}

func TestAdvanceQuarterTurn(t *testing.T) {
	l := NewLight(
		WithPosition(4, 2, 0),
		WithAngularVelocity(math32.Pi/2),
	)

	l.Advance(1.0)

	x, y, z := l.Position()
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 2, y, 1e-5, "height preserved")
	assert.InDelta(t, 4, z, 1e-5)
}

func TestAdvanceIsFrameRateIndependent(t *testing.T) {
	run := func(steps int) (float32, float32, float32) {
		l := NewLight(WithPosition(3, 1, -2), WithAngularVelocity(1.5))
		dt := float32(2.0) / float32(steps)
		for i := 0; i < steps; i++ {
			l.Advance(dt)
		}
		return l.Position()
	}

	x1, y1, z1 := run(1)
	x2, y2, z2 := run(120)
	assert.InDelta(t, x1, x2, 1e-4)
	assert.InDelta(t, y1, y2, 1e-4)
	assert.InDelta(t, z1, z2, 1e-4)
}

func TestAdvancePreservesRadius(t *testing.T) {
	l := NewLight(WithPosition(5, 3, 0), WithAngularVelocity(0.7))

	for i := 0; i < 10000; i++ {
		l.Advance(0.016)
	}

	x, _, z := l.Position()
	radius := math32.Hypot(x, z)
	assert.InDelta(t, 5.0, radius, 1e-3)
}

func TestSetPositionRestartsOrbit(t *testing.T) {
	l := NewLight(WithPosition(1, 0, 0), WithAngularVelocity(math32.Pi))
	l.Advance(0.5)

	l.SetPosition(0, 7, 2)
	x, y, z := l.Position()
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 7, y, 1e-6)
	assert.InDelta(t, 2, z, 1e-6)
}

func TestUniformTracksState(t *testing.T) {
	l := NewLight(WithPosition(2, 1, 0), WithColor(1, 0.5, 0))

	u := l.Uniform()
	assert.Equal(t, [3]float32{2, 1, 0}, u.Position)
	assert.Equal(t, [3]float32{1, 0.5, 0}, u.Color)
}
