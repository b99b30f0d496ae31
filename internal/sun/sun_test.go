package sun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func TestNoonPointsDown(t *testing.T) {
	for n := NorthNegX; n <= NorthPosZ; n++ {
		d, err := Direction(n, 12)
		require.NoError(t, err)
		assert.InDelta(t, 0, d.X(), tol, "north %d", n)
		assert.InDelta(t, -1, d.Y(), tol, "north %d", n)
		assert.InDelta(t, 0, d.Z(), tol, "north %d", n)

		up, err := ToLight(n, 12)
		require.NoError(t, err)
		assert.InDelta(t, 1, up.Y(), tol)
	}
}

func TestSunriseIsHorizontal(t *testing.T) {
	d, err := Direction(NorthNegX, 6)
	require.NoError(t, err)
	assert.InDelta(t, 0, d.Y(), tol)
	assert.InDelta(t, -1, d.Z(), tol)

	d, err = Direction(NorthNegZ, 6)
	require.NoError(t, err)
	assert.InDelta(t, 0, d.Y(), tol)
	assert.InDelta(t, 1, d.X(), tol)

	d, err = Direction(NorthPosZ, 6)
	require.NoError(t, err)
	assert.InDelta(t, -1, d.X(), tol)
}

func TestRotation(t *testing.T) {
	r, err := Rotation(NorthNegX, 4)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{30, 0, 0}, r)
	r, err = Rotation(NorthPosX, 4)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{150, 0, 0}, r)
	r, err = Rotation(NorthNegZ, 2)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{90, 0, -30}, r)
	r, err = Rotation(NorthPosZ, 2)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{90, 0, 30}, r)
}

func TestInvalidInputs(t *testing.T) {
	_, err := Rotation(0, 12)
	assert.ErrorIs(t, err, ErrInvalidNorth)
	_, err = Direction(5, 12)
	assert.ErrorIs(t, err, ErrInvalidNorth)
	_, err = Direction(NorthNegX, 25)
	assert.ErrorIs(t, err, ErrInvalidHour)
	_, err = ToLight(NorthNegX, -1)
	assert.ErrorIs(t, err, ErrInvalidHour)
}

func TestCycle(t *testing.T) {
	c := DefaultCycle()
	require.NoError(t, c.Validate())
	assert.Equal(t, float32(6), c.HourAt(-10))
	assert.Equal(t, float32(12), c.HourAt(100))
	assert.Equal(t, float32(18), c.HourAt(500))

	assert.ErrorIs(t, Cycle{FrameStart: 10, FrameEnd: 10, HourStart: 1, HourEnd: 2}.Validate(), ErrInvalidCycle)
	assert.ErrorIs(t, Cycle{FrameStart: 0, FrameEnd: 10, HourStart: 9, HourEnd: 8}.Validate(), ErrInvalidCycle)
	assert.ErrorIs(t, Cycle{FrameStart: 0, FrameEnd: 10, HourStart: 20, HourEnd: 30}.Validate(), ErrInvalidHour)
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	l, err := s.ToLightAt(1000)
	require.NoError(t, err)
	assert.InDelta(t, 1, l.Y(), tol)

	c := DefaultCycle()
	s.Cycle = &c
	assert.Equal(t, float32(6), s.HourAt(0))
	l, err = s.ToLightAt(0)
	require.NoError(t, err)
	assert.InDelta(t, 0, l.Y(), tol)

	s.Cycle = &Cycle{FrameStart: 5, FrameEnd: 1, HourStart: 1, HourEnd: 2}
	assert.ErrorIs(t, s.Validate(), ErrInvalidCycle)
	assert.ErrorIs(t, Settings{North: 9}.Validate(), ErrInvalidNorth)
}

func TestLight(t *testing.T) {
	assert.Equal(t, [3]float32{1, 1, 1}, DefaultSettings().Light())
	// Unset intensity and colour read as a white sun of intensity 1.
	assert.Equal(t, [3]float32{1, 1, 1}, Settings{North: NorthNegX, Hour: 12}.Light())

	s := Settings{North: NorthNegX, Hour: 12, Intensity: 2, Color: [3]float32{1, 0.5, 0.25}}
	require.NoError(t, s.Validate())
	assert.Equal(t, [3]float32{2, 1, 0.5}, s.Light())

	s.Intensity = MaxIntensity + 1
	assert.ErrorIs(t, s.Validate(), ErrInvalidLight)
	s.Intensity = -1
	assert.ErrorIs(t, s.Validate(), ErrInvalidLight)
	s.Intensity = 1
	s.Color = [3]float32{1, 2, 0}
	assert.ErrorIs(t, s.Validate(), ErrInvalidLight)
}
