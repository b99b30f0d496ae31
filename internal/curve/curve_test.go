package curve

import (
	"testing"

	"env-generator/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func line(t *testing.T) *Path {
	t.Helper()
	p, err := New([]geom.Vec3{{0, 0, 0}, {10, 0, 0}}, Linear)
	require.NoError(t, err)
	return p
}

func TestNewRejectsDegenerate(t *testing.T) {
	_, err := New(nil, Linear)
	assert.ErrorIs(t, err, ErrInvalidCurve)

	_, err = New([]geom.Vec3{{1, 2, 3}}, Linear)
	assert.ErrorIs(t, err, ErrInvalidCurve)

	_, err = New([]geom.Vec3{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}, Linear)
	assert.ErrorIs(t, err, ErrInvalidCurve)

	_, err = New([]geom.Vec3{{1, 2, 3}, {1, 2, 3}}, CatmullRom)
	assert.ErrorIs(t, err, ErrInvalidCurve)

	var zero float32
	_, err = New([]geom.Vec3{{0, 0, 0}, {1 / zero, 0, 0}}, Linear)
	assert.ErrorIs(t, err, ErrInvalidCurve)

	_, err = New([]geom.Vec3{{0, 0, 0}, {1, 0, 0}}, Kind(9))
	assert.ErrorIs(t, err, ErrInvalidCurve)

	// Finite points whose distance overflows float32.
	for _, kind := range []Kind{Linear, CatmullRom} {
		_, err = New([]geom.Vec3{{-3e38, 0, 0}, {3e38, 0, 0}}, kind)
		assert.ErrorIs(t, err, ErrInvalidCurve, kind.String())
	}
	_, err = New([]geom.Vec3{{0, 0, 0}, {3e38, 0, 0}, {0, 0, 0}, {3e38, 0, 0}}, Linear)
	assert.ErrorIs(t, err, ErrInvalidCurve)
}

func TestStraightLineSamples(t *testing.T) {
	p := line(t)
	assert.Equal(t, float32(10), p.Length())

	samples, err := SampleN(p, 3)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, geom.V3(0, 0, 0), samples[0].Position)
	assert.Equal(t, geom.V3(5, 0, 0), samples[1].Position)
	assert.Equal(t, geom.V3(10, 0, 0), samples[2].Position)
	for i, s := range samples {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, geom.V3(1, 0, 0), s.Forward)
	}
	assert.Equal(t, []float32{0, 0.5, 1}, []float32{samples[0].T, samples[1].T, samples[2].T})
}

func TestSingleSampleIsStart(t *testing.T) {
	samples, err := SampleN(line(t), 1)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, float32(0), samples[0].T)
	assert.Equal(t, geom.V3(0, 0, 0), samples[0].Position)
}

func TestSampleNErrors(t *testing.T) {
	_, err := SampleN(nil, 3)
	assert.ErrorIs(t, err, ErrInvalidCurve)

	_, err = SampleN(line(t), 0)
	assert.Error(t, err)
}

func TestArcLengthSpacing(t *testing.T) {
	// L-shaped path: 4 units along X then 6 along Z.
	p, err := New([]geom.Vec3{{0, 0, 0}, {4, 0, 0}, {4, 0, 6}}, Linear)
	require.NoError(t, err)
	assert.InDelta(t, 10, p.Length(), tol)

	samples, err := SampleN(p, 6)
	require.NoError(t, err)
	for i := 1; i < len(samples); i++ {
		d := samples[i].Position.Sub(samples[i-1].Position).Length()
		// Every step spans 2 units of arc; across the corner the chord is shorter.
		assert.LessOrEqual(t, d, float32(2)+tol)
		assert.Greater(t, samples[i].T, samples[i-1].T)
	}
	// t=0.4 lands on the corner and uses the outgoing segment.
	assert.InDelta(t, 4, samples[2].Position.X(), tol)
	assert.InDelta(t, 0, samples[2].Position.Z(), tol)
	assert.Equal(t, geom.V3(0, 0, 1), samples[2].Forward)
	assert.Equal(t, geom.V3(4, 0, 6), samples[5].Position)
}

func TestDeterministic(t *testing.T) {
	ctrl := []geom.Vec3{{0, 0, 0}, {3, 1, 2}, {6, 0, -1}, {9, 2, 0}}
	a, err := New(ctrl, CatmullRom)
	require.NoError(t, err)
	b, err := New(ctrl, CatmullRom)
	require.NoError(t, err)
	sa, _ := SampleN(a, 25)
	sb, _ := SampleN(b, 25)
	assert.Equal(t, sa, sb)
}

func TestCatmullRomPassesThroughControlPoints(t *testing.T) {
	ctrl := []geom.Vec3{{0, 0, 0}, {5, 0, 5}, {10, 0, 0}}
	p, err := New(ctrl, CatmullRom)
	require.NoError(t, err)
	pts := p.Points()
	assert.Equal(t, ctrl[0], pts[0])
	assert.Equal(t, ctrl[1], pts[segmentsPerSpan])
	assert.Equal(t, ctrl[2], pts[len(pts)-1])

	start, fwd := p.At(0)
	assert.Equal(t, ctrl[0], start)
	assert.InDelta(t, 1, fwd.Length(), tol)
	end, _ := p.At(1)
	assert.Equal(t, ctrl[2], end)
}

func TestAtClampsParameter(t *testing.T) {
	p := line(t)
	lo, _ := p.At(-3)
	hi, _ := p.At(7)
	assert.Equal(t, geom.V3(0, 0, 0), lo)
	assert.Equal(t, geom.V3(10, 0, 0), hi)
}

func TestPointsIsCopy(t *testing.T) {
	p := line(t)
	pts := p.Points()
	pts[0] = geom.V3(99, 99, 99)
	assert.Equal(t, geom.V3(0, 0, 0), p.Points()[0])
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Linear, k)
	k, err = ParseKind("Spline")
	require.NoError(t, err)
	assert.Equal(t, CatmullRom, k)
	assert.Equal(t, "catmullrom", k.String())
	_, err = ParseKind("nurbs")
	assert.Error(t, err)
}
