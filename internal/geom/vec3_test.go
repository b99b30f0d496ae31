package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol = 1e-6

func TestVec3Basics(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)
	assert.Equal(t, V3(5, 7, 9), a.Add(b))
	assert.Equal(t, V3(3, 3, 3), b.Sub(a))
	assert.Equal(t, V3(2, 4, 6), a.MulScalar(2))
	assert.Equal(t, float32(32), a.Dot(b))
	assert.Equal(t, V3(1, 0, 3), a.Ground())
	assert.InDelta(t, 5, V3(3, 0, 4).Length(), tol)
}

func TestVec3Normal(t *testing.T) {
	n := V3(0, 0, 10).Normal()
	assert.Equal(t, V3(0, 0, 1), n)
	assert.True(t, Vec3{}.Normal().IsZero())
}

func TestVec3Lerp(t *testing.T) {
	a := V3(0, 0, 0)
	b := V3(10, 0, 0)
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, V3(5, 0, 0), a.Lerp(b, 0.5))
	assert.Equal(t, b, a.Lerp(b, 1))
}

func TestVec3IsFinite(t *testing.T) {
	assert.True(t, V3(1, 2, 3).IsFinite())
	var zero float32
	assert.False(t, V3(1, 0/zero*0, 3).IsFinite())
	assert.False(t, V3(1/zero, 0, 0).IsFinite())
	assert.False(t, IsFinite(-1/zero))
	assert.True(t, IsFinite(3e38))
}

func TestPositiveZero(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	assert.True(t, math.Signbit(float64(negZero)))
	assert.False(t, math.Signbit(float64(PositiveZero(negZero))))
	assert.Equal(t, float32(-2), PositiveZero(-2))
}

func TestAngles(t *testing.T) {
	assert.InDelta(t, 180, RadToDeg(DegToRad(180)), 1e-4)
	assert.InDelta(t, 1.5707963, DegToRad(90), tol)
}
