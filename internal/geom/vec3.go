package geom

import "github.com/chewxy/math32"

// Vec3 is a point or direction in world space. Y is up; the ground plane is XZ,
// matching the scene and viewer.
type Vec3 [3]float32

// V3 returns the vector (x, y, z).
func V3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

func (a Vec3) X() float32 { return a[0] }
func (a Vec3) Y() float32 { return a[1] }
func (a Vec3) Z() float32 { return a[2] }

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (a Vec3) MulScalar(s float32) Vec3 {
	return Vec3{a[0] * s, a[1] * s, a[2] * s}
}

func (a Vec3) Dot(b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Length returns the Euclidean length of a.
func (a Vec3) Length() float32 {
	return math32.Sqrt(a.Dot(a))
}

// Normal returns a scaled to unit length. The zero vector stays zero.
func (a Vec3) Normal() Vec3 {
	l := a.Length()
	if l == 0 {
		return Vec3{}
	}
	return a.MulScalar(1 / l)
}

// Lerp returns a + (b-a)*t. t == 0 returns a exactly.
func (a Vec3) Lerp(b Vec3, t float32) Vec3 {
	if t == 0 {
		return a
	}
	return a.Add(b.Sub(a).MulScalar(t))
}

// Ground returns a projected onto the XZ plane (Y zeroed).
func (a Vec3) Ground() Vec3 {
	return Vec3{a[0], 0, a[2]}
}

// IsZero reports whether all components are zero.
func (a Vec3) IsZero() bool {
	return a[0] == 0 && a[1] == 0 && a[2] == 0
}

// IsFinite reports whether no component is NaN or infinite.
func (a Vec3) IsFinite() bool {
	return IsFinite(a[0]) && IsFinite(a[1]) && IsFinite(a[2])
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// PositiveZero turns -0 into 0 and returns every other value unchanged.
func PositiveZero(f float32) float32 {
	if f == 0 {
		return 0
	}
	return f
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * 180 / math32.Pi
}
