// Package placement perturbs an anchor transform taken from a path into the
// transform of one placed instance.
package placement

import (
	"errors"
	"fmt"

	"env-generator/internal/geom"
	"github.com/chewxy/math32"
)

// ErrInvalidParams is returned for out-of-range or missing configuration.
var ErrInvalidParams = errors.New("invalid placement params")

// Rand is the random source a placement draws from. *math/rand/v2.Rand satisfies it.
// One source belongs to one populate call for its whole duration.
type Rand interface {
	Float32() float32
	IntN(n int) int
}

// Params controls how far instances stray from their anchors. It is passed by value
// and never modified.
type Params struct {
	// OffsetRange is the largest sideways offset, drawn from [0, OffsetRange].
	OffsetRange float32 `yaml:"offset_range,omitempty" toml:"offset_range,omitempty" json:"offset_range,omitempty"`
	// RotationRange in degrees; yaw is drawn from [-RotationRange, RotationRange]
	// unless FollowCurve is set.
	RotationRange float32 `yaml:"rotation_range,omitempty" toml:"rotation_range,omitempty" json:"rotation_range,omitempty"`
	// FollowCurve takes yaw from the path tangent instead of the random draw.
	FollowCurve bool `yaml:"follow_curve,omitempty" toml:"follow_curve,omitempty" json:"follow_curve,omitempty"`
	// ScaleJitterMax > 0 draws a uniform scale from [1, ScaleJitterMax]; 0 disables scaling.
	ScaleJitterMax float32 `yaml:"scale_jitter_max,omitempty" toml:"scale_jitter_max,omitempty" json:"scale_jitter_max,omitempty"`
}

// Validate reports ErrInvalidParams for negative or non-finite ranges.
func (p Params) Validate() error {
	check := func(name string, v float32) error {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, name)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %g", ErrInvalidParams, name, v)
		}
		return nil
	}
	if err := check("offset range", p.OffsetRange); err != nil {
		return err
	}
	if err := check("rotation range", p.RotationRange); err != nil {
		return err
	}
	return check("scale jitter", p.ScaleJitterMax)
}

// Anchor is the untouched transform sampled from a path.
type Anchor struct {
	Position geom.Vec3
	Forward  geom.Vec3
}

// Variation is the perturbation computed for one instance. Offset is relative to
// the anchor position. Scaled is false when no scale operation should be applied.
type Variation struct {
	Offset geom.Vec3
	Yaw    float32 // degrees about +Y
	Scale  float32
	Scaled bool
}

// Vary computes the variation for one instance. It always takes three draws from
// rng, in the order rotation, offset, scale, so the n-th instance sees the same
// draws whatever the flags are.
func Vary(a Anchor, p Params, rng Rand) Variation {
	rot := Uniform(rng, -p.RotationRange, p.RotationRange)
	off := Uniform(rng, 0, p.OffsetRange)
	scale := Uniform(rng, 1, p.ScaleJitterMax)

	v := Variation{Yaw: rot, Scale: 1}
	if p.FollowCurve {
		v.Yaw = Heading(a.Forward)
	}
	if off != 0 {
		v.Offset = Lateral(a.Forward).MulScalar(off)
	}
	if p.ScaleJitterMax > 0 {
		v.Scale = scale
		v.Scaled = true
	}
	return v
}

// Uniform draws from [lo, hi] as lo + (hi-lo)*u. A zero-width range returns lo
// exactly; an inverted range draws from [hi, lo]. Zero is always +0.
func Uniform(rng Rand, lo, hi float32) float32 {
	u := rng.Float32()
	if lo == hi {
		return geom.PositiveZero(lo)
	}
	return geom.PositiveZero(lo + (hi-lo)*u)
}

// Heading is the yaw in degrees that turns local +X onto the ground projection of
// forward. A vertical or zero forward has heading 0.
func Heading(forward geom.Vec3) float32 {
	g := forward.Ground()
	if g.IsZero() {
		return 0
	}
	return geom.PositiveZero(geom.RadToDeg(math32.Atan2(-g.Z(), g.X())))
}

// Lateral is the unit ground-plane axis perpendicular to forward: local +Z after
// rotating by Heading(forward). A vertical forward yields +Z.
func Lateral(forward geom.Vec3) geom.Vec3 {
	g := forward.Ground().Normal()
	if g.IsZero() {
		return geom.V3(0, 0, 1)
	}
	return geom.V3(-g.Z(), 0, g.X())
}
