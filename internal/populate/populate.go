// Package populate distributes copies of source objects along a path. It only
// computes placement records; turning them into scene objects is the host's job.
package populate

import (
	"errors"
	"fmt"

	"env-generator/internal/curve"
	"env-generator/internal/geom"
	"env-generator/internal/placement"
)

// ErrEmptySelector is returned when a selector has no candidate sources.
var ErrEmptySelector = errors.New("selector has no source candidates")

// Record describes one placed instance. Position is Anchor + Offset.
type Record struct {
	Index    int       `yaml:"index" json:"index"`
	T        float32   `yaml:"t" json:"t"`
	Source   string    `yaml:"source" json:"source"`
	Anchor   geom.Vec3 `yaml:"anchor" json:"anchor"`
	Offset   geom.Vec3 `yaml:"offset" json:"offset"`
	Position geom.Vec3 `yaml:"position" json:"position"`
	Yaw      float32   `yaml:"yaw" json:"yaw"`
	Scale    float32   `yaml:"scale" json:"scale"`
	Scaled   bool      `yaml:"scaled" json:"scaled"`
}

// Populate places count instances along path. For each index it samples the anchor,
// picks a source, varies the transform and composes the final position. The slice
// is returned only when every step succeeds; on error the result is nil.
//
// The selector is checked first so an empty selector is always reported as
// ErrEmptySelector. count < 1, a nil rng or bad params give placement.ErrInvalidParams;
// path problems give curve.ErrInvalidCurve.
func Populate(path *curve.Path, count int, sel Selector, params placement.Params, rng placement.Rand) ([]Record, error) {
	if sel.Len() == 0 {
		return nil, ErrEmptySelector
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be >= 1, got %d", placement.ErrInvalidParams, count)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", placement.ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if path == nil {
		return nil, fmt.Errorf("%w: nil path", curve.ErrInvalidCurve)
	}

	out := make([]Record, count)
	for i := range out {
		s := curve.SampleAt(path, i, count)
		src, err := sel.Pick(rng)
		if err != nil {
			return nil, err
		}
		v := placement.Vary(placement.Anchor{Position: s.Position, Forward: s.Forward}, params, rng)
		out[i] = Record{
			Index:    i,
			T:        s.T,
			Source:   src,
			Anchor:   s.Position,
			Offset:   v.Offset,
			Position: s.Position.Add(v.Offset),
			Yaw:      v.Yaw,
			Scale:    v.Scale,
			Scaled:   v.Scaled,
		}
	}
	return out, nil
}

// Buildings scatters randomly chosen candidates along path, the way building
// blocks are populated along a street.
func Buildings(path *curve.Path, count int, candidates []string, params placement.Params, rng placement.Rand) ([]Record, error) {
	return Populate(path, count, Choice(candidates...), params, rng)
}

// Road lays count copies of one source along path, each turned to the tangent
// with no jitter.
func Road(path *curve.Path, count int, source string, rng placement.Rand) ([]Record, error) {
	return Populate(path, count, Single(source), placement.Params{FollowCurve: true}, rng)
}
