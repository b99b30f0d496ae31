// Package curve turns control points into paths that can be sampled by
// normalized arc length. Sampling is deterministic: the same path and count
// always yield the same positions and directions.
package curve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"env-generator/internal/geom"
)

// ErrInvalidCurve is returned for missing or degenerate paths: fewer than two
// control points, zero total length, or non-finite coordinates.
var ErrInvalidCurve = errors.New("invalid curve")

// Kind selects how control points are joined.
type Kind int

const (
	// Linear joins control points with straight segments.
	Linear Kind = iota
	// CatmullRom passes a uniform Catmull-Rom spline through the control points.
	CatmullRom
)

// segmentsPerSpan is the tessellation density for spline kinds.
const segmentsPerSpan = 16

func (k Kind) String() string {
	switch k {
	case Linear:
		return "linear"
	case CatmullRom:
		return "catmullrom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a name ("linear", "catmullrom", "spline") to a Kind. Empty means Linear.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear", "polyline":
		return Linear, nil
	case "catmullrom", "catmull-rom", "spline":
		return CatmullRom, nil
	default:
		return Linear, fmt.Errorf("unknown curve kind %q (use linear or catmullrom)", s)
	}
}

// Path is a sampleable 1-D path in 3-space. It is immutable once built and safe
// for concurrent reads.
type Path struct {
	points []geom.Vec3
	cum    []float32 // cum[i] is the arc length from points[0] to points[i]
	length float32
}

// New builds a path from control points. The points are copied.
func New(control []geom.Vec3, kind Kind) (*Path, error) {
	if len(control) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 control points, got %d", ErrInvalidCurve, len(control))
	}
	for i, p := range control {
		if !p.IsFinite() {
			return nil, fmt.Errorf("%w: control point %d is not finite", ErrInvalidCurve, i)
		}
	}
	var pts []geom.Vec3
	switch kind {
	case Linear:
		pts = append([]geom.Vec3(nil), control...)
	case CatmullRom:
		pts = tessellate(control, segmentsPerSpan)
	default:
		return nil, fmt.Errorf("%w: unknown kind %v", ErrInvalidCurve, kind)
	}
	pts = dedupe(pts)
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: zero length", ErrInvalidCurve)
	}

	p := &Path{points: pts, cum: make([]float32, len(pts))}
	for i := 1; i < len(pts); i++ {
		p.cum[i] = p.cum[i-1] + pts[i].Sub(pts[i-1]).Length()
	}
	p.length = p.cum[len(pts)-1]
	if !geom.IsFinite(p.length) {
		return nil, fmt.Errorf("%w: length overflows", ErrInvalidCurve)
	}
	if p.length <= 0 {
		return nil, fmt.Errorf("%w: zero length", ErrInvalidCurve)
	}
	return p, nil
}

// Length returns the arc length of the path.
func (p *Path) Length() float32 {
	return p.length
}

// Points returns a copy of the polyline the path is sampled on. For spline kinds
// this is the tessellation, not the control points.
func (p *Path) Points() []geom.Vec3 {
	out := make([]geom.Vec3, len(p.points))
	copy(out, p.points)
	return out
}

// At returns the position and unit forward direction at normalized arc length t.
// t is clamped to [0,1]. On a vertex the outgoing segment supplies the direction;
// t == 1 returns the last point exactly.
func (p *Path) At(t float32) (pos, forward geom.Vec3) {
	last := len(p.points) - 1
	if t <= 0 {
		return p.points[0], p.points[1].Sub(p.points[0]).Normal()
	}
	if t >= 1 {
		return p.points[last], p.points[last].Sub(p.points[last-1]).Normal()
	}
	s := t * p.length
	// First segment whose end lies strictly beyond s.
	i := sort.Search(last, func(i int) bool { return p.cum[i+1] > s })
	if i >= last {
		i = last - 1
	}
	a, b := p.points[i], p.points[i+1]
	seg := p.cum[i+1] - p.cum[i]
	return a.Lerp(b, (s-p.cum[i])/seg), b.Sub(a).Normal()
}

// tessellate samples a uniform Catmull-Rom spline through control. The end
// points are duplicated so the curve starts and ends on them.
func tessellate(control []geom.Vec3, steps int) []geom.Vec3 {
	n := len(control)
	out := make([]geom.Vec3, 0, (n-1)*steps+1)
	at := func(i int) geom.Vec3 {
		if i < 0 {
			return control[0]
		}
		if i >= n {
			return control[n-1]
		}
		return control[i]
	}
	for i := 0; i < n-1; i++ {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		for s := 0; s < steps; s++ {
			out = append(out, catmullRom(p0, p1, p2, p3, float32(s)/float32(steps)))
		}
	}
	return append(out, control[n-1])
}

func catmullRom(p0, p1, p2, p3 geom.Vec3, t float32) geom.Vec3 {
	t2 := t * t
	t3 := t2 * t
	var out geom.Vec3
	for k := 0; k < 3; k++ {
		out[k] = 0.5 * (2*p1[k] +
			(-p0[k]+p2[k])*t +
			(2*p0[k]-5*p1[k]+4*p2[k]-p3[k])*t2 +
			(-p0[k]+3*p1[k]-3*p2[k]+p3[k])*t3)
	}
	return out
}

// dedupe drops consecutive duplicate points so no segment has zero length.
func dedupe(pts []geom.Vec3) []geom.Vec3 {
	out := pts[:0:0]
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}
