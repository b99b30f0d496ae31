package curve

import (
	"fmt"

	"env-generator/internal/geom"
)

// Sample is the anchor at one of N evenly spaced points along a path.
type Sample struct {
	Index    int
	T        float32 // normalized arc length, Index / max(N-1, 1)
	Position geom.Vec3
	Forward  geom.Vec3 // unit tangent
}

// SampleAt returns the anchor for index i of count evenly spaced samples.
func SampleAt(p *Path, i, count int) Sample {
	t := float32(i) / float32(max(count-1, 1))
	pos, fwd := p.At(t)
	return Sample{Index: i, T: t, Position: pos, Forward: fwd}
}

// SampleN returns exactly count samples, the first at t=0 and (for count > 1)
// the last at t=1.
func SampleN(p *Path, count int) ([]Sample, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil path", ErrInvalidCurve)
	}
	if count < 1 {
		return nil, fmt.Errorf("curve: sample count %d < 1", count)
	}
	out := make([]Sample, count)
	for i := range out {
		out[i] = SampleAt(p, i, count)
	}
	return out, nil
}
