// Package ribbon builds a road or river from scratch: a strip of flat plane
// segments of a given width laid along a path, optionally lifted, and for rivers
// flattened to one water level.
package ribbon

import (
	"errors"
	"fmt"

	"env-generator/internal/curve"
	"env-generator/internal/geom"
	"env-generator/internal/placement"
	"env-generator/internal/scene"
)

var ErrInvalidRibbon = errors.New("invalid ribbon options")

const (
	DefaultWidth = 1
	DefaultDiv   = 10
	MaxWidth     = 100
	MaxDiv       = 500
)

const (
	roadColor  = "#3b3b3b"
	riverColor = "#2e6f9e"
)

// Options shapes the strip. Zero Width and Div take DefaultWidth and DefaultDiv.
// Height lifts the whole strip; River flattens it to the mean height of the path.
type Options struct {
	Width  float32 `yaml:"width,omitempty" toml:"width,omitempty" json:"width,omitempty"`
	Div    int     `yaml:"div,omitempty" toml:"div,omitempty" json:"div,omitempty"`
	Height float32 `yaml:"height,omitempty" toml:"height,omitempty" json:"height,omitempty"`
	River  bool    `yaml:"river,omitempty" toml:"river,omitempty" json:"river,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Div == 0 {
		o.Div = DefaultDiv
	}
	return o
}

func (o Options) validate() error {
	if !geom.IsFinite(o.Width) || o.Width < 0 || o.Width > MaxWidth {
		return fmt.Errorf("%w: width %g outside (0, %d]", ErrInvalidRibbon, o.Width, MaxWidth)
	}
	if o.Div < 0 || o.Div > MaxDiv {
		return fmt.Errorf("%w: div %d outside [1, %d]", ErrInvalidRibbon, o.Div, MaxDiv)
	}
	if !geom.IsFinite(o.Height) {
		return fmt.Errorf("%w: height %g", ErrInvalidRibbon, o.Height)
	}
	return nil
}

// Segment is one flat piece of the strip, centred between two consecutive edge
// pairs. Yaw turns the piece's local +X onto its direction of travel.
type Segment struct {
	Center geom.Vec3
	Yaw    float32
	Length float32
	Width  float32
}

// Ribbon is a built strip. Left and Right hold Div+1 edge vertices each, seen
// looking along the path.
type Ribbon struct {
	Left     []geom.Vec3
	Right    []geom.Vec3
	Segments []Segment
	River    bool
}

// Build lays a strip along path. Parts of the path with no horizontal extent
// produce no segment; a path that is vertical throughout is an error.
func Build(path *curve.Path, opts Options) (*Ribbon, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	samples, err := curve.SampleN(path, opts.Div+1)
	if err != nil {
		return nil, err
	}

	centers := make([]geom.Vec3, len(samples))
	level := float32(0)
	for i, s := range samples {
		centers[i] = s.Position
		level += s.Position.Y()
	}
	level /= float32(len(samples))
	for i := range centers {
		if opts.River {
			centers[i][1] = level
		}
		centers[i][1] += opts.Height
	}

	r := &Ribbon{
		Left:     make([]geom.Vec3, len(samples)),
		Right:    make([]geom.Vec3, len(samples)),
		Segments: make([]Segment, 0, opts.Div),
		River:    opts.River,
	}
	half := opts.Width / 2
	for i, s := range samples {
		side := placement.Lateral(s.Forward).MulScalar(half)
		r.Left[i] = centers[i].Sub(side)
		r.Right[i] = centers[i].Add(side)
	}
	for i := 1; i < len(centers); i++ {
		d := centers[i].Sub(centers[i-1])
		length := d.Ground().Length()
		if length == 0 {
			continue
		}
		r.Segments = append(r.Segments, Segment{
			Center: centers[i-1].Lerp(centers[i], 0.5),
			Yaw:    placement.Heading(d),
			Length: length,
			Width:  opts.Width,
		})
	}
	if len(r.Segments) == 0 {
		return nil, fmt.Errorf("%w: path has no horizontal extent", curve.ErrInvalidCurve)
	}
	return r, nil
}

// Group converts the strip into plane objects for one scene group.
func (r *Ribbon) Group(name string) scene.Group {
	color := roadColor
	if r.River {
		color = riverColor
	}
	g := scene.Group{Name: name, Kind: scene.KindRibbon, Objects: make([]scene.Object, len(r.Segments))}
	for i, s := range r.Segments {
		g.Objects[i] = scene.Object{
			Name:     fmt.Sprintf("%s%d", name, i+1),
			Type:     "plane",
			Position: s.Center,
			Yaw:      s.Yaw,
			Scale:    [3]float32{s.Length, 1, s.Width},
			Color:    color,
		}
	}
	return g
}
