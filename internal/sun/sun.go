// Package sun computes the orientation of a directional sun light from the time
// of day. The light starts pointing along -Z rotated 90 degrees about X, and turns
// 15 degrees per hour about the axis picked by the north setting, so it points
// straight down at noon.
package sun

import (
	"errors"
	"fmt"

	"env-generator/internal/geom"
	"github.com/chewxy/math32"
)

var (
	ErrInvalidNorth = errors.New("north must be 1-4")
	ErrInvalidHour  = errors.New("hour must be within 0-24")
	ErrInvalidCycle = errors.New("invalid day cycle")
	ErrInvalidLight = errors.New("invalid sun light")
)

// MaxIntensity is the brightest sun accepted.
const MaxIntensity = 10

// North picks the rotation axis and direction of travel.
type North int

const (
	NorthNegX North = 1 + iota // rotate about X, -15 degrees per hour
	NorthPosX                  // rotate about X, +15 degrees per hour
	NorthNegZ                  // rotate about Z, -15 degrees per hour
	NorthPosZ                  // rotate about Z, +15 degrees per hour
)

// DegreesPerHour is the sun's angular speed.
const DegreesPerHour = 15

// baseTilt is the initial X rotation of the light.
const baseTilt = 90

func (n North) Validate() error {
	if n < NorthNegX || n > NorthPosZ {
		return fmt.Errorf("%w, got %d", ErrInvalidNorth, int(n))
	}
	return nil
}

func validHour(h float32) error {
	if math32.IsNaN(h) || h < 0 || h > 24 {
		return fmt.Errorf("%w, got %g", ErrInvalidHour, h)
	}
	return nil
}

// Rotation returns the light's Euler rotation in degrees (X, Y, Z) at hour.
func Rotation(n North, hour float32) ([3]float32, error) {
	if err := n.Validate(); err != nil {
		return [3]float32{}, err
	}
	if err := validHour(hour); err != nil {
		return [3]float32{}, err
	}
	turn := hour * DegreesPerHour
	switch n {
	case NorthNegX:
		return [3]float32{baseTilt - turn, 0, 0}, nil
	case NorthPosX:
		return [3]float32{baseTilt + turn, 0, 0}, nil
	case NorthNegZ:
		return [3]float32{baseTilt, 0, -turn}, nil
	default:
		return [3]float32{baseTilt, 0, turn}, nil
	}
}

// Direction returns the unit vector the light travels along at hour. X is applied
// first, then Z.
func Direction(n North, hour float32) (geom.Vec3, error) {
	rot, err := Rotation(n, hour)
	if err != nil {
		return geom.Vec3{}, err
	}
	a := geom.DegToRad(rot[0])
	c := geom.DegToRad(rot[2])
	// (0,0,-1) rotated about X by a.
	x, y, z := float32(0), math32.Sin(a), -math32.Cos(a)
	// Then about Z by c.
	x, y = x*math32.Cos(c)-y*math32.Sin(c), x*math32.Sin(c)+y*math32.Cos(c)
	return geom.V3(x, y, z).Normal(), nil
}

// ToLight returns the unit vector pointing from the ground towards the sun.
func ToLight(n North, hour float32) (geom.Vec3, error) {
	d, err := Direction(n, hour)
	if err != nil {
		return geom.Vec3{}, err
	}
	return d.MulScalar(-1), nil
}

// Cycle animates the hour linearly between two frames.
type Cycle struct {
	FrameStart int     `yaml:"frame_start" toml:"frame_start" json:"frame_start"`
	FrameEnd   int     `yaml:"frame_end" toml:"frame_end" json:"frame_end"`
	HourStart  float32 `yaml:"hour_start" toml:"hour_start" json:"hour_start"`
	HourEnd    float32 `yaml:"hour_end" toml:"hour_end" json:"hour_end"`
}

// DefaultCycle runs from 6:00 to 18:00 over frames 0-200.
func DefaultCycle() Cycle {
	return Cycle{FrameStart: 0, FrameEnd: 200, HourStart: 6, HourEnd: 18}
}

func (c Cycle) Validate() error {
	if c.FrameEnd <= c.FrameStart {
		return fmt.Errorf("%w: start frame %d is not before end frame %d", ErrInvalidCycle, c.FrameStart, c.FrameEnd)
	}
	if c.HourEnd <= c.HourStart {
		return fmt.Errorf("%w: start hour %g is not before end hour %g", ErrInvalidCycle, c.HourStart, c.HourEnd)
	}
	if err := validHour(c.HourStart); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCycle, err)
	}
	if err := validHour(c.HourEnd); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCycle, err)
	}
	return nil
}

// HourAt interpolates the hour at frame, clamped to the cycle's range.
func (c Cycle) HourAt(frame float32) float32 {
	span := float32(c.FrameEnd - c.FrameStart)
	if span <= 0 {
		return c.HourStart
	}
	t := (frame - float32(c.FrameStart)) / span
	t = max(0, min(1, t))
	return c.HourStart + (c.HourEnd-c.HourStart)*t
}

// Settings is the sun state stored with a scene. A non-nil Cycle animates the hour
// and overrides Hour.
//
// Intensity and Color describe the light itself. Zero values mean intensity 1 and
// white, so scenes saved without them keep a plain white sun.
type Settings struct {
	North     North      `yaml:"north" toml:"north" json:"north"`
	Hour      float32    `yaml:"hour" toml:"hour" json:"hour"`
	Cycle     *Cycle     `yaml:"cycle,omitempty" toml:"cycle,omitempty" json:"cycle,omitempty"`
	Intensity float32    `yaml:"intensity,omitempty" toml:"intensity,omitempty" json:"intensity,omitempty"`
	Color     [3]float32 `yaml:"color,omitempty" toml:"color,omitempty" json:"color,omitempty"` // linear RGB, 0..1
}

// DefaultSettings is a white sun of intensity 1 at noon with north 1.
func DefaultSettings() Settings {
	return Settings{North: NorthNegX, Hour: 12, Intensity: 1, Color: [3]float32{1, 1, 1}}
}

func (s Settings) Validate() error {
	if err := s.North.Validate(); err != nil {
		return err
	}
	if err := validHour(s.Hour); err != nil {
		return err
	}
	if !geom.IsFinite(s.Intensity) || s.Intensity < 0 || s.Intensity > MaxIntensity {
		return fmt.Errorf("%w: intensity %g outside 0-%d", ErrInvalidLight, s.Intensity, MaxIntensity)
	}
	for _, c := range s.Color {
		if !geom.IsFinite(c) || c < 0 || c > 1 {
			return fmt.Errorf("%w: color %v outside 0-1", ErrInvalidLight, s.Color)
		}
	}
	if s.Cycle != nil {
		return s.Cycle.Validate()
	}
	return nil
}

// HourAt is the hour shown at frame.
func (s Settings) HourAt(frame float32) float32 {
	if s.Cycle != nil {
		return s.Cycle.HourAt(frame)
	}
	return s.Hour
}

// Light returns the sun colour with intensity applied.
func (s Settings) Light() [3]float32 {
	i := s.Intensity
	if i == 0 {
		i = 1
	}
	c := s.Color
	if c == ([3]float32{}) {
		c = [3]float32{1, 1, 1}
	}
	return [3]float32{c[0] * i, c[1] * i, c[2] * i}
}

// ToLightAt is ToLight for the hour shown at frame.
func (s Settings) ToLightAt(frame float32) (geom.Vec3, error) {
	return ToLight(s.North, s.HourAt(frame))
}
