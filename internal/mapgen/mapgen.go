package mapgen

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"env-generator/internal/scene"
	"github.com/chewxy/math32"
)

// ErrInvalidTerrain is returned for option sets that cannot produce a grid.
var ErrInvalidTerrain = errors.New("invalid terrain options")

// MaxDiv bounds the subdivisions per side; (MaxDiv+1)^2 vertices and as many cube
// columns is already far more than the viewer can draw.
const MaxDiv = 512

// TerrainOptions controls terrain sculpting.
// Dim is the world size of the square plane on X/Z, Div the number of subdivisions
// per side (so (Div+1)^2 vertices). Every Stride-th vertex is pushed by a random
// offset: X/Z in [-1,1], Y in [Depth,Height]; neighbours within Falloff move with it,
// weighted by a smooth falloff. NoiseScale > 0 first lifts the grid with fractal
// value noise shaped by Octaves, Frequency, Lacunarity, and Gain.
// Seed == 0 uses a time-based seed.
type TerrainOptions struct {
	Dim     float32 `yaml:"dim" toml:"dim" json:"dim"`
	Div     int     `yaml:"div" toml:"div" json:"div"`
	Height  float32 `yaml:"height" toml:"height" json:"height"`
	Depth   float32 `yaml:"depth" toml:"depth" json:"depth"`
	Stride  int     `yaml:"stride,omitempty" toml:"stride,omitempty" json:"stride,omitempty"`
	Falloff float32 `yaml:"falloff,omitempty" toml:"falloff,omitempty" json:"falloff,omitempty"`

	Seed       uint64  `yaml:"seed,omitempty" toml:"seed,omitempty" json:"seed,omitempty"`
	NoiseScale float32 `yaml:"noise_scale,omitempty" toml:"noise_scale,omitempty" json:"noise_scale,omitempty"`
	Octaves    int     `yaml:"octaves,omitempty" toml:"octaves,omitempty" json:"octaves,omitempty"`
	Frequency  float32 `yaml:"frequency,omitempty" toml:"frequency,omitempty" json:"frequency,omitempty"`
	Lacunarity float32 `yaml:"lacunarity,omitempty" toml:"lacunarity,omitempty" json:"lacunarity,omitempty"`
	Gain       float32 `yaml:"gain,omitempty" toml:"gain,omitempty" json:"gain,omitempty"`
}

// DefaultTerrainOptions returns the stock terrain: a 20x20 plane with 20
// subdivisions, pushed between -1 and 1, noise off.
func DefaultTerrainOptions() TerrainOptions {
	return TerrainOptions{
		Dim:        20,
		Div:        20,
		Height:     1,
		Depth:      -1,
		Stride:     5,
		Falloff:    5,
		Octaves:    4,
		Frequency:  0.08,
		Lacunarity: 2.0,
		Gain:       0.5,
	}
}

// Heightfield is a sculpted vertex grid centered on the origin. Vertices are stored
// row by row (Z major), Div+1 per row.
type Heightfield struct {
	Div      int
	Dim      float32
	Vertices [][3]float32
	Seed     uint64
}

// Sculpt builds the terrain grid. The result is deterministic for a fixed seed.
func Sculpt(opts TerrainOptions) (*Heightfield, error) {
	if opts.Dim <= 0 || !isFinite(opts.Dim) {
		return nil, fmt.Errorf("%w: dim must be > 0", ErrInvalidTerrain)
	}
	if opts.Div < 1 || opts.Div > MaxDiv {
		return nil, fmt.Errorf("%w: div must be in [1, %d]", ErrInvalidTerrain, MaxDiv)
	}
	if !isFinite(opts.Height) || !isFinite(opts.Depth) || !isFinite(opts.Falloff) || !isFinite(opts.NoiseScale) {
		return nil, fmt.Errorf("%w: non-finite height, depth, falloff or noise scale", ErrInvalidTerrain)
	}
	if opts.Height < opts.Depth {
		return nil, fmt.Errorf("%w: height %g below depth %g", ErrInvalidTerrain, opts.Height, opts.Depth)
	}
	if opts.Stride <= 0 {
		opts.Stride = 5
	}
	if opts.Falloff < 0 {
		opts.Falloff = 0
	}
	if opts.Octaves <= 0 {
		opts.Octaves = 1
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 0.05
	}
	if opts.Lacunarity <= 0 {
		opts.Lacunarity = 2.0
	}
	if opts.Gain <= 0 {
		opts.Gain = 0.5
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	n := opts.Div + 1
	step := opts.Dim / float32(opts.Div)
	half := opts.Dim * 0.5
	hf := &Heightfield{Div: opts.Div, Dim: opts.Dim, Vertices: make([][3]float32, n*n), Seed: seed}
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			v := [3]float32{-half + float32(x)*step, 0, -half + float32(z)*step}
			if opts.NoiseScale > 0 {
				h := fractalValueNoise2D(float32(x)*opts.Frequency, float32(z)*opts.Frequency, int32(seed), opts.Octaves, opts.Lacunarity, opts.Gain)
				v[1] = h * opts.NoiseScale
			}
			hf.Vertices[z*n+x] = v
		}
	}

	// Push every Stride-th vertex and drag its neighbours along (soft selection).
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	rest := append([][3]float32(nil), hf.Vertices...)
	for i := 0; i < len(rest); i += opts.Stride {
		d := [3]float32{
			uniform(rng, -1, 1),
			uniform(rng, opts.Depth, opts.Height),
			uniform(rng, -1, 1),
		}
		hf.push(rest, i, d, opts.Falloff)
	}
	return hf, nil
}

// push moves vertex i by d and every vertex whose rest position lies within radius
// by d scaled with a smoothstep falloff. Rest positions are the lattice, so only the
// cells inside the radius window are visited.
func (hf *Heightfield) push(rest [][3]float32, i int, d [3]float32, radius float32) {
	n := hf.Div + 1
	step := hf.Dim / float32(hf.Div)
	reach := 0
	if radius > 0 {
		reach = min(int(math32.Ceil(radius/step)), hf.Div)
	}
	c := rest[i]
	cx, cz := i%n, i/n
	for z := max(0, cz-reach); z <= min(hf.Div, cz+reach); z++ {
		for x := max(0, cx-reach); x <= min(hf.Div, cx+reach); x++ {
			j := z*n + x
			w := float32(1)
			if j != i {
				p := rest[j]
				dx, dz := p[0]-c[0], p[2]-c[2]
				dist := math32.Sqrt(dx*dx + dz*dz)
				if dist >= radius {
					continue
				}
				w = smoothStep(1 - dist/radius)
			}
			if w == 0 {
				continue
			}
			hf.Vertices[j][0] += d[0] * w
			hf.Vertices[j][1] += d[1] * w
			hf.Vertices[j][2] += d[2] * w
		}
	}
}

// HeightAt returns the bilinear height at world (x, z), reading the grid at its
// undisplaced X/Z lattice. Points outside the plane clamp to the border.
func (hf *Heightfield) HeightAt(x, z float32) float32 {
	n := hf.Div + 1
	step := hf.Dim / float32(hf.Div)
	half := hf.Dim * 0.5
	fx := clamp((x+half)/step, 0, float32(hf.Div))
	fz := clamp((z+half)/step, 0, float32(hf.Div))
	x0 := min(int(math32.Floor(fx)), hf.Div-1)
	z0 := min(int(math32.Floor(fz)), hf.Div-1)
	tx := fx - float32(x0)
	tz := fz - float32(z0)
	h00 := hf.Vertices[z0*n+x0][1]
	h10 := hf.Vertices[z0*n+x0+1][1]
	h01 := hf.Vertices[(z0+1)*n+x0][1]
	h11 := hf.Vertices[(z0+1)*n+x0+1][1]
	return lerp(lerp(h00, h10, tx), lerp(h01, h11, tx), tz)
}

// Columns converts the grid into cube columns for the scene's terrain group. Each
// grid cell becomes one cube whose top sits at the cell's mean height and whose
// bottom sits at the lowest vertex of the whole field.
func (hf *Heightfield) Columns(group string) scene.Group {
	n := hf.Div + 1
	step := hf.Dim / float32(hf.Div)
	floor := hf.Vertices[0][1]
	for _, v := range hf.Vertices {
		floor = min(floor, v[1])
	}
	g := scene.Group{Name: group, Kind: scene.KindTerrain, Objects: make([]scene.Object, 0, hf.Div*hf.Div)}
	for z := 0; z < hf.Div; z++ {
		for x := 0; x < hf.Div; x++ {
			a := hf.Vertices[z*n+x]
			b := hf.Vertices[z*n+x+1]
			c := hf.Vertices[(z+1)*n+x]
			d := hf.Vertices[(z+1)*n+x+1]
			top := (a[1] + b[1] + c[1] + d[1]) / 4
			height := top - floor
			if height <= 0 || !isFinite(height) {
				height = 0.05
			}
			g.Objects = append(g.Objects, scene.Object{
				Name:     fmt.Sprintf("%s_%d_%d", group, x, z),
				Type:     "cube",
				Position: [3]float32{(a[0] + b[0] + c[0] + d[0]) / 4, floor + height*0.5, (a[2] + b[2] + c[2] + d[2]) / 4},
				Scale:    [3]float32{step, height, step},
				Color:    "#5a7d3a",
			})
		}
	}
	return g
}

func uniform(rng *rand.Rand, lo, hi float32) float32 {
	return lo + (hi-lo)*rng.Float32()
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}
