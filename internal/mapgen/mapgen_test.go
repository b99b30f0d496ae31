package mapgen

import (
	"testing"

	"env-generator/internal/scene"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSculptRejectsBadOptions(t *testing.T) {
	opts := DefaultTerrainOptions()
	opts.Dim = 0
	_, err := Sculpt(opts)
	assert.ErrorIs(t, err, ErrInvalidTerrain)

	opts = DefaultTerrainOptions()
	opts.Div = 0
	_, err = Sculpt(opts)
	assert.ErrorIs(t, err, ErrInvalidTerrain)

	opts = DefaultTerrainOptions()
	opts.Height, opts.Depth = -2, 1
	_, err = Sculpt(opts)
	assert.ErrorIs(t, err, ErrInvalidTerrain)

	for _, div := range []int{MaxDiv + 1, 1 << 30} {
		opts = DefaultTerrainOptions()
		opts.Div = div
		_, err = Sculpt(opts)
		assert.ErrorIs(t, err, ErrInvalidTerrain, "div %d", div)
	}

	opts = DefaultTerrainOptions()
	opts.Height = math32.NaN()
	_, err = Sculpt(opts)
	assert.ErrorIs(t, err, ErrInvalidTerrain)
}

func TestSculptLargestGrid(t *testing.T) {
	opts := DefaultTerrainOptions()
	opts.Div = MaxDiv
	opts.Falloff = 0.1
	opts.Seed = 5
	hf, err := Sculpt(opts)
	require.NoError(t, err)
	assert.Len(t, hf.Vertices, (MaxDiv+1)*(MaxDiv+1))
}

func TestSculptGrid(t *testing.T) {
	opts := DefaultTerrainOptions()
	opts.Seed = 11
	hf, err := Sculpt(opts)
	require.NoError(t, err)
	assert.Len(t, hf.Vertices, 21*21)
	assert.Equal(t, uint64(11), hf.Seed)

	moved := 0
	for _, v := range hf.Vertices {
		if v[1] != 0 {
			moved++
		}
	}
	assert.Greater(t, moved, 0)
}

func TestSculptDeterministic(t *testing.T) {
	opts := DefaultTerrainOptions()
	opts.Seed = 5
	opts.NoiseScale = 2
	a, err := Sculpt(opts)
	require.NoError(t, err)
	b, err := Sculpt(opts)
	require.NoError(t, err)
	assert.Equal(t, a.Vertices, b.Vertices)

	opts.Seed = 6
	c, err := Sculpt(opts)
	require.NoError(t, err)
	assert.NotEqual(t, a.Vertices, c.Vertices)
}

func TestSculptWithoutFalloffOnlyMovesStrideVertices(t *testing.T) {
	opts := DefaultTerrainOptions()
	opts.Seed = 3
	opts.Falloff = 0
	opts.Depth, opts.Height = 0.5, 1
	hf, err := Sculpt(opts)
	require.NoError(t, err)
	for i, v := range hf.Vertices {
		if i%opts.Stride == 0 {
			assert.GreaterOrEqual(t, v[1], float32(0.5))
			assert.LessOrEqual(t, v[1], float32(1))
		} else {
			assert.Equal(t, float32(0), v[1])
		}
	}
}

func TestHeightAt(t *testing.T) {
	hf := &Heightfield{Div: 1, Dim: 2, Vertices: [][3]float32{
		{-1, 0, -1}, {1, 2, -1},
		{-1, 0, 1}, {1, 2, 1},
	}}
	assert.InDelta(t, 0, hf.HeightAt(-1, 0), 1e-6)
	assert.InDelta(t, 1, hf.HeightAt(0, 0), 1e-6)
	assert.InDelta(t, 2, hf.HeightAt(1, 0.5), 1e-6)
	assert.InDelta(t, 2, hf.HeightAt(50, 50), 1e-6)
}

func TestColumns(t *testing.T) {
	opts := DefaultTerrainOptions()
	opts.Seed = 9
	opts.Div = 4
	hf, err := Sculpt(opts)
	require.NoError(t, err)
	g := hf.Columns("terrain")
	assert.Equal(t, "terrain", g.Name)
	assert.Equal(t, scene.KindTerrain, g.Kind)
	require.Len(t, g.Objects, 16)
	for _, o := range g.Objects {
		assert.Equal(t, "cube", o.Type)
		assert.Greater(t, o.Scale[1], float32(0))
	}
	s := scene.New()
	require.NoError(t, s.ReplaceGroup(g))
	assert.Equal(t, 16, s.ObjectCount())
}

func TestFractalNoiseRange(t *testing.T) {
	for x := float32(0); x < 20; x += 0.7 {
		for y := float32(0); y < 20; y += 0.9 {
			v := fractalValueNoise2D(x, y, 42, 4, 2, 0.5)
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
}

func TestPushMatchesFullScan(t *testing.T) {
	const div, dim, radius = 10, 10, float32(2.5)
	n := div + 1
	rest := make([][3]float32, n*n)
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			rest[z*n+x] = [3]float32{-5 + float32(x), 0, -5 + float32(z)}
		}
	}
	hf := &Heightfield{Div: div, Dim: dim, Vertices: append([][3]float32(nil), rest...)}
	d := [3]float32{0.5, 1, -0.25}
	center := 3*n + 4
	hf.push(rest, center, d, radius)

	c := rest[center]
	for j, p := range rest {
		dx, dz := p[0]-c[0], p[2]-c[2]
		dist := math32.Sqrt(dx*dx + dz*dz)
		want := float32(0)
		if j == center {
			want = 1
		} else if dist < radius {
			want = smoothStep(1 - dist/radius)
		}
		assert.InDelta(t, want*d[1], hf.Vertices[j][1], 1e-6, "vertex %d", j)
	}
}
