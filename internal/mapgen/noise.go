package mapgen

import "github.com/chewxy/math32"

// fractalValueNoise2D is simple fractal value noise: layered smooth value noise with
// configurable octaves, lacunarity, and gain. Output is in [0,1].
func fractalValueNoise2D(x, y float32, seed int32, octaves int, lacunarity, gain float32) float32 {
	var sum, maxAmp float32
	amplitude, freq := float32(1), float32(1)
	for i := 0; i < octaves; i++ {
		sum += valueNoise2D(x*freq, y*freq, seed+int32(i)) * amplitude
		maxAmp += amplitude
		amplitude *= gain
		freq *= lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return sum / maxAmp
}

// valueNoise2D is smooth value noise in [0,1] over a hashed integer lattice.
func valueNoise2D(x, y float32, seed int32) float32 {
	x0 := int32(math32.Floor(x))
	y0 := int32(math32.Floor(y))
	sx := smoothStep(x - float32(x0))
	sy := smoothStep(y - float32(y0))

	top := lerp(hash2D(x0, y0, seed), hash2D(x0+1, y0, seed), sx)
	bottom := lerp(hash2D(x0, y0+1, seed), hash2D(x0+1, y0+1, seed), sx)
	return lerp(top, bottom, sy)
}

// hash2D maps lattice coordinates to a deterministic value in [0,1].
func hash2D(x, y, seed int32) float32 {
	n := x*374761393 + y*668265263 + seed*362437
	n = (n ^ (n >> 13)) * 1274126177
	n ^= n >> 16
	return float32(n&0x7fffffff) / 2147483647.0
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// smoothStep is cubic easing 3t^2 - 2t^3, clamped to [0,1].
func smoothStep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
