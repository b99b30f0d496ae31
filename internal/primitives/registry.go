package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// cached holds the mesh and material for a primitive type.
type cached struct {
	mesh   rl.Mesh
	mtl    rl.Material
	offset [3]float32
}

// Registry maps primitive type names to mesh+material. Meshes are created on first use
// so that GPU resources are allocated after the window/OpenGL context exists. All
// types share one outdoor shader: a sun term plus sky/ground ambient and distance fog.
type Registry struct {
	cache    map[string]cached
	shader   rl.Shader
	viewPos  [3]float32 // camera position, set each frame for fog
	lightDir [3]float32 // direction to the sun (normalized), set each frame
	daylight float32    // 0 at night, 1 with the sun overhead
	sky      [3]float32 // fog colour, 0..1
	light    [3]float32 // sun colour times intensity
	dirty    bool       // uniforms changed since the shader was last updated
}

// NewRegistry returns a registry with no primitives.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[string]cached),
		lightDir: [3]float32{0, 1, 0},
		daylight: 1,
		sky:      [3]float32{0.47, 0.63, 0.82},
		light:    [3]float32{1, 1, 1},
		dirty:    true,
	}
}

// SetView sets camera position, direction to the sun and daylight for this frame. Call
// once per frame before drawing objects.
func (r *Registry) SetView(viewPos, lightDir [3]float32, daylight float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
	r.daylight = max(0, min(1, daylight))
	r.dirty = true
}

// SetSunLight sets the sun's colour, already scaled by its intensity.
func (r *Registry) SetSunLight(light [3]float32) {
	r.light = light
	r.dirty = true
}

// SetSky sets the colour distant objects fade into. It should match the clear colour.
func (r *Registry) SetSky(c rl.Color) {
	r.sky = [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
	r.dirty = true
}

func (r *Registry) ensure(typ string) (cached, bool) {
	if c, ok := r.cache[typ]; ok {
		return c, true
	}
	ms, ok := meshSpecs[typ]
	if !ok {
		return cached{}, false
	}
	if r.shader.ID == 0 {
		r.shader = rl.LoadShaderFromMemory(outdoorVS, outdoorFS)
	}
	mtl := rl.LoadMaterialDefault()
	if rl.IsShaderValid(r.shader) {
		mtl.Shader = r.shader
	}
	c := cached{mesh: ms.gen(), mtl: mtl, offset: ms.offset}
	r.cache[typ] = c
	return c, true
}

const (
	outdoorVS = `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
uniform mat4 mvp;
uniform mat4 matModel;
out vec3 worldPos;
out vec3 worldNormal;
void main() {
  worldPos = (matModel * vec4(vertexPosition, 1.0)).xyz;
  worldNormal = mat3(matModel) * vertexNormal;
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`
	outdoorFS = `#version 330
in vec3 worldPos;
in vec3 worldNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 sunDir;
uniform vec3 sunColor;
uniform vec3 skyColor;
uniform vec3 groundColor;
uniform float fogDensity;
out vec4 finalColor;
void main() {
  vec3 n = normalize(worldNormal);
  float hemi = n.y * 0.5 + 0.5;
  vec3 ambient = mix(groundColor, skyColor, hemi);
  vec3 sun = sunColor * max(dot(n, normalize(sunDir)), 0.0);
  vec3 lit = colDiffuse.rgb * (ambient + sun);
  float d = length(viewPos - worldPos);
  float fog = 1.0 - exp(-pow(d * fogDensity, 2.0));
  finalColor = vec4(mix(lit, skyColor, clamp(fog, 0.0, 1.0)), colDiffuse.a);
}
`
)

var (
	noonSun     = [3]float32{1.0, 0.97, 0.9}
	horizonSun  = [3]float32{1.0, 0.55, 0.3}
	groundBase  = [3]float32{0.16, 0.14, 0.12}
	moonAmbient = float32(0.25)
)

const fogDensity = float32(0.012)

// uniforms returns the per-frame shader inputs. The sun warms towards the horizon and
// the ambient never drops below moonAmbient so night scenes stay readable.
func (r *Registry) uniforms() map[string][]float32 {
	d := r.daylight
	var sun, sky, ground [3]float32
	amb := moonAmbient + (1-moonAmbient)*d
	for i := range 3 {
		sun[i] = (horizonSun[i] + (noonSun[i]-horizonSun[i])*d) * d * r.light[i]
		sky[i] = r.sky[i] * amb
		ground[i] = groundBase[i] * amb
	}
	return map[string][]float32{
		"viewPos":     {r.viewPos[0], r.viewPos[1], r.viewPos[2]},
		"sunDir":      {r.lightDir[0], r.lightDir[1], r.lightDir[2]},
		"sunColor":    sun[:],
		"skyColor":    sky[:],
		"groundColor": ground[:],
	}
}

// setUniforms updates the shared shader at most once per SetView.
func (r *Registry) setUniforms(shader rl.Shader) {
	if !r.dirty || !rl.IsShaderValid(shader) {
		return
	}
	r.dirty = false
	for name, v := range r.uniforms() {
		if loc := rl.GetShaderLocation(shader, name); loc >= 0 {
			rl.SetShaderValueV(shader, loc, v, rl.ShaderUniformVec3, 1)
		}
	}
	if loc := rl.GetShaderLocation(shader, "fogDensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{fogDensity}, rl.ShaderUniformFloat)
	}
}

// Draw draws one instance of typ at position, turned yaw degrees about +Y, with the
// given size and tint. Must be called between BeginMode3D and EndMode3D. Unknown
// types are skipped.
func (r *Registry) Draw(typ string, position [3]float32, yaw float32, scale [3]float32, tint rl.Color) {
	c, ok := r.ensure(typ)
	if !ok {
		return
	}
	r.setUniforms(c.mtl.Shader)
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = tint
	}
	for i := range scale {
		if scale[i] == 0 {
			scale[i] = 1
		}
	}
	// Model space offset, then scale, then yaw, then translate.
	m := rl.MatrixTranslate(c.offset[0], c.offset[1], c.offset[2])
	m = rl.MatrixMultiply(m, rl.MatrixScale(scale[0], scale[1], scale[2]))
	m = rl.MatrixMultiply(m, rl.MatrixRotateY(yaw*rl.Deg2rad))
	m = rl.MatrixMultiply(m, rl.MatrixTranslate(position[0], position[1], position[2]))
	rl.DrawMesh(c.mesh, c.mtl, m)
}

// Unload releases every cached mesh and the shared shader. Call before the window closes.
func (r *Registry) Unload() {
	for typ, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		delete(r.cache, typ)
	}
	if r.shader.ID != 0 {
		rl.UnloadShader(r.shader)
		r.shader = rl.Shader{}
	}
}
