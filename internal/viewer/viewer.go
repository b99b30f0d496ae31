// Package viewer draws a scene with raylib: a free camera, the editor grid, every
// placed object lit by the scene's sun, and the curves objects were scattered along.
package viewer

import (
	"bytes"
	"os"

	"env-generator/internal/commands"
	"env-generator/internal/curve"
	"env-generator/internal/debug"
	"env-generator/internal/primitives"
	"env-generator/internal/scene"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	gridExtent     = 50
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
	// curveSamples is how many points each curve is drawn with.
	curveSamples = 64
)

var (
	curveColor = rl.NewColor(240, 200, 60, 255)
	nightSky   = [3]float32{10, 12, 24}
	daySky     = [3]float32{120, 160, 210}
)

// Viewer holds a 3D camera and draws the session's scene. Update runs camera logic and
// reloads; Draw renders between BeginMode3D and EndMode3D.
type Viewer struct {
	Camera      rl.Camera3D
	GridVisible bool
	ShowCurves  bool
	Overlay     *debug.Overlay

	session    *commands.Session
	prims      *primitives.Registry
	watcher    *scene.Watcher
	path       string
	frame      float32
	cursorDone bool
	colors     map[string]rl.Color
}

// New returns a viewer with a perspective camera looking at the origin from (20,20,20).
// When watch is set, the scene file at path is reloaded whenever it changes on disk.
func New(session *commands.Session, path string, watch bool) (*Viewer, error) {
	v := &Viewer{
		GridVisible: true,
		ShowCurves:  true,
		Overlay:     debug.New(),
		session:     session,
		prims:       primitives.NewRegistry(),
		path:        path,
		colors:      make(map[string]rl.Color),
	}
	v.Camera.Position = rl.NewVector3(20, 20, 20)
	v.Camera.Target = rl.NewVector3(0, 0, 0)
	v.Camera.Up = rl.NewVector3(0, 1, 0)
	v.Camera.Fovy = 45
	v.Camera.Projection = rl.CameraPerspective
	if watch && path != "" {
		w, err := scene.NewWatcher(path)
		if err != nil {
			return nil, err
		}
		v.watcher = w
	}
	return v, nil
}

// Close stops watching and releases GPU resources.
func (v *Viewer) Close() {
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
	v.prims.Unload()
}

// Update runs once per frame. The camera only moves while captured is false (the
// terminal is closed). A pending file change is reloaded here, on the main thread.
func (v *Viewer) Update(captured bool) {
	if !v.cursorDone {
		rl.DisableCursor()
		v.cursorDone = true
	}
	if !captured {
		rl.UpdateCamera(&v.Camera, rl.CameraFree)
	}
	v.advanceFrame()
	if v.watcher == nil {
		return
	}
	select {
	case <-v.watcher.Changes():
		v.reload()
	default:
	}
}

func (v *Viewer) advanceFrame() {
	v.frame++
	if c := v.session.Scene().Sun().Cycle; c != nil && v.frame > float32(c.FrameEnd) {
		v.frame = float32(c.FrameStart)
	}
}

// reload loads the scene file unless it already matches the scene in memory, which is
// the case right after the session saved it.
func (v *Viewer) reload() {
	data, err := os.ReadFile(v.path)
	if err != nil {
		v.session.Log.Error(err)
		return
	}
	if cur, err := v.session.Scene().Marshal(); err == nil && bytes.Equal(cur, data) {
		return
	}
	scn, err := scene.Unmarshal(data)
	if err != nil {
		v.session.Log.Error(err)
		return
	}
	v.session.SetScene(scn)
	v.session.Log.Logf("reloaded %s: %d objects", v.path, scn.ObjectCount())
}

// daylight returns the sun's light direction for the current frame and how high the
// sun stands (0 below the horizon, 1 overhead).
func (v *Viewer) daylight() ([3]float32, float32) {
	toLight, err := v.session.Scene().Sun().ToLightAt(v.frame)
	if err != nil {
		return [3]float32{0, 1, 0}, 1
	}
	return toLight, max(0, toLight.Y())
}

// Background is the sky colour for the current hour.
func (v *Viewer) Background() rl.Color {
	_, d := v.daylight()
	mix := func(i int) uint8 { return uint8(nightSky[i] + (daySky[i]-nightSky[i])*d) }
	return rl.NewColor(mix(0), mix(1), mix(2), 255)
}

// Draw renders the 3D scene. Call after ClearBackground and before the 2D overlay.
func (v *Viewer) Draw() {
	scn := v.session.Scene()
	toLight, d := v.daylight()
	pos := v.Camera.Position
	v.prims.SetView([3]float32{pos.X, pos.Y, pos.Z}, toLight, d)
	v.prims.SetSky(v.Background())
	v.prims.SetSunLight(scn.Sun().Light())

	rl.BeginMode3D(v.Camera)
	if v.GridVisible {
		drawEditorGrid()
	}
	for _, o := range scn.Objects() {
		v.prims.Draw(o.Type, o.Position, o.Yaw, o.Scale, v.color(o.Color))
	}
	if v.ShowCurves {
		drawCurves(scn)
	}
	rl.EndMode3D()
	v.Overlay.Draw(v.stats)
}

func (v *Viewer) stats() debug.Stats {
	scn := v.session.Scene()
	return debug.Stats{
		Objects: scn.ObjectCount(),
		Groups:  len(scn.Groups()),
		Hour:    scn.Sun().HourAt(v.frame),
	}
}

func (v *Viewer) color(hex string) rl.Color {
	if c, ok := v.colors[hex]; ok {
		return c
	}
	rgba, _ := scene.ParseColor(hex)
	c := rl.NewColor(rgba[0], rgba[1], rgba[2], rgba[3])
	v.colors[hex] = c
	return c
}

// drawCurves draws every curve that resolves as a line strip.
func drawCurves(scn *scene.Scene) {
	for _, name := range scn.CurveNames() {
		p, err := scn.ResolveCurve(name)
		if err != nil {
			continue
		}
		samples, err := curve.SampleN(p, curveSamples)
		if err != nil {
			continue
		}
		for i := 1; i < len(samples); i++ {
			a, b := samples[i-1].Position, samples[i].Position
			rl.DrawLine3D(rl.NewVector3(a.X(), a.Y(), a.Z()), rl.NewVector3(b.X(), b.Y(), b.Z()), curveColor)
		}
	}
}

// drawEditorGrid draws a grid on the XZ plane with major/minor lines and axis lines.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)

	var start, end rl.Vector3
	for i := -gridExtent; i <= gridExtent; i += gridMinorStep {
		c := major
		if i%gridMajorStep != 0 {
			c = minor
		}
		f := float32(i)
		start.X, start.Y, start.Z = f, 0, -gridExtent
		end.X, end.Y, end.Z = f, 0, gridExtent
		rl.DrawLine3D(start, end, c)
		start.X, start.Z = -gridExtent, f
		end.X, end.Z = gridExtent, f
		rl.DrawLine3D(start, end, c)
	}

	// Axis lines through origin (X=red, Y=green, Z=blue)
	axes := [3]rl.Color{
		rl.NewColor(220, 80, 80, axisLineAlpha),
		rl.NewColor(80, 220, 80, axisLineAlpha),
		rl.NewColor(80, 80, 220, axisLineAlpha),
	}
	for i, c := range axes {
		var a, b [3]float32
		a[i], b[i] = -gridExtent, gridExtent
		rl.DrawLine3D(rl.NewVector3(a[0], a[1], a[2]), rl.NewVector3(b[0], b[1], b[2]), c)
	}
}
