package commands

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"env-generator/internal/geom"
	"env-generator/internal/logger"
	"env-generator/internal/mapgen"
	"env-generator/internal/placement"
	"env-generator/internal/preset"
	"env-generator/internal/ribbon"
	"env-generator/internal/scatter"
	"env-generator/internal/scene"
	"env-generator/internal/sun"
)

// ErrNothingToUndo is returned by undo when this session created no groups.
var ErrNothingToUndo = errors.New("nothing to undo")

// Session binds the built-in commands to one scene. The scene can be swapped by
// load; callers read it through Scene.
type Session struct {
	mu      sync.Mutex
	scn     *scene.Scene
	path    string
	seed    uint64
	runs    uint64
	history []scatter.GroupHandle

	Log      *logger.Logger
	Registry *Registry
	// OnChange, if set, is called after every command that modified the scene.
	OnChange func()
}

// NewSession registers the built-in commands for scn. path is the default file for
// save and load; seed, when non-zero, makes runs without an explicit seed reproducible.
func NewSession(scn *scene.Scene, path string, seed uint64, log *logger.Logger) *Session {
	if log == nil {
		log = logger.New("")
	}
	s := &Session{scn: scn, path: path, seed: seed, Log: log, Registry: NewRegistry()}
	s.register()
	return s
}

// Scene returns the scene commands currently operate on.
func (s *Session) Scene() *scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scn
}

// SetScene swaps the scene and forgets the undo history.
func (s *Session) SetScene(scn *scene.Scene) {
	s.mu.Lock()
	s.scn = scn
	s.history = nil
	s.mu.Unlock()
}

// History returns the groups created this session, oldest first.
func (s *Session) History() []scatter.GroupHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scatter.GroupHandle(nil), s.history...)
}

// Run tokenizes and executes one bare command line, logging the line and any error.
func (s *Session) Run(line string) error {
	args, err := ParseArgs(line)
	if err != nil {
		s.Log.Error(err)
		return err
	}
	if len(args) == 0 {
		return nil
	}
	s.Log.Log("> " + line)
	if err := s.Registry.Execute(args); err != nil {
		s.Log.Error(err)
		return err
	}
	return nil
}

// RunScript runs each line of a script in order and stops at the first error.
func (s *Session) RunScript(lines []string) error {
	for i, line := range lines {
		if err := s.Run(line); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Session) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Session) nextSeed(explicit uint64) uint64 {
	if explicit != 0 {
		return explicit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seed == 0 {
		return 0
	}
	s.runs++
	return s.seed + s.runs - 1
}

func (s *Session) pushHistory(h scatter.GroupHandle) {
	s.mu.Lock()
	s.history = append(s.history, h)
	s.mu.Unlock()
}

func (s *Session) register() {
	s.registerCurve()
	s.registerSource()
	s.registerScatter()
	s.registerRoad()
	s.registerUndo()
	s.registerGroups()
	s.registerTerrain()
	s.registerSun()
	s.registerFiles()
	s.registerPreset()
	s.registerClear()
}

func (s *Session) registerCurve() {
	fs := NewFlagSet("curve")
	name := fs.String("name", "", "curve name")
	kind := fs.String("kind", "linear", "linear or catmullrom")
	s.Registry.Register("curve", "curve -name N [-kind linear|catmullrom] [--] x,y,z x,y,z ...", fs, func() error {
		pts := make([]geom.Vec3, 0, fs.NArg())
		for _, a := range fs.Args() {
			p, err := parseVec3(a)
			if err != nil {
				return fmt.Errorf("curve: %w", err)
			}
			pts = append(pts, geom.Vec3(p))
		}
		if err := s.Scene().AddCurve(scene.CurveDef{Name: *name, Kind: *kind, Points: pts}); err != nil {
			return err
		}
		if _, err := s.Scene().ResolveCurve(*name); err != nil {
			s.Log.Logf("warning: %v", err)
		}
		s.Log.Logf("curve %s: %d points", *name, len(pts))
		return nil
	})
}

func (s *Session) registerSource() {
	fs := NewFlagSet("source")
	name := fs.String("name", "", "source name")
	typ := fs.String("type", "cube", "cube, sphere, cylinder, or plane")
	scale := fs.String("scale", "1,1,1", "x,y,z scale")
	yaw := fs.Float64("yaw", 0, "yaw in degrees")
	color := fs.String("color", "", "RRGGBB")
	s.Registry.Register("source", "source -name N [-type cube] [-scale x,y,z] [-yaw deg] [-color RRGGBB]", fs, func() error {
		sc, err := parseVec3(*scale)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		c := *color
		if c != "" && !strings.HasPrefix(c, "#") {
			c = "#" + c
		}
		obj := scene.Object{Name: *name, Type: *typ, Scale: sc, Yaw: float32(*yaw), Color: c}
		if err := s.Scene().AddSource(obj); err != nil {
			return err
		}
		s.Log.Logf("source %s: %s", *name, *typ)
		return nil
	})
}

func (s *Session) registerScatter() {
	fs := NewFlagSet("scatter")
	curveName := fs.String("curve", "", "curve name")
	count := fs.Int("count", 10, "number of instances")
	sources := fs.String("sources", "", "comma separated source names")
	group := fs.String("group", "buildingGrp", "group name")
	offset := fs.Float64("offset", 0, "max lateral offset")
	rotation := fs.Float64("rotation", 0, "max yaw jitter in degrees")
	follow := fs.Bool("follow", false, "turn instances to the curve")
	jitter := fs.Float64("scale", 0, "max uniform scale (0 = off)")
	seed := fs.Uint64("seed", 0, "random seed (0 = session default)")
	s.Registry.Register("scatter", "scatter -curve C -sources a,b [-count n] [-group g] [-offset o] [-rotation r] [-follow] [-scale s] [-seed n]", fs, func() error {
		job := scatter.Job{
			Group:   *group,
			Curve:   *curveName,
			Count:   *count,
			Sources: splitList(*sources),
			Params: placement.Params{
				OffsetRange:    float32(*offset),
				RotationRange:  float32(*rotation),
				FollowCurve:    *follow,
				ScaleJitterMax: float32(*jitter),
			},
			Seed: s.nextSeed(*seed),
		}
		return s.runJob(job)
	})
}

func (s *Session) registerRoad() {
	fs := NewFlagSet("road")
	curveName := fs.String("curve", "", "curve name")
	count := fs.Int("count", 20, "number of road pieces")
	source := fs.String("source", "", "road piece source (empty: build the road from scratch)")
	group := fs.String("group", "", "group name (default roadGrp, or riverGrp with -river)")
	seed := fs.Uint64("seed", 0, "random seed (0 = session default)")
	width := fs.Float64("width", ribbon.DefaultWidth, "road width")
	div := fs.Int("div", ribbon.DefaultDiv, "segments along the curve")
	height := fs.Float64("height", 0, "height offset")
	river := fs.Bool("river", false, "flatten into a river")
	s.Registry.Register("road", "road -curve C [-source S -count n | -width w -div n -height h -river] [-group g]", fs, func() error {
		if *source == "" {
			opts := ribbon.Options{Width: float32(*width), Div: *div, Height: float32(*height), River: *river}
			return s.runRibbon(*curveName, *group, opts)
		}
		job := scatter.Job{
			Group:   cmp.Or(*group, "roadGrp"),
			Curve:   *curveName,
			Count:   *count,
			Sources: splitList(*source),
			Road:    true,
			Seed:    s.nextSeed(*seed),
		}
		return s.runJob(job)
	})
}

func (s *Session) runRibbon(curveName, group string, opts ribbon.Options) error {
	if group == "" {
		group = "roadGrp"
		if opts.River {
			group = "riverGrp"
		}
	}
	p, err := s.Scene().ResolveCurve(curveName)
	if err != nil {
		return err
	}
	r, err := ribbon.Build(p, opts)
	if err != nil {
		return fmt.Errorf("road: %w", err)
	}
	h, err := s.Scene().AddGroup(r.Group(group))
	if err != nil {
		return err
	}
	s.pushHistory(h)
	s.Log.Logf("%s: %d segments", h, len(r.Segments))
	s.changed()
	return nil
}

func (s *Session) runJob(job scatter.Job) error {
	res, err := scatter.Run(s.Scene(), job)
	if err != nil {
		return err
	}
	s.pushHistory(res.Group)
	s.Log.Logf("%s: %d objects (seed %d)", res.Group, len(res.Records), res.Seed)
	s.changed()
	return nil
}

func (s *Session) registerUndo() {
	fs := NewFlagSet("undo")
	group := fs.String("group", "", "group to delete (default: last created)")
	s.Registry.Register("undo", "undo [-group g]", fs, func() error {
		h := scatter.GroupHandle(*group)
		s.mu.Lock()
		if h == "" {
			if len(s.history) == 0 {
				s.mu.Unlock()
				return ErrNothingToUndo
			}
			h = s.history[len(s.history)-1]
		}
		scn := s.scn
		s.mu.Unlock()

		if err := scn.DeleteGroup(h); err != nil {
			return err
		}
		s.mu.Lock()
		for i := len(s.history) - 1; i >= 0; i-- {
			if s.history[i] == h {
				s.history = append(s.history[:i], s.history[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		s.Log.Logf("removed %s", h)
		s.changed()
		return nil
	})
}

func (s *Session) registerGroups() {
	fs := NewFlagSet("groups")
	s.Registry.Register("groups", "groups", fs, func() error {
		groups := s.Scene().Groups()
		if len(groups) == 0 {
			s.Log.Log("no groups")
			return nil
		}
		for _, g := range groups {
			s.Log.Logf("%s (%s): %d objects", g.Name, g.Kind, len(g.Objects))
		}
		return nil
	})
}

func (s *Session) registerTerrain() {
	fs := NewFlagSet("terrain")
	def := mapgen.DefaultTerrainOptions()
	dim := fs.Float64("dim", float64(def.Dim), "plane size")
	div := fs.Int("div", def.Div, "subdivisions per side")
	height := fs.Float64("height", float64(def.Height), "max push up")
	depth := fs.Float64("depth", float64(def.Depth), "max push down")
	falloff := fs.Float64("falloff", float64(def.Falloff), "soft selection radius")
	noise := fs.Float64("noise", 0, "fractal noise height (0 = off)")
	seed := fs.Uint64("seed", 0, "random seed (0 = session default)")
	s.Registry.Register("terrain", "terrain [-dim d] [-div n] [-height h] [-depth d] [-falloff f] [-noise n] [-seed n]", fs, func() error {
		opts := mapgen.DefaultTerrainOptions()
		opts.Dim = float32(*dim)
		opts.Div = *div
		opts.Height = float32(*height)
		opts.Depth = float32(*depth)
		opts.Falloff = float32(*falloff)
		opts.NoiseScale = float32(*noise)
		opts.Seed = s.nextSeed(*seed)
		hf, err := mapgen.Sculpt(opts)
		if err != nil {
			return err
		}
		g := hf.Columns(preset.TerrainGroup)
		if err := s.Scene().ReplaceGroup(g); err != nil {
			return err
		}
		s.Log.Logf("terrain: %d columns (seed %d)", len(g.Objects), hf.Seed)
		s.changed()
		return nil
	})
}

func (s *Session) registerSun() {
	fs := NewFlagSet("sun")
	north := fs.Int("north", 1, "rotation axis 1-4")
	hour := fs.Float64("hour", 12, "time of day")
	frames := fs.String("frames", "", "start,end frames for a day cycle")
	hours := fs.String("hours", "6,18", "start,end hours for a day cycle")
	intensity := fs.Float64("intensity", 1, "light intensity (0-10)")
	color := fs.String("color", "1,1,1", "r,g,b light colour (0-1)")
	s.Registry.Register("sun", "sun [-north 1-4] [-hour h] [-frames a,b -hours a,b] [-intensity i] [-color r,g,b]", fs, func() error {
		rgb, err := parseFloats(*color, 3)
		if err != nil {
			return fmt.Errorf("sun: color: %w", err)
		}
		set := sun.Settings{
			North:     sun.North(*north),
			Hour:      float32(*hour),
			Intensity: float32(*intensity),
			Color:     [3]float32{rgb[0], rgb[1], rgb[2]},
		}
		if *frames != "" {
			f, err := parseFloats(*frames, 2)
			if err != nil {
				return fmt.Errorf("sun: frames: %w", err)
			}
			h, err := parseFloats(*hours, 2)
			if err != nil {
				return fmt.Errorf("sun: hours: %w", err)
			}
			set.Cycle = &sun.Cycle{FrameStart: int(f[0]), FrameEnd: int(f[1]), HourStart: h[0], HourEnd: h[1]}
		}
		if err := s.Scene().SetSun(set); err != nil {
			return err
		}
		dir, _ := sun.Direction(set.North, set.Hour)
		s.Log.Logf("sun: north %d, %g h, direction %.2f %.2f %.2f", *north, *hour, dir.X(), dir.Y(), dir.Z())
		s.changed()
		return nil
	})
}

func (s *Session) registerFiles() {
	save := NewFlagSet("save")
	s.Registry.Register("save", "save [path]", save, func() error {
		path := s.fileArg(save.Args())
		if err := s.Scene().Save(path); err != nil {
			return err
		}
		s.Log.Logf("saved %s", path)
		return nil
	})

	load := NewFlagSet("load")
	s.Registry.Register("load", "load [path]", load, func() error {
		path := s.fileArg(load.Args())
		scn, err := scene.Load(path)
		if err != nil {
			return err
		}
		s.SetScene(scn)
		s.Log.Logf("loaded %s: %d objects", path, scn.ObjectCount())
		s.changed()
		return nil
	})
}

func (s *Session) fileArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return s.path
}

func (s *Session) registerPreset() {
	fs := NewFlagSet("preset")
	s.Registry.Register("preset", "preset path", fs, func() error {
		if fs.NArg() != 1 {
			return fmt.Errorf("preset: want one path")
		}
		p, err := preset.Load(fs.Arg(0))
		if err != nil {
			return err
		}
		if p.Seed == 0 {
			p.Seed = s.nextSeed(0)
		}
		res, err := preset.Apply(context.Background(), s.Scene(), p)
		if err != nil {
			return err
		}
		n := 0
		for _, r := range res {
			s.pushHistory(r.Group)
			n += len(r.Records)
		}
		s.Log.Logf("preset %s: %d groups, %d objects", fs.Arg(0), len(res), n)
		s.changed()
		return nil
	})
}

func (s *Session) registerClear() {
	fs := NewFlagSet("clear")
	s.Registry.Register("clear", "clear", fs, func() error {
		s.Scene().Clear()
		s.mu.Lock()
		s.history = nil
		s.mu.Unlock()
		s.Log.Log("cleared")
		s.changed()
		return nil
	})
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloats(v string, n int) ([]float32, error) {
	parts := strings.Split(v, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma separated numbers, got %q", n, v)
	}
	out := make([]float32, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseVec3 reads "x,y,z", or "x,z" on the ground plane.
func parseVec3(v string) ([3]float32, error) {
	if strings.Count(v, ",") == 1 {
		f, err := parseFloats(v, 2)
		if err != nil {
			return [3]float32{}, err
		}
		return [3]float32{f[0], 0, f[1]}, nil
	}
	f, err := parseFloats(v, 3)
	if err != nil {
		return [3]float32{}, err
	}
	return [3]float32{f[0], f[1], f[2]}, nil
}
