// Package preset loads scatter presets: a file listing the curves, sources, terrain,
// sun and scatter jobs of one scene, applied in a single batch.
package preset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"env-generator/internal/mapgen"
	"env-generator/internal/ribbon"
	"env-generator/internal/scatter"
	"env-generator/internal/scene"
	"env-generator/internal/sun"
	"github.com/jinzhu/copier"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat = errors.New("unknown preset format")
	ErrNoJobs        = errors.New("preset has no jobs or ribbons")
)

// TerrainGroup is the group name sculpted terrain is stored under.
const TerrainGroup = "terrain"

// Preset is one preset file.
type Preset struct {
	// Seed, when set, seeds every job that has no seed of its own: job i gets Seed+i.
	Seed     uint64                 `yaml:"seed,omitempty" toml:"seed,omitempty" json:"seed,omitempty"`
	Curves   []scene.CurveDef       `yaml:"curves,omitempty" toml:"curves,omitempty" json:"curves,omitempty"`
	Sources  []scene.Object         `yaml:"sources,omitempty" toml:"sources,omitempty" json:"sources,omitempty"`
	Terrain  *mapgen.TerrainOptions `yaml:"terrain,omitempty" toml:"terrain,omitempty" json:"terrain,omitempty"`
	Sun      *sun.Settings          `yaml:"sun,omitempty" toml:"sun,omitempty" json:"sun,omitempty"`
	Defaults scatter.Job            `yaml:"defaults,omitempty" toml:"defaults,omitempty" json:"defaults,omitempty"`
	Jobs     []scatter.Job          `yaml:"jobs" toml:"jobs" json:"jobs"`
	Ribbons  []Ribbon               `yaml:"ribbons,omitempty" toml:"ribbons,omitempty" json:"ribbons,omitempty"`

	// stated holds the keys the file actually wrote, so a job can set a field back to
	// false or zero over a default. Nil for presets built in code.
	stated map[string]any
}

// Ribbon is a road or river built from scratch along a curve.
type Ribbon struct {
	Group          string `yaml:"group,omitempty" toml:"group,omitempty" json:"group,omitempty"`
	Curve          string `yaml:"curve" toml:"curve" json:"curve"`
	ribbon.Options `yaml:",inline"`
}

func (r Ribbon) group() string {
	switch {
	case r.Group != "":
		return r.Group
	case r.River:
		return "riverGrp"
	}
	return "roadGrp"
}

// Load reads a preset, picking the decoder from the file extension.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// Decode parses data in the format named by ext (".yaml", ".yml", ".toml" or ".json").
func Decode(data []byte, ext string) (*Preset, error) {
	var p Preset
	var stated map[string]any
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &p); err == nil {
			err = yaml.Unmarshal(data, &stated)
		}
	case ".toml":
		if err = toml.Unmarshal(data, &p); err == nil {
			err = toml.Unmarshal(data, &stated)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err = dec.Decode(&p); err == nil {
			err = json.Unmarshal(data, &stated)
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	p.stated = stated
	return &p, nil
}

// Resolved returns the jobs with Defaults merged under each one: every field a job
// states wins, including false and zero; the rest take the default's value. Jobs of
// a preset built in code have no stated keys, so their empty fields take the default.
func (p *Preset) Resolved() ([]scatter.Job, error) {
	if len(p.Jobs) == 0 {
		return nil, ErrNoJobs
	}
	statedJobs, _ := p.stated["jobs"].([]any)
	out := make([]scatter.Job, len(p.Jobs))
	for i, job := range p.Jobs {
		merged := p.Defaults
		if len(statedJobs) == len(p.Jobs) {
			keys, _ := statedJobs[i].(map[string]any)
			overlay(reflect.ValueOf(&merged).Elem(), reflect.ValueOf(job), keys)
		} else if err := copier.CopyWithOption(&merged, &job, copier.Option{IgnoreEmpty: true}); err != nil {
			return nil, err
		}
		// Detach slices from the defaults and the source job.
		if err := copier.CopyWithOption(&out[i], &merged, copier.Option{DeepCopy: true}); err != nil {
			return nil, err
		}
		if out[i].Seed == 0 && p.Seed != 0 {
			out[i].Seed = p.Seed + uint64(i)
		}
	}
	return out, nil
}

// terrain returns the terrain options with unstated fields taken from
// mapgen.DefaultTerrainOptions.
func (p *Preset) terrain() (mapgen.TerrainOptions, error) {
	opts := mapgen.DefaultTerrainOptions()
	if keys, ok := p.stated["terrain"].(map[string]any); ok {
		overlay(reflect.ValueOf(&opts).Elem(), reflect.ValueOf(*p.Terrain), keys)
		return opts, nil
	}
	err := copier.CopyWithOption(&opts, p.Terrain, copier.Option{IgnoreEmpty: true})
	return opts, err
}

// overlay copies every field of src whose key appears in keys into dst. Keys are
// the json tag names, which match the yaml and toml ones. A nested struct given as
// a table is overlaid field by field.
func overlay(dst, src reflect.Value, keys map[string]any) {
	t := dst.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		v, ok := keys[name]
		if !ok {
			continue
		}
		if sub, isTable := v.(map[string]any); isTable && f.Type.Kind() == reflect.Struct {
			overlay(dst.Field(i), src.Field(i), sub)
			continue
		}
		dst.Field(i).Set(src.Field(i))
	}
}

// Apply registers the preset's curves and sources in scn, sets the sun, sculpts
// terrain (unset terrain fields keep their defaults), builds the ribbons and runs
// every job as one batch. Curves, sources and the sun are plain definitions and stay
// registered if a job fails; ribbon and scatter groups do not. Ribbon results come
// first and carry no records.
func Apply(ctx context.Context, scn *scene.Scene, p *Preset) ([]scatter.Result, error) {
	if len(p.Jobs) == 0 && len(p.Ribbons) == 0 {
		return nil, ErrNoJobs
	}
	var jobs []scatter.Job
	if len(p.Jobs) > 0 {
		var err error
		if jobs, err = p.Resolved(); err != nil {
			return nil, err
		}
	}
	for _, c := range p.Curves {
		if err := scn.AddCurve(c); err != nil {
			return nil, err
		}
	}
	for _, o := range p.Sources {
		if err := scn.AddSource(o); err != nil {
			return nil, err
		}
	}
	if p.Sun != nil {
		if err := scn.SetSun(*p.Sun); err != nil {
			return nil, err
		}
	}
	if p.Terrain != nil {
		opts, err := p.terrain()
		if err != nil {
			return nil, err
		}
		if opts.Seed == 0 {
			opts.Seed = p.Seed
		}
		hf, err := mapgen.Sculpt(opts)
		if err != nil {
			return nil, err
		}
		if err := scn.ReplaceGroup(hf.Columns(TerrainGroup)); err != nil {
			return nil, err
		}
	}
	built, err := buildRibbons(scn, p.Ribbons)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return built, nil
	}
	res, err := scatter.RunBatch(ctx, scn, jobs)
	if err != nil {
		for _, r := range built {
			_ = scn.DeleteGroup(r.Group)
		}
		return nil, err
	}
	return append(built, res...), nil
}

// buildRibbons adds one group per ribbon, removing them all again if one fails.
func buildRibbons(scn *scene.Scene, ribbons []Ribbon) ([]scatter.Result, error) {
	var out []scatter.Result
	fail := func(err error) ([]scatter.Result, error) {
		for _, r := range out {
			_ = scn.DeleteGroup(r.Group)
		}
		return nil, err
	}
	for _, rb := range ribbons {
		path, err := scn.ResolveCurve(rb.Curve)
		if err != nil {
			return fail(fmt.Errorf("ribbon %s: %w", rb.group(), err))
		}
		built, err := ribbon.Build(path, rb.Options)
		if err != nil {
			return fail(fmt.Errorf("ribbon %s: %w", rb.group(), err))
		}
		h, err := scn.AddGroup(built.Group(rb.group()))
		if err != nil {
			return fail(err)
		}
		out = append(out, scatter.Result{Group: h})
	}
	return out, nil
}
