package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"env-generator/internal/curve"
	"env-generator/internal/geom"
	"env-generator/internal/scatter"
	"env-generator/internal/sun"
	"github.com/jinzhu/copier"
)

var (
	ErrCurveNotFound  = errors.New("curve not found")
	ErrSourceNotFound = errors.New("source object not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrUnknownType    = errors.New("unknown primitive type")
)

// PrimitiveTypes are the object types the viewer knows how to draw.
var PrimitiveTypes = []string{"cube", "sphere", "cylinder", "plane"}

// Group kinds.
const (
	KindScatter = "scatter"
	KindTerrain = "terrain"
	KindRibbon  = "ribbon"
)

// defaultGroupName is used when a caller materializes without naming the group.
const defaultGroupName = "scatterGrp"

// Object is one placed primitive. Sources use the same type as prototypes: a
// duplicate copies Type, Scale and Color and takes its transform from a record.
type Object struct {
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`
	Source   string     `yaml:"source,omitempty"`
	Position [3]float32 `yaml:"position,flow"`
	Yaw      float32    `yaml:"yaw,omitempty"` // degrees about +Y
	Scale    [3]float32 `yaml:"scale,flow"`
	Color    string     `yaml:"color,omitempty"` // #RRGGBB, empty = default grey
}

// CurveDef is a named path as stored in the scene. It is resolved into a
// curve.Path on demand so degenerate definitions can still be stored and listed.
type CurveDef struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind,omitempty"`
	Points []geom.Vec3 `yaml:"points,flow"`
}

// Group is everything one materialize (or terrain) call created.
type Group struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind,omitempty"`
	Objects []Object `yaml:"objects"`
}

// Scene is the headless host: named curves, source prototypes, and groups of
// placed objects. All methods are safe for concurrent use.
type Scene struct {
	mu      sync.RWMutex
	curves  map[string]CurveDef
	sources map[string]Object
	groups  []Group
	sun     sun.Settings
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		curves:  make(map[string]CurveDef),
		sources: make(map[string]Object),
		sun:     sun.DefaultSettings(),
	}
}

// AddCurve stores (or replaces) a named curve. kind is validated; the points are
// only checked when the curve is resolved.
func (s *Scene) AddCurve(def CurveDef) error {
	if def.Name == "" {
		return fmt.Errorf("curve: missing name")
	}
	if _, err := curve.ParseKind(def.Kind); err != nil {
		return fmt.Errorf("curve %s: %w", def.Name, err)
	}
	def.Points = append([]geom.Vec3(nil), def.Points...)
	s.mu.Lock()
	s.curves[def.Name] = def
	s.mu.Unlock()
	return nil
}

// Curve returns the stored definition for name.
func (s *Scene) Curve(name string) (CurveDef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.curves[name]
	return def, ok
}

// CurveNames returns curve names in sorted order.
func (s *Scene) CurveNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.curves)
}

// AddSource stores (or replaces) a source prototype. A zero scale becomes (1,1,1).
func (s *Scene) AddSource(obj Object) error {
	if obj.Name == "" {
		return fmt.Errorf("source: missing name")
	}
	if !isPrimitive(obj.Type) {
		return fmt.Errorf("source %s: %w %q (use cube, sphere, cylinder, or plane)", obj.Name, ErrUnknownType, obj.Type)
	}
	if _, err := ParseColor(obj.Color); err != nil {
		return fmt.Errorf("source %s: %w", obj.Name, err)
	}
	if obj.Scale == ([3]float32{}) {
		obj.Scale = [3]float32{1, 1, 1}
	}
	s.mu.Lock()
	s.sources[obj.Name] = obj
	s.mu.Unlock()
	return nil
}

// Source returns the prototype for name.
func (s *Scene) Source(name string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.sources[name]
	return obj, ok
}

// SourceNames returns source names in sorted order.
func (s *Scene) SourceNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.sources)
}

// Groups returns a deep copy of the groups in creation order.
func (s *Scene) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Group
	_ = copier.CopyWithOption(&out, &s.groups, copier.Option{DeepCopy: true})
	return out
}

// Group returns a copy of the named group.
func (s *Scene) Group(name string) (Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.groupIndex(name)
	if i < 0 {
		return Group{}, false
	}
	var g Group
	_ = copier.CopyWithOption(&g, &s.groups[i], copier.Option{DeepCopy: true})
	return g, true
}

// ObjectCount returns the number of placed objects across all groups.
func (s *Scene) ObjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.groups {
		n += len(g.Objects)
	}
	return n
}

// Objects returns every placed object, group by group. Used by the viewer each frame,
// so it copies only the flat slice.
func (s *Scene) Objects() []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Object, 0, 64)
	for _, g := range s.groups {
		out = append(out, g.Objects...)
	}
	return out
}

// ReplaceGroup installs g under its name, replacing any group with that name. Used
// for terrain, which is regenerated rather than stacked.
func (s *Scene) ReplaceGroup(g Group) error {
	if g.Name == "" {
		return fmt.Errorf("group: missing name")
	}
	for _, o := range g.Objects {
		if !isPrimitive(o.Type) {
			return fmt.Errorf("group %s: object %s: %w %q", g.Name, o.Name, ErrUnknownType, o.Type)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.groupIndex(g.Name); i >= 0 {
		s.groups[i] = g
		return nil
	}
	s.groups = append(s.groups, g)
	return nil
}

// AddGroup installs g as a new group. Like Materialize, the name is made unique by a
// numeric suffix and the handle carries the name used; DeleteGroup undoes it.
func (s *Scene) AddGroup(g Group) (scatter.GroupHandle, error) {
	if g.Name == "" {
		g.Name = defaultGroupName
	}
	if len(g.Objects) == 0 {
		return "", fmt.Errorf("group %s: no objects", g.Name)
	}
	for _, o := range g.Objects {
		if !isPrimitive(o.Type) {
			return "", fmt.Errorf("group %s: object %s: %w %q", g.Name, o.Name, ErrUnknownType, o.Type)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g.Name = s.uniqueGroupName(g.Name)
	s.groups = append(s.groups, g)
	return scatter.GroupHandle(g.Name), nil
}

// SetSun replaces the sun settings.
func (s *Scene) SetSun(set sun.Settings) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("sun: %w", err)
	}
	if set.Cycle != nil {
		c := *set.Cycle
		set.Cycle = &c
	}
	s.mu.Lock()
	s.sun = set
	s.mu.Unlock()
	return nil
}

// Sun returns the current sun settings.
func (s *Scene) Sun() sun.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sun
	if out.Cycle != nil {
		c := *out.Cycle
		out.Cycle = &c
	}
	return out
}

// Clear removes every group but keeps curves and sources.
func (s *Scene) Clear() {
	s.mu.Lock()
	s.groups = nil
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the whole scene.
func (s *Scene) Snapshot() *Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := New()
	opt := copier.Option{DeepCopy: true}
	_ = copier.CopyWithOption(&out.curves, &s.curves, opt)
	_ = copier.CopyWithOption(&out.sources, &s.sources, opt)
	_ = copier.CopyWithOption(&out.groups, &s.groups, opt)
	out.sun = s.sun
	if s.sun.Cycle != nil {
		c := *s.sun.Cycle
		out.sun.Cycle = &c
	}
	return out
}

func (s *Scene) groupIndex(name string) int {
	for i, g := range s.groups {
		if g.Name == name {
			return i
		}
	}
	return -1
}

func isPrimitive(typ string) bool {
	for _, t := range PrimitiveTypes {
		if t == typ {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
