package scene

import (
	"fmt"
	"strconv"

	"env-generator/internal/curve"
	"env-generator/internal/populate"
	"env-generator/internal/scatter"
)

var _ scatter.Host = (*Scene)(nil)

// ResolveCurve builds the named curve. Unknown names give ErrCurveNotFound; a stored
// but degenerate curve gives curve.ErrInvalidCurve.
func (s *Scene) ResolveCurve(name string) (*curve.Path, error) {
	def, ok := s.Curve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCurveNotFound, name)
	}
	kind, err := curve.ParseKind(def.Kind)
	if err != nil {
		return nil, fmt.Errorf("curve %s: %w", name, err)
	}
	p, err := curve.New(def.Points, kind)
	if err != nil {
		return nil, fmt.Errorf("curve %s: %w", name, err)
	}
	return p, nil
}

// Materialize duplicates the source of every record and parents the copies under a
// new group. Each copy keeps its prototype's type, scale and colour; its position
// is the record's, its yaw is the prototype's plus the record's, and its scale is
// multiplied only when the record is Scaled.
//
// Every source is checked before anything is added, so a failed call leaves the
// scene untouched. The group name is made unique by a numeric suffix (name, name1,
// name2, ...); the handle carries the name actually used.
func (s *Scene) Materialize(records []populate.Record, group string) (scatter.GroupHandle, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("materialize: no records")
	}
	if group == "" {
		group = defaultGroupName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objs := make([]Object, 0, len(records))
	for _, r := range records {
		src, ok := s.sources[r.Source]
		if !ok {
			return "", fmt.Errorf("materialize: %w: %q", ErrSourceNotFound, r.Source)
		}
		o := Object{
			Name:     src.Name + strconv.Itoa(r.Index+1),
			Type:     src.Type,
			Source:   src.Name,
			Position: r.Position,
			Yaw:      src.Yaw + r.Yaw,
			Scale:    src.Scale,
			Color:    src.Color,
		}
		if r.Scaled {
			o.Scale = [3]float32{o.Scale[0] * r.Scale, o.Scale[1] * r.Scale, o.Scale[2] * r.Scale}
		}
		objs = append(objs, o)
	}

	name := s.uniqueGroupName(group)
	s.groups = append(s.groups, Group{Name: name, Kind: KindScatter, Objects: objs})
	return scatter.GroupHandle(name), nil
}

// DeleteGroup removes everything one Materialize call created.
func (s *Scene) DeleteGroup(h scatter.GroupHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.groupIndex(string(h))
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrGroupNotFound, string(h))
	}
	s.groups = append(s.groups[:i], s.groups[i+1:]...)
	return nil
}

// uniqueGroupName must be called with s.mu held.
func (s *Scene) uniqueGroupName(base string) string {
	if s.groupIndex(base) < 0 {
		return base
	}
	for n := 1; ; n++ {
		name := base + strconv.Itoa(n)
		if s.groupIndex(name) < 0 {
			return name
		}
	}
}
