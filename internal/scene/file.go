package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"env-generator/internal/sun"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written into every saved scene.
const FormatVersion = "1.1.0"

// supportedVersions is the range of scene files Load accepts.
const supportedVersions = "^1.0.0"

// ErrUnsupportedVersion is returned by Load for scene files from an incompatible format.
var ErrUnsupportedVersion = errors.New("unsupported scene file version")

// sceneFile is the on-disk layout. Curves and sources are written sorted by name so
// saving the same scene twice yields the same bytes.
type sceneFile struct {
	Version string        `yaml:"version"`
	Sun     *sun.Settings `yaml:"sun,omitempty"`
	Curves  []CurveDef    `yaml:"curves,omitempty"`
	Sources []Object      `yaml:"sources,omitempty"`
	Groups  []Group       `yaml:"groups,omitempty"`
}

// Marshal encodes the scene as YAML.
func (s *Scene) Marshal() ([]byte, error) {
	snap := s.Snapshot()
	f := sceneFile{Version: FormatVersion, Sun: &snap.sun, Groups: snap.groups}
	for _, name := range sortedKeys(snap.curves) {
		f.Curves = append(f.Curves, snap.curves[name])
	}
	for _, name := range sortedKeys(snap.sources) {
		f.Sources = append(f.Sources, snap.sources[name])
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a YAML scene. The version field must satisfy supportedVersions.
func Unmarshal(data []byte) (*Scene, error) {
	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if err := checkVersion(f.Version); err != nil {
		return nil, err
	}
	s := New()
	if f.Sun != nil {
		if err := s.SetSun(*f.Sun); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}
	for _, c := range f.Curves {
		if err := s.AddCurve(c); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}
	for _, o := range f.Sources {
		if err := s.AddSource(o); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}
	for _, g := range f.Groups {
		if err := s.ReplaceGroup(g); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}
	return s, nil
}

// Save writes the scene to path, creating the directory if needed. The file is
// written next to the target and renamed so a watcher never sees a partial scene.
func (s *Scene) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".scene-*.yaml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a scene file. A missing file is reported as an error wrapping os.ErrNotExist.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: missing version", ErrUnsupportedVersion)
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, v, err)
	}
	c, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return err
	}
	if !c.Check(ver) {
		return fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, v, supportedVersions)
	}
	return nil
}
