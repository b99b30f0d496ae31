package commands

import (
	"os"
	"path/filepath"
	"testing"

	"env-generator/internal/mapgen"
	"env-generator/internal/preset"
	"env-generator/internal/ribbon"
	"env-generator/internal/scatter"
	"env-generator/internal/scene"
	"env-generator/internal/sun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	args, ok, err := Parse(`cmd scatter -curve "main street" -count 3`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"scatter", "-curve", "main street", "-count", "3"}, args)

	_, ok, _ = Parse("hello there")
	assert.False(t, ok)

	args, ok, err = Parse("cmd ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, args)

	_, _, err = Parse(`cmd save "unterminated`)
	assert.Error(t, err)

	args, err = ParseArgs("  # comment")
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestExecuteResetsFlags(t *testing.T) {
	r := NewRegistry()
	fs := NewFlagSet("echo")
	msg := fs.String("msg", "default", "")
	var got []string
	r.Register("echo", "echo [-msg m]", fs, func() error {
		got = append(got, *msg)
		return nil
	})
	require.NoError(t, r.Execute([]string{"echo", "-msg", "hi"}))
	require.NoError(t, r.Execute([]string{"echo"}))
	assert.Equal(t, []string{"hi", "default"}, got)

	assert.ErrorIs(t, r.Execute([]string{"nope"}), ErrUnknownCommand)
	assert.Error(t, r.Execute(nil))
	assert.Error(t, r.Execute([]string{"echo", "-bogus"}))
	assert.Equal(t, []string{"echo"}, r.Names())
	usage, ok := r.Usage("echo")
	assert.True(t, ok)
	assert.Equal(t, "echo [-msg m]", usage)
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(scene.New(), filepath.Join(t.TempDir(), "scene.yaml"), 100, nil)
	require.NoError(t, s.RunScript([]string{
		"curve -name street 0,0,0 20,0,0",
		"curve -name river -kind catmullrom -- -5,0,0 0,0,5 5,0,0",
		"source -name house -type cube -scale 2,3,2 -color 8a6d4b",
		"source -name tree -type cylinder",
		"source -name slab -type plane",
	}))
	return s
}

func TestSessionScatterAndUndo(t *testing.T) {
	s := newSession(t)
	changes := 0
	s.OnChange = func() { changes++ }

	require.NoError(t, s.Run("scatter -curve street -sources house,tree -count 8 -offset 2 -rotation 20"))
	require.NoError(t, s.Run("road -curve street -source slab -count 5"))
	require.NoError(t, s.Run("scatter -curve river -sources tree -count 4 -follow -scale 2"))
	assert.Equal(t, 3, changes)
	assert.Equal(t, []scatter.GroupHandle{"buildingGrp", "roadGrp", "buildingGrp1"}, s.History())
	assert.Equal(t, 17, s.Scene().ObjectCount())

	house, ok := s.Scene().Source("house")
	require.True(t, ok)
	assert.Equal(t, "#8a6d4b", house.Color)

	require.NoError(t, s.Run("undo"))
	_, ok = s.Scene().Group("buildingGrp1")
	assert.False(t, ok)

	require.NoError(t, s.Run("undo -group buildingGrp"))
	assert.Equal(t, []scatter.GroupHandle{"roadGrp"}, s.History())
	assert.Equal(t, 5, s.Scene().ObjectCount())

	require.NoError(t, s.Run("undo"))
	assert.ErrorIs(t, s.Run("undo"), ErrNothingToUndo)
	assert.ErrorIs(t, s.Run("undo -group ghost"), scene.ErrGroupNotFound)
}

func TestSessionRoadFromScratch(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Run("road -curve street -width 3 -div 4 -height 0.2"))
	require.NoError(t, s.Run("road -curve river -river -div 6"))
	assert.Equal(t, []scatter.GroupHandle{"roadGrp", "riverGrp"}, s.History())

	road, ok := s.Scene().Group("roadGrp")
	require.True(t, ok)
	assert.Equal(t, scene.KindRibbon, road.Kind)
	require.Len(t, road.Objects, 4)
	for _, o := range road.Objects {
		assert.Equal(t, "plane", o.Type)
		assert.InDelta(t, 5, o.Scale[0], 1e-4)
		assert.Equal(t, float32(3), o.Scale[2])
		assert.InDelta(t, 0.2, o.Position[1], 1e-4)
	}

	river, ok := s.Scene().Group("riverGrp")
	require.True(t, ok)
	for _, o := range river.Objects {
		assert.Equal(t, river.Objects[0].Position[1], o.Position[1])
	}

	require.NoError(t, s.Run("undo"))
	_, ok = s.Scene().Group("riverGrp")
	assert.False(t, ok)

	assert.ErrorIs(t, s.Run("road -curve street -width -1"), ribbon.ErrInvalidRibbon)
	assert.ErrorIs(t, s.Run("road -curve ghost"), scene.ErrCurveNotFound)
}

func TestSessionSeedsAreReproducible(t *testing.T) {
	a := newSession(t)
	b := newSession(t)
	for _, s := range []*Session{a, b} {
		require.NoError(t, s.Run("scatter -curve street -sources house,tree -count 6 -offset 3 -rotation 45 -scale 1.5"))
	}
	assert.Equal(t, a.Scene().Groups(), b.Scene().Groups())
}

func TestSessionErrorsAreLogged(t *testing.T) {
	s := newSession(t)
	err := s.Run("scatter -curve nowhere -sources house")
	assert.ErrorIs(t, err, scene.ErrCurveNotFound)
	err = s.Run("scatter -curve street")
	assert.ErrorIs(t, err, scatter.ErrNoSources)
	err = s.Run("scatter -curve street -sources ghost")
	assert.ErrorIs(t, err, scene.ErrSourceNotFound)
	assert.Equal(t, 0, s.Scene().ObjectCount())

	lines := s.Log.Lines()
	assert.Contains(t, lines[len(lines)-1], "error: ")
}

func TestSessionTerrainAndSun(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Run("terrain -div 5 -seed 3"))
	g, ok := s.Scene().Group(preset.TerrainGroup)
	require.True(t, ok)
	assert.Len(t, g.Objects, 25)
	assert.ErrorIs(t, s.Run("terrain -div 100000"), mapgen.ErrInvalidTerrain)

	require.NoError(t, s.Run("sun -north 4 -hour 9"))
	assert.Equal(t, sun.NorthPosZ, s.Scene().Sun().North)
	require.NoError(t, s.Run("sun -north 2 -frames 0,100 -hours 5,20"))
	require.NotNil(t, s.Scene().Sun().Cycle)
	assert.Equal(t, float32(20), s.Scene().Sun().Cycle.HourEnd)

	require.NoError(t, s.Run("sun -intensity 2.5 -color 1,0.8,0.6"))
	assert.Equal(t, float32(2.5), s.Scene().Sun().Intensity)
	assert.Equal(t, [3]float32{1, 0.8, 0.6}, s.Scene().Sun().Color)
	assert.ErrorIs(t, s.Run("sun -intensity 11"), sun.ErrInvalidLight)
	assert.Error(t, s.Run("sun -color 1,1"))

	assert.ErrorIs(t, s.Run("sun -north 9"), sun.ErrInvalidNorth)
	assert.ErrorIs(t, s.Run("sun -frames 10,0"), sun.ErrInvalidCycle)
}

func TestSessionSaveLoadClear(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Run("scatter -curve street -sources house -count 4"))
	require.NoError(t, s.Run("save"))
	require.NoError(t, s.Run("clear"))
	assert.Equal(t, 0, s.Scene().ObjectCount())
	assert.Empty(t, s.History())

	require.NoError(t, s.Run("load"))
	assert.Equal(t, 4, s.Scene().ObjectCount())
	assert.Empty(t, s.History())

	other := filepath.Join(t.TempDir(), "copy.yaml")
	require.NoError(t, s.Run("save "+other))
	_, err := os.Stat(other)
	assert.NoError(t, err)
	assert.ErrorIs(t, s.Run("load "+filepath.Join(t.TempDir(), "none.yaml")), os.ErrNotExist)
}

func TestSessionPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jobs:
  - group: trees
    curve: river
    count: 5
    sources: [tree]
`), 0644))
	s := newSession(t)
	require.NoError(t, s.Run("preset "+path))
	assert.Equal(t, []scatter.GroupHandle{"trees"}, s.History())
	assert.Equal(t, 5, s.Scene().ObjectCount())
	assert.Error(t, s.Run("preset"))
}

func TestCompleteAndHint(t *testing.T) {
	s := newSession(t)
	r := s.Registry
	assert.Equal(t, "scatter ", r.Complete("sca"))
	assert.Equal(t, "s", r.Complete("s"))
	assert.Equal(t, "sun -hour", r.Complete("sun -ho"))
	assert.Equal(t, "cmd road ", r.Complete("cmd ro"))
	assert.Equal(t, "scatter -curve street -sources ", r.Complete("scatter -curve street -sou"))
	assert.Equal(t, "scatter -curve st", r.Complete("scatter -curve st"))
	assert.Equal(t, "nothing", r.Complete("nothing"))
	assert.Equal(t, "groups ", r.Complete("groups "))

	usage, _ := r.Usage("road")
	assert.Equal(t, usage, r.Hint("road -cu"))
	assert.Equal(t, usage, r.Hint("cmd road"))
	assert.Empty(t, r.Hint("  "))
	assert.Empty(t, r.Hint("bogus"))
}
