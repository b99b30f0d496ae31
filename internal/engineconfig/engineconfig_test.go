package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingGivesDefaults(t *testing.T) {
	p, err := LoadFrom(filepath.Join(t.TempDir(), "engine.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "engine.json")
	want := Default()
	want.DefaultSeed = 77
	want.GridVisible = false
	require.NoError(t, SaveTo(path, want))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_seed": 5}`), 0644))
	p, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), p.DefaultSeed)
	assert.Equal(t, Default().ScenePath, p.ScenePath)
	assert.True(t, p.Watch)

	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0644))
	p, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestWithEnv(t *testing.T) {
	t.Setenv(EnvScene, "other.yaml")
	t.Setenv(EnvLog, "")
	t.Setenv(EnvSeed, "12")
	p, err := WithEnv(Default())
	require.NoError(t, err)
	assert.Equal(t, "other.yaml", p.ScenePath)
	assert.Equal(t, Default().LogPath, p.LogPath)
	assert.Equal(t, uint64(12), p.DefaultSeed)

	t.Setenv(EnvSeed, "-3")
	p, err = WithEnv(Default())
	assert.Error(t, err)
	assert.Zero(t, p.DefaultSeed)
}
