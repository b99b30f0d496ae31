package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`# settings
ENVGEN_TEST_SCENE="scenes/city.yaml"
export ENVGEN_TEST_SEED=42
ENVGEN_TEST_KEEP=file
not a line
=nokey
`), 0644))
	t.Setenv("ENVGEN_TEST_KEEP", "process")
	t.Setenv("ENVGEN_TEST_SCENE", "")
	os.Unsetenv("ENVGEN_TEST_SCENE")
	t.Setenv("ENVGEN_TEST_SEED", "")
	os.Unsetenv("ENVGEN_TEST_SEED")

	require.NoError(t, Load(path))
	assert.Equal(t, "scenes/city.yaml", os.Getenv("ENVGEN_TEST_SCENE"))
	assert.Equal(t, "process", os.Getenv("ENVGEN_TEST_KEEP"))

	seed, err := Uint64("ENVGEN_TEST_SEED", 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), seed)

	assert.NoError(t, Load(filepath.Join(t.TempDir(), "missing")))
}

func TestTypedLookups(t *testing.T) {
	t.Setenv("ENVGEN_TEST_BOOL", "true")
	t.Setenv("ENVGEN_TEST_BAD", "x")
	t.Setenv("ENVGEN_TEST_EMPTY", "")

	b, err := Bool("ENVGEN_TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = Bool("ENVGEN_TEST_BAD", false)
	assert.Error(t, err)
	n, err := Uint64("ENVGEN_TEST_BAD", 9)
	assert.Error(t, err)
	assert.Equal(t, uint64(9), n)

	assert.Equal(t, "def", String("ENVGEN_TEST_EMPTY", "def"))
	n, err = Uint64("ENVGEN_TEST_EMPTY", 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)
}
