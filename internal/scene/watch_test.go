package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherSeesSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	select {
	case <-w.Changes():
		t.Fatal("change reported for another file")
	case <-time.After(3 * watchSettle):
	}

	require.NoError(t, testScene(t).Save(path))
	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	assert.NoError(t, w.Err())
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "scene.yaml"))
	assert.Error(t, err)
}
