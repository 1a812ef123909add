package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tagshelf/pkg/testutils"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 200 * time.Millisecond

func startWatcher(t *testing.T, dirs ...string) *Watcher {
	t.Helper()
	w, err := New(Options{Extensions: []string{"jpg", ".PNG"}, Debounce: testDebounce})
	require.NoError(t, err, "New watcher creation failed")
	for _, dir := range dirs {
		require.NoError(t, w.Add(dir), "Failed to add folder to watcher")
	}
	require.NoError(t, w.Start(), "Failed to start watcher")
	t.Cleanup(w.Stop)

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(50 * time.Millisecond)
	return w
}

func nextChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case change, ok := <-w.Changes():
		require.True(t, ok, "Change channel closed unexpectedly")
		return change
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for change")
	}
	return Change{}
}

func assertQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case change := <-w.Changes():
		t.Fatalf("Unexpected change: %+v", change)
	case <-time.After(4 * testDebounce):
	}
}

func TestWatcherReportsImageChanges(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o644))

	change := nextChange(t, w)
	assert.Equal(t, dir, change.Folder)
	assert.Equal(t, []string{path}, change.Paths)
	assert.True(t, change.Op.Has(fsnotify.Create))
	assert.False(t, change.Time.IsZero())
}

func TestWatcherBatchesFolderEvents(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	for _, name := range []string{"a.jpg", "b.png", "a.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	change := nextChange(t, w)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.png")}, change.Paths)
	assertQuiet(t, w)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	testutils.CreateTestFilesWithContent(t, dir, map[string]string{
		"notes.txt":          "x",
		"a.jpg_exiftool_tmp": "x",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))

	assertQuiet(t, w)
}

func TestWatcherSuppressesOwnWrites(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	own := filepath.Join(dir, "own.jpg")
	w.Suppress(own)
	require.NoError(t, os.WriteFile(own, []byte("x"), 0o644))
	assertQuiet(t, w)

	other := filepath.Join(dir, "other.jpg")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	change := nextChange(t, w)
	assert.Equal(t, []string{other}, change.Paths)
}

func TestWatcherAddRemoveFolders(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Add(dir))
	require.NoError(t, w.Add(dir))
	assert.Equal(t, []string{dir}, w.Folders())

	assert.Error(t, w.Add(filepath.Join(dir, "missing")))
	file := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Error(t, w.Add(file))

	require.NoError(t, w.Remove(dir))
	assert.Empty(t, w.Folders())
}

func TestWatcherStopClosesChanges(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	w.Stop()
	w.Stop()

	select {
	case _, ok := <-w.Changes():
		assert.False(t, ok, "Change channel should be closed after stop")
	case <-time.After(time.Second):
		t.Error("Timeout waiting for change channel to close after stop")
	}
	assert.Error(t, w.Start())
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)

	w.Stop()

	_, ok := <-w.Changes()
	assert.False(t, ok)
}
