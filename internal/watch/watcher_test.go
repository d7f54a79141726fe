package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dropsort/internal/watch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherForwardsCreations(t *testing.T) {
	tempDir := t.TempDir()

	w, err := watch.New()
	require.NoError(t, err, "watcher creation failed")

	require.NoError(t, w.AddDirectory(tempDir))
	require.NoError(t, w.Start())
	defer w.Stop()

	events := w.Events()
	require.NotNil(t, events)

	// Give fsnotify a moment to establish the watch
	time.Sleep(100 * time.Millisecond)

	testFilePath := filepath.Join(tempDir, "incoming.pdf")
	require.NoError(t, os.WriteFile(testFilePath, []byte("pdf bytes"), 0644))

	select {
	case event, ok := <-events:
		require.True(t, ok, "event channel closed unexpectedly")
		assert.Equal(t, testFilePath, event.Path)
		require.NotNil(t, event.Info)
		assert.Equal(t, "incoming.pdf", event.Info.Name())
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for creation event")
	}
}

func TestWatcherSkipsDirectories(t *testing.T) {
	tempDir := t.TempDir()

	w, err := watch.New()
	require.NoError(t, err)
	require.NoError(t, w.AddDirectory(tempDir))
	require.NoError(t, w.Start())
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	// A new subdirectory fires a Create at the fsnotify layer but must
	// not be forwarded
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "newdir"), 0755))

	select {
	case event := <-w.Events():
		t.Fatalf("Unexpected event for directory creation: %+v", event)
	case <-time.After(500 * time.Millisecond):
		// No event is the expected outcome
	}
}

func TestWatcherIgnoresWrites(t *testing.T) {
	tempDir := t.TempDir()
	existing := filepath.Join(tempDir, "already-there.txt")
	require.NoError(t, os.WriteFile(existing, []byte("v1"), 0644))

	w, err := watch.New()
	require.NoError(t, err)
	require.NoError(t, w.AddDirectory(tempDir))
	require.NoError(t, w.Start())
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	// Pure writes to an existing file are not creations
	require.NoError(t, os.WriteFile(existing, []byte("v2 grew longer"), 0644))

	select {
	case event := <-w.Events():
		t.Fatalf("Unexpected event for write: %+v", event)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherStopClosesChannel(t *testing.T) {
	tempDir := t.TempDir()

	w, err := watch.New()
	require.NoError(t, err)
	require.NoError(t, w.AddDirectory(tempDir))
	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())

	w.Stop()
	assert.False(t, w.IsRunning())

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok, "events channel should be closed after Stop")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after Stop")
	}

	// Second Stop is a no-op
	w.Stop()
}

func TestWatcherAddDirectoryValidation(t *testing.T) {
	w, err := watch.New()
	require.NoError(t, err)
	defer w.Stop()

	t.Run("missing directory", func(t *testing.T) {
		err := w.AddDirectory(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("path is a file", func(t *testing.T) {
		file := writeFile(t, t.TempDir(), "plain.txt", "not a dir")
		err := w.AddDirectory(file)
		assert.Error(t, err)
	})

	t.Run("duplicate add is deduplicated", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, w.AddDirectory(dir))
		require.NoError(t, w.AddDirectory(dir))
		assert.Equal(t, []string{dir}, w.GetDirectories())
	})
}

func TestWatcherDoubleStart(t *testing.T) {
	w, err := watch.New()
	require.NoError(t, err)
	require.NoError(t, w.AddDirectory(t.TempDir()))
	require.NoError(t, w.Start())
	defer w.Stop()

	assert.Error(t, w.Start(), "second Start should be rejected")
}
