package watch_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dropsort/internal/config"
	"dropsort/internal/organize"
	"dropsort/internal/watch"
	"dropsort/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// daemonConfig builds a config with short real durations suited to
// watch tests. The journal path pins the lock file inside the sandbox.
func daemonConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Watch.Directory = dir
	cfg.Watch.DelaySeconds = 0.3
	cfg.Watch.StabilityProbeSeconds = 0.05
	cfg.Settings.Journal = false
	cfg.Settings.JournalPath = filepath.Join(t.TempDir(), "journal.db")
	return cfg
}

func startedDaemon(t *testing.T, cfg *config.Config) (*watch.Daemon, <-chan types.WatchEvent) {
	t.Helper()
	engine := organize.NewWithConfig(cfg)
	daemon, err := watch.NewDaemon(cfg, engine)
	require.NoError(t, err)

	events := make(chan types.WatchEvent, 64)
	daemon.SetNotify(func(ev types.WatchEvent) { events <- ev })

	require.NoError(t, daemon.Start())
	t.Cleanup(daemon.Stop)
	return daemon, events
}

func waitForKind(t *testing.T, events <-chan types.WatchEvent, kind types.EventKind, timeout time.Duration) types.WatchEvent {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-events:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for daemon event")
		}
	}
}

func TestDaemonSweepsAfterQuietPeriod(t *testing.T) {
	watchDir := t.TempDir()
	cfg := daemonConfig(t, watchDir)
	daemon, events := startedDaemon(t, cfg)

	// The debounce clock starts at daemon start; wait out the first
	// window so the event counts as arriving after a quiet period.
	time.Sleep(cfg.Delay() + 100*time.Millisecond)

	src := filepath.Join(watchDir, "photo.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg bytes"), 0644))

	ev := waitForKind(t, events, types.EventScanned, 5*time.Second)
	require.NotNil(t, ev.Report)
	assert.Equal(t, 1, ev.Report.Moved)

	assert.NoFileExists(t, src)
	assert.FileExists(t, filepath.Join(watchDir, "images", "photo.jpg"))

	status := daemon.Status()
	assert.True(t, status.Running)
	assert.Equal(t, 1, status.Scans)
	assert.Equal(t, 1, status.Moves)
	assert.False(t, status.LastScan.IsZero())
}

func TestDaemonIgnoresTemporaryFiles(t *testing.T) {
	watchDir := t.TempDir()
	cfg := daemonConfig(t, watchDir)
	_, events := startedDaemon(t, cfg)

	time.Sleep(cfg.Delay() + 100*time.Millisecond)

	partial := filepath.Join(watchDir, "movie.mkv.crdownload")
	require.NoError(t, os.WriteFile(partial, []byte("partial bytes"), 0644))

	// No trigger and no sweep may come out of a temporary file
	select {
	case ev := <-events:
		t.Fatalf("unexpected daemon event %d for temporary file", ev.Kind)
	case <-time.After(cfg.Delay() * 3):
	}

	assert.FileExists(t, partial, "temporary file must stay put")
}

func TestDaemonBurstTriggersOneSweep(t *testing.T) {
	watchDir := t.TempDir()
	cfg := daemonConfig(t, watchDir)
	_, events := startedDaemon(t, cfg)

	time.Sleep(cfg.Delay() + 100*time.Millisecond)

	// Three files land nearly at once: one sweep organizes them all
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(watchDir, name), []byte("pdf "+name), 0644))
	}

	waitForKind(t, events, types.EventScanned, 5*time.Second)

	scans := 1
	drain := time.After(cfg.Delay() * 3)
Drain:
	for {
		select {
		case ev := <-events:
			if ev.Kind == types.EventScanned {
				scans++
			}
		case <-drain:
			break Drain
		}
	}
	assert.Equal(t, 1, scans, "a single burst must produce a single sweep")

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		assert.FileExists(t, filepath.Join(watchDir, "documents", name))
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	watchDir := t.TempDir()
	cfg := daemonConfig(t, watchDir)

	first, err := watch.NewDaemon(cfg, organize.NewWithConfig(cfg))
	require.NoError(t, err)
	require.NoError(t, first.Start())

	second, err := watch.NewDaemon(cfg, organize.NewWithConfig(cfg))
	require.NoError(t, err)
	err = second.Start()
	require.Error(t, err, "second instance must not start while the lock is held")
	assert.False(t, second.Running())

	first.Stop()

	// Lock released: the second instance may start now
	require.NoError(t, second.Start())
	second.Stop()
}

func TestDaemonConcurrentStart(t *testing.T) {
	watchDir := t.TempDir()
	cfg := daemonConfig(t, watchDir)

	daemon, err := watch.NewDaemon(cfg, organize.NewWithConfig(cfg))
	require.NoError(t, err)
	t.Cleanup(daemon.Stop)

	// Racing Start calls must not each build a watcher and event loop
	const attempts = 4
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- daemon.Start()
		}()
	}
	wg.Wait()
	close(errs)

	started := 0
	for err := range errs {
		if err == nil {
			started++
		}
	}
	assert.Equal(t, 1, started, "exactly one Start may win")
	assert.True(t, daemon.Running())
}

func TestDaemonStartMissingDirectory(t *testing.T) {
	cfg := daemonConfig(t, filepath.Join(t.TempDir(), "not-there"))

	daemon, err := watch.NewDaemon(cfg, organize.NewWithConfig(cfg))
	require.NoError(t, err, "construction does not touch the directory")

	assert.Error(t, daemon.Start())
	assert.False(t, daemon.Running())
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	watchDir := t.TempDir()
	cfg := daemonConfig(t, watchDir)
	daemon, _ := startedDaemon(t, cfg)

	assert.True(t, daemon.Running())
	daemon.Stop()
	assert.False(t, daemon.Running())
	daemon.Stop()
	assert.False(t, daemon.Running())
}
