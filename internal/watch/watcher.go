// Package watch turns filesystem creation events into debounced
// directory sweeps. The Watcher is the raw event source; the Daemon
// layers the temporary-extension filter, stability probing, and the
// debounce state machine on top of it.
package watch

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dropsort/internal/errors"
	"dropsort/internal/log"
)

// eventBuffer bounds how many forwarded events may queue ahead of the
// daemon loop. The OS notification source has bounded capacity of its
// own; when this buffer fills the newest event is dropped with a
// warning rather than blocking the reader.
const eventBuffer = 64

// FileEvent is a file creation observed in a watched directory
type FileEvent struct {
	Path      string
	Info      os.FileInfo
	Timestamp time.Time
}

// Watcher converts fsnotify notifications for one or more directories
// into a stream of FileEvents. Only creations of files are forwarded;
// new subdirectories and paths that vanish before the stat are dropped
// at this layer. A Watcher is single-use: once stopped it cannot be
// restarted.
type Watcher struct {
	directories []string
	events      chan FileEvent
	stopChan    chan struct{}
	fsWatcher   *fsnotify.Watcher
	mutex       sync.RWMutex
	running     bool
}

// New creates a directory watcher backed by fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewWatchError("failed to create fsnotify watcher", "", errors.WatchFailed, err)
	}

	return &Watcher{
		directories: []string{},
		events:      make(chan FileEvent, eventBuffer),
		stopChan:    make(chan struct{}),
		fsWatcher:   fsWatcher,
	}, nil
}

// AddDirectory registers a non-recursive watch on dir
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.NewWatchError("cannot access watch directory", dir, errors.WatchFailed, err)
	}
	if !info.IsDir() {
		return errors.NewWatchError("watch path is not a directory", dir, errors.WatchFailed, nil)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return errors.NewWatchError("failed to watch directory", dir, errors.WatchFailed, err)
	}

	w.mutex.Lock()
	found := false
	for _, existing := range w.directories {
		if existing == dir {
			found = true
			break
		}
	}
	if !found {
		w.directories = append(w.directories, dir)
	}
	w.mutex.Unlock()

	log.LogWithFields(log.F("directory", dir)).Info("Watching directory")
	return nil
}

// Events returns the channel delivering forwarded file creations. The
// channel closes when the watcher stops.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Start launches the reader goroutine that forwards creation events
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return errors.NewWatchError("watcher already running", "", errors.WatchAlreadyRunning, nil)
	}
	w.running = true
	w.mutex.Unlock()

	go func() {
		// The reader owns the events channel; consumers see it close
		// once the reader is done.
		defer close(w.events)

		for {
			select {
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Create) {
					continue
				}

				info, err := os.Stat(event.Name)
				if err != nil {
					// Created and gone again before the stat; nothing
					// worth forwarding.
					if !os.IsNotExist(err) {
						log.LogWithFields(log.F("file", event.Name)).Warnf("Cannot stat created file: %v", err)
					}
					continue
				}
				if info.IsDir() {
					continue
				}

				ev := FileEvent{Path: event.Name, Info: info, Timestamp: time.Now()}
				select {
				case w.events <- ev:
				default:
					log.LogWithFields(log.F("file", event.Name)).Warn("Event buffer full, dropped event")
				}

			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				log.LogWithError(err).Error("fsnotify watcher error")

			case <-w.stopChan:
				return
			}
		}
	}()

	log.Info("Watcher started")
	return nil
}

// Stop halts event forwarding and closes the underlying fsnotify
// watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running {
		return
	}
	w.running = false

	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithError(err).Warn("Error closing fsnotify watcher")
	}

	log.Info("Watcher stopped")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the list of directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
