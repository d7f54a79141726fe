package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"dropsort/internal/config"
	"dropsort/internal/errors"
	"dropsort/internal/log"
	"dropsort/internal/organize"
	"dropsort/pkg/types"
)

// probeBuffer bounds stability probe results waiting for the event loop
const probeBuffer = 16

// DaemonStatus is a snapshot of the daemon's runtime counters
type DaemonStatus struct {
	Running   bool      // Whether the daemon is currently active
	Directory string    // Directory being watched
	Scans     int       // Completed directory sweeps
	Moves     int       // Files moved across all sweeps
	LastScan  time.Time // Time of the most recent sweep
}

// probeResult reports one finished stability probe back to the loop
type probeResult struct {
	path   string
	stable bool
}

// Daemon watches a downloads directory and sweeps it into category
// folders once a burst of arrivals goes quiet.
//
// Exactly one goroutine mutates the debounce state: the event loop.
// Stability probes run as short-lived goroutines reporting back on a
// channel, so event intake never stalls behind a probe wait.
type Daemon struct {
	cfg      *config.Config
	engine   organize.Organizer
	filter   *Filter
	detector *Detector
	clock    Clock
	dir      string

	lockPath string
	lock     *flock.Flock

	watcher *Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	mutex    sync.RWMutex
	running  bool
	notify   func(types.WatchEvent)
	scans    int
	moves    int
	lastScan time.Time
}

// Option configures a Daemon at construction
type Option func(*Daemon)

// WithClock substitutes the time source used for probes and debouncing
func WithClock(c Clock) Option {
	return func(d *Daemon) { d.clock = c }
}

// WithLockPath overrides where the single-instance lock file lives
func WithLockPath(path string) Option {
	return func(d *Daemon) { d.lockPath = path }
}

// NewDaemon wires a Daemon over the configured watch directory. The
// directory itself is only touched on Start.
func NewDaemon(cfg *config.Config, engine organize.Organizer, opts ...Option) (*Daemon, error) {
	dir, err := cfg.WatchDir()
	if err != nil {
		return nil, err
	}

	filter, err := NewFilter(cfg.Watch.TemporaryExtensions, cfg.Settings.IgnoreHidden)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:    cfg,
		engine: engine,
		filter: filter,
		clock:  systemClock{},
		dir:    dir,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.detector == nil {
		d.detector = NewDetectorWithClock(cfg.StabilityProbe(), d.clock)
	}
	if d.lockPath == "" {
		journalPath, err := cfg.JournalPath()
		if err != nil {
			return nil, err
		}
		d.lockPath = filepath.Join(filepath.Dir(journalPath), "watch.lock")
	}
	d.lock = flock.New(d.lockPath)

	return d, nil
}

// Directory returns the watched directory
func (d *Daemon) Directory() string {
	return d.dir
}

// SetNotify registers a callback receiving daemon events. Used by the
// interactive view; must be set before Start.
func (d *Daemon) SetNotify(fn func(types.WatchEvent)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.notify = fn
}

// SetDryRun toggles simulation mode on the underlying engine
func (d *Daemon) SetDryRun(dryRun bool) {
	d.engine.SetDryRun(dryRun)
}

// Start acquires the single-instance lock, begins watching, and
// launches the event loop. The mutex is held for the whole startup so
// racing Start calls cannot each build a watcher.
func (d *Daemon) Start() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.running {
		return errors.NewWatchError("daemon already running", d.dir, errors.WatchAlreadyRunning, nil)
	}

	info, err := os.Stat(d.dir)
	if err != nil {
		return errors.NewWatchError("watch directory does not exist", d.dir, errors.WatchFailed, err)
	}
	if !info.IsDir() {
		return errors.NewWatchError("watch path is not a directory", d.dir, errors.WatchFailed, nil)
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0755); err != nil {
		return errors.NewWatchError("cannot create lock directory", d.dir, errors.WatchFailed, err)
	}
	locked, err := d.lock.TryLock()
	if err != nil {
		return errors.NewWatchError("cannot acquire watch lock", d.dir, errors.WatchFailed, err)
	}
	if !locked {
		return errors.NewWatchError("another watch instance already holds the lock", d.dir, errors.WatchAlreadyRunning, nil)
	}

	watcher, err := New()
	if err != nil {
		_ = d.lock.Unlock()
		return err
	}
	if err := watcher.AddDirectory(d.dir); err != nil {
		_ = d.lock.Unlock()
		return err
	}
	if err := watcher.Start(); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.watcher = watcher
	d.done = make(chan struct{})
	d.wg.Add(1)
	go d.loop()

	d.running = true

	log.LogWithFields(log.F("directory", d.dir)).Info("Watch daemon started")
	return nil
}

// Stop halts the event loop, the watcher, and any in-flight probes,
// then releases the lock. Safe to call more than once.
func (d *Daemon) Stop() {
	d.mutex.Lock()
	if !d.running {
		d.mutex.Unlock()
		return
	}
	d.running = false
	d.mutex.Unlock()

	close(d.done)
	d.watcher.Stop()
	d.wg.Wait()

	if err := d.lock.Unlock(); err != nil {
		log.LogWithError(err).Warn("Failed to release watch lock")
	}

	log.Info("Watch daemon stopped")
}

// Running returns whether the daemon is active
func (d *Daemon) Running() bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.running
}

// Status returns the current daemon counters
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return DaemonStatus{
		Running:   d.running,
		Directory: d.dir,
		Scans:     d.scans,
		Moves:     d.moves,
		LastScan:  d.lastScan,
	}
}

// loop is the single mutator of the debounce state. It routes incoming
// creation events through the filter, fans stability probes out to
// goroutines, applies the debounce decision to each stable result, and
// sweeps the directory once the settle timer expires.
func (d *Daemon) loop() {
	defer d.wg.Done()

	debouncer := NewDebouncer(d.cfg.Delay(), d.clock.Now())
	probes := make(chan probeResult, probeBuffer)

	// Nil while no sweep is pending; reassigning re-arms the settle.
	var settle <-chan time.Time

	for {
		select {
		case ev, ok := <-d.watcher.Events():
			if !ok {
				return
			}
			if d.filter.Ignore(ev.Path) {
				log.LogWithFields(log.F("file", filepath.Base(ev.Path))).Info("Ignoring temporary file")
				continue
			}
			d.wg.Add(1)
			go func(path string) {
				defer d.wg.Done()
				stable := d.detector.Stable(path, d.done)
				select {
				case probes <- probeResult{path: path, stable: stable}:
				case <-d.done:
				}
			}(ev.Path)

		case res := <-probes:
			if !res.stable {
				log.LogWithFields(log.F("file", filepath.Base(res.path))).Info("File incomplete or still downloading")
				continue
			}
			now := d.clock.Now()
			if debouncer.Observe(now) {
				log.Info("Download complete, sweeping after settle period")
				d.emit(types.WatchEvent{Kind: types.EventTriggered, Time: now})
				settle = d.clock.After(debouncer.Delay())
			}

		case <-settle:
			settle = nil
			d.sweep()

		case <-d.done:
			return
		}
	}
}

// sweep runs one full directory scan and publishes the results
func (d *Daemon) sweep() {
	report, err := d.engine.Scan(context.Background(), d.dir)
	if err != nil {
		log.LogWithError(err).Error("Sweep failed")
		d.emit(types.WatchEvent{Kind: types.EventError, Err: err, Time: d.clock.Now()})
		return
	}

	now := d.clock.Now()
	d.mutex.Lock()
	d.scans++
	d.moves += report.Moved
	d.lastScan = now
	d.mutex.Unlock()

	for i := range report.Results {
		d.emit(types.WatchEvent{Kind: types.EventMoved, Move: &report.Results[i], Time: now})
	}
	d.emit(types.WatchEvent{Kind: types.EventScanned, Report: &report, Time: now})
}

func (d *Daemon) emit(ev types.WatchEvent) {
	d.mutex.RLock()
	notify := d.notify
	d.mutex.RUnlock()
	if notify != nil {
		notify(ev)
	}
}
