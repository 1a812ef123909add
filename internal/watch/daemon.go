package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tagshelf/internal/config"
	"tagshelf/internal/log"
)

// Reloader re-reads one catalog folder. *session.Session satisfies it.
type Reloader interface {
	Reload(folder string) bool
}

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running      bool      // Whether the daemon loop is active
	Folders      []string  // Folders being watched
	LastActivity time.Time // Time of the last applied change
	Reloads      int       // Folder reloads applied so far
}

// Daemon keeps a catalog in step with its folders. Reloads are applied on
// the goroutine that calls Run, so the catalog keeps a single writer.
type Daemon struct {
	watcher  *Watcher
	reloader Reloader

	reloads      int
	lastActivity time.Time

	// Called after each change has been applied
	callback func(Change, bool)

	mutex   sync.RWMutex
	running bool
}

// NewDaemon creates a daemon that reloads folders through reloader
func NewDaemon(cfg *config.Config, reloader Reloader) (*Daemon, error) {
	watcher, err := New(Options{
		Extensions: cfg.Catalog.Extensions,
		Debounce:   cfg.Debounce(),
	})
	if err != nil {
		return nil, err
	}
	return &Daemon{
		watcher:  watcher,
		reloader: reloader,
	}, nil
}

// AddFolder watches one catalog folder
func (d *Daemon) AddFolder(folder string) error {
	return d.watcher.Add(folder)
}

// RemoveFolder stops watching a folder
func (d *Daemon) RemoveFolder(folder string) error {
	return d.watcher.Remove(folder)
}

// Suppress ignores the next events for a file this process wrote
func (d *Daemon) Suppress(path string) {
	d.watcher.Suppress(path)
}

// SetCallback sets a function to be called after each change. reloaded is
// false when the folder was no longer open.
func (d *Daemon) SetCallback(cb func(change Change, reloaded bool)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = cb
}

// Run watches until ctx is done, reloading each changed folder
func (d *Daemon) Run(ctx context.Context) error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	if len(d.watcher.Folders()) == 0 {
		d.mutex.Unlock()
		return fmt.Errorf("no folders to watch")
	}
	d.running = true
	d.mutex.Unlock()

	if err := d.watcher.Start(); err != nil {
		d.setRunning(false)
		return fmt.Errorf("error starting watcher: %w", err)
	}
	defer func() {
		d.watcher.Stop()
		d.setRunning(false)
	}()

	log.LogWithFields(log.F("folders", len(d.watcher.Folders()))).Info("Watching catalog folders")
	for {
		select {
		case change, ok := <-d.watcher.Changes():
			if !ok {
				return nil
			}
			d.apply(change)
		case <-ctx.Done():
			return nil
		}
	}
}

func (d *Daemon) apply(change Change) {
	reloaded := d.reloader.Reload(change.Folder)

	logger := log.LogWithFields(log.F("folder", change.Folder), log.F("files", len(change.Paths)))
	if reloaded {
		logger.Info("Folder reloaded")
	} else {
		logger.Warn("Changed folder is not open")
	}

	d.mutex.Lock()
	d.lastActivity = change.Time
	if reloaded {
		d.reloads++
	}
	cb := d.callback
	d.mutex.Unlock()

	if cb != nil {
		cb(change, reloaded)
	}
}

func (d *Daemon) setRunning(running bool) {
	d.mutex.Lock()
	d.running = running
	d.mutex.Unlock()
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return DaemonStatus{
		Running:      d.running,
		Folders:      d.watcher.Folders(),
		LastActivity: d.lastActivity,
		Reloads:      d.reloads,
	}
}
