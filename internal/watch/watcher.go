package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tagshelf/internal/log"

	"github.com/fsnotify/fsnotify"
)

// Change is a debounced batch of image file events in one catalog folder
type Change struct {
	Folder string
	Paths  []string
	Op     fsnotify.Op
	Time   time.Time
}

// Options configures a Watcher
type Options struct {
	// Extensions limits events to image files, without the leading dot
	Extensions []string
	// Debounce is how long events in a folder are gathered into one Change
	Debounce time.Duration
}

const (
	defaultDebounce = 500 * time.Millisecond
	minSuppress     = time.Second
	changeBuffer    = 16
)

// Watcher reports image changes in catalog folders using fsnotify
type Watcher struct {
	// Folders being watched
	folders []string

	exts     map[string]bool
	debounce time.Duration

	// Paths written by this process, ignored until the deadline passes
	suppressed map[string]time.Time

	changes  chan Change
	flush    chan string
	stopChan chan struct{}
	done     chan struct{}

	fsWatcher *fsnotify.Watcher

	// Guards folders, suppressed, running and stopped
	mutex   sync.Mutex
	running bool
	stopped bool
}

// New creates a watcher. It watches nothing until Add is called.
func New(opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	return &Watcher{
		exts:       exts,
		debounce:   debounce,
		suppressed: make(map[string]time.Time),
		changes:    make(chan Change, changeBuffer),
		flush:      make(chan string),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
		fsWatcher:  fsWatcher,
	}, nil
}

// Add starts watching a catalog folder. Nested folders are separate catalog
// folders and must be added on their own.
func (w *Watcher) Add(folder string) error {
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("error accessing folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", folder)
	}

	if err := w.fsWatcher.Add(folder); err != nil {
		return fmt.Errorf("failed to add folder %s to watcher: %w", folder, err)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	for _, f := range w.folders {
		if f == folder {
			return nil
		}
	}
	w.folders = append(w.folders, folder)
	log.LogWithFields(log.F("folder", folder)).Debug("Watching folder")
	return nil
}

// Remove stops watching a folder
func (w *Watcher) Remove(folder string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	for i, f := range w.folders {
		if f == folder {
			w.folders = append(w.folders[:i], w.folders[i+1:]...)
			return w.fsWatcher.Remove(folder)
		}
	}
	return nil
}

// Folders returns the watched folders
func (w *Watcher) Folders() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return append([]string(nil), w.folders...)
}

// Changes delivers debounced changes. It is closed by Stop.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Suppress ignores events for path for a short window. Writes made by this
// process call it so they do not trigger a reload of their own folder.
func (w *Watcher) Suppress(path string) {
	window := 2 * w.debounce
	if window < minSuppress {
		window = minSuppress
	}
	w.mutex.Lock()
	w.suppressed[filepath.Clean(path)] = time.Now().Add(window)
	w.mutex.Unlock()
}

func (w *Watcher) isSuppressed(path string, now time.Time) bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	deadline, ok := w.suppressed[path]
	if !ok {
		return false
	}
	if now.After(deadline) {
		delete(w.suppressed, path)
		return false
	}
	return true
}

// relevant filters out directories, chmod-only events and files the catalog
// does not read. exiftool's temporary files fail the extension check.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(event.Name), "."))
	if !w.exts[ext] {
		return false
	}
	if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return false
		}
	}
	return true
}

// Start begins the event loop
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if w.stopped {
		return fmt.Errorf("watcher stopped")
	}
	w.running = true
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.changes)

	pending := make(map[string]*Change)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if !w.relevant(event) || w.isSuppressed(path, time.Now()) {
				continue
			}
			folder := filepath.Dir(path)
			change, ok := pending[folder]
			if !ok {
				change = &Change{Folder: folder}
				pending[folder] = change
				w.schedule(folder)
			}
			change.Op |= event.Op
			if !contains(change.Paths, path) {
				change.Paths = append(change.Paths, path)
			}

		case folder := <-w.flush:
			change, ok := pending[folder]
			if !ok {
				continue
			}
			delete(pending, folder)
			change.Time = time.Now()
			select {
			case w.changes <- *change:
			default:
				log.LogWithFields(log.F("folder", folder)).Warn("Change channel is full, dropped change")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) schedule(folder string) {
	time.AfterFunc(w.debounce, func() {
		select {
		case w.flush <- folder:
		case <-w.stopChan:
		}
	})
}

// Stop halts the watcher and closes the Changes channel. Pending changes
// that have not been flushed are dropped.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if w.stopped {
		w.mutex.Unlock()
		return
	}
	wasRunning := w.running
	w.running = false
	w.stopped = true
	w.mutex.Unlock()

	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	if wasRunning {
		<-w.done
	} else {
		close(w.changes)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
