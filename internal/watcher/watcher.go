package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"soma/internal/manifest"
	"soma/pkg/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
)

// Operation is the kind of change observed on a manifest file.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Change is a debounced change to one manifest file.
type Change struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// Watcher reports changes to the manifest files of a set of configuration
// sources. Directory sources are watched recursively; file sources through
// their parent directory.
type Watcher struct {
	mu sync.RWMutex

	sources []string

	// files holds the file sources, dirs the watched directories
	files map[string]bool
	dirs  map[string]bool

	watcher          *fsnotify.Watcher
	debounceInterval time.Duration
	pending          map[string]*debounceEntry

	stopCh  chan struct{}
	running bool
}

type debounceEntry struct {
	change Change
	timer  *time.Timer
}

// New creates a watcher for sources. A zero interval defaults to 500ms.
func New(sources []string, debounceInterval time.Duration) *Watcher {
	if debounceInterval == 0 {
		debounceInterval = 500 * time.Millisecond
	}
	return &Watcher{
		sources:          sources,
		files:            make(map[string]bool),
		dirs:             make(map[string]bool),
		debounceInterval: debounceInterval,
		pending:          make(map[string]*debounceEntry),
		stopCh:           make(chan struct{}),
	}
}

// Start begins watching and sends debounced changes to changes until ctx is
// done or Stop is called.
func (w *Watcher) Start(ctx context.Context, changes chan<- Change) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fw
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	for _, source := range w.sources {
		if err := w.addSource(source); err != nil {
			logging.Warn("Watcher", "Failed to watch %s: %v", source, err)
		}
	}

	go w.processEvents(ctx, fw, changes)

	logging.Info("Watcher", "Watching %d configuration sources", len(w.sources))
	return nil
}

func (w *Watcher) addSource(source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.mu.Lock()
		w.files[filepath.Clean(source)] = true
		w.mu.Unlock()
		return w.addDir(filepath.Dir(source))
	}
	return w.addTree(source)
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(root string) error {
	var (
		mu   sync.Mutex
		dirs = []string{root}
	)
	conf := fastwalk.Config{Follow: true}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			mu.Lock()
			dirs = append(dirs, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.addDir(dir); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] || w.watcher == nil {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	logging.Debug("Watcher", "Watching directory: %s", dir)
	return nil
}

func (w *Watcher) processEvents(ctx context.Context, fw *fsnotify.Watcher, changes chan<- Change) {
	for {
		select {
		case <-ctx.Done():
			w.cleanupPending()
			return

		case <-w.stopCh:
			w.cleanupPending()
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event, changes)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event, changes chan<- Change) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logging.Warn("Watcher", "Failed to watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}
	if !w.relevant(event.Name) {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OperationCreate
	case event.Has(fsnotify.Write):
		op = OperationUpdate
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = OperationDelete
	default:
		return
	}

	w.debounce(Change{Path: event.Name, Operation: op, Timestamp: time.Now()}, changes)
}

// relevant reports whether path is a file source or a manifest inside a
// watched directory.
func (w *Watcher) relevant(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.files[filepath.Clean(path)] {
		return true
	}
	for _, source := range w.sources {
		if w.files[filepath.Clean(source)] {
			continue
		}
		rel, err := filepath.Rel(source, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if ok, _ := doublestar.Match(manifest.Pattern, filepath.ToSlash(rel)); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) debounce(change Change, changes chan<- Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := change.Path
	if entry, ok := w.pending[key]; ok {
		entry.timer.Stop()
		change.Operation = mergeOperations(entry.change.Operation, change.Operation)
	}

	timer := time.AfterFunc(w.debounceInterval, func() {
		w.mu.Lock()
		entry, ok := w.pending[key]
		if ok {
			delete(w.pending, key)
		}
		w.mu.Unlock()

		if ok {
			select {
			case changes <- entry.change:
				logging.Debug("Watcher", "Emitted %s for %s", entry.change.Operation, entry.change.Path)
			default:
				logging.Warn("Watcher", "Change channel full, dropping %s for %s", entry.change.Operation, entry.change.Path)
			}
		}
	})

	w.pending[key] = &debounceEntry{change: change, timer: timer}
}

// mergeOperations folds two successive operations on the same file.
func mergeOperations(old, new Operation) Operation {
	if old == OperationCreate {
		if new == OperationDelete {
			return OperationDelete
		}
		return OperationCreate
	}
	if old == OperationUpdate && new == OperationDelete {
		return OperationDelete
	}
	return new
}

func (w *Watcher) cleanupPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, entry := range w.pending {
		entry.timer.Stop()
	}
	w.pending = make(map[string]*debounceEntry)
}

// Stop ends watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			logging.Error("Watcher", err, "Error closing filesystem watcher")
		}
		w.watcher = nil
	}
	w.dirs = make(map[string]bool)

	logging.Info("Watcher", "Stopped watching configuration")
	return nil
}
