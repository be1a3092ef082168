package extractor

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Runner runs one full extraction.
type Runner interface {
	Run(ctx context.Context) (*Stats, error)
}

// Watcher watches the source tree and re-runs extraction after changes.
type Watcher struct {
	runner    Runner
	discovery *FileDiscovery
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	onRun     func(*Stats, error)
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithOnRun registers a callback invoked after every triggered run.
func WithOnRun(fn func(*Stats, error)) WatcherOption {
	return func(w *Watcher) {
		w.onRun = fn
	}
}

// NewWatcher creates a watcher over the directory tree of discovery.
func NewWatcher(runner Runner, discovery *FileDiscovery, debounce time.Duration, opts ...WatcherOption) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		runner:    runner,
		discovery: discovery,
		watcher:   watcher,
		debounce:  debounce,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addDirectoriesRecursively(discovery.RootDir()); err != nil {
		watcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for a running extraction to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// Done is closed when the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	runCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 && w.isWatchableDir(event.Name) {
				if err := w.addDirectoriesRecursively(event.Name); err != nil {
					log.WithError(err).WithField("dir", event.Name).Warn("Failed to watch new directory")
				}
			}

			if !w.shouldProcessEvent(event) {
				continue
			}
			changed[event.Name] = true

			stopTimer()
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case runCh <- struct{}{}:
				default:
				}
			})

		case <-runCh:
			w.trigger(ctx, changed)
			changed = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("File watcher error")
		}
	}
}

// trigger re-runs extraction for a batch of changes.
func (w *Watcher) trigger(ctx context.Context, changed map[string]bool) {
	if len(changed) == 0 {
		return
	}

	files := make([]string, 0, len(changed))
	for file := range changed {
		files = append(files, file)
	}
	sort.Strings(files)

	log.WithFields(log.Fields{
		"changed": len(files),
		"first":   files[0],
	}).Info("Re-extracting after changes")

	stats, err := w.runner.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Extraction failed")
	}
	if w.onRun != nil {
		w.onRun(stats, err)
	}
}

// shouldProcessEvent checks if an event should trigger extraction.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.discovery.Matches(event.Name)
}

// isWatchableDir reports whether path is a directory that is not ignored.
func (w *Watcher) isWatchableDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	return w.shouldWatchDirectory(path)
}

// shouldWatchDirectory checks if a directory should be watched.
func (w *Watcher) shouldWatchDirectory(path string) bool {
	relPath, err := filepath.Rel(w.discovery.RootDir(), path)
	if err != nil {
		return false
	}
	if relPath == "." {
		return true
	}
	return !w.discovery.shouldIgnore(filepath.ToSlash(relPath))
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Log but continue - don't fail the entire watch for one directory
			log.WithError(err).WithField("path", path).Warn("Error accessing path")
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if !w.shouldWatchDirectory(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.WithError(err).WithField("dir", path).Warn("Failed to watch directory")
		}
		return nil
	})
}
