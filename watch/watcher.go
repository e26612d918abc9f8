package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/perseus-aa/manifest-compiler/graph"
)

// DefaultDebounce is how long the watcher waits for more changes before
// emitting a trigger.
const DefaultDebounce = 500 * time.Millisecond

// WatcherConfig configures the file watcher
type WatcherConfig struct {
	// Dirs are the graph directories to watch, recursively.
	Dirs []string

	// Patterns select the files that matter, relative to their directory
	// (default graph.DefaultPatterns).
	Patterns []string

	// DebounceDelay is how long to wait for more changes before triggering
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// Watcher watches graph directories and emits a Trigger once changes
// settle.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: collect changes before triggering
	pendingMu  sync.Mutex
	pending    map[string]fsnotify.Op
	lastChange time.Time

	triggers chan Trigger
	stopOnce sync.Once
}

// NewWatcher creates a new file watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = DefaultDebounce
	}
	if len(config.Patterns) == 0 {
		config.Patterns = graph.DefaultPatterns
	}

	return &Watcher{
		config:   config,
		watcher:  fsw,
		logger:   config.Logger,
		pending:  make(map[string]fsnotify.Op),
		triggers: make(chan Trigger, 1),
	}, nil
}

// Triggers returns the channel of change triggers. It is closed by Stop.
func (w *Watcher) Triggers() <-chan Trigger {
	return w.triggers
}

// Start begins watching. Events are processed until ctx is done or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.config.Dirs {
		if err := w.addWatchesRecursive(dir); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)

	w.logger.Info("File watcher started",
		"dirs", w.config.Dirs,
		"patterns", w.config.Patterns,
		"debounce", w.config.DebounceDelay)

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// addWatchesRecursive adds watches to every non-hidden directory under root
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.stopOnce.Do(func() { close(w.triggers) })

	ticker := time.NewTicker(max(w.config.DebounceDelay/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent records a change to a matching graph file
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
	}
	if event.Op == fsnotify.Chmod || !w.Matches(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.lastChange = time.Now()
	w.pendingMu.Unlock()

	w.logger.Debug("Graph file change detected",
		"path", path,
		"op", event.Op.String())
}

// handleNewDirectory adds a watch to a newly created directory
func (w *Watcher) handleNewDirectory(path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
	}
}

// Matches reports whether path lies in a watched directory and matches one
// of the patterns relative to it.
func (w *Watcher) Matches(path string) bool {
	for _, dir := range w.config.Dirs {
		rel, err := filepath.Rel(dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range w.config.Patterns {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return true
			}
		}
	}
	return false
}

// flushPending emits a trigger once no change has arrived for the
// debounce delay.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 || time.Since(w.lastChange) < w.config.DebounceDelay {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	sort.Strings(paths)
	w.logger.Info("Graph files changed", "count", len(paths))

	select {
	case w.triggers <- Trigger{Reason: ReasonChange, Paths: paths, At: time.Now()}:
	case <-ctx.Done():
	}
}
