// Package watcher reports changes to SBAS database documents on disk.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jobrunner/gnss/internal/adapters/storage"
)

// Event represents a file system event.
type Event struct {
	Path      string
	Operation Operation
}

// Operation represents the type of file operation.
type Operation int

// File operation types.
const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Handler is called when a relevant file event occurs.
type Handler func(ctx context.Context, event Event) error

// pendingEvent holds a debounced event with its operation.
type pendingEvent struct {
	timestamp time.Time
	op        Operation
}

// Watcher watches directories and single files for database changes.
// Bursts of events on one path are collapsed into a single Handler call.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	logger    *slog.Logger
	paths     []string
	debounce  time.Duration
	filter    func(path string) bool

	mu      sync.Mutex
	pending map[string]*pendingEvent
	files   map[string]bool // explicitly watched files
	dirs    map[string]bool // explicitly watched directories
}

// Config holds watcher configuration.
type Config struct {
	Paths    []string
	Debounce time.Duration
	// Filter selects relevant paths; defaults to storage.IsDatabaseFile.
	Filter func(path string) bool
}

// New creates a new file watcher.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.Filter == nil {
		cfg.Filter = storage.IsDatabaseFile
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		logger:    logger,
		paths:     cfg.Paths,
		debounce:  cfg.Debounce,
		filter:    cfg.Filter,
		pending:   make(map[string]*pendingEvent),
		files:     make(map[string]bool),
		dirs:      make(map[string]bool),
	}, nil
}

// Start starts watching the configured paths. A file path is watched
// through its directory so that editors replacing the file are noticed.
func (w *Watcher) Start(ctx context.Context) error {
	for _, path := range w.paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			w.logger.Warn("invalid watch path", "path", path, "error", err)
			continue
		}

		target := absPath
		w.mu.Lock()
		if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
			w.files[absPath] = true
			target = filepath.Dir(absPath)
		} else {
			w.dirs[absPath] = true
		}
		w.mu.Unlock()

		if err := w.fsWatcher.Add(target); err != nil {
			w.logger.Warn("failed to watch path", "path", target, "error", err)
			continue
		}

		w.logger.Info("watching", "path", absPath)
	}

	// Start event loop
	go w.eventLoop(ctx)

	// Start debounce processor
	go w.debounceLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// eventLoop processes fsnotify events.
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// relevant reports whether events on path should reach the handler.
func (w *Watcher) relevant(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[path] {
		return true
	}
	return w.dirs[filepath.Dir(path)] && w.filter(path)
}

// handleFsEvent processes a single fsnotify event.
func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if !w.relevant(event.Name) {
		return
	}

	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

	op := fsnotifyOpToOperation(event.Op)

	// Add to pending events for debouncing
	w.mu.Lock()
	defer w.mu.Unlock()

	existing, exists := w.pending[event.Name]
	if !exists {
		w.pending[event.Name] = &pendingEvent{
			timestamp: time.Now(),
			op:        op,
		}
		return
	}

	updatePendingEvent(existing, op)
}

// updatePendingEvent merges a new operation into a pending event.
func updatePendingEvent(existing *pendingEvent, newOp Operation) {
	existing.timestamp = time.Now()

	switch {
	case existing.op == OpDelete && newOp != OpDelete:
		// Deleted then recreated: editors that write via rename end here
		existing.op = OpCreate
	case newOp == OpDelete:
		existing.op = OpDelete
	}
}

// debounceLoop processes debounced events.
func (w *Watcher) debounceLoop(ctx context.Context) {
	tick := min(100*time.Millisecond, w.debounce)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

// processPending dispatches events that have been quiet for the debounce period.
func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	for path, pending := range w.pending {
		if now.Sub(pending.timestamp) < w.debounce {
			continue
		}

		delete(w.pending, path)

		event := Event{
			Path:      path,
			Operation: pending.op,
		}

		w.logger.Info("processing file event",
			"path", path,
			"operation", pending.op.String(),
		)

		// Call handler in goroutine to not block
		go func(e Event) {
			if err := w.handler(ctx, e); err != nil {
				w.logger.Error("handler error",
					"path", e.Path,
					"operation", e.Operation.String(),
					"error", err,
				)
			}
		}(event)
	}
}

// fsnotifyOpToOperation converts fsnotify.Op to our Operation type.
func fsnotifyOpToOperation(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Remove):
		return OpDelete
	case op.Has(fsnotify.Rename):
		// The file is gone from its original location
		return OpDelete
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		// Write, Chmod, etc. are treated as modify
		return OpModify
	}
}
