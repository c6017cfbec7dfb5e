package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/interrobot/taskrunner/src/features/building"
)

var (
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrStopped        = errors.New("watcher stopped")
)

// Watcher watches a directory tree and delivers its events, one at a time, to a handler.
type Watcher struct {
	name      string
	watcher   *fsnotify.Watcher
	watchPath string
	handler   building.Handler

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewWatcher creates a watch session for the tree rooted at watchPath
func NewWatcher(name, watchPath string, handler building.Handler) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		name:      name,
		watcher:   watcher,
		watchPath: watchPath,
		handler:   handler,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Name identifies the session in logs.
func (w *Watcher) Name() string {
	return w.name
}

// Start registers every directory under the watch path and begins delivering events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopChan:
		return ErrStopped
	default:
	}
	if w.running {
		return ErrAlreadyStarted
	}

	slog.Info("Starting file watcher", "name", w.name, "path", w.watchPath)
	if err := w.addTree(w.watchPath); err != nil {
		w.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.watchPath, err)
	}
	w.running = true

	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully", "name", w.name)
	return nil
}

// Stop asks the session to end. It doesn't wait; see Wait.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		running := w.running
		w.running = false
		close(w.stopChan)
		w.mu.Unlock()

		slog.Info("Stopping file watcher", "name", w.name)
		w.watcher.Close()
		if !running {
			close(w.done)
		}
	})
}

// Wait blocks until the event loop has returned, including any handler call in progress.
func (w *Watcher) Wait() {
	<-w.done
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)

	// Builds in progress at shutdown run to completion
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(handlerCtx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "name", w.name, "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent translates a single fsnotify event and hands it to the handler
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	fileEvent := building.FileEvent{
		Path:      filepath.ToSlash(event.Name),
		Type:      eventType(event.Op),
		Timestamp: time.Now(),
	}
	if fileEvent.Type == "" {
		return
	}

	if info, err := os.Stat(event.Name); err == nil {
		fileEvent.IsDir = info.IsDir()
	}

	// New subdirectories are not covered by the existing watches
	if fileEvent.IsDir && fileEvent.Type == building.FileCreated {
		if err := w.addTree(event.Name); err != nil {
			slog.Warn("Failed to watch new directory", "name", w.name, "path", event.Name, "error", err)
		}
	}

	w.handler.HandleChange(ctx, fileEvent)
}

// addTree adds a watch for root and every directory below it
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		slog.Debug("Watch added", "name", w.name, "path", path)
		return nil
	})
}

func eventType(op fsnotify.Op) building.FileEventType {
	switch {
	case op.Has(fsnotify.Write):
		return building.FileModified
	case op.Has(fsnotify.Create):
		return building.FileCreated
	case op.Has(fsnotify.Remove):
		return building.FileRemoved
	case op.Has(fsnotify.Rename):
		return building.FileRenamed
	default:
		// chmod only
		return ""
	}
}
