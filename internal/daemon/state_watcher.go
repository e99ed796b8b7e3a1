package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/favwatch/internal/logfields"
)

// StateWatcher monitors the shared state file for writes from the CLI
// process so favorites or settings changed there take effect immediately
// instead of waiting out the current poll interval.
type StateWatcher struct {
	statePath    string
	watcher      *fsnotify.Watcher
	onChange     func()
	changeChan   chan struct{}
	debounceTime time.Duration
}

// NewStateWatcher creates a watcher for statePath; onChange fires after a
// debounced burst of file events.
func NewStateWatcher(statePath string, onChange func()) (*StateWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(statePath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve state path: %w", err)
	}

	return &StateWatcher{
		statePath:    absPath,
		watcher:      watcher,
		onChange:     onChange,
		changeChan:   make(chan struct{}, 1),
		debounceTime: 500 * time.Millisecond,
	}, nil
}

// Start begins monitoring. The goroutines exit when ctx is cancelled.
func (sw *StateWatcher) Start(ctx context.Context, workers *WorkerGroup) error {
	// Watch the directory, not the file: the atomic rename swap replaces
	// the inode on every save.
	stateDir := filepath.Dir(sw.statePath)
	if err := sw.watcher.Add(stateDir); err != nil {
		return fmt.Errorf("watch state directory %s: %w", stateDir, err)
	}

	slog.Info("Watching state file for external changes", logfields.StatePath(sw.statePath))

	workers.Go(func() { sw.watchLoop(ctx) })
	workers.Go(func() { sw.debounceLoop(ctx) })
	return nil
}

// Close releases the underlying file system watcher.
func (sw *StateWatcher) Close() error {
	return sw.watcher.Close()
}

func (sw *StateWatcher) watchLoop(ctx context.Context) {
	stateFile := filepath.Base(sw.statePath)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != stateFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				slog.Debug("State file change detected", logfields.StatePath(event.Name))
				select {
				case sw.changeChan <- struct{}{}:
				default: // a change is already pending
				}
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("State watcher error", logfields.Error(err))
		}
	}
}

func (sw *StateWatcher) debounceLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.changeChan:
			// Let the burst of rename/write events settle.
			select {
			case <-ctx.Done():
				return
			case <-time.After(sw.debounceTime):
			}
			sw.onChange()
		}
	}
}
