package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/store/file"
)

// DefaultDebounce groups the burst of events an editor produces on save.
const DefaultDebounce = 300 * time.Millisecond

// Reloader re-reads the persisted endpoints of one port.
type Reloader interface {
	Reload(ctx context.Context, port int) (bool, error)
}

// ConfigWatcher reloads a server when its <port>.json file is edited by hand.
type ConfigWatcher struct {
	dir      string
	reloader Reloader
	logger   logger.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	pending map[int]*time.Timer
	stopCh  chan struct{}
	done    chan struct{}
}

// NewConfigWatcher creates a watcher for dir
func NewConfigWatcher(dir string, reloader Reloader, log logger.Logger, debounce time.Duration) *ConfigWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ConfigWatcher{
		dir:      dir,
		reloader: reloader,
		logger:   log,
		debounce: debounce,
		pending:  make(map[int]*time.Timer),
	}
}

// Start begins watching. The directory is created if missing.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.watcher != nil {
		return nil
	}

	if err := os.MkdirAll(cw.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(cw.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", cw.dir, err)
	}

	cw.watcher = watcher
	cw.stopCh = make(chan struct{})
	cw.done = make(chan struct{})

	go cw.run(ctx, watcher, cw.stopCh, cw.done)

	cw.logger.Info("watching config dir for manual edits",
		logger.String("dir", cw.dir),
		logger.Duration("debounce", cw.debounce))
	return nil
}

// Stop ends the watch and drops pending reloads. It is safe to call twice.
func (cw *ConfigWatcher) Stop() {
	cw.mu.Lock()
	if cw.watcher == nil {
		cw.mu.Unlock()
		return
	}
	close(cw.stopCh)
	done := cw.done
	cw.mu.Unlock()

	<-done

	cw.mu.Lock()
	defer cw.mu.Unlock()
	_ = cw.watcher.Close()
	cw.watcher = nil
	for port, t := range cw.pending {
		t.Stop()
		delete(cw.pending, port)
	}
}

func (cw *ConfigWatcher) run(ctx context.Context, w *fsnotify.Watcher, stopCh, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			cw.handle(ctx, event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("config watcher error", logger.Error(err))
		}
	}
}

func (cw *ConfigWatcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	port, ok := file.PortFromPath(event.Name)
	if !ok {
		return
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()

	if t, exists := cw.pending[port]; exists {
		t.Stop()
	}
	cw.pending[port] = time.AfterFunc(cw.debounce, func() {
		cw.mu.Lock()
		delete(cw.pending, port)
		cw.mu.Unlock()

		cw.reload(ctx, port)
	})
}

func (cw *ConfigWatcher) reload(ctx context.Context, port int) {
	if ctx.Err() != nil {
		return
	}

	known, err := cw.reloader.Reload(ctx, port)
	switch {
	case err != nil:
		cw.logger.Warn("failed to reload edited config, keeping current endpoints",
			logger.Int("port", port),
			logger.Error(err))
	case !known:
		cw.logger.Debug("config changed for a port without server", logger.Int("port", port))
	default:
		cw.logger.Debug("config change processed", logger.Int("port", port))
	}
}
