package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/mockingbird/internal/logger"
)

// BulkReloader reloads every known server.
type BulkReloader interface {
	ReloadAll(ctx context.Context) (int, error)
}

// StorePoller periodically pulls persisted endpoints into running servers.
// It covers backends without filesystem events, such as Redis.
type StorePoller struct {
	reloader BulkReloader
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewStorePoller creates a new poller
func NewStorePoller(reloader BulkReloader, log logger.Logger, interval time.Duration) *StorePoller {
	return &StorePoller{
		reloader: reloader,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic poll
func (sp *StorePoller) Start(ctx context.Context) error {
	ticker := time.NewTicker(sp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sp.Poll(ctx)
			case <-sp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the poller
func (sp *StorePoller) Stop() {
	close(sp.stopCh)
}

// Poll runs one reload pass.
func (sp *StorePoller) Poll(ctx context.Context) {
	n, err := sp.reloader.ReloadAll(ctx)
	if err != nil {
		sp.logger.Error("store poll failed",
			logger.Int("reloaded", n),
			logger.Error(err))
		return
	}
	sp.logger.Debug("store poll done", logger.Int("servers", n))
}
