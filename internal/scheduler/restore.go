package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
)

// ConfigLister lists persisted route tables.
type ConfigLister interface {
	List(ctx context.Context) ([]domain.PersistedConfig, error)
}

// Starter starts a mock server.
type Starter interface {
	Start(ctx context.Context, port int) (mockserver.ServerStatus, error)
}

// Restorer starts a server for every persisted config on startup
type Restorer struct {
	store   ConfigLister
	starter Starter
	logger  logger.Logger
}

// NewRestorer creates a new restorer
func NewRestorer(store ConfigLister, starter Starter, log logger.Logger) *Restorer {
	return &Restorer{
		store:   store,
		starter: starter,
		logger:  log,
	}
}

// Restore starts the persisted servers and returns how many are running.
// Ports that fail to bind are reported but do not stop the others.
func (r *Restorer) Restore(ctx context.Context) (int, error) {
	r.logger.Info("restoring persisted mock servers")

	configs, err := r.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list persisted configs: %w", err)
	}

	if len(configs) == 0 {
		r.logger.Info("no persisted mock servers found")
		return 0, nil
	}

	var errs []error
	started := 0
	for _, cfg := range configs {
		if err := domain.ValidatePort(cfg.Port); err != nil {
			errs = append(errs, fmt.Errorf("persisted config: %w", err))
			continue
		}
		if _, err := r.starter.Start(ctx, cfg.Port); err != nil {
			if errors.Is(err, mockserver.ErrAlreadyRunning) {
				started++
				continue
			}
			errs = append(errs, err)
			continue
		}
		started++
	}

	r.logger.Info("restored persisted mock servers",
		logger.Int("count", started))

	return started, errors.Join(errs...)
}
