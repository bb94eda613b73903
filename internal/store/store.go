// Package store defines where mock server route tables are persisted.
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
)

// ErrCorrupt is returned by Load when persisted data exists but cannot be decoded.
var ErrCorrupt = errors.New("corrupt persisted config")

// Store persists one PersistedConfig per port.
type Store interface {
	// Save overwrites the config for cfg.Port.
	Save(ctx context.Context, cfg domain.PersistedConfig) error
	// Load returns nil, nil when nothing is stored for port.
	Load(ctx context.Context, port int) (*domain.PersistedConfig, error)
	// List returns every readable stored config, ordered by port.
	List(ctx context.Context) ([]domain.PersistedConfig, error)
	// Name identifies the backend in logs and health output.
	Name() string
	// Location tells a human where the config of port lives (file path or key).
	Location(port int) string
}
