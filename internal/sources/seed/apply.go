package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
)

// Registry is what seeding needs from mockserver.Registry.
type Registry interface {
	Start(ctx context.Context, port int) (mockserver.ServerStatus, error)
	AddEndpoint(ctx context.Context, port int, ep domain.Endpoint) (bool, error)
}

// Result summarizes an Apply run.
type Result struct {
	Servers   int
	Endpoints int
}

// Apply starts every server of f and upserts its endpoints on top of persisted ones.
// A server already running is reused. Errors of one server do not stop the others.
func Apply(ctx context.Context, reg Registry, f *File, log logger.Logger) (Result, error) {
	var (
		res    Result
		errs   []error
		mapper = NewMapper()
	)

	for _, s := range f.Servers {
		eps, err := mapper.MapServer(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if _, err := reg.Start(ctx, s.Port); err != nil && !errors.Is(err, mockserver.ErrAlreadyRunning) {
			errs = append(errs, fmt.Errorf("failed to start seeded server: %w", err))
			continue
		}
		res.Servers++

		for _, ep := range eps {
			ok, err := reg.AddEndpoint(ctx, s.Port, ep)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if ok {
				res.Endpoints++
			}
		}

		log.Info("seeded mock server",
			logger.Int("port", s.Port),
			logger.Int("endpoints", len(eps)))
	}

	return res, errors.Join(errs...)
}
