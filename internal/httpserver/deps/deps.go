package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
	"github.com/MrSnakeDoc/mockingbird/internal/store"
)

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time     // for testing, defaults to time.Now
	Registry     *mockserver.Registry // running mock servers
	Store        store.Store          // persistence backend, nil when disabled
	PingTimeout  time.Duration        // bound for store health checks
	WatchEnabled bool                 // true when manual config edits are picked up automatically
}
