package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
)

// instance is one mock server record. Fields are guarded by the registry lock,
// the table has its own lock because dispatch reads it concurrently.
type instance struct {
	port      int
	table     *domain.RouteTable
	running   bool
	startedAt time.Time
	stoppedAt time.Time

	http *http.Server
	done chan struct{}
}

func newInstance(port int) *instance {
	return &instance{
		port:  port,
		table: domain.NewRouteTable(),
	}
}

// serve starts accepting on ln in the background.
func (i *instance) serve(ln net.Listener, h http.Handler, log logger.Logger, now time.Time) {
	i.http = &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Must stay above the maximum endpoint delay.
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	i.done = make(chan struct{})
	i.running = true
	i.startedAt = now
	i.stoppedAt = time.Time{}

	srv, done := i.http, i.done
	go func() {
		defer close(done)
		// http.ErrServerClosed is expected on graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("mock server stopped unexpectedly",
				logger.Int("port", i.port),
				logger.Error(err))
		}
	}()
}

// shutdown drains in-flight requests, force-closing once ctx expires.
// It returns after the serve goroutine exited.
func (i *instance) shutdown(ctx context.Context, now time.Time) error {
	err := i.http.Shutdown(ctx)
	if err != nil {
		_ = i.http.Close()
		err = fmt.Errorf("graceful shutdown of port %d: %w", i.port, err)
	}
	<-i.done

	i.running = false
	i.stoppedAt = now
	i.http = nil
	return err
}

func (i *instance) status() ServerStatus {
	st := ServerStatus{
		Port:      i.port,
		Running:   i.running,
		URL:       LocalURL(i.port),
		StartedAt: i.startedAt,
		Endpoints: i.table.Endpoints(),
	}
	if !i.stoppedAt.IsZero() {
		stopped := i.stoppedAt
		st.StoppedAt = &stopped
	}
	return st
}
