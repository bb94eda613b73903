// Package mockserver owns the running mock HTTP servers, their route tables
// and the persistence of those tables.
package mockserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/store"
)

// DefaultDrainTimeout bounds how long Stop waits for in-flight requests.
// It exceeds the maximum endpoint delay so delayed responses can finish.
const DefaultDrainTimeout = 15 * time.Second

// ErrAlreadyRunning is returned by Start when the port already serves.
var ErrAlreadyRunning = errors.New("server already running")

// Options tunes a Registry.
type Options struct {
	// Host is the bind address of mock listeners ("" = all interfaces).
	Host string
	// DrainTimeout bounds graceful shutdown, after it connections are closed.
	DrainTimeout time.Duration
	// TimeNow is used for timestamps, defaults to time.Now.
	TimeNow func() time.Time
}

// Registry maps ports to mock server instances.
// Administrative calls are serialized; request dispatch never takes the registry lock.
type Registry struct {
	mu      sync.Mutex
	servers map[int]*instance
	order   []int

	store        store.Store
	logger       logger.Logger
	host         string
	drainTimeout time.Duration
	now          func() time.Time
}

// NewRegistry builds an empty registry. A nil store disables persistence.
func NewRegistry(st store.Store, log logger.Logger, opts Options) *Registry {
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = DefaultDrainTimeout
	}
	if opts.TimeNow == nil {
		opts.TimeNow = time.Now
	}
	return &Registry{
		servers:      make(map[int]*instance),
		store:        st,
		logger:       log,
		host:         opts.Host,
		drainTimeout: opts.DrainTimeout,
		now:          opts.TimeNow,
	}
}

// Start binds a listener on port, restores any persisted endpoints and serves them.
// A stopped record for the same port is replaced by the new instance.
func (r *Registry) Start(ctx context.Context, port int) (ServerStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.servers[port]; ok && existing.running {
		return ServerStatus{}, fmt.Errorf("%w on port %d", ErrAlreadyRunning, port)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(r.host, strconv.Itoa(port)))
	if err != nil {
		return ServerStatus{}, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	inst := newInstance(port)
	r.loadInto(ctx, inst)
	inst.serve(ln, newRouter(port, inst.table, r.logger), r.logger, r.now())

	if _, known := r.servers[port]; !known {
		r.order = append(r.order, port)
	}
	r.servers[port] = inst

	r.logger.Info("mock server started",
		logger.Int("port", port),
		logger.Int("endpoints", inst.table.Len()))

	return inst.status(), nil
}

// Stop gracefully shuts the server on port down and keeps its endpoints in memory.
// It returns false when no running server exists on port.
func (r *Registry) Stop(ctx context.Context, port int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.servers[port]
	if !ok || !inst.running {
		return false
	}

	_ = r.stopLocked(ctx, inst)
	return true
}

func (r *Registry) stopLocked(ctx context.Context, inst *instance) error {
	drainCtx, cancel := context.WithTimeout(ctx, r.drainTimeout)
	defer cancel()

	err := inst.shutdown(drainCtx, r.now())
	if err != nil {
		r.logger.Warn("mock server did not drain in time, connections closed",
			logger.Int("port", inst.port),
			logger.Duration("drain_timeout", r.drainTimeout),
			logger.Error(err))
	} else {
		r.logger.Info("mock server stopped", logger.Int("port", inst.port))
	}
	return err
}

// AddEndpoint upserts ep on a running server and persists the table.
// It returns false when no running server exists on port.
func (r *Registry) AddEndpoint(ctx context.Context, port int, ep domain.Endpoint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.servers[port]
	if !ok || !inst.running {
		return false, nil
	}

	if ep.ID == "" {
		ep.ID = uuid.NewString()
	}
	if ep.Response.Status == 0 {
		ep.Response.Status = domain.DefaultStatus
	}
	inst.table.Upsert(ep)

	r.logger.Info("endpoint added",
		logger.Int("port", port),
		logger.String("method", string(ep.Method)),
		logger.String("path", ep.Path),
		logger.Int("status", ep.Response.Status))

	return true, r.saveLocked(ctx, inst)
}

// RemoveEndpoint deletes method+path from the table of port, running or not.
// It returns false only when the port was never started; a missing endpoint
// still counts as success so callers must re-query to detect a no-op.
func (r *Registry) RemoveEndpoint(ctx context.Context, port int, method, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.servers[port]
	if !ok {
		return false, nil
	}

	if inst.table.Remove(method, path) {
		r.logger.Info("endpoint removed",
			logger.Int("port", port),
			logger.String("method", method),
			logger.String("path", path))
	} else {
		r.logger.Debug("no endpoint matched removal",
			logger.Int("port", port),
			logger.String("method", method),
			logger.String("path", path))
	}

	return true, r.saveLocked(ctx, inst)
}

// SetEndpointError enables an error override on an existing endpoint.
func (r *Registry) SetEndpointError(ctx context.Context, port int, method, path string, status int, message string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.servers[port]
	if !ok || !inst.table.SetErrorOverride(method, path, status, message) {
		return false, nil
	}

	r.logger.Info("endpoint error set",
		logger.Int("port", port),
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", status))

	return true, r.saveLocked(ctx, inst)
}

// ToggleEndpointError flips an existing override. Endpoints without one are not touched.
func (r *Registry) ToggleEndpointError(ctx context.Context, port int, method, path string, enabled bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.servers[port]
	if !ok || !inst.table.ToggleErrorOverride(method, path, enabled) {
		return false, nil
	}

	r.logger.Info("endpoint error toggled",
		logger.Int("port", port),
		logger.String("method", method),
		logger.String("path", path),
		logger.Bool("enabled", enabled))

	return true, r.saveLocked(ctx, inst)
}

// Location describes where the endpoints of port are persisted, "" without a store.
func (r *Registry) Location(port int) string {
	if r.store == nil {
		return ""
	}
	return r.store.Location(port)
}

// Status returns a snapshot of the server on port.
func (r *Registry) Status(port int) (ServerStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.servers[port]
	if !ok {
		return ServerStatus{}, false
	}
	return inst.status(), true
}

// List returns snapshots of every known server in first-start order.
func (r *Registry) List() []ServerStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ServerStatus, 0, len(r.order))
	for _, port := range r.order {
		out = append(out, r.servers[port].status())
	}
	return out
}

// Reload re-reads the persisted config of port and swaps the table when it changed.
// It returns false when the port is unknown.
func (r *Registry) Reload(ctx context.Context, port int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.servers[port]
	if !ok {
		return false, nil
	}
	if r.store == nil {
		return true, nil
	}

	cfg, err := r.store.Load(ctx, port)
	if err != nil {
		return true, fmt.Errorf("failed to reload endpoints for port %d: %w", port, err)
	}
	if cfg == nil {
		return true, nil
	}

	current := inst.table.Endpoints()
	if sameEndpoints(current, cfg.Endpoints) {
		return true, nil
	}

	inst.table.Replace(cfg.Endpoints)
	r.logger.Info("endpoints reloaded from persisted config",
		logger.Int("port", port),
		logger.Int("endpoints", inst.table.Len()))
	return true, nil
}

// ReloadAll reloads every known server and returns how many were reloaded.
func (r *Registry) ReloadAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	ports := append([]int(nil), r.order...)
	r.mu.Unlock()

	var errs []error
	n := 0
	for _, port := range ports {
		ok, err := r.Reload(ctx, port)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			n++
		}
	}
	return n, errors.Join(errs...)
}

// Shutdown stops every running server concurrently. The registry stays usable.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var g errgroup.Group
	for _, port := range r.order {
		inst := r.servers[port]
		if !inst.running {
			continue
		}
		g.Go(func() error {
			return r.stopLocked(ctx, inst)
		})
	}
	return g.Wait()
}

// loadInto restores persisted endpoints. Missing or corrupt data never blocks a start.
func (r *Registry) loadInto(ctx context.Context, inst *instance) {
	if r.store == nil {
		return
	}

	cfg, err := r.store.Load(ctx, inst.port)
	switch {
	case err != nil:
		r.logger.Warn("failed to load persisted endpoints, starting empty",
			logger.Int("port", inst.port),
			logger.String("store", r.store.Name()),
			logger.Error(err))
	case cfg == nil:
		r.logger.Debug("no persisted endpoints", logger.Int("port", inst.port))
	default:
		inst.table.Replace(cfg.Endpoints)
		r.logger.Info("restored persisted endpoints",
			logger.Int("port", inst.port),
			logger.Int("endpoints", inst.table.Len()))
	}
}

func (r *Registry) saveLocked(ctx context.Context, inst *instance) error {
	if r.store == nil {
		return nil
	}

	cfg := domain.PersistedConfig{
		Port:      inst.port,
		Endpoints: inst.table.Endpoints(),
		UpdatedAt: r.now(),
	}
	if err := r.store.Save(ctx, cfg); err != nil {
		r.logger.Error("failed to persist endpoints",
			logger.Int("port", inst.port),
			logger.String("store", r.store.Name()),
			logger.Error(err))
		return fmt.Errorf("failed to persist endpoints for port %d: %w", inst.port, err)
	}
	return nil
}

// sameEndpoints compares canonical JSON so formatting differences in stored bodies are ignored.
func sameEndpoints(a, b []domain.Endpoint) bool {
	if len(a) != len(b) {
		return false
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
