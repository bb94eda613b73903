package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/store"
)

// Store keeps one JSON-encoded PersistedConfig per port in Redis
type Store struct {
	client *redis.Client
}

var _ store.Store = (*Store)(nil)

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Name implements store.Store
func (s *Store) Name() string { return "redis" }

// Location implements store.Store
func (s *Store) Location(port int) string { return ServerKey(port) }

// Ping checks the connection, used by health endpoints
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save stores the config of a port
func (s *Store) Save(ctx context.Context, cfg domain.PersistedConfig) error {
	if cfg.Endpoints == nil {
		cfg.Endpoints = []domain.Endpoint{}
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, ServerKey(cfg.Port), data, 0)
	pipe.SAdd(ctx, AllServersKey(), strconv.Itoa(cfg.Port))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save config for port %d: %w", cfg.Port, err)
	}

	return nil
}

// Load retrieves the config of a port, nil when absent
func (s *Store) Load(ctx context.Context, port int) (*domain.PersistedConfig, error) {
	data, err := s.client.Get(ctx, ServerKey(port)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get config for port %d: %w", port, err)
	}

	var cfg domain.PersistedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: port %d: %v", store.ErrCorrupt, port, err)
	}
	cfg.Port = port
	if cfg.Endpoints == nil {
		cfg.Endpoints = []domain.Endpoint{}
	}

	return &cfg, nil
}

// List retrieves every stored config
func (s *Store) List(ctx context.Context) ([]domain.PersistedConfig, error) {
	members, err := s.client.SMembers(ctx, AllServersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get persisted ports: %w", err)
	}

	configs := make([]domain.PersistedConfig, 0, len(members))
	for _, member := range members {
		port, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		cfg, err := s.Load(ctx, port)
		if err != nil || cfg == nil {
			// Skip configs that couldn't be retrieved
			continue
		}
		configs = append(configs, *cfg)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].Port < configs[j].Port })
	return configs, nil
}
