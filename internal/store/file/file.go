// Package file stores route tables as one pretty-printed JSON file per port.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/store"
)

// DefaultDir is the config directory used when none is configured.
const DefaultDir = ".api-mockingbird.local"

const fileExt = ".json"

// Store keeps <dir>/<port>.json files.
type Store struct {
	dir string
}

var _ store.Store = (*Store)(nil)

// New creates a file store rooted at dir. The directory is created lazily on first save.
func New(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{dir: dir}
}

// Name implements store.Store.
func (s *Store) Name() string { return "file" }

// Dir returns the config directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file holding the config of port.
func (s *Store) Path(port int) string {
	return filepath.Join(s.dir, strconv.Itoa(port)+fileExt)
}

// Location implements store.Store.
func (s *Store) Location(port int) string { return s.Path(port) }

// PortFromPath extracts the port from a config file name, ok is false for foreign files.
func PortFromPath(path string) (int, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, fileExt) {
		return 0, false
	}
	port, err := strconv.Atoi(strings.TrimSuffix(base, fileExt))
	if err != nil {
		return 0, false
	}
	return port, true
}

// Save writes the config atomically (temp file + rename).
func (s *Store) Save(_ context.Context, cfg domain.PersistedConfig) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	if cfg.Endpoints == nil {
		cfg.Endpoints = []domain.Endpoint{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config for port %d: %w", cfg.Port, err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".%d-*.tmp", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config for port %d: %w", cfg.Port, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close config for port %d: %w", cfg.Port, err)
	}
	if err := os.Rename(tmpName, s.Path(cfg.Port)); err != nil {
		return fmt.Errorf("failed to save config for port %d: %w", cfg.Port, err)
	}
	return nil
}

// Load reads the config of port. A missing file yields nil, nil.
func (s *Store) Load(_ context.Context, port int) (*domain.PersistedConfig, error) {
	data, err := os.ReadFile(s.Path(port))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config for port %d: %w", port, err)
	}
	return decode(port, data)
}

// List reads every <port>.json in the directory, skipping unreadable files.
func (s *Store) List(ctx context.Context) ([]domain.PersistedConfig, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.PersistedConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config dir: %w", err)
	}

	configs := make([]domain.PersistedConfig, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		port, ok := PortFromPath(entry.Name())
		if !ok {
			continue
		}
		cfg, err := s.Load(ctx, port)
		if err != nil || cfg == nil {
			continue
		}
		configs = append(configs, *cfg)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].Port < configs[j].Port })
	return configs, nil
}

// decode tolerates unknown fields and a missing endpoints list.
func decode(port int, data []byte) (*domain.PersistedConfig, error) {
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
