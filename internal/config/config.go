// Package config reads the MOCKINGBIRD_* environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

type Config struct {
	ConfigDir       string        // directory holding <port>.json files (file store)
	StoreBackend    string        // "file" | "redis"
	MockHost        string        // interface mock servers bind to (ex: "127.0.0.1", "" = all)
	DrainTimeout    time.Duration // grace period for in-flight requests on stop
	ShutdownTimeout time.Duration // process-wide shutdown budget

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	MCPStdio     bool          // serve MCP tools on stdin/stdout
	AdminListen  string        // admin API address, empty = disabled (ex: ":8080")
	SeedFile     string        // optional YAML file applied on startup
	Restore      bool          // start every persisted server on startup
	Watch        bool          // reload servers when their config changes
	PollInterval time.Duration // reload period for stores without change events (redis)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts
}

func Load() *Config {
	cfg := &Config{
		// Registry
		ConfigDir:       getenv("MOCKINGBIRD_CONFIG_DIR", ".api-mockingbird.local"),
		StoreBackend:    strings.ToLower(getenv("MOCKINGBIRD_STORE", StoreFile)),
		MockHost:        getenv("MOCKINGBIRD_MOCK_HOST", ""),
		DrainTimeout:    mustDuration("MOCKINGBIRD_DRAIN_TIMEOUT", 15*time.Second),
		ShutdownTimeout: mustDuration("MOCKINGBIRD_SHUTDOWN_TIMEOUT", 20*time.Second),

		// Logging
		LogLevel:  getenv("MOCKINGBIRD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MOCKINGBIRD_PRETTY_LOG", false),

		// Surfaces
		MCPStdio:     mustBool("MOCKINGBIRD_MCP_STDIO", true),
		AdminListen:  getenv("MOCKINGBIRD_ADMIN_LISTEN", ""),
		SeedFile:     getenv("MOCKINGBIRD_SEED_FILE", ""),
		Restore:      mustBool("MOCKINGBIRD_RESTORE", false),
		Watch:        mustBool("MOCKINGBIRD_WATCH", true),
		PollInterval: mustDuration("MOCKINGBIRD_POLL_INTERVAL", 5*time.Second),
	}

	switch cfg.StoreBackend {
	case StoreFile:
	case StoreRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: MOCKINGBIRD_STORE must be %q or %q, got %q", StoreFile, StoreRedis, cfg.StoreBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadRedis fills the Redis settings, only required for the redis backend.
func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("MOCKINGBIRD_REDIS_ADDR")
	cfg.RedisUser = getenv("MOCKINGBIRD_REDIS_USERNAME", "")
	cfg.RedisPasswordRequired = mustBool("MOCKINGBIRD_REDIS_PASSWORD_REQUIRED", false)
	cfg.RedisPassword = getenv("MOCKINGBIRD_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("MOCKINGBIRD_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: MOCKINGBIRD_REDIS_PASSWORD is required when MOCKINGBIRD_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
