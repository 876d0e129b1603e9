package app

import (
	"os"
	"slices"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

const defaultAddr = "0.0.0.0:3000"

// Store backends.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Lock backends.
const (
	LockLocal = "local"
	LockRedis = "redis"
	LockNone  = "none"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:3000" usage:"API server listen address"`
	ServiceName string `default:"shop-api" usage:"Service name reported in telemetry" flag:"service-name"`
	Store       StoreConfig
	Lock        LockConfig
	Password    PasswordConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Health      HealthConfig
	Graceful    GracefulConfig
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend       string `default:"mongo" usage:"Store backend: mongo, postgres or memory"`
	MongoURI      string `default:"mongodb://127.0.0.1:27017/?directConnection=true" usage:"MongoDB connection URI (SHOP_STORE_MONGO_URI or MONGODB_URI)" flag:"mongo-uri"`
	MongoDatabase string `default:"test" usage:"MongoDB database name" flag:"mongo-database"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (SHOP_STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
}

// LockConfig selects how concurrent wallet mutations of one customer are
// serialized.
type LockConfig struct {
	Backend       string        `default:"local" usage:"Customer lock backend: local, redis or none"`
	RedisURL      string        `usage:"Redis URL for the redis lock backend (SHOP_LOCK_REDIS_URL or REDIS_URL)" flag:"redis-url"`
	TTL           time.Duration `default:"10s" usage:"Redis lock expiry"`
	RetryInterval time.Duration `default:"25ms" usage:"Redis lock polling interval" flag:"lock-retry-interval"`
}

// PasswordConfig controls password hashing.
type PasswordConfig struct {
	BcryptCost int `default:"10" usage:"bcrypt work factor" flag:"bcrypt-cost"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// HealthConfig controls background health checks.
type HealthConfig struct {
	Interval      time.Duration `default:"10s" usage:"Health check interval" flag:"health-interval"`
	MaxGoroutines int           `default:"10000" usage:"Liveness goroutine threshold" flag:"max-goroutines"`
	MaxGCPause    time.Duration `default:"1s" usage:"Liveness GC pause threshold" flag:"max-gc-pause"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads a .env file if present, then configuration from
// environment variables, flags and YAML files, and applies platform defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/shop/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend selections and their required settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New("mongo URI is required: set SHOP_STORE_MONGO_URI or MONGODB_URI")
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("database URL is required: set SHOP_STORE_DATABASE_URL or DATABASE_URL")
		}
	case StoreMemory:
	default:
		return errors.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if !slices.Contains([]string{LockLocal, LockRedis, LockNone}, c.Lock.Backend) {
		return errors.Errorf("unknown lock backend %q", c.Lock.Backend)
	}
	if c.Lock.Backend == LockRedis && c.Lock.RedisURL == "" {
		return errors.New("redis URL is required for the redis lock: set SHOP_LOCK_REDIS_URL or REDIS_URL")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names to the SHOP_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if v := os.Getenv("MONGODB_URI"); v != "" && os.Getenv("SHOP_STORE_MONGO_URI") == "" {
		c.Store.MongoURI = v
	}
	if c.Store.DatabaseURL == "" {
		c.Store.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Lock.RedisURL == "" {
		c.Lock.RedisURL = os.Getenv("REDIS_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
