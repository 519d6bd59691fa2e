package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

var (
	ErrExists          = errors.New("session already exists")
	ErrNotFound        = errors.New("session not found")
	ErrVersionConflict = errors.New("session version conflict")
	ErrInvalidConfig   = errors.New("invalid store configuration")
)

// Type selects a storage driver.
type Type string

const (
	TypeMemory Type = "memory"
	TypeRedis  Type = "redis"
)

// Store persists sessions. Update uses optimistic locking on Version so a
// stale writer loses instead of silently overwriting a newer record.
type Store interface {
	// Create persists a new session with Version set to 1. Returns ErrExists
	// when the id is already present.
	Create(ctx context.Context, sess *session.Session) error

	// Get returns the stored session or ErrNotFound.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Update persists sess when its Version matches the stored record, then
	// increments the version. Returns ErrVersionConflict on a stale write and
	// ErrNotFound for unknown ids.
	Update(ctx context.Context, sess *session.Session) error

	// Delete removes a session. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Count reports how many sessions are active and terminated.
	Count(ctx context.Context) (active, terminated int, err error)

	// Close releases driver resources.
	Close() error
}

// Option configures the store factory.
type Option func(*config)

type config struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// WithRedisClient supplies the client backing a redis store.
func WithRedisClient(client *redis.Client) Option {
	return func(c *config) {
		c.redisClient = client
	}
}

// WithTTL sets how long a redis-backed session lives without being touched.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// New builds a store for the given driver type.
func New(storeType Type, opts ...Option) (Store, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case TypeMemory:
		return newMemoryStore(), nil

	case TypeRedis:
		if cfg.redisClient == nil {
			return nil, fmt.Errorf("%w: redis store needs a client", ErrInvalidConfig)
		}
		ttl := cfg.ttl
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		return &redisStore{client: cfg.redisClient, ttl: ttl}, nil

	default:
		return nil, fmt.Errorf("%w: unknown store type %q", ErrInvalidConfig, storeType)
	}
}
