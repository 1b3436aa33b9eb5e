package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks failed login attempts per identifier
type Store interface {
	// RecordFailure records a failed attempt and returns the failure count
	// inside the current window
	RecordFailure(ctx context.Context, identifier string) (int64, error)
	// IsLocked reports whether the identifier has reached the failure threshold
	IsLocked(ctx context.Context, identifier string) (bool, error)
	// Clear forgets all recorded failures for the identifier
	Clear(ctx context.Context, identifier string) error
	// Health checks the backing store connection
	Health(ctx context.Context) error
}

// RedisConfig holds Redis lockout store configuration
type RedisConfig struct {
	URL         string
	MaxAttempts int64
	Window      time.Duration
}

// redisStore implements Store using Redis counters with a window expiry
type redisStore struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
	logger      *slog.Logger
}

// NewRedisStore creates a Redis-backed lockout store
func NewRedisStore(cfg RedisConfig, logger *slog.Logger) (Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis",
		slog.String("addr", opts.Addr),
	)

	return &redisStore{
		client:      client,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
		logger:      logger,
	}, nil
}

func (s *redisStore) key(identifier string) string {
	return "login_failures:" + identifier
}

// RecordFailure increments the failure counter for the identifier.
// The first failure in a window starts the expiry clock.
func (s *redisStore) RecordFailure(ctx context.Context, identifier string) (int64, error) {
	key := s.key(identifier)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to record login failure: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			return count, fmt.Errorf("failed to set lockout window: %w", err)
		}
	}

	s.logger.Debug("login failure recorded",
		slog.String("identifier", identifier),
		slog.Int64("count", count),
	)

	return count, nil
}

// IsLocked reports whether the identifier reached the failure threshold
func (s *redisStore) IsLocked(ctx context.Context, identifier string) (bool, error) {
	count, err := s.client.Get(ctx, s.key(identifier)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read login failures: %w", err)
	}

	return count >= s.maxAttempts, nil
}

// Clear forgets recorded failures, typically after a successful login
func (s *redisStore) Clear(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("failed to clear login failures: %w", err)
	}
	return nil
}

// Health checks the Redis connection
func (s *redisStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
