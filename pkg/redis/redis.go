package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/hpatel/profilesync-backend/config"
	"github.com/hpatel/profilesync-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Key prefixes for the device-equivalent persisted state this service owns.
const (
	IdentityKeyPrefix   = "user_identity:"
	DraftKeyPrefix      = "pending_business_profile_data:"
	DraftTokenKeyPrefix = "pending_profile_draft_seq:"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// SetClient replaces the client instance. Used by tests to point at miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// IdentityKey returns the key holding a user's identity record.
func IdentityKey(userID string) string {
	return IdentityKeyPrefix + userID
}

// DraftKey returns the key holding a user's pending profile draft.
func DraftKey(userID string) string {
	return DraftKeyPrefix + userID
}

// DraftTokenKey returns the key backing a user's monotonic draft counter.
func DraftTokenKey(userID string) string {
	return DraftTokenKeyPrefix + userID
}
