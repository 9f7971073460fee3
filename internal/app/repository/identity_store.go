package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/pkg/logger"
	redispkg "github.com/hpatel/profilesync-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

var ErrIdentityNotFound = errors.New("identity record not found")

// IdentityStore holds the per-user identity record. It is the single-writer
// surface for identity mutations: sign-in writes the whole record, everything
// else applies field patches, so tests can assert the exact patches applied.
type IdentityStore interface {
	Get(ctx context.Context, userID string) (*model.UserIdentity, error)
	Put(ctx context.Context, identity *model.UserIdentity) error
	Apply(ctx context.Context, userID string, patch model.IdentityPatch) (*model.UserIdentity, error)
}

type redisIdentityStore struct {
	client *redis.Client
}

// NewIdentityStore creates a redis-backed identity store.
func NewIdentityStore(client *redis.Client) IdentityStore {
	return &redisIdentityStore{client: client}
}

func (s *redisIdentityStore) Get(ctx context.Context, userID string) (*model.UserIdentity, error) {
	raw, err := s.client.Get(ctx, redispkg.IdentityKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		logger.Error("Failed to read identity record", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var identity model.UserIdentity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity record: %w", err)
	}
	return &identity, nil
}

func (s *redisIdentityStore) Put(ctx context.Context, identity *model.UserIdentity) error {
	identity.UpdatedAt = time.Now()

	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity record: %w", err)
	}

	if err := s.client.Set(ctx, redispkg.IdentityKey(identity.ID), raw, 0).Err(); err != nil {
		logger.Error("Failed to write identity record", err, map[string]interface{}{
			"user_id": identity.ID,
		})
		return err
	}
	return nil
}

func (s *redisIdentityStore) Apply(ctx context.Context, userID string, patch model.IdentityPatch) (*model.UserIdentity, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, userID)
	}

	identity, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch.Apply(identity)
	if err := s.Put(ctx, identity); err != nil {
		return nil, err
	}

	logger.Debug("Applied identity patch", map[string]interface{}{
		"user_id": userID,
	})
	return identity, nil
}
