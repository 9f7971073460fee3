package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/pkg/logger"
	redispkg "github.com/hpatel/profilesync-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

// DraftStore persists the single pending profile draft per user. Only the
// pending-creation workflow writes drafts. Get returns (nil, nil) when no
// draft exists.
type DraftStore interface {
	Save(ctx context.Context, userID string, draft *model.PendingProfileDraft) error
	Get(ctx context.Context, userID string) (*model.PendingProfileDraft, error)
	Delete(ctx context.Context, userID string) error
	NextToken(ctx context.Context, userID string) (int64, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

type redisDraftStore struct {
	client *redis.Client
}

// NewDraftStore creates a redis-backed draft store.
func NewDraftStore(client *redis.Client) DraftStore {
	return &redisDraftStore{client: client}
}

func (s *redisDraftStore) Save(ctx context.Context, userID string, draft *model.PendingProfileDraft) error {
	draft.SchemaVersion = model.DraftSchemaVersion

	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal pending draft: %w", err)
	}

	if err := s.client.Set(ctx, redispkg.DraftKey(userID), raw, 0).Err(); err != nil {
		logger.Error("Failed to persist pending draft", err, map[string]interface{}{
			"user_id":     userID,
			"draft_token": draft.Token,
		})
		return err
	}

	logger.Debug("Persisted pending draft", map[string]interface{}{
		"user_id":     userID,
		"draft_token": draft.Token,
	})
	return nil
}

func (s *redisDraftStore) Get(ctx context.Context, userID string) (*model.PendingProfileDraft, error) {
	raw, err := s.client.Get(ctx, redispkg.DraftKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to read pending draft", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var draft model.PendingProfileDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending draft: %w", err)
	}

	// A draft from a future schema is unusable; surface it rather than
	// misreading it.
	if draft.SchemaVersion > model.DraftSchemaVersion {
		return nil, fmt.Errorf("unsupported draft schema version %d", draft.SchemaVersion)
	}

	return &draft, nil
}

func (s *redisDraftStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, redispkg.DraftKey(userID)).Err(); err != nil {
		logger.Error("Failed to delete pending draft", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

// NextToken issues the next monotonic draft token for a user. The counter is
// backed by redis INCR, so tokens stay monotonic across restarts.
func (s *redisDraftStore) NextToken(ctx context.Context, userID string) (int64, error) {
	token, err := s.client.Incr(ctx, redispkg.DraftTokenKey(userID)).Result()
	if err != nil {
		logger.Error("Failed to issue draft token", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return token, nil
}

// ListUserIDs scans for every user with a persisted draft. Used by the
// recovery poll to finish payments that completed while the app was gone.
func (s *redisDraftStore) ListUserIDs(ctx context.Context) ([]string, error) {
	var (
		userIDs []string
		cursor  uint64
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, redispkg.DraftKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			userIDs = append(userIDs, strings.TrimPrefix(key, redispkg.DraftKeyPrefix))
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return userIDs, nil
}
