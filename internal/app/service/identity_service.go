package service

import (
	"context"
	"time"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
	"github.com/hpatel/profilesync-backend/pkg/logger"
)

// IdentityService manages the per-user identity record that acts as the
// source of truth during reconciliation.
type IdentityService interface {
	Get(ctx context.Context, userID string) (*model.UserIdentity, error)
	Put(ctx context.Context, userID string, identity model.UserIdentity) (*model.UserIdentity, error)
	Update(ctx context.Context, userID string, patch model.IdentityPatch) (*model.UserIdentity, error)
}

type identityService struct {
	identities repository.IdentityStore
	profiles   repository.ProfileRepository
}

func NewIdentityService(identities repository.IdentityStore, profiles repository.ProfileRepository) IdentityService {
	return &identityService{identities: identities, profiles: profiles}
}

func (s *identityService) Get(ctx context.Context, userID string) (*model.UserIdentity, error) {
	return s.identities.Get(ctx, userID)
}

func (s *identityService) Put(ctx context.Context, userID string, identity model.UserIdentity) (*model.UserIdentity, error) {
	identity.ID = userID
	identity.UpdatedAt = time.Now()
	if err := s.identities.Put(ctx, &identity); err != nil {
		return nil, err
	}
	s.profiles.InvalidateCache(userID)
	return &identity, nil
}

// Update applies a partial change; the next profile list load picks it up
// and pushes it to the canonical profile.
func (s *identityService) Update(ctx context.Context, userID string, patch model.IdentityPatch) (*model.UserIdentity, error) {
	if patch.IsEmpty() {
		return s.identities.Get(ctx, userID)
	}

	identity, err := s.identities.Apply(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	s.profiles.InvalidateCache(userID)

	logger.Info("Identity record updated", map[string]interface{}{
		"user_id": userID,
	})
	return identity, nil
}
