package service

import (
	"context"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
)

// ProfileService is the CRUD facade over the upstream profile API.
type ProfileService interface {
	List(ctx context.Context, sess model.Session) ([]model.BusinessProfile, error)
	Update(ctx context.Context, sess model.Session, profileID string, patch model.ProfilePatch) (*model.BusinessProfile, error)
	Delete(ctx context.Context, sess model.Session, profileID string) error
}

type profileService struct {
	profiles repository.ProfileRepository
	events   EventNotifier
}

func NewProfileService(profiles repository.ProfileRepository, events EventNotifier) ProfileService {
	return &profileService{profiles: profiles, events: events}
}

// List returns the user's profiles oldest first, so the canonical
// (registration) profile is always the first element.
func (s *profileService) List(ctx context.Context, sess model.Session) ([]model.BusinessProfile, error) {
	profiles, err := s.profiles.ListByOwner(ctx, sess)
	if err != nil {
		return nil, err
	}
	model.SortOldestFirst(profiles)
	return profiles, nil
}

// Update applies a partial update, then drops the cache and re-reads from
// upstream so the caller sees the post-write truth rather than a stale copy.
func (s *profileService) Update(ctx context.Context, sess model.Session, profileID string, patch model.ProfilePatch) (*model.BusinessProfile, error) {
	if patch.IsEmpty() {
		return nil, model.ErrInvalidForm
	}

	if _, err := s.profiles.Update(ctx, sess, profileID, patch); err != nil {
		return nil, err
	}

	// Re-read from upstream rather than trusting the PATCH echo; a soft
	// 404 success returns no body at all.
	profiles, err := s.profiles.ListByOwner(ctx, sess)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == profileID {
			return &profiles[i], nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (s *profileService) Delete(ctx context.Context, sess model.Session, profileID string) error {
	if err := s.profiles.Delete(ctx, sess, profileID); err != nil {
		return err
	}
	s.profiles.InvalidateCache(sess.UserID)

	if s.events != nil {
		s.events.Notify(sess.UserID, "profile_deleted", map[string]interface{}{"profileId": profileID})
	}
	return nil
}
