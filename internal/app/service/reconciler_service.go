package service

import (
	"context"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
	"github.com/hpatel/profilesync-backend/pkg/logger"
)

// ReconcileResult reports what a reconciliation pass changed.
type ReconcileResult struct {
	CanonicalID       string   `json:"canonicalId,omitempty"`
	UpdatedCanonical  bool     `json:"updatedCanonical"`
	RolledBackFields  []string `json:"rolledBackFields,omitempty"`
	LogosStrippedFrom []string `json:"logosStrippedFrom,omitempty"`
}

// ReconcilerService keeps the user identity and the canonical business
// profile consistent. Identity wins over canonical-profile drift; identity
// fields contaminated as a side effect of the profile write are rolled back;
// non-canonical profiles never keep the user's personal logo.
//
// Reconcile is idempotent: with no intervening external change, a second run
// performs zero writes. Write failures are logged and swallowed; the next
// list load retries the same diff.
type ReconcilerService interface {
	Reconcile(ctx context.Context, sess model.Session, identity *model.UserIdentity, profiles []model.BusinessProfile) *ReconcileResult
}

type reconcilerService struct {
	profileRepo repository.ProfileRepository
	identities  repository.IdentityStore
}

// NewReconcilerService creates a reconciler service.
func NewReconcilerService(profileRepo repository.ProfileRepository, identities repository.IdentityStore) ReconcilerService {
	return &reconcilerService{
		profileRepo: profileRepo,
		identities:  identities,
	}
}

func (s *reconcilerService) Reconcile(ctx context.Context, sess model.Session, identity *model.UserIdentity, profiles []model.BusinessProfile) *ReconcileResult {
	result := &ReconcileResult{}
	if identity == nil || len(profiles) == 0 {
		return result
	}

	canonical := model.Canonical(profiles)
	result.CanonicalID = canonical.ID

	patch := canonicalPatch(identity, canonical)
	if !patch.IsEmpty() {
		// Snapshot before the write so a contaminating side effect can be
		// detected and undone afterwards.
		snapshot := identity.Snapshot()

		if _, err := s.profileRepo.Update(ctx, sess, canonical.ID, patch); err != nil {
			logger.Error("Canonical profile update failed, will retry next cycle", err, map[string]interface{}{
				"user_id":    sess.UserID,
				"profile_id": canonical.ID,
			})
		} else {
			result.UpdatedCanonical = true
			result.RolledBackFields = s.rollbackContamination(ctx, sess.UserID, snapshot)
		}
	}

	result.LogosStrippedFrom = s.stripForeignLogos(ctx, sess, identity, canonical, profiles)

	if result.UpdatedCanonical || len(result.LogosStrippedFrom) > 0 {
		s.profileRepo.InvalidateCache(sess.UserID)
	}

	return result
}

// canonicalPatch builds the partial update pushing identity onto the
// canonical profile. Only non-empty identity fields are authoritative: an
// empty identity field never blanks out existing profile data. The patch is
// empty when nothing differs, which is the idempotent common case.
func canonicalPatch(identity *model.UserIdentity, canonical *model.BusinessProfile) model.ProfilePatch {
	differs := identity.DisplayName != "" && identity.DisplayName != canonical.Name ||
		identity.Phone != "" && identity.Phone != canonical.Phone ||
		identity.Email != "" && identity.Email != canonical.Email ||
		identity.Address != "" && identity.Address != canonical.Address ||
		identity.Website != "" && identity.Website != canonical.Website ||
		identity.Category != "" && identity.Category != canonical.Category ||
		identity.Description != "" && identity.Description != canonical.Description ||
		identity.AlternatePhone != "" && identity.AlternatePhone != canonical.AlternatePhone ||
		identity.LogoURL != "" && identity.LogoURL != canonical.Logo()

	if !differs {
		return model.ProfilePatch{}
	}

	// Last-writer-wins: push all of identity's current non-empty values in
	// one partial update.
	patch := model.ProfilePatch{}
	if identity.DisplayName != "" {
		patch.Name = &identity.DisplayName
	}
	if identity.Phone != "" {
		patch.Phone = &identity.Phone
	}
	if identity.Email != "" {
		patch.Email = &identity.Email
	}
	if identity.Address != "" {
		patch.Address = &identity.Address
	}
	if identity.Website != "" {
		patch.Website = &identity.Website
	}
	if identity.Category != "" {
		patch.Category = &identity.Category
	}
	if identity.Description != "" {
		patch.Description = &identity.Description
	}
	if identity.AlternatePhone != "" {
		patch.AlternatePhone = &identity.AlternatePhone
	}
	if identity.LogoURL != "" {
		patch.LogoURL = &identity.LogoURL
	}
	return patch
}

// rollbackContamination re-reads the identity after the canonical write and
// restores exactly the fields an unrelated write path overwrote, leaving
// concurrent legitimate edits to other fields untouched. Returns the names
// of the restored fields.
func (s *reconcilerService) rollbackContamination(ctx context.Context, userID string, snapshot model.IdentitySnapshot) []string {
	current, err := s.identities.Get(ctx, userID)
	if err != nil {
		logger.Error("Failed to re-read identity for contamination check", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil
	}

	var (
		patch    model.IdentityPatch
		restored []string
	)
	if current.Address != snapshot.Address {
		patch.Address = ptr(snapshot.Address)
		restored = append(restored, "address")
	}
	if current.Website != snapshot.Website {
		patch.Website = ptr(snapshot.Website)
		restored = append(restored, "website")
	}
	if current.Category != snapshot.Category {
		patch.Category = ptr(snapshot.Category)
		restored = append(restored, "category")
	}
	if current.Description != snapshot.Description {
		patch.Description = ptr(snapshot.Description)
		restored = append(restored, "description")
	}
	if current.AlternatePhone != snapshot.AlternatePhone {
		patch.AlternatePhone = ptr(snapshot.AlternatePhone)
		restored = append(restored, "alternatePhone")
	}

	if patch.IsEmpty() {
		return nil
	}

	logger.Warn("Identity contamination detected, rolling back", map[string]interface{}{
		"user_id": userID,
		"fields":  restored,
	})

	if _, err := s.identities.Apply(ctx, userID, patch); err != nil {
		logger.Error("Failed to roll back contaminated identity fields", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil
	}
	return restored
}

// stripForeignLogos clears the user's personal logo from every non-canonical
// profile that carries it. Best effort with per-item isolation: one failure
// does not stop the rest.
func (s *reconcilerService) stripForeignLogos(ctx context.Context, sess model.Session, identity *model.UserIdentity, canonical *model.BusinessProfile, profiles []model.BusinessProfile) []string {
	if identity.LogoURL == "" {
		return nil
	}

	var stripped []string
	for i := range profiles {
		p := &profiles[i]
		if p.ID == canonical.ID || p.Logo() != identity.LogoURL {
			continue
		}

		if err := s.profileRepo.ClearLogo(ctx, sess, p.ID); err != nil {
			logger.Error("Failed to strip logo from profile", err, map[string]interface{}{
				"user_id":    sess.UserID,
				"profile_id": p.ID,
			})
			continue
		}
		stripped = append(stripped, p.ID)
	}

	if len(stripped) > 0 {
		logger.Info("Stripped personal logo from non-canonical profiles", map[string]interface{}{
			"user_id":     sess.UserID,
			"profile_ids": stripped,
		})
	}
	return stripped
}

func ptr(s string) *string {
	return &s
}
