package model

import (
	"errors"
	"sort"
	"time"
)

// BusinessProfile is a business profile as this service models it. The
// oldest profile of a user is the canonical one: the profile created at
// registration, kept in sync with the user identity.
type BusinessProfile struct {
	ID             string    `json:"id"`
	OwnerUserID    string    `json:"ownerUserId"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	AlternatePhone string    `json:"alternatePhone,omitempty"`
	Email          string    `json:"email"`
	Website        string    `json:"website,omitempty"`
	Description    string    `json:"description,omitempty"`
	LogoURL        string    `json:"logoUrl,omitempty"`
	CompanyLogoURL string    `json:"companyLogoUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Logo returns the effective logo URL; either representation is acceptable
// as source-of-truth on read.
func (p *BusinessProfile) Logo() string {
	if p.LogoURL != "" {
		return p.LogoURL
	}
	return p.CompanyLogoURL
}

// Canonical returns the canonical profile: minimum createdAt, ties broken by
// the lexicographically smallest id so the choice is deterministic for any
// ordering of the input. Returns nil for an empty set.
func Canonical(profiles []BusinessProfile) *BusinessProfile {
	if len(profiles) == 0 {
		return nil
	}

	canonical := &profiles[0]
	for i := 1; i < len(profiles); i++ {
		p := &profiles[i]
		if p.CreatedAt.Before(canonical.CreatedAt) ||
			(p.CreatedAt.Equal(canonical.CreatedAt) && p.ID < canonical.ID) {
			canonical = p
		}
	}
	return canonical
}

// SortOldestFirst orders profiles by creation time so the canonical profile
// stays at index 0, the order the app renders.
func SortOldestFirst(profiles []BusinessProfile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].ID < profiles[j].ID
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
}

// ProfileForm is user-submitted profile data, validated before anything is
// persisted or sent upstream.
type ProfileForm struct {
	Name           string `json:"name" binding:"required"`
	Category       string `json:"category" binding:"required"`
	Address        string `json:"address" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	AlternatePhone string `json:"alternatePhone,omitempty"`
	Email          string `json:"email" binding:"required,email"`
	Website        string `json:"website,omitempty"`
	Description    string `json:"description,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
}

var ErrInvalidForm = errors.New("malformed profile form")

// Validate checks the required fields.
func (f ProfileForm) Validate() error {
	if f.Name == "" || f.Category == "" || f.Address == "" || f.Phone == "" || f.Email == "" {
		return ErrInvalidForm
	}
	return nil
}

// ProfilePatch is a partial profile update. Nil fields are untouched;
// ClearLogo sends an explicit null for the logo.
type ProfilePatch struct {
	Name           *string
	Category       *string
	Address        *string
	Phone          *string
	AlternatePhone *string
	Email          *string
	Website        *string
	Description    *string
	LogoURL        *string
	ClearLogo      bool
}

// IsEmpty reports whether the patch would change nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Address == nil &&
		p.Phone == nil && p.AlternatePhone == nil && p.Email == nil &&
		p.Website == nil && p.Description == nil && p.LogoURL == nil &&
		!p.ClearLogo
}
