package model

import "time"

// UserIdentity is the user's identity record, the authoritative source for
// the canonical business profile's fields. It is written by sign-in, profile
// edit, and the reconciler's rollback path only.
type UserIdentity struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"displayName"`
	Phone          string    `json:"phone"`
	AlternatePhone string    `json:"alternatePhone,omitempty"`
	Email          string    `json:"email"`
	Address        string    `json:"address,omitempty"`
	Website        string    `json:"website,omitempty"`
	Category       string    `json:"category,omitempty"`
	Description    string    `json:"description,omitempty"`
	LogoURL        string    `json:"logoUrl,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// IdentitySnapshot is an immutable value copy of the identity-derived fields,
// taken immediately before a profile mutation. Used only for contamination
// detection and discarded after use.
type IdentitySnapshot struct {
	DisplayName    string
	Phone          string
	AlternatePhone string
	Email          string
	Address        string
	Website        string
	Category       string
	Description    string
	LogoURL        string
}

// Snapshot copies the identity-derived fields by value.
func (u *UserIdentity) Snapshot() IdentitySnapshot {
	return IdentitySnapshot{
		DisplayName:    u.DisplayName,
		Phone:          u.Phone,
		AlternatePhone: u.AlternatePhone,
		Email:          u.Email,
		Address:        u.Address,
		Website:        u.Website,
		Category:       u.Category,
		Description:    u.Description,
		LogoURL:        u.LogoURL,
	}
}

// IdentityPatch is a partial identity update. Nil fields are left untouched,
// which is what lets the rollback path restore exactly the contaminated
// fields without clobbering concurrent legitimate edits.
type IdentityPatch struct {
	DisplayName    *string
	Phone          *string
	AlternatePhone *string
	Email          *string
	Address        *string
	Website        *string
	Category       *string
	Description    *string
	LogoURL        *string
}

// IsEmpty reports whether the patch would change nothing.
func (p IdentityPatch) IsEmpty() bool {
	return p.DisplayName == nil && p.Phone == nil && p.AlternatePhone == nil &&
		p.Email == nil && p.Address == nil && p.Website == nil &&
		p.Category == nil && p.Description == nil && p.LogoURL == nil
}

// Apply mutates the identity in place with the patch's non-nil fields.
func (p IdentityPatch) Apply(u *UserIdentity) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.AlternatePhone != nil {
		u.AlternatePhone = *p.AlternatePhone
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Website != nil {
		u.Website = *p.Website
	}
	if p.Category != nil {
		u.Category = *p.Category
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.LogoURL != nil {
		u.LogoURL = *p.LogoURL
	}
}

// Session carries the caller's identity and the bearer token this service
// forwards to the upstream API.
type Session struct {
	UserID string
	Token  string
}
