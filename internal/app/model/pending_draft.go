package model

import "time"

// DraftSchemaVersion tags the persisted draft JSON so future formats can be
// migrated or rejected explicitly instead of misparsed.
const DraftSchemaVersion = 1

// DraftState is the pending-creation workflow state.
type DraftState string

const (
	DraftStateIdle            DraftState = "idle"
	DraftStateDraftSaved      DraftState = "draft_saved"
	DraftStateAwaitingPayment DraftState = "awaiting_payment"
	DraftStateVerifying       DraftState = "verifying"
	DraftStateCreated         DraftState = "created"
)

// PendingProfileDraft is a submitted non-canonical profile form waiting for
// payment verification. At most one exists per user; a new submission
// replaces it. The draft is the only workflow state that survives a restart.
type PendingProfileDraft struct {
	SchemaVersion int         `json:"schemaVersion"`
	Token         int64       `json:"token"`
	Form          ProfileForm `json:"formData"`
	OrderID       string      `json:"orderId,omitempty"`
	Amount        int64       `json:"amount,omitempty"`
	Currency      string      `json:"currency,omitempty"`
	// SessionToken lets the recovery loop finish the workflow after a
	// restart, when no request is carrying the bearer token.
	SessionToken string    `json:"sessionToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
