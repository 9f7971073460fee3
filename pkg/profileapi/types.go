package profileapi

import (
	"encoding/json"
	"time"
)

// envelope is the standard upstream response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// Profile is a business profile as the upstream wire format represents it.
// The upstream calls the display name "businessName" and the logo "logo";
// mapping to the service's own model happens in the repository layer.
type Profile struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	BusinessName   string    `json:"businessName"`
	Category       string    `json:"category"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	AlternatePhone string    `json:"alternatePhone"`
	Email          string    `json:"email"`
	Website        string    `json:"website"`
	Description    string    `json:"description"`
	Logo           string    `json:"logo"`
	CompanyLogo    string    `json:"companyLogo,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type profileList struct {
	Profiles []Profile `json:"profiles"`
}

// CreateProfileRequest creates a new business profile upstream.
type CreateProfileRequest struct {
	BusinessName   string `json:"businessName"`
	Category       string `json:"category"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	AlternatePhone string `json:"alternatePhone,omitempty"`
	Email          string `json:"email"`
	Website        string `json:"website,omitempty"`
	Description    string `json:"description,omitempty"`
	Logo           string `json:"logo,omitempty"`
}

// ProfilePatch is a partial update. Values set to nil are serialized as JSON
// null, which the upstream treats as "clear the field".
type ProfilePatch map[string]interface{}

// CreateOrderRequest asks the upstream to create a payment order.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Order is the upstream payment order handed to the checkout SDK.
type Order struct {
	OrderID       string `json:"orderId"`
	AmountInPaise int64  `json:"amountInPaise"`
	Currency      string `json:"currency"`
	RazorpayKey   string `json:"razorpayKey"`
}

// VerifyPaymentRequest submits a checkout result for server-side verification.
// Amount and currency echo the current order context to guard against
// stale-order replay.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	Amount    int64  `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Type      string `json:"type"`
}

// VerifyPaymentResponse reports the verification outcome.
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PaymentStatusResponse reports whether the user's pending order context has
// a completed payment.
type PaymentStatusResponse struct {
	HasPaid bool `json:"hasPaid"`
}
