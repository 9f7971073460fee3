package razorpay

// CheckoutOptions is the option block handed to the Razorpay checkout SDK on
// the device. Amount is in paise.
type CheckoutOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	OrderID     string  `json:"order_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Prefill pre-populates the checkout form from the user identity.
type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Theme styles the checkout sheet.
type Theme struct {
	Color string `json:"color,omitempty"`
}

// CheckoutResponse is the payload the SDK delivers after a successful
// checkout. Field names follow the SDK's callback contract.
type CheckoutResponse struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Validate checks that a checkout response is structurally complete.
func (r CheckoutResponse) Validate() error {
	if r.OrderID == "" || r.PaymentID == "" || r.Signature == "" {
		return ErrInvalidResponse
	}
	return nil
}
