package razorpay

import "errors"

// Error codes the checkout SDK reports to the app. Kept here so callback
// handlers and tests share one vocabulary.
const (
	CodePaymentCancelled = "PAYMENT_CANCELLED"
	CodeNetworkError     = "NETWORK_ERROR"
	CodeInvalidOptions   = "INVALID_OPTIONS"
)

var (
	// ErrInvalidResponse is returned when a checkout callback payload is
	// missing the order id, payment id or signature
	ErrInvalidResponse = errors.New("incomplete checkout response")

	// ErrSignatureMismatch is returned when the payment signature does not
	// match the order/payment pair
	ErrSignatureMismatch = errors.New("payment signature mismatch")

	// ErrPaymentCancelled is returned when the user dismissed the checkout
	ErrPaymentCancelled = errors.New("payment cancelled")
)
