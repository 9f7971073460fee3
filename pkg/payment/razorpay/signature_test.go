package razorpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignPayload(t *testing.T) {
	sig := SignPayload("order_abc", "pay_xyz", "secret")

	// HMAC-SHA256 is deterministic for a fixed key and payload.
	assert.Equal(t, sig, SignPayload("order_abc", "pay_xyz", "secret"))
	assert.NotEqual(t, sig, SignPayload("order_abc", "pay_xyz", "other-secret"))
	assert.Len(t, sig, 64)
}

func TestVerifySignature_Valid(t *testing.T) {
	resp := CheckoutResponse{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: SignPayload("order_abc", "pay_xyz", "secret"),
	}
	assert.NoError(t, VerifySignature(resp, "secret"))
}

func TestVerifySignature_Mismatch(t *testing.T) {
	resp := CheckoutResponse{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: SignPayload("order_other", "pay_xyz", "secret"),
	}
	assert.ErrorIs(t, VerifySignature(resp, "secret"), ErrSignatureMismatch)
}

func TestVerifySignature_IncompleteResponse(t *testing.T) {
	resp := CheckoutResponse{OrderID: "order_abc"}
	assert.ErrorIs(t, VerifySignature(resp, "secret"), ErrInvalidResponse)
}

func TestCheckoutResponse_Validate(t *testing.T) {
	assert.ErrorIs(t, CheckoutResponse{}.Validate(), ErrInvalidResponse)
	assert.NoError(t, CheckoutResponse{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: "sig",
	}.Validate())
}
