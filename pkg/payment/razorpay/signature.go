package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayload computes the checkout signature for an order/payment pair:
// HMAC-SHA256 over "<order_id>|<payment_id>" with the key secret.
func SignPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a checkout response signature against the key
// secret. Authoritative verification still happens upstream; this is a local
// pre-check that rejects obviously forged callbacks early.
func VerifySignature(resp CheckoutResponse, secret string) error {
	if err := resp.Validate(); err != nil {
		return err
	}

	expected := SignPayload(resp.OrderID, resp.PaymentID, secret)
	if !hmac.Equal([]byte(expected), []byte(resp.Signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
