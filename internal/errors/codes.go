package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The mobile app maps these codes to user-facing messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // login required
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // token expired
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // malformed or forged token

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // bad request body
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // bad id
	ValidationRequired      = "VALIDATION_REQUIRED"       // missing required field
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // malformed field value

	// ==================== Profiles (PROFILE_) ====================
	ProfileNotFound       = "PROFILE_NOT_FOUND"       // no such business profile
	ProfileUpdateFailed   = "PROFILE_UPDATE_FAILED"   // upstream update rejected
	ProfileDeleteFailed   = "PROFILE_DELETE_FAILED"   // upstream delete rejected
	ProfileCanonicalOnly  = "PROFILE_CANONICAL_ONLY"  // operation reserved for the canonical profile
	IdentityNotFound      = "IDENTITY_NOT_FOUND"      // no identity record for user

	// ==================== Drafts (DRAFT_) ====================
	DraftNotFound = "DRAFT_NOT_FOUND" // no pending profile draft
	DraftStale    = "DRAFT_STALE"     // payment confirmed for a replaced draft

	// ==================== Payments (PAYMENT_) ====================
	PaymentOrderFailed        = "PAYMENT_ORDER_FAILED"        // order creation failed
	PaymentVerificationFailed = "PAYMENT_VERIFICATION_FAILED" // signature/amount mismatch or rejection
	PaymentCallbackInvalid    = "PAYMENT_CALLBACK_INVALID"    // incomplete checkout payload
	PaymentAlreadyVerifying   = "PAYMENT_ALREADY_VERIFYING"   // a verification is already in flight

	// ==================== Network (NETWORK_) ====================
	NetworkUpstreamError = "NETWORK_UPSTREAM_ERROR" // upstream API unreachable or failing

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // unexpected server error
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // database failure
	InternalStoreError    = "INTERNAL_STORE_ERROR"    // redis/key-value store failure
)
