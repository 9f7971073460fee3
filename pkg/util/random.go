package util

import (
	"github.com/google/uuid"
)

// GenerateRequestID returns a unique id for request tracing.
func GenerateRequestID() string {
	return uuid.NewString()
}
