package errors

import (
	"errors"
	"strings"

	"github.com/hpatel/profilesync-backend/pkg/profileapi"
	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-presentable message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts an arbitrary error into a code/message pair, hiding
// sensitive detail while keeping enough for the app to act on.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	// 1. Upstream API errors
	switch {
	case errors.Is(err, profileapi.ErrNetworkError):
		return ErrorInfo{Code: NetworkUpstreamError, Message: "Could not reach the server, please check your connection"}
	case errors.Is(err, profileapi.ErrUnauthorized):
		return ErrorInfo{Code: AuthUnauthorized, Message: "Session expired, please sign in again"}
	case errors.Is(err, profileapi.ErrNotFound):
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	case errors.Is(err, profileapi.ErrUnsuccessful), errors.Is(err, profileapi.ErrUpstream):
		return ErrorInfo{Code: NetworkUpstreamError, Message: "The server rejected the request, please retry"}
	}

	// 2. GORM errors (transaction audit store)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	}

	// 3. Connection-level errors
	errStrLower := strings.ToLower(err.Error())
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    NetworkUpstreamError,
			Message: "External service connection failed, please try again shortly",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong, please try again later",
	}
}

func notFoundCode(context string) string {
	switch context {
	case "profile":
		return ProfileNotFound
	case "draft":
		return DraftNotFound
	case "identity":
		return IdentityNotFound
	default:
		return ProfileNotFound
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "draft":
		return "No pending profile draft"
	case "identity":
		return "No identity record for this user"
	default:
		return "Business profile not found"
	}
}
