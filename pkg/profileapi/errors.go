package profileapi

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the bearer token is rejected upstream
	ErrUnauthorized = errors.New("unauthorized: invalid bearer token")

	// ErrNotFound is returned when the upstream resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrUpstream is returned for any other upstream failure
	ErrUpstream = errors.New("upstream API error")

	// ErrUnsuccessful is returned when the upstream envelope reports success=false
	ErrUnsuccessful = errors.New("upstream returned unsuccessful response")
)
