package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState indicates the OAuth state is unknown, expired, or
	// already consumed. The authorization code must never be exchanged
	// for such a request.
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrNotConnected indicates no stored credential exists for the realm.
	// The caller must run the authorization flow again.
	ErrNotConnected = errors.New("company not connected")

	// ErrInvalidCredentials indicates a wrong operator password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired indicates the API token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the API token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")
)
