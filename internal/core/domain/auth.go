package domain

// TokenClaims carries the identity embedded in an API token.
// The connector has a single operator identity; there is no user store.
type TokenClaims struct {
	// Subject identifies the token holder.
	Subject string

	// IssuedAt is the Unix timestamp the token was issued.
	IssuedAt int64

	// ExpiresAt is the Unix timestamp the token expires.
	ExpiresAt int64
}
