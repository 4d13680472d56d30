package driven

import (
	"context"
	"time"
)

// AuthState represents one in-flight authorization attempt.
// The state token is the sole CSRF defense: single-use and time-boxed.
type AuthState struct {
	// State is a cryptographically random, URL-safe token.
	State string `json:"state"`

	// RedirectURI is the callback URL the provider will redirect to.
	// Remembered so the token exchange repeats the exact same value.
	RedirectURI string `json:"redirect_uri"`

	// CreatedAt is when the state was issued.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the state stops validating (typically 10 minutes).
	ExpiresAt time.Time `json:"expires_at"`
}

// StateStore manages OAuth flow state for CSRF protection.
// States are single-use and expire after a short period.
type StateStore interface {
	// Save stores a new authorization state.
	Save(ctx context.Context, state *AuthState) error

	// GetAndDelete atomically retrieves and deletes the state.
	// Two concurrent calls for the same state value must not both
	// succeed. Returns nil, nil if the state is unknown or expired.
	GetAndDelete(ctx context.Context, state string) (*AuthState, error)

	// Cleanup evicts expired states so the store stays bounded.
	// Backends with native TTL may make this a no-op.
	Cleanup(ctx context.Context) error
}
