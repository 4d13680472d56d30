package driven

import (
	"context"
	"fmt"
)

// TokenGrant is the transient result of a code exchange. It is never
// persisted directly; the flow maps it into a domain.Credential.
type TokenGrant struct {
	// AccessToken is the bearer credential for API calls.
	AccessToken string

	// RefreshToken is the longer-lived credential.
	RefreshToken string

	// TokenType is the provider's token type ("bearer").
	TokenType string

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int

	// RefreshExpiresIn is Intuit's x_refresh_token_expires_in, seconds.
	RefreshExpiresIn int
}

// TokenExchanger performs the authorization-code grant against the
// identity provider. Implementations never retry: authorization codes
// are single-use and a retry with a consumed code always fails.
type TokenExchanger interface {
	// AuthorizationURL builds the provider authorize URL embedding the
	// given state and redirect URI, all parameters percent-encoded.
	AuthorizationURL(state, redirectURI string) string

	// Exchange swaps the authorization code for tokens. The redirect
	// URI must match the one used in the authorization request.
	// Failures are returned as *ExchangeError.
	Exchange(ctx context.Context, code, redirectURI string) (*TokenGrant, error)
}

// ExchangeError reports a failed token exchange: a non-2xx provider
// response, a transport failure, or an unparseable body.
type ExchangeError struct {
	// StatusCode is the provider's HTTP status, 0 when the request
	// never completed.
	StatusCode int

	// Body is the provider's raw error payload when available.
	Body string

	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange failed: status %d: %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return "token exchange failed"
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}
