package driving

import (
	"context"
	"fmt"
	"time"

	"github.com/quill-labs/qbconnect/internal/core/domain"
)

// ConnectService orchestrates the QuickBooks authorization flow:
// build authorize URL, validate the callback, exchange the code, and
// persist the resulting credential. Each browser-initiated attempt is an
// independent logical flow distinguished by its state value.
type ConnectService interface {
	// Authorize starts an authorization attempt. It issues a state
	// token, stores it, and returns the provider redirect URL. The
	// caller performs the actual redirect.
	Authorize(ctx context.Context) (*AuthorizeResponse, error)

	// Callback handles the provider redirect. It consumes the state,
	// exchanges the code, and upserts the credential for the realm.
	// The upsert is the single commit point: on any earlier failure
	// nothing durable is written.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResponse, error)

	// List returns secret-free summaries of all connections.
	List(ctx context.Context) ([]*domain.CredentialSummary, error)

	// Status reports the connection for one realm, including expiry,
	// so a caller can decide whether to force re-authorization.
	Status(ctx context.Context, realmID string) (*ConnectionStatus, error)

	// Latest reports the most recently connected realm. Single-tenant
	// convenience; multi-tenant deployments should use Status.
	Latest(ctx context.Context) (*ConnectionStatus, error)

	// Disconnect revokes the stored credential for a realm.
	Disconnect(ctx context.Context, realmID string) error
}

// AuthorizeResponse carries the redirect URL for a new attempt.
type AuthorizeResponse struct {
	// AuthorizationURL is where the user's browser should be sent.
	AuthorizationURL string `json:"authorization_url"`

	// State is the issued CSRF token, already embedded in the URL.
	State string `json:"state"`

	// ExpiresAt is when the attempt stops being valid (RFC3339).
	ExpiresAt string `json:"expires_at"`
}

// CallbackRequest carries the provider redirect parameters.
type CallbackRequest struct {
	// State is the round-tripped CSRF token.
	State string

	// Code is the single-use authorization code.
	Code string

	// RealmID is the company identifier Intuit appends to the redirect.
	RealmID string

	// Error and ErrorDescription are set when the provider rejected the
	// authorization (e.g. the user denied consent).
	Error            string
	ErrorDescription string
}

// CallbackResponse reports a completed flow.
type CallbackResponse struct {
	Connection *domain.CredentialSummary `json:"connection"`
	Message    string                    `json:"message"`
}

// ConnectionStatus exposes the stored credential's lifecycle without
// its secrets.
type ConnectionStatus struct {
	RealmID    string    `json:"realm_id"`
	TokenType  string    `json:"token_type"`
	ObtainedAt time.Time `json:"obtained_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Expired    bool      `json:"expired"`
}

// OAuthError reports a provider-side failure: the user denied consent,
// or the code exchange was rejected. The description preserves the
// provider's detail when available.
type OAuthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *OAuthError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("oauth error: %s", e.Code)
	}
	return fmt.Sprintf("oauth error: %s - %s", e.Code, e.Description)
}
