package domain

import "time"

// Credential is the durable OAuth credential for one QuickBooks company.
// At most one live Credential exists per realm; a later successful
// authorization flow for the same realm replaces it.
type Credential struct {
	// RealmID is Intuit's company identifier. It keys the credential.
	RealmID string `json:"realm_id"`

	// AccessToken is the short-lived bearer credential for API calls.
	AccessToken string `json:"access_token"`

	// RefreshToken is the longer-lived credential. Stored but never
	// exercised automatically; refresh scheduling is out of scope.
	RefreshToken string `json:"refresh_token"`

	// TokenType is the provider's token type, normally "bearer".
	TokenType string `json:"token_type"`

	// ObtainedAt is when the exchange completed.
	ObtainedAt time.Time `json:"obtained_at"`

	// ExpiresAt is ObtainedAt plus the provider's expires_in.
	ExpiresAt time.Time `json:"expires_at"`

	// UpdatedAt is the last persistence write.
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the access token is past its expiry.
// Callers decide whether to force re-authorization; the connector never
// refreshes on its own.
func (c *Credential) Expired() bool {
	return c.ExpiredAt(time.Now())
}

// ExpiredAt reports expiry relative to the given instant.
func (c *Credential) ExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ToSummary returns a view of the credential without secrets.
func (c *Credential) ToSummary() *CredentialSummary {
	return &CredentialSummary{
		RealmID:    c.RealmID,
		TokenType:  c.TokenType,
		ObtainedAt: c.ObtainedAt,
		ExpiresAt:  c.ExpiresAt,
		Expired:    c.Expired(),
	}
}

// CredentialSummary is the secret-free representation returned by the API.
type CredentialSummary struct {
	RealmID    string    `json:"realm_id"`
	TokenType  string    `json:"token_type"`
	ObtainedAt time.Time `json:"obtained_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Expired    bool      `json:"expired"`
}
