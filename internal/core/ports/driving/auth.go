package driving

import (
	"context"

	"github.com/quill-labs/qbconnect/internal/core/domain"
)

// AuthService authenticates the connector's operator and validates API
// tokens on incoming requests.
type AuthService interface {
	// Login checks the operator password and issues an API token.
	// Returns domain.ErrInvalidCredentials on mismatch.
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// ValidateToken parses and validates a bearer token.
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// LoginRequest carries the operator password.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
