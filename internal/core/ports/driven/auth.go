package driven

import "github.com/quill-labs/qbconnect/internal/core/domain"

// AuthAdapter handles operator authentication primitives.
type AuthAdapter interface {
	// VerifyPassword checks a plaintext password against a bcrypt hash.
	VerifyPassword(password, hash string) bool

	// GenerateToken creates a signed API token from claims.
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates an API token and extracts its claims.
	// Returns domain.ErrTokenExpired or domain.ErrTokenInvalid.
	ParseToken(token string) (*domain.TokenClaims, error)
}
