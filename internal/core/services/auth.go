package services

import (
	"context"
	"time"

	"github.com/quill-labs/qbconnect/internal/core/domain"
	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
	"github.com/quill-labs/qbconnect/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// DefaultTokenTTL is the API token lifetime when none is configured.
const DefaultTokenTTL = time.Hour

// authService authenticates the single operator identity against a
// bcrypt password hash and issues short-lived API tokens.
type authService struct {
	adapter      driven.AuthAdapter
	passwordHash string
	tokenTTL     time.Duration
}

// NewAuthService creates a new auth service. passwordHash is the bcrypt
// hash of the operator password.
func NewAuthService(adapter driven.AuthAdapter, passwordHash string, tokenTTL time.Duration) driving.AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &authService{
		adapter:      adapter,
		passwordHash: passwordHash,
		tokenTTL:     tokenTTL,
	}
}

// Login checks the operator password and issues an API token.
func (s *authService) Login(ctx context.Context, req driving.LoginRequest) (*driving.LoginResponse, error) {
	if !s.adapter.VerifyPassword(req.Password, s.passwordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	claims := &domain.TokenClaims{
		Subject:   "operator",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	}

	token, err := s.adapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	return &driving.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// ValidateToken parses and validates a bearer token.
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	return s.adapter.ParseToken(token)
}
