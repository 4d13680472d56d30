package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quill-labs/qbconnect/internal/core/domain"
	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
	"github.com/quill-labs/qbconnect/internal/core/ports/driving"
)

// Ensure connectService implements ConnectService
var _ driving.ConnectService = (*connectService)(nil)

// DefaultStateTTL bounds how long an authorization attempt stays valid.
const DefaultStateTTL = 10 * time.Minute

// ConnectServiceConfig holds configuration for the connect service.
type ConnectServiceConfig struct {
	// StateStore manages CSRF state for in-flight attempts.
	StateStore driven.StateStore

	// CredentialStore persists credentials per realm.
	CredentialStore driven.CredentialStore

	// Exchanger performs the code exchange with Intuit.
	Exchanger driven.TokenExchanger

	// BaseURL is the public base URL used to build the callback URI.
	// Example: "https://books.example.com"
	BaseURL string

	// StateTTL overrides DefaultStateTTL when positive.
	StateTTL time.Duration

	// Logger receives flow-level events. Defaults to slog.Default().
	Logger *slog.Logger
}

// connectService implements the ConnectService interface.
type connectService struct {
	states      driven.StateStore
	credentials driven.CredentialStore
	exchanger   driven.TokenExchanger
	baseURL     string
	stateTTL    time.Duration
	logger      *slog.Logger
}

// NewConnectService creates a new connect service.
func NewConnectService(cfg ConnectServiceConfig) driving.ConnectService {
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &connectService{
		states:      cfg.StateStore,
		credentials: cfg.CredentialStore,
		exchanger:   cfg.Exchanger,
		baseURL:     cfg.BaseURL,
		stateTTL:    ttl,
		logger:      logger,
	}
}

// Authorize starts an authorization attempt. It issues a single-use
// state token, stores it with an expiry, and returns the provider URL.
func (s *connectService) Authorize(ctx context.Context) (*driving.AuthorizeResponse, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	redirectURI := s.baseURL + "/callback"
	now := time.Now()
	expiresAt := now.Add(s.stateTTL)

	authState := &driven.AuthState{
		State:       state,
		RedirectURI: redirectURI,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}
	if err := s.states.Save(ctx, authState); err != nil {
		return nil, fmt.Errorf("save oauth state: %w", err)
	}

	return &driving.AuthorizeResponse{
		AuthorizationURL: s.exchanger.AuthorizationURL(state, redirectURI),
		State:            state,
		ExpiresAt:        expiresAt.Format(time.RFC3339),
	}, nil
}

// Callback handles the provider redirect. Order matters: the state is
// consumed before anything else, so a replayed or forged callback never
// reaches the token endpoint, and the credential upsert is the single
// commit point.
func (s *connectService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	// Provider rejected the authorization (user denied, bad scopes, ...)
	if req.Error != "" {
		return nil, &driving.OAuthError{
			Code:        req.Error,
			Description: req.ErrorDescription,
		}
	}

	// Validate and consume state (single-use)
	authState, err := s.states.GetAndDelete(ctx, req.State)
	if err != nil {
		return nil, fmt.Errorf("get oauth state: %w", err)
	}
	if authState == nil {
		return nil, domain.ErrInvalidState
	}

	if req.Code == "" || req.RealmID == "" {
		return nil, domain.ErrInvalidInput
	}

	grant, err := s.exchanger.Exchange(ctx, req.Code, authState.RedirectURI)
	if err != nil {
		var exchErr *driven.ExchangeError
		if errors.As(err, &exchErr) {
			return nil, &driving.OAuthError{
				Code:        "exchange_failed",
				Description: exchErr.Error(),
			}
		}
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	now := time.Now()
	cred := &domain.Credential{
		RealmID:      req.RealmID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		TokenType:    grant.TokenType,
		ObtainedAt:   now,
		ExpiresAt:    now.Add(time.Duration(grant.ExpiresIn) * time.Second),
	}
	if err := s.credentials.Upsert(ctx, cred); err != nil {
		// The exchange succeeded but nothing durable exists; report
		// failure so the caller does not believe it is connected.
		return nil, fmt.Errorf("save credential: %w", err)
	}

	s.logger.Info("quickbooks company connected",
		"realm_id", req.RealmID,
		"expires_at", cred.ExpiresAt)

	return &driving.CallbackResponse{
		Connection: cred.ToSummary(),
		Message:    fmt.Sprintf("Successfully connected QuickBooks company %s", req.RealmID),
	}, nil
}

// List returns summaries of all stored connections.
func (s *connectService) List(ctx context.Context) ([]*domain.CredentialSummary, error) {
	return s.credentials.List(ctx)
}

// Status reports the connection for one realm.
func (s *connectService) Status(ctx context.Context, realmID string) (*driving.ConnectionStatus, error) {
	cred, err := s.credentials.Get(ctx, realmID)
	if err != nil {
		return nil, err
	}
	return statusFromCredential(cred), nil
}

// Latest reports the most recently connected realm.
func (s *connectService) Latest(ctx context.Context) (*driving.ConnectionStatus, error) {
	cred, err := s.credentials.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return statusFromCredential(cred), nil
}

// Disconnect revokes the stored credential for a realm.
func (s *connectService) Disconnect(ctx context.Context, realmID string) error {
	if err := s.credentials.Delete(ctx, realmID); err != nil {
		return err
	}
	s.logger.Info("quickbooks company disconnected", "realm_id", realmID)
	return nil
}

func statusFromCredential(cred *domain.Credential) *driving.ConnectionStatus {
	return &driving.ConnectionStatus{
		RealmID:    cred.RealmID,
		TokenType:  cred.TokenType,
		ObtainedAt: cred.ObtainedAt,
		ExpiresAt:  cred.ExpiresAt,
		Expired:    cred.Expired(),
	}
}

// generateState returns a URL-safe random token with 256 bits of entropy.
func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
