package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/quill-labs/qbconnect/internal/core/domain"
	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
	"github.com/quill-labs/qbconnect/internal/core/ports/driving"
)

// Ensure booksService implements BooksService
var _ driving.BooksService = (*booksService)(nil)

// booksService loads a realm's stored credential and issues
// authenticated downstream calls. Expired tokens are not refreshed;
// expiry is visible through ConnectService.Status.
type booksService struct {
	credentials driven.CredentialStore
	api         driven.BooksAPI
	logger      *slog.Logger
}

// NewBooksService creates a new books service.
func NewBooksService(credentials driven.CredentialStore, api driven.BooksAPI, logger *slog.Logger) driving.BooksService {
	if logger == nil {
		logger = slog.Default()
	}
	return &booksService{
		credentials: credentials,
		api:         api,
		logger:      logger,
	}
}

// CompanyInfo fetches the company record for a realm.
func (s *booksService) CompanyInfo(ctx context.Context, realmID string) (json.RawMessage, error) {
	cred, err := s.credential(ctx, realmID)
	if err != nil {
		return nil, err
	}
	return s.api.CompanyInfo(ctx, cred.AccessToken, cred.RealmID)
}

// Query runs a QBO query for a realm.
func (s *booksService) Query(ctx context.Context, realmID, query string) (json.RawMessage, error) {
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	cred, err := s.credential(ctx, realmID)
	if err != nil {
		return nil, err
	}
	return s.api.Query(ctx, cred.AccessToken, cred.RealmID, query)
}

// Report runs a named report for a realm.
func (s *booksService) Report(ctx context.Context, realmID, name string, params url.Values) (json.RawMessage, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	cred, err := s.credential(ctx, realmID)
	if err != nil {
		return nil, err
	}
	return s.api.Report(ctx, cred.AccessToken, cred.RealmID, name, params)
}

// credential resolves the stored credential for a realm. An empty realm
// falls back to the most recent connection (single-tenant deployments).
func (s *booksService) credential(ctx context.Context, realmID string) (*domain.Credential, error) {
	var cred *domain.Credential
	var err error
	if realmID == "" {
		cred, err = s.credentials.Latest(ctx)
	} else {
		cred, err = s.credentials.Get(ctx, realmID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if cred.Expired() {
		// Still attempt the call; the provider is authoritative. The
		// log line gives operators a prompt to re-authorize.
		s.logger.Warn("access token past expiry", "realm_id", cred.RealmID)
	}
	return cred, nil
}
