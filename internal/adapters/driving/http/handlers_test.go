package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/quill-labs/qbconnect/internal/core/domain"
	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
	"github.com/quill-labs/qbconnect/internal/core/ports/driving"
)

// stubAuthService implements driving.AuthService for testing
type stubAuthService struct{}

func (s *stubAuthService) Login(ctx context.Context, req driving.LoginRequest) (*driving.LoginResponse, error) {
	if req.Password != "correct-password" {
		return nil, domain.ErrInvalidCredentials
	}
	return &driving.LoginResponse{
		Token:     "valid-token",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	if token != "valid-token" {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.TokenClaims{Subject: "operator"}, nil
}

// stubConnectService implements driving.ConnectService for testing
type stubConnectService struct {
	callbackResp *driving.CallbackResponse
	callbackErr  error
	statusResp   *driving.ConnectionStatus
	statusErr    error
}

func (s *stubConnectService) Authorize(ctx context.Context) (*driving.AuthorizeResponse, error) {
	return &driving.AuthorizeResponse{
		AuthorizationURL: "https://appcenter.intuit.com/connect/oauth2?state=test-state",
		State:            "test-state",
		ExpiresAt:        time.Now().Add(10 * time.Minute).Format(time.RFC3339),
	}, nil
}

func (s *stubConnectService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	if s.callbackErr != nil {
		return nil, s.callbackErr
	}
	return s.callbackResp, nil
}

func (s *stubConnectService) List(ctx context.Context) ([]*domain.CredentialSummary, error) {
	return nil, nil
}

func (s *stubConnectService) Status(ctx context.Context, realmID string) (*driving.ConnectionStatus, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.statusResp, nil
}

func (s *stubConnectService) Latest(ctx context.Context) (*driving.ConnectionStatus, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.statusResp, nil
}

func (s *stubConnectService) Disconnect(ctx context.Context, realmID string) error {
	return s.statusErr
}

// stubBooksService implements driving.BooksService for testing
type stubBooksService struct {
	body json.RawMessage
	err  error
}

func (s *stubBooksService) CompanyInfo(ctx context.Context, realmID string) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.body, nil
}

func (s *stubBooksService) Query(ctx context.Context, realmID, query string) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.body, nil
}

func (s *stubBooksService) Report(ctx context.Context, realmID, name string, params url.Values) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.body, nil
}

func newTestServer(connect *stubConnectService, books *stubBooksService) *Server {
	if connect == nil {
		connect = &stubConnectService{}
	}
	if books == nil {
		books = &stubBooksService{body: json.RawMessage(`{}`)}
	}
	return NewServer(DefaultConfig(), &stubAuthService{}, connect, books, nil, nil)
}

func doRequest(s *Server, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := doRequest(s, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleLogin(t *testing.T) {
	s := newTestServer(nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"password":"correct-password"}`))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp driving.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token == "" {
		t.Error("login returned empty token")
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	s := newTestServer(nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"password":"wrong"}`))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleConnect_Redirects(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := doRequest(s, "GET", "/connect", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://appcenter.intuit.com/connect/oauth2") {
		t.Errorf("Location = %q", location)
	}
	if !strings.Contains(location, "state=test-state") {
		t.Errorf("Location %q missing state", location)
	}
}

func TestHandleCallback_Success(t *testing.T) {
	connect := &stubConnectService{
		callbackResp: &driving.CallbackResponse{
			Connection: &domain.CredentialSummary{RealmID: "1234567890"},
			Message:    "Successfully connected QuickBooks company 1234567890",
		},
	}
	s := newTestServer(connect, nil)

	rec := doRequest(s, "GET", "/callback?state=test-state&code=test-code&realmId=1234567890", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "1234567890") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleCallback_InvalidState(t *testing.T) {
	connect := &stubConnectService{callbackErr: domain.ErrInvalidState}
	s := newTestServer(connect, nil)

	rec := doRequest(s, "GET", "/callback?state=bogus&code=test-code&realmId=1234567890", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "state") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleCallback_ProviderError(t *testing.T) {
	connect := &stubConnectService{
		callbackErr: &driving.OAuthError{Code: "access_denied", Description: "user declined"},
	}
	s := newTestServer(connect, nil)

	rec := doRequest(s, "GET", "/callback?error=access_denied", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "access_denied") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleCallback_MissingCode(t *testing.T) {
	connect := &stubConnectService{callbackErr: domain.ErrInvalidInput}
	s := newTestServer(connect, nil)

	rec := doRequest(s, "GET", "/callback?state=test-state", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthenticatedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(nil, nil)

	paths := []string{
		"/api/v1/connections",
		"/api/v1/connections/latest",
		"/api/v1/connections/1234567890",
		"/api/v1/company/1234567890/info",
	}
	for _, path := range paths {
		rec := doRequest(s, "GET", path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, rec.Code)
		}

		rec = doRequest(s, "GET", path, "bogus-token")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s with bad token: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestHandleListConnections(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := doRequest(s, "GET", "/api/v1/connections", "valid-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	// Empty store serializes as [] rather than null
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", rec.Body.String())
	}
}

func TestHandleConnectionStatus_NotFound(t *testing.T) {
	connect := &stubConnectService{statusErr: domain.ErrNotFound}
	s := newTestServer(connect, nil)

	rec := doRequest(s, "GET", "/api/v1/connections/unknown", "valid-token")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleLatestConnection_NotShadowed(t *testing.T) {
	// "latest" must hit the literal route, not the {realmId} wildcard
	connect := &stubConnectService{
		statusResp: &driving.ConnectionStatus{RealmID: "1234567890"},
	}
	s := newTestServer(connect, nil)

	rec := doRequest(s, "GET", "/api/v1/connections/latest", "valid-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "1234567890") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleDisconnect(t *testing.T) {
	s := newTestServer(&stubConnectService{}, nil)

	rec := doRequest(s, "DELETE", "/api/v1/connections/1234567890", "valid-token")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleCompanyInfo(t *testing.T) {
	books := &stubBooksService{body: json.RawMessage(`{"CompanyInfo":{"CompanyName":"Test Co"}}`)}
	s := newTestServer(nil, books)

	rec := doRequest(s, "GET", "/api/v1/company/1234567890/info", "valid-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Test Co") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleCompanyInfo_NotConnected(t *testing.T) {
	books := &stubBooksService{err: domain.ErrNotConnected}
	s := newTestServer(nil, books)

	rec := doRequest(s, "GET", "/api/v1/company/1234567890/info", "valid-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleQuery_UpstreamErrorPassthrough(t *testing.T) {
	books := &stubBooksService{err: &driven.APIError{StatusCode: 403, Body: `{"Fault":{}}`}}
	s := newTestServer(nil, books)

	rec := doRequest(s, "GET", "/api/v1/company/1234567890/query?q=select+*+from+Invoice", "valid-token")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestHandleQuery_MissingQuery(t *testing.T) {
	books := &stubBooksService{err: domain.ErrInvalidInput}
	s := newTestServer(nil, books)

	rec := doRequest(s, "GET", "/api/v1/company/1234567890/query", "valid-token")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
