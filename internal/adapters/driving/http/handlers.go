package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quill-labs/qbconnect/internal/core/domain"
	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
	"github.com/quill-labs/qbconnect/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin authenticates the operator and returns an API token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req driving.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// OAuth flow endpoints

// handleConnect starts an authorization attempt and redirects the
// browser to Intuit.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	resp, err := s.connectService.Authorize(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start authorization")
		return
	}

	http.Redirect(w, r, resp.AuthorizationURL, http.StatusFound)
}

// handleCallback receives the provider redirect and completes the flow.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := driving.CallbackRequest{
		State:            q.Get("state"),
		Code:             q.Get("code"),
		RealmID:          q.Get("realmId"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}

	resp, err := s.connectService.Callback(r.Context(), req)
	if err != nil {
		var oauthErr *driving.OAuthError
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			writeError(w, http.StatusBadRequest, "invalid or expired state")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "missing code or realmId")
		case errors.As(err, &oauthErr):
			writeJSON(w, http.StatusBadRequest, oauthErr)
		default:
			writeError(w, http.StatusInternalServerError, "authorization failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Connection endpoints

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	connections, err := s.connectService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list connections")
		return
	}

	if connections == nil {
		connections = []*domain.CredentialSummary{}
	}
	writeJSON(w, http.StatusOK, connections)
}

func (s *Server) handleConnectionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.connectService.Status(r.Context(), r.PathValue("realmId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "connection not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get connection")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handleLatestConnection reports the most recent connection. Intended
// for single-tenant deployments only.
func (s *Server) handleLatestConnection(w http.ResponseWriter, r *http.Request) {
	status, err := s.connectService.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no connections")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get connection")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	err := s.connectService.Disconnect(r.Context(), r.PathValue("realmId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "connection not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// Downstream QuickBooks endpoints

func (s *Server) handleCompanyInfo(w http.ResponseWriter, r *http.Request) {
	body, err := s.booksService.CompanyInfo(r.Context(), r.PathValue("realmId"))
	if err != nil {
		writeBooksError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := s.booksService.Query(r.Context(), r.PathValue("realmId"), r.URL.Query().Get("q"))
	if err != nil {
		writeBooksError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	body, err := s.booksService.Report(r.Context(), r.PathValue("realmId"), r.PathValue("name"), params)
	if err != nil {
		writeBooksError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

// writeBooksError maps downstream-call failures to HTTP statuses. An
// upstream non-2xx passes its status through; everything else is 401
// (no credential), 400 (bad input), or 500.
func writeBooksError(w http.ResponseWriter, err error) {
	var apiErr *driven.APIError
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		writeError(w, http.StatusUnauthorized, "company not connected")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "missing query or report name")
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]any{
			"error":  "quickbooks api error",
			"status": apiErr.StatusCode,
			"detail": apiErr.Body,
		})
	default:
		writeError(w, http.StatusInternalServerError, "downstream call failed")
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
