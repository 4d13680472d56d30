package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quill-labs/qbconnect/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService    driving.AuthService
	connectService driving.ConnectService
	booksService   driving.BooksService

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	connectService driving.ConnectService,
	booksService driving.BooksService,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		authService:    authService,
		connectService: connectService,
		booksService:   booksService,
		db:             db,
		redisClient:    redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.middleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// middleware wraps the router with the shared middleware chain.
func (s *Server) middleware(next http.Handler) http.Handler {
	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()
	return recovery.Handler(logging.Handler(next))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Operator login (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// OAuth flow. /connect starts the browser redirect; /callback
	// receives the provider redirect, so both are public.
	s.router.HandleFunc("GET /connect", s.handleConnect)
	s.router.HandleFunc("GET /callback", s.handleCallback)

	// Connection management (authenticated)
	s.router.Handle("GET /api/v1/connections",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListConnections)))
	s.router.Handle("GET /api/v1/connections/latest",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLatestConnection)))
	s.router.Handle("GET /api/v1/connections/{realmId}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleConnectionStatus)))
	s.router.Handle("DELETE /api/v1/connections/{realmId}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDisconnect)))

	// Downstream QuickBooks calls (authenticated)
	s.router.Handle("GET /api/v1/company/{realmId}/info",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCompanyInfo)))
	s.router.Handle("GET /api/v1/company/{realmId}/query",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleQuery)))
	s.router.Handle("GET /api/v1/company/{realmId}/reports/{name}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleReport)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
