package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	authadapter "github.com/quill-labs/qbconnect/internal/adapters/driven/auth"
	"github.com/quill-labs/qbconnect/internal/adapters/driven/intuit"
	"github.com/quill-labs/qbconnect/internal/adapters/driven/postgres"
	redisadapter "github.com/quill-labs/qbconnect/internal/adapters/driven/redis"
	httpserver "github.com/quill-labs/qbconnect/internal/adapters/driving/http"
	"github.com/quill-labs/qbconnect/internal/config"
	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
	"github.com/quill-labs/qbconnect/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// PostgreSQL
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Schema initialization failed: %v", err)
	}
	logger.Info("database connected")

	// Redis (optional). When available the OAuth state store lives in
	// Redis with key TTLs; otherwise PostgreSQL holds states and a
	// periodic sweep evicts expired rows.
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient = goredis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		logger.Info("redis connected")
	}

	var stateStore driven.StateStore
	if redisClient != nil {
		stateStore = redisadapter.NewStateStore(redisClient)
	} else {
		stateStore = postgres.NewStateStore(db.DB)
	}

	// Credential encryption at rest
	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		log.Fatalf("Encryption key error: %v", err)
	}
	encryptor, err := postgres.NewSecretEncryptor(key)
	if err != nil {
		log.Fatalf("Encryptor setup failed: %v", err)
	}
	credentialStore := postgres.NewCredentialStore(db.DB, encryptor)

	// Intuit adapters
	oauthClient := intuit.NewOAuthClient(intuit.OAuthConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
	})
	booksAPI := intuit.NewClient(cfg.APIBaseURL())

	// Services
	authSvc := services.NewAuthService(
		authadapter.NewAdapter(cfg.JWTSecret),
		cfg.AdminPasswordHash,
		cfg.TokenTTL,
	)
	connectSvc := services.NewConnectService(services.ConnectServiceConfig{
		StateStore:      stateStore,
		CredentialStore: credentialStore,
		Exchanger:       oauthClient,
		BaseURL:         cfg.BaseURL,
		StateTTL:        cfg.StateTTL,
		Logger:          logger,
	})
	booksSvc := services.NewBooksService(credentialStore, booksAPI, logger)

	// Periodic sweep of expired OAuth states. A no-op on Redis, which
	// evicts via key TTL.
	scheduler := cron.New()
	_, err = scheduler.AddFunc("@every "+cfg.StateCleanupInterval.String(), func() {
		if err := stateStore.Cleanup(context.Background()); err != nil {
			logger.Error("state cleanup failed", "error", err)
		}
	})
	if err != nil {
		log.Fatalf("Scheduler setup failed: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	var redisPinger httpserver.Pinger
	if redisClient != nil {
		redisPinger = pingAdapter{redisClient}
	}
	server := httpserver.NewServer(
		httpserver.Config{
			Host:    "0.0.0.0",
			Port:    cfg.Port,
			Version: version,
		},
		authSvc,
		connectSvc,
		booksSvc,
		db,
		redisPinger,
	)

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// pingAdapter adapts the Redis client to the server's health interface.
type pingAdapter struct {
	client *goredis.Client
}

func (p pingAdapter) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
