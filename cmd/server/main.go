package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darematch/api/internal/config"
	"github.com/darematch/api/internal/database"
	"github.com/darematch/api/internal/handler"
	"github.com/darematch/api/internal/middleware"
	"github.com/darematch/api/internal/repository"
	"github.com/darematch/api/internal/service"
	"github.com/darematch/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT verification. Tokens are issued by the identity
	// provider; the server only holds its public key.
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	friendRepo := repository.NewFriendRepository(db)

	// Initialize event hub for real-time updates
	eventHub := service.NewEventHub(cfg.Game.HeartbeatInterval)
	defer eventHub.Close()

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
		UserRepo:   userRepo,
	})

	friendService := service.NewFriendService(service.FriendServiceConfig{
		FriendRepo: friendRepo,
		UserRepo:   userRepo,
		Hub:        eventHub,
	})

	challengeService := service.NewChallengeService(service.ChallengeServiceConfig{
		ChallengeRepo: challengeRepo,
		UserRepo:      userRepo,
		Friends:       friendService,
		Hub:           eventHub,
	})

	statsService := service.NewStatsService(service.StatsServiceConfig{
		StatsRepo: challengeRepo,
	})

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.Game.RateLimitPerMin,
		Window: time.Minute,
		Burst:  cfg.Game.RateLimitBurst,
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     cfg.Game.IdempotencyTTL,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Initialize handlers
	challengeHandler := handler.NewChallengeHandler(challengeService)
	friendHandler := handler.NewFriendHandler(friendService)
	statsHandler := handler.NewStatsHandler(statsService)
	eventsHandler := handler.NewEventsHandler(eventHub, challengeService)
	wsHandler := handler.NewWSHandler(eventHub, challengeService, tokenService)
	healthHandler := handler.NewHealthHandler(db)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Every /v1 route requires a verified identity; the provisioning
	// middleware creates the local user record on first sight.
	auth := middleware.Auth(tokenService)
	provision := middleware.ProvisionUser(tokenService)
	authMiddleware := func(next http.Handler) http.Handler {
		return auth(provision(next))
	}

	// Challenge endpoints
	mux.Handle("POST /v1/challenges", authMiddleware(http.HandlerFunc(challengeHandler.Propose)))
	mux.Handle("GET /v1/challenges", authMiddleware(http.HandlerFunc(challengeHandler.List)))
	mux.Handle("GET /v1/challenges/{challengeId}", authMiddleware(http.HandlerFunc(challengeHandler.Get)))
	mux.Handle("POST /v1/challenges/{challengeId}/accept", authMiddleware(http.HandlerFunc(challengeHandler.Accept)))
	mux.Handle("POST /v1/challenges/{challengeId}/reject", authMiddleware(http.HandlerFunc(challengeHandler.Reject)))
	mux.Handle("POST /v1/challenges/{challengeId}/number", authMiddleware(http.HandlerFunc(challengeHandler.SubmitNumber)))

	// Change-feed endpoints (SSE per challenge, SSE per user, WebSocket)
	mux.Handle("GET /v1/challenges/{challengeId}/events", authMiddleware(http.HandlerFunc(eventsHandler.StreamChallenge)))
	mux.Handle("GET /v1/events/stream", authMiddleware(http.HandlerFunc(eventsHandler.StreamUser)))
	// WebSocket clients may carry the token as a query parameter, so auth
	// here is optional and the handler finishes the check itself.
	mux.Handle("GET /v1/ws", middleware.OptionalAuth(tokenService)(http.HandlerFunc(wsHandler.Connect)))

	// Friend endpoints
	mux.Handle("GET /v1/friends", authMiddleware(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("DELETE /v1/friends/{friendId}", authMiddleware(http.HandlerFunc(friendHandler.RemoveFriend)))
	mux.Handle("POST /v1/friends/requests", authMiddleware(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("GET /v1/friends/requests", authMiddleware(http.HandlerFunc(friendHandler.ListRequests)))
	mux.Handle("POST /v1/friends/requests/{requestId}/accept", authMiddleware(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("POST /v1/friends/requests/{requestId}/reject", authMiddleware(http.HandlerFunc(friendHandler.RejectRequest)))
	mux.Handle("DELETE /v1/friends/requests/{requestId}", authMiddleware(http.HandlerFunc(friendHandler.CancelRequest)))

	// Friend code endpoints
	mux.Handle("GET /v1/friends/code", authMiddleware(http.HandlerFunc(friendHandler.GetFriendCode)))
	mux.Handle("POST /v1/friends/code/regenerate", authMiddleware(http.HandlerFunc(friendHandler.RegenerateFriendCode)))
	mux.Handle("GET /v1/friends/code/qr", authMiddleware(http.HandlerFunc(friendHandler.FriendCodeQR)))
	mux.Handle("GET /v1/friends/code/{code}", authMiddleware(http.HandlerFunc(friendHandler.LookupByCode)))

	// Stats endpoints
	mux.Handle("GET /v1/stats/me", authMiddleware(http.HandlerFunc(statsHandler.Me)))
	mux.Handle("GET /v1/stats/global", authMiddleware(http.HandlerFunc(statsHandler.Global)))
	mux.Handle("GET /v1/stats/numbers/top", authMiddleware(http.HandlerFunc(statsHandler.TopNumbers)))
	mux.Handle("GET /v1/stats/pairs/top", authMiddleware(http.HandlerFunc(statsHandler.TopPairs)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
