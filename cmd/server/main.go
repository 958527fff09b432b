package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"huddl/internal/auth/apple"
	"huddl/internal/auth/google"
	"huddl/internal/auth/jwks"
	"huddl/internal/config"
	"huddl/internal/domain"
	"huddl/internal/handler"
	"huddl/internal/port"
	"huddl/internal/repository/postgres"
	"huddl/internal/router"
	"huddl/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)

	// One long-lived key cache per provider, refreshed proactively for the
	// lifetime of the process.
	httpClient := &http.Client{Timeout: cfg.Social.FetchTimeout}
	googleKeys := jwks.NewCache(google.JWKSURL,
		jwks.WithRefreshInterval(cfg.Social.JWKSRefresh),
		jwks.WithHTTPClient(httpClient))
	appleKeys := jwks.NewCache(apple.JWKSURL,
		jwks.WithRefreshInterval(cfg.Social.JWKSRefresh),
		jwks.WithHTTPClient(httpClient))
	googleKeys.Start(ctx)
	appleKeys.Start(ctx)

	verifiers := map[domain.AuthProvider]port.SocialTokenVerifier{
		domain.AuthProviderGoogle: google.NewVerifier(cfg.Social.GoogleClientID, googleKeys),
		domain.AuthProviderApple:  apple.NewVerifier(cfg.Social.AppleClientID, appleKeys),
	}

	// Initialize services
	tokenSvc := service.NewTokenService(cfg.JWT)
	socialSvc := service.NewSocialAuthService(verifiers, userRepo, tokenSvc)

	// Initialize handlers
	authH := handler.NewAuthHandler(socialSvc, cfg.Social.IncludeUser)
	userH := handler.NewUserHandler(userRepo)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, tokenSvc, authH, userH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
