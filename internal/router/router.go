package router

import (
	"github.com/gin-gonic/gin"

	"huddl/internal/config"
	"huddl/internal/handler"
	"huddl/internal/middleware"
	"huddl/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	tokenSvc service.TokenService,
	authH *handler.AuthHandler,
	userH *handler.UserHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Social sign-in. Trailing slashes are part of the wire contract.
	auth := r.Group("/auth")
	auth.POST("/google/", authH.GoogleSignIn)
	auth.POST("/apple/", authH.AppleSignIn)
	auth.GET("/me", middleware.Auth(tokenSvc), userH.Me)

	return r
}
