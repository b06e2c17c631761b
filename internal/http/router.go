package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/Baragji/Blueprint-creator/internal/config"
	"github.com/Baragji/Blueprint-creator/internal/http/handler"
	httpmiddleware "github.com/Baragji/Blueprint-creator/internal/http/middleware"
	"github.com/Baragji/Blueprint-creator/internal/middleware"
	"github.com/Baragji/Blueprint-creator/internal/store"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(
	cfg config.Config,
	logger *zap.Logger,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *httpmiddleware.Auth,
	limiterStore store.Store,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	limited := middleware.RateLimit(limiterStore, logger, cfg.RateLimitWindow, cfg.RateLimitMax)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", limited, authHandler.Register)
		authGroup.POST("/login", limited, authHandler.Login)
		authGroup.POST("/refresh", limited, authHandler.Refresh)
		authGroup.POST("/logout", authMiddleware.OptionalAuth, authHandler.Logout)
		authGroup.GET("/me", authMiddleware.RequireAuth, authHandler.Me)
	}

	r.GET("/health", healthHandler.Health)

	return r
}
