package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quickai-backend/internal/ai"
	googleauth "quickai-backend/internal/auth"
	"quickai-backend/internal/creations"
	"quickai-backend/internal/entitlements"
	"quickai-backend/internal/shared/config"
	"quickai-backend/internal/shared/metrics"
	"quickai-backend/internal/shared/server/middleware"
	"quickai-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	Entitlements     entitlements.Store
	AIHandler        *ai.Handler
	CreationsHandler *creations.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Entitlements),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"GENERATION": {Rate: 0.5, Burst: 5},
				"DEFAULT":    {Rate: 10, Burst: 30},
			},
			GroupFor: func(c *gin.Context) string {
				if strings.HasPrefix(c.Request.URL.Path, "/api/ai/") {
					return "GENERATION"
				}
				return "DEFAULT"
			},
		}),
	)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.AIHandler != nil {
		deps.AIHandler.RegisterRoutes(api.Group("/ai"))
		deps.AIHandler.RegisterFileRoutes(r)
	}
	if deps.CreationsHandler != nil {
		deps.CreationsHandler.RegisterRoutes(api.Group("/user"))
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
