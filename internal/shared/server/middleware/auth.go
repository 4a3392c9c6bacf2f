package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quickai-backend/internal/entitlements"
	"quickai-backend/internal/shared/auth"
	"quickai-backend/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	planKey        = "plan"
	freeUsageKey   = "freeUsage"
)

// Auth validates bearer tokens and resolves the caller's entitlement
// snapshot (plan + free usage counter) for the lifetime of the request.
func Auth(ents entitlements.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/auth/google/") || strings.HasPrefix(path, "/files/") || path == "/api/health" || path == "/metrics" {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		snap, err := ents.Get(c.Request.Context(), claims.Subject)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve entitlements", nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.Name != "" {
			c.Set(userNameKey, claims.Name)
		}
		if claims.Picture != "" {
			c.Set(userPictureKey, claims.Picture)
		}
		c.Set(planKey, string(snap.Plan))
		c.Set(freeUsageKey, snap.FreeUsage)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userNameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userPictureKey)
	if picture, ok := val.(string); ok {
		return picture
	}
	return ""
}

// SnapshotFromContext rebuilds the entitlement snapshot stored by Auth.
func SnapshotFromContext(c *gin.Context) entitlements.Snapshot {
	snap := entitlements.Snapshot{
		UserID: UserIDFromContext(c),
		Plan:   entitlements.PlanFree,
	}
	if raw, ok := c.Get(planKey); ok {
		if plan, ok2 := raw.(string); ok2 {
			snap.Plan = entitlements.ParsePlan(plan)
		}
	}
	if raw, ok := c.Get(freeUsageKey); ok {
		if used, ok2 := raw.(int); ok2 {
			snap.FreeUsage = used
		}
	}
	return snap
}
