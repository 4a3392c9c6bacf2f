package respond

import (
	"github.com/gin-gonic/gin"

	"quickai-backend/internal/shared/telemetry"
)

// ErrorBody is the uniform error payload. Clients key off `success` and
// `message`; `code` lets them distinguish error kinds programmatically.
type ErrorBody struct {
	Success bool        `json:"success"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response with a real HTTP status.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if plan := c.GetString("plan"); plan != "" {
		fields["plan"] = plan
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorBody{
		Success: false,
		Code:    code,
		Message: message,
		Details: details,
	})
}
