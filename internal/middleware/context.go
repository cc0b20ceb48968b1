package middleware

import "github.com/labstack/echo/v4"

// Keys under which authentication and tracing metadata are stored on the echo context.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// UserID returns the authenticated subject, or "" for anonymous requests.
func UserID(c echo.Context) string {
	return contextString(c, ContextKeyUserID)
}

// UserRole returns the role carried by the bearer token, or "".
func UserRole(c echo.Context) string {
	return contextString(c, ContextKeyUserRole)
}

func contextString(c echo.Context, key string) string {
	if val, ok := c.Get(key).(string); ok {
		return val
	}
	return ""
}

// deny writes the shared error envelope and stops the chain.
func deny(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"status": "error", "message": message})
}
