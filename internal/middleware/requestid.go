package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/logger"
)

// RequestID injects an identifier for traceability if the caller did not provide one.
// The identifier is also attached to the request context for service-level logs.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}

			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), rid)))

			return next(c)
		}
	}
}

// RequestIDFromContext extracts the request identifier if available.
func RequestIDFromContext(c echo.Context) string {
	return contextString(c, ContextKeyRequestID)
}
