package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/pinboard/internal/server/auth"
)

const (
	// SessionCookie holds the session token set by the login subsystem.
	SessionCookie = "session"
	// RequestIDHeader is echoed back on every response.
	RequestIDHeader = echo.HeaderXRequestID

	userIDKey    = "user_id"
	requestIDKey = "request_id"
)

// requestLogger tags the request with an id, logs one line when it is
// done and records its latency.
func (s *HTTPServer) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		id := req.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Response().Header().Set(RequestIDHeader, id)

		if err := next(c); err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		elapsed := time.Since(start)
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(req.Method, route, status, elapsed)

		args := []any{
			"request_id", id,
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error(req.Context(), "request failed", args...)
		} else {
			s.logger.Info(req.Context(), "request served", args...)
		}
		return nil
	}
}

// requireSession rejects requests without a valid session token, read from
// the session cookie or an "Authorization: Bearer" header.
func (s *HTTPServer) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := sessionToken(c)
		if token == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
		}
		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
		}
		c.Set(userIDKey, userID)
		return next(c)
	}
}

func sessionToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}
