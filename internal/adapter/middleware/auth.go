package middleware

import (
	"net/http"
	"strings"

	"cta-backend/internal/domain/user"
	"cta-backend/internal/infrastructure/token"

	"github.com/labstack/echo/v4"
)

const claimsKey = "auth.claims"

type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

func bearer(h string) string {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// Auth requires a valid bearer token and stores its claims on the context.
func Auth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			claims, err := v.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func ClaimsFrom(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*token.Claims)
	return claims, ok && claims != nil
}

// RequireCapability lets the request through only when the token role holds cap.
// Must run after Auth.
func RequireCapability(cap user.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			if !claims.Role.Can(cap) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "permission denied"})
			}
			return next(c)
		}
	}
}
