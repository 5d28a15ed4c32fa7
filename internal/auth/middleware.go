package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"netcode-backend/internal/models"
)

// CookieName is the client-held bearer token cookie
const CookieName = "netcode-auth"

// ContextKeyIdentity is where the resolved identity lives on the request context
const ContextKeyIdentity = "identity"

// Resolve turns the inbound token, if any, into a resolved identity on the
// request context. Requests without a token skip the store lookup entirely.
// An invalid or expired token is cleared from the client and the request
// continues as anonymous; store failures also resolve to anonymous rather
// than surfacing at the API boundary.
func Resolve(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return next(c)
			}

			identity, err := authSvc.Validate(token)
			if err != nil {
				ClearAuthCookie(c)
				return next(c)
			}

			c.Set(ContextKeyIdentity, identity)
			return next(c)
		}
	}
}

// RequireAuth rejects requests that did not resolve to an identity
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFromContext(c) == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "You are not logged in",
				})
			}
			return next(c)
		}
	}
}

// RequireAnonymous rejects requests that already carry an identity.
// Register and login are anonymous-only.
func RequireAnonymous() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFromContext(c) != nil {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "You are already logged in",
				})
			}
			return next(c)
		}
	}
}

// TokenFromRequest extracts the session token from the request
func TokenFromRequest(c echo.Context) string {
	// Try cookie first
	cookie, err := c.Cookie(CookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	// Try Authorization header (Bearer token)
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// SetAuthCookie hands the issued token to the client
func SetAuthCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

// ClearAuthCookie empties the client-held token with an already-past expiry
func ClearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// IdentityFromContext retrieves the resolved identity, or nil if anonymous
func IdentityFromContext(c echo.Context) *models.Identity {
	identity, ok := c.Get(ContextKeyIdentity).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}
