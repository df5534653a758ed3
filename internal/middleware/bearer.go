// Package middleware provides the reusable HTTP middleware for the API:
// bearer-token authentication, Redis response caching and a Redis token
// bucket rate limiter.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-charging/internal/auth"
	"github.com/iliyamo/office-charging/internal/httperr"
)

// BearerAuth authenticates requests with an access bearer JWT.  The session
// service checks both the JWT and the opaque access token record behind it;
// on success the resolved principal is stored in the request context for
// handlers to read via CurrentPrincipal.
func BearerAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return httperr.Unauthorized("missingAccessToken", "Missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			principal, err := svc.VerifyAccess(c.Request().Context(), raw)
			if err != nil {
				return err
			}
			SetPrincipal(c, principal)
			return next(c)
		}
	}
}
