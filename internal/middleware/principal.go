package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-charging/internal/auth"
)

// principalKey is the Echo context key the authenticated principal lives
// under between BearerAuth and the handler.
const principalKey = "principal"

func SetPrincipal(c echo.Context, p *auth.Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the authenticated principal, or nil on routes
// BearerAuth did not wrap.
func CurrentPrincipal(c echo.Context) *auth.Principal {
	p, _ := c.Get(principalKey).(*auth.Principal)
	return p
}

// currentUserID renders the authenticated user id for rate-limit keys.
// Unauthenticated requests share the "anon" bucket per IP/route.
func currentUserID(c echo.Context) string {
	if p := CurrentPrincipal(c); p != nil && p.User != nil {
		return strconv.FormatUint(p.User.ID, 10)
	}
	return "anon"
}
