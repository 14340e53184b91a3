package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequirePermission gates a route on one permission. Service principals
// pass: an authenticated internal service may call any permission-gated
// route.
func RequirePermission(perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			if p.Kind.IsService() || p.HasPermission(perm) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permission")
		}
	}
}

// RequireScope gates a route on a service scope. Only service principals
// can satisfy it.
func RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			if !p.HasScope(scope) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient scope")
			}
			return next(c)
		}
	}
}
