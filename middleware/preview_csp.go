package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"menu_studio_app_go/services/layout"
)

// PreviewCSP sets a Content-Security-Policy for served menu documents. Only
// the shrink-to-fit script may run; menus keep their inline styles, and web
// fonts and images load over https.
func PreviewCSP() echo.MiddlewareFunc {
	csp := fmt.Sprintf("default-src 'none'; script-src %s; style-src 'unsafe-inline' https:; img-src data: https:; font-src data: https:; base-uri 'none'; form-action 'none'; frame-ancestors 'self'", layout.FitScriptHash())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Content-Security-Policy", csp)
			c.Response().Header().Set("X-Content-Type-Options", "nosniff")
			return next(c)
		}
	}
}
