package middleware

// identity.go holds helpers shared across middleware files. Rate
// limiting and response caching key on the authenticated user when one
// is present.

import (
	"github.com/labstack/echo/v4"
)

// userID returns the authenticated user's id from context, or "guest"
// when the request is anonymous. JWTAuth and OptionalAuth store the id
// under "user_id".
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "guest"
}
