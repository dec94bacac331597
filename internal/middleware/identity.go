package middleware

// identity.go holds the helpers that read the caller identity stored by
// OptionalJWT. Handlers use UserID; the rate limiter uses the string form.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// UserID returns the authenticated caller's id. ok is false for anonymous
// requests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id > 0
}

// userKey returns the caller id as a rate-limit key part, or "anon".
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
