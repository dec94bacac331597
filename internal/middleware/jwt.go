package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// OptionalJWT returns an Echo middleware that accepts anonymous requests and
// identifies callers who present a Bearer access token. A valid token's
// subject is stored under "user_id" as a uint64 so handlers can load the
// caller's saved profile. A token that is present but invalid is rejected
// with 401.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Only HMAC-signed tokens are accepted.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			id, ok := subject(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			c.Set(userIDKey, id)
			return next(c)
		}
	}
}

// subject reads the numeric user id from "sub", which issuers encode either
// as a decimal string or as a JSON number.
func subject(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil && id > 0
	case float64:
		if v <= 0 || v != float64(uint64(v)) {
			return 0, false
		}
		return uint64(v), true
	}
	return 0, false
}
