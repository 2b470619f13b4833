package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the store and customer claims into the request context. Token
// issuance happens on the auth service; this service only verifies with the
// shared secret. Handlers read the identity via c.Get("store_id") and
// c.Get("customer_id").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "UNAUTHORIZED", "message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Only HS256 family tokens are accepted; anything else is rejected
			// before the secret is used.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "UNAUTHORIZED", "message": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "UNAUTHORIZED", "message": "invalid claims"})
			}

			// Store tokens carry store_id, possibly as sub. Every route behind
			// this middleware is store-scoped, so a token without a store
			// identity is rejected here rather than reaching handlers with an
			// empty scope.
			sid := ""
			if v, ok := claims["store_id"].(string); ok && v != "" {
				sid = v
			} else if v, ok := claims["sub"].(string); ok && v != "" {
				sid = v
			}
			if sid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "UNAUTHORIZED", "message": "token carries no store identity"})
			}
			c.Set("store_id", sid)
			if v, ok := claims["customer_id"].(string); ok && v != "" {
				c.Set("customer_id", v)
			}
			return next(c)
		}
	}
}
