package api

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// requireToken validates the Bearer token on mutating routes when a
// shared secret is configured. Token claims identify the author for the
// request log; there is no per-route permission model beyond possession
// of a valid token.
func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.jwtSecret == "" {
			return next(c)
		}

		header := c.Request().Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, _ := claims["sub"].(string); sub != "" {
				c.Set("author_id", sub)
			}
			if name, _ := claims["name"].(string); name != "" {
				c.Set("author_name", name)
			}
		}
		return next(c)
	}
}

// IssueToken mints a token for an author against the shared secret.
// Used by the CLI to hand players their credentials.
func IssueToken(secret, authorID, authorName string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  authorID,
		"name": authorName,
	})
	return token.SignedString([]byte(secret))
}
