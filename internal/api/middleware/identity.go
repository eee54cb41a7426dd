package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Identity validates the anonymous session token and injects the player
// identity into the request context. The token may arrive either as a
// bearer header or, for websocket upgrades where headers are awkward, as a
// `token` query parameter.
func Identity(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				raw = c.QueryParam("token")
			}
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity token")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity token")
			}

			c.Set("player_id", claims["player_id"])
			c.Set("player_name", claims["name"])

			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
