package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// TokenValidator checks a bearer token and returns its subject.
// *TokenService satisfies it; tests substitute their own.
type TokenValidator interface {
	Validate(token string) (uuid.UUID, error)
}

// Middleware guards routes behind a valid bearer token. The Authorization
// header must be exactly "Bearer <token>": the scheme is case-sensitive and
// the value must split into exactly two fields. Every rejection, whether a
// missing header, a malformed value, or a failed validation, produces the
// same 401 response; the distinction is only logged.
func Middleware(tokens TokenValidator, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorized()
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				return unauthorized()
			}

			userID, err := tokens.Validate(parts[1])
			if err != nil {
				logger.Debug().
					Err(err).
					Str("path", c.Request().URL.Path).
					Msg("token rejected")
				return unauthorized()
			}

			ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
}

// UserIDFromContext returns the authenticated user ID, or uuid.Nil when the
// request did not pass through the auth middleware.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return uid
}
