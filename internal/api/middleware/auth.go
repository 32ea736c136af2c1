package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskloop/task-api/internal/api/metrics"
	"github.com/taskloop/task-api/internal/core/domain"
	"github.com/taskloop/task-api/internal/core/service"
)

// TokenVerifier checks a bearer token string and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*service.TokenClaims, error)
}

// SubjectFinder resolves a token subject to a live user record.
type SubjectFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth validates the bearer token and injects the verified user id into the
// request context. The token claim alone is never trusted: the subject is
// re-checked against the credential store on every request, so a deactivated
// or deleted user's still-unexpired token stops working immediately.
func Auth(tokens TokenVerifier, users SubjectFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorized(c, "missing_header", "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorized(c, "missing_header", "invalid authorization header")
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				switch err {
				case service.ErrExpiredToken:
					return unauthorized(c, "expired", err.Error())
				case service.ErrWrongTokenType:
					return unauthorized(c, "wrong_type", err.Error())
				default:
					return unauthorized(c, "malformed", service.ErrMalformedToken.Error())
				}
			}

			user, err := users.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				if err == domain.ErrUserNotFound {
					return unauthorized(c, "unknown_subject", "user not found or inactive")
				}
				return err
			}
			if !user.IsActive {
				return unauthorized(c, "inactive", "user not found or inactive")
			}

			c.Set("user_id", user.ID)
			c.Set("user", user)

			return next(c)
		}
	}
}

// unauthorized rejects the request with a Bearer challenge, as required for
// 401 responses on token-protected resources.
func unauthorized(c echo.Context, reason, message string) error {
	metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, message)
}
