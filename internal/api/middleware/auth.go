package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// apiKeyPrefix marks a bearer credential as an API key rather than a JWT.
const apiKeyPrefix = "tf_"

// APIKeyAuthenticator validates API keys.
type APIKeyAuthenticator interface {
	AuthenticateAPIKey(ctx context.Context, plaintext string) (*domain.APIKey, error)
}

var errNoCredentials = errors.New("no credentials")

// Auth validates the JWT and injects claims into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}
			if err := setJWTClaims(c, jwtSecret, raw); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalAuth injects claims when a JWT is present and lets anonymous
// requests through. A malformed or expired token is still rejected.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if errors.Is(err, errNoCredentials) {
				return next(c)
			}
			if err != nil {
				return err
			}
			if err := setJWTClaims(c, jwtSecret, raw); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// APIKeyOrJWT accepts either an API key (X-API-Key header, or a bearer token
// starting with "tf_") or a user JWT. API-key callers act as their key's
// owner with the user role.
func APIKeyOrJWT(jwtSecret string, keys APIKeyAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if raw == "" {
				var err error
				if raw, err = bearerToken(c); err != nil {
					return err
				}
			}

			if !strings.HasPrefix(raw, apiKeyPrefix) {
				if err := setJWTClaims(c, jwtSecret, raw); err != nil {
					return err
				}
				return next(c)
			}

			key, err := keys.AuthenticateAPIKey(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidAPIKey) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing api key")
				}
				return err
			}
			c.Set("user_id", key.UserID)
			c.Set("role", domain.RoleUser)
			c.Set("api_key_id", key.ID)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header").SetInternal(errNoCredentials)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func setJWTClaims(c echo.Context, jwtSecret, raw string) error {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	c.Set("user_id", claims["user_id"])
	c.Set("email", claims["email"])
	c.Set("role", claims["role"])

	return nil
}
