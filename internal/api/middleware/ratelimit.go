package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/trackflow/tracking-service/internal/api/metrics"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

// KeyFunc derives the rate-limit bucket of a request.
type KeyFunc func(c echo.Context) string

// ByIP buckets requests by client address.
func ByIP(c echo.Context) string {
	return "ip:" + c.RealIP()
}

// ByUser buckets requests by authenticated user, falling back to the client
// address. It must run after the auth middleware.
func ByUser(c echo.Context) string {
	if userID, _ := c.Get("user_id").(string); userID != "" {
		return "user:" + userID
	}
	return ByIP(c)
}

// RateLimitConfig describes one limit.
type RateLimitConfig struct {
	// Scope names the limit in keys and metrics, e.g. "public" or "api".
	Scope  string
	Limit  int
	Window time.Duration
	Key    KeyFunc
}

// RateLimit rejects requests over the sliding-window limit with 429. When the
// limiter itself fails the request is let through.
func RateLimit(limiter ports.RateLimiter, cfg RateLimitConfig, log zerolog.Logger) echo.MiddlewareFunc {
	if cfg.Key == nil {
		cfg.Key = ByIP
	}
	limit := strconv.Itoa(cfg.Limit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res, err := limiter.Allow(c.Request().Context(), cfg.Scope+":"+cfg.Key(c), cfg.Limit, cfg.Window)
			if err != nil {
				log.Warn().Err(err).Str("scope", cfg.Scope).Msg("rate limiter unavailable, request allowed")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				metrics.RateLimitedTotal.WithLabelValues(cfg.Scope).Inc()
				h.Set("Retry-After", strconv.Itoa(retryAfterSeconds(res.Reset)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later").
					SetInternal(domain.ErrRateLimited)
			}
			return next(c)
		}
	}
}

func retryAfterSeconds(reset time.Time) int {
	secs := int(math.Ceil(time.Until(reset).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
