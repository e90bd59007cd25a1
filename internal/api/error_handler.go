package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// errorResponse is the {"error": "..."} body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler renders domain sentinels with their HTTP status.
// Provider failures and unknown errors are logged; clients only see a
// generic message for them.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, handler rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidTrackingNumber):
		return http.StatusBadRequest, "invalid tracking number"
	case errors.Is(err, domain.ErrShipmentNotFound):
		return http.StatusNotFound, "shipment not found"
	case errors.Is(err, domain.ErrShopNotFound):
		return http.StatusNotFound, "shop not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrInvalidAPIKey):
		return http.StatusUnauthorized, "invalid or missing api key"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrMalformedProviderResponse),
		errors.Is(err, domain.ErrProviderUnavailable):
		// The provider body may echo credentials; keep it in the logs only.
		log.Warn().Err(err).Str("path", c.Path()).Msg("tracking provider failure")
		return http.StatusBadGateway, "tracking provider unavailable"
	case errors.Is(err, domain.ErrSummaryUnavailable):
		return http.StatusServiceUnavailable, "summary unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
