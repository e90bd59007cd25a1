package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the identity injected by the auth middleware and
// performs a fast-fail check before any service call. Both role and user_id
// must be present; a token without a subject cannot own shipments.
func ctxClaims(c echo.Context) (role, userID string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	return role, userID, nil
}

// optionalUserID returns the caller's user ID on routes where login is optional.
func optionalUserID(c echo.Context) string {
	userID, _ := c.Get("user_id").(string)
	return userID
}

// trimmedParam returns a path parameter without surrounding whitespace.
func trimmedParam(c echo.Context, name string) string {
	return strings.TrimSpace(c.Param(name))
}
