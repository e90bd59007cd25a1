package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackflow/tracking-service/internal/core/ports"
)

// NotificationHandler manages status-change subscriptions.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Subscribe handles POST /v1/notifications/subscribe.
//
// @Summary      Enable status-change notifications for a shipment
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      subscribeRequest  true  "Channels to enable"
// @Success      200   {object}  domain.NotificationSettings
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/notifications/subscribe [post]
func (h *NotificationHandler) Subscribe(c echo.Context) error {
	_, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	email := true
	if req.Email != nil {
		email = *req.Email
	}

	settings, err := h.service.Subscribe(c.Request().Context(), userID, ports.SubscribeInput{
		ShipmentID:  req.ShipmentID,
		Email:       email,
		SMS:         req.SMS,
		Push:        req.Push,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}
