package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackflow/tracking-service/internal/core/carrier"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

// RefreshEnqueuer is the interface the handler uses to schedule background
// refreshes. Enqueue reports false when the request was dropped.
type RefreshEnqueuer interface {
	Enqueue(req ports.RefreshRequest) bool
}

// ShipmentHandler handles HTTP requests for stored shipments.
type ShipmentHandler struct {
	service  ports.ShipmentService
	carriers *carrier.Table
	refresh  RefreshEnqueuer
}

func NewShipmentHandler(service ports.ShipmentService, carriers *carrier.Table, refresh RefreshEnqueuer) *ShipmentHandler {
	if carriers == nil {
		carriers = carrier.Default()
	}
	return &ShipmentHandler{service: service, carriers: carriers, refresh: refresh}
}

// List handles GET /v1/shipments.
//
// @Summary      List the caller's shipments
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        search  query     string  false  "Partial match on tracking number or label"
// @Param        limit   query     int     false  "Page size (default 50, max 100)"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  listShipmentsResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Router       /v1/shipments [get]
func (h *ShipmentHandler) List(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var q listShipmentsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.ListShipments(c.Request().Context(), ports.ListShipmentsInput{
		Role:    role,
		OwnerID: userID,
		Status:  q.Status,
		Search:  q.Search,
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		return err
	}

	items := make([]shipmentResponse, 0, len(result.Items))
	for _, s := range result.Items {
		items = append(items, toShipmentResponse(s, h.carriers))
	}
	return c.JSON(http.StatusOK, listShipmentsResponse{
		Items:  items,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// Get handles GET /v1/shipments/:tracking_number.
//
// @Summary      Get a shipment with its events
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_number  path      string  true  "Tracking number"
// @Success      200              {object}  shipmentDetailResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number} [get]
func (h *ShipmentHandler) Get(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetShipment(c.Request().Context(), ports.GetShipmentInput{
		TrackingNumber: trimmedParam(c, "tracking_number"),
		Role:           role,
		OwnerID:        userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shipmentDetailResponse{
		Shipment: toShipmentResponse(detail.Shipment, h.carriers),
		Events:   toEventResponses(detail.Events),
	})
}

// UpdateLabel handles PATCH /v1/shipments/:tracking_number.
//
// @Summary      Set or clear the friendly name of a shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_number  path      string              true  "Tracking number"
// @Param        body             body      updateLabelRequest  true  "New label, empty to clear"
// @Success      200              {object}  shipmentResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number} [patch]
func (h *ShipmentHandler) UpdateLabel(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateLabelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s, err := h.service.SetLabel(c.Request().Context(), ports.GetShipmentInput{
		TrackingNumber: trimmedParam(c, "tracking_number"),
		Role:           role,
		OwnerID:        userID,
	}, req.Label)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShipmentResponse(s, h.carriers))
}

// Refresh handles POST /v1/shipments/refresh. Only shipments visible to the
// caller are queued; the rest are reported as skipped.
//
// @Summary      Queue background refreshes of stored shipments
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      refreshRequest  true  "Tracking numbers to refresh"
// @Success      202   {object}  refreshResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/shipments/refresh [post]
func (h *ShipmentHandler) Refresh(c echo.Context) error {
	role, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	resp := refreshResponse{Skipped: []string{}}
	for _, number := range req.TrackingNumbers {
		detail, err := h.service.GetShipment(ctx, ports.GetShipmentInput{
			TrackingNumber: number,
			Role:           role,
			OwnerID:        userID,
		})
		switch {
		case err == nil:
			if h.refresh.Enqueue(ports.RefreshRequest{
				ShipmentID:     detail.Shipment.ID,
				TrackingNumber: detail.Shipment.TrackingNumber,
				CarrierCode:    detail.Shipment.CarrierCode,
				OwnerID:        detail.Shipment.OwnerID,
			}) {
				resp.Accepted++
			} else {
				resp.Skipped = append(resp.Skipped, number)
			}
		case errors.Is(err, domain.ErrShipmentNotFound), errors.Is(err, domain.ErrInvalidTrackingNumber):
			resp.Skipped = append(resp.Skipped, number)
		default:
			return err
		}
	}

	return c.JSON(http.StatusAccepted, resp)
}
