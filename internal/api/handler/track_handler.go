package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackflow/tracking-service/internal/api/metrics"
	"github.com/trackflow/tracking-service/internal/core/carrier"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

// TrackHandler serves tracking lookups.
type TrackHandler struct {
	tracking ports.TrackingService
	carriers *carrier.Table
}

func NewTrackHandler(tracking ports.TrackingService, carriers *carrier.Table) *TrackHandler {
	if carriers == nil {
		carriers = carrier.Default()
	}
	return &TrackHandler{tracking: tracking, carriers: carriers}
}

// Track handles POST /track. Login is optional; a logged-in caller becomes
// the owner of a newly created shipment.
//
// @Summary      Track a parcel
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        body  body      trackRequest  true  "Tracking number and optional carrier"
// @Success      200   {object}  trackResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /track [post]
func (h *TrackHandler) Track(c echo.Context) error {
	req, err := h.bind(c)
	if err != nil {
		return err
	}
	return h.track(c, ports.TrackInput{
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
		OwnerID:        optionalUserID(c),
	})
}

// TrackAPI handles POST /v1/track for API clients. Lookups are scoped to the
// caller's own shipments.
//
// @Summary      Track a parcel (public API)
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     ApiKeyAuth
// @Param        body  body      trackRequest  true  "Tracking number and optional carrier"
// @Success      200   {object}  trackResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/track [post]
func (h *TrackHandler) TrackAPI(c echo.Context) error {
	_, userID, err := ctxClaims(c)
	if err != nil {
		return err
	}
	req, err := h.bind(c)
	if err != nil {
		return err
	}
	return h.track(c, ports.TrackInput{
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
		OwnerID:        userID,
		ScopeToOwner:   true,
	})
}

func (h *TrackHandler) bind(c echo.Context) (*trackRequest, error) {
	var req trackRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return &req, nil
}

func (h *TrackHandler) track(c echo.Context, in ports.TrackInput) error {
	result, err := h.tracking.Track(c.Request().Context(), in)
	if err != nil {
		code, ok := h.carriers.Detect(in.TrackingNumber)
		if !ok {
			code = carrier.Auto
		}
		metrics.LookupsTotal.WithLabelValues(code, "error").Inc()
		return err
	}

	outcome := "updated"
	if result.Created {
		outcome = "created"
	}
	metrics.LookupsTotal.WithLabelValues(result.Shipment.CarrierCode, outcome).Inc()

	return c.JSON(http.StatusOK, toTrackResponse(result, h.carriers))
}
