package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackflow/tracking-service/internal/api/metrics"
	"github.com/trackflow/tracking-service/internal/core/carrier"
)

// CarrierHandler exposes the carrier reference table.
type CarrierHandler struct {
	carriers *carrier.Table
}

func NewCarrierHandler(carriers *carrier.Table) *CarrierHandler {
	if carriers == nil {
		carriers = carrier.Default()
	}
	return &CarrierHandler{carriers: carriers}
}

// List handles GET /carriers.
//
// @Summary      List supported carriers in match order
// @Tags         carriers
// @Produce      json
// @Success      200  {array}  carrierResponse
// @Router       /carriers [get]
func (h *CarrierHandler) List(c echo.Context) error {
	entries := h.carriers.Carriers()
	out := make([]carrierResponse, 0, len(entries))
	for _, e := range entries {
		patterns := make([]string, 0, len(e.Patterns))
		for _, p := range e.Patterns {
			patterns = append(patterns, p.String())
		}
		out = append(out, carrierResponse{Code: e.Code, Name: e.Name, Patterns: patterns})
	}
	return c.JSON(http.StatusOK, out)
}

// Detect handles GET /carriers/detect?number=.
//
// @Summary      Detect the carrier of a tracking number
// @Tags         carriers
// @Produce      json
// @Param        number  query     string  true  "Tracking number"
// @Success      200     {object}  detectResponse
// @Failure      400     {object}  errorResponse
// @Router       /carriers/detect [get]
func (h *CarrierHandler) Detect(c echo.Context) error {
	number := carrier.Normalize(c.QueryParam("number"))
	if number == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "number is required")
	}

	resp := detectResponse{TrackingNumber: number}
	code, ok := h.carriers.Detect(number)
	if ok {
		resp.Detected = true
		resp.CarrierCode = code
		resp.CarrierName = h.carriers.Name(code)
		metrics.CarrierDetectionsTotal.WithLabelValues(code).Inc()
	} else {
		metrics.CarrierDetectionsTotal.WithLabelValues("none").Inc()
	}
	return c.JSON(http.StatusOK, resp)
}
