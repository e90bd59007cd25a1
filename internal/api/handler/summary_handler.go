package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackflow/tracking-service/internal/core/ports"
)

// SummaryHandler exposes the AI summarizer directly.
type SummaryHandler struct {
	summarizer ports.Summarizer
}

func NewSummaryHandler(summarizer ports.Summarizer) *SummaryHandler {
	return &SummaryHandler{summarizer: summarizer}
}

// Summarize handles POST /ai/summarize.
//
// @Summary      Summarize an event history
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        body  body      summarizeRequest  true  "Events, newest first"
// @Success      200   {object}  domain.Summary
// @Failure      400   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /ai/summarize [post]
func (h *SummaryHandler) Summarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event format")
	}
	if len(req.Events) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no events to summarize")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summary, err := h.summarizer.Summarize(c.Request().Context(), toDomainEvents(req.Events))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
