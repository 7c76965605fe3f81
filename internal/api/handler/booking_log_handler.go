package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// BookingLogHandler exposes the local audit trail to administrators.
type BookingLogHandler struct {
	service ports.BookingLogService
}

func NewBookingLogHandler(service ports.BookingLogService) *BookingLogHandler {
	return &BookingLogHandler{service: service}
}

// List handles GET /v1/bookings.
//
// @Summary      Booking attempts of one person
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        personnel_number  query     string  true   "Personnel number"
// @Param        since             query     string  false  "RFC 3339 instant or YYYY-MM-DD (default 30 days back)"
// @Success      200               {object}  bookingHistoryResponse
// @Failure      400               {object}  errorResponse
// @Failure      401               {object}  errorResponse
// @Failure      403               {object}  errorResponse
// @Router       /v1/bookings [get]
func (h *BookingLogHandler) List(c echo.Context) error {
	if _, _, err := ctxOperator(c); err != nil {
		return err
	}

	personnel := strings.TrimSpace(c.QueryParam("personnel_number"))
	if personnel == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "personnel_number is required")
	}
	since, err := parseSince(c.QueryParam("since"))
	if err != nil {
		return err
	}

	entries, err := h.service.History(c.Request().Context(), personnel, since)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookingHistoryResponse{PersonnelNumber: personnel, Items: entries})
}

func parseSince(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "since must be RFC 3339 or YYYY-MM-DD")
}
