package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// BookingHandler submits the action the badge holder picked.
type BookingHandler struct {
	service ports.TerminalService
}

func NewBookingHandler(service ports.TerminalService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles POST /v1/bookings.
//
// @Summary      Book an action for a scanned chip
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body      bookingRequest  true  "Chip id and action"
// @Success      201   {object}  bookingResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Failure      504   {object}  errorResponse
// @Router       /v1/bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	out, err := h.service.Book(c.Request().Context(), ports.BookInput{
		ChipID: req.ChipID,
		Action: domain.BookingAction(req.Action),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bookingResponse{
		ChipID:          out.ChipID,
		PersonnelNumber: out.PersonnelNumber,
		DisplayName:     out.DisplayName,
		Action:          string(out.Action),
		BookedAt:        out.BookedAt,
	})
}
