package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// TerminalHandler serves what the kiosk front end needs to render itself.
type TerminalHandler struct {
	service ports.TerminalService
}

func NewTerminalHandler(service ports.TerminalService) *TerminalHandler {
	return &TerminalHandler{service: service}
}

// Info handles GET /v1/terminal.
//
// @Summary      Terminal identity, reader state and bookable actions
// @Tags         kiosk
// @Produce      json
// @Success      200  {object}  terminalResponse
// @Router       /v1/terminal [get]
func (h *TerminalHandler) Info(c echo.Context) error {
	info := h.service.Info()
	return c.JSON(http.StatusOK, terminalResponse{
		Terminal:    info.Terminal,
		CompanyName: info.CompanyName,
		Reader:      info.Reader,
		ReaderUp:    info.ReaderUp,
		Actions:     actionNames(info.Actions),
	})
}
