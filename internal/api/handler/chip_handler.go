package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// ChipHandler administers chip assignments.
type ChipHandler struct {
	service ports.ChipService
	logger  zerolog.Logger
}

func NewChipHandler(service ports.ChipService, logger zerolog.Logger) *ChipHandler {
	return &ChipHandler{service: service, logger: logger}
}

// List handles GET /v1/chips.
//
// @Summary      List chip assignments
// @Tags         chips
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Partial match on chip id, personnel number or name"
// @Param        active  query     bool    false  "Only active assignments"
// @Param        page    query     int     false  "Page, 1-based"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listChipsResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/chips [get]
func (h *ChipHandler) List(c echo.Context) error {
	if _, _, err := ctxOperator(c); err != nil {
		return err
	}

	filter := ports.ListChipsFilter{Search: c.QueryParam("search")}
	var err error
	if filter.Page, err = intQuery(c, "page"); err != nil {
		return err
	}
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		return err
	}
	if raw := c.QueryParam("active"); raw != "" {
		if filter.ActiveOnly, err = strconv.ParseBool(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "active must be true or false")
		}
	}

	result, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListChipsResponse(result))
}

// Get handles GET /v1/chips/:chip_id.
//
// @Summary      Get a chip assignment
// @Tags         chips
// @Produce      json
// @Security     BearerAuth
// @Param        chip_id  path      string  true  "Chip id as rendered by the reader"
// @Success      200      {object}  chipResponse
// @Failure      401      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /v1/chips/{chip_id} [get]
func (h *ChipHandler) Get(c echo.Context) error {
	if _, _, err := ctxOperator(c); err != nil {
		return err
	}

	m, err := h.service.Get(c.Request().Context(), c.Param("chip_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toChipResponse(m))
}

// Put handles PUT /v1/chips/:chip_id — assigns the chip, replacing any
// previous holder and reactivating it.
//
// @Summary      Assign a chip
// @Tags         chips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chip_id  path      string           true  "Chip id"
// @Param        body     body      saveChipRequest  true  "Holder"
// @Success      200      {object}  chipResponse
// @Failure      400      {object}  errorResponse
// @Failure      401      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/chips/{chip_id} [put]
func (h *ChipHandler) Put(c echo.Context) error {
	username, _, err := ctxOperator(c)
	if err != nil {
		return err
	}

	var req saveChipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	m, err := h.service.Save(c.Request().Context(), ports.SaveChipInput{
		ChipID:          c.Param("chip_id"),
		PersonnelNumber: req.PersonnelNumber,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		return err
	}

	h.logger.Info().
		Str("operator", username).
		Str("chip_id", m.ChipID).
		Str("personnel_number", m.PersonnelNumber).
		Msg("chip assigned")
	return c.JSON(http.StatusOK, toChipResponse(m))
}

// Delete handles DELETE /v1/chips/:chip_id — deactivates the assignment.
// The record stays so the audit log keeps resolving.
//
// @Summary      Deactivate a chip
// @Tags         chips
// @Security     BearerAuth
// @Param        chip_id  path  string  true  "Chip id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/chips/{chip_id} [delete]
func (h *ChipHandler) Delete(c echo.Context) error {
	username, _, err := ctxOperator(c)
	if err != nil {
		return err
	}

	chipID := c.Param("chip_id")
	if err := h.service.Deactivate(c.Request().Context(), chipID); err != nil {
		return err
	}

	h.logger.Info().Str("operator", username).Str("chip_id", chipID).Msg("chip deactivated")
	return c.NoContent(http.StatusNoContent)
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}
