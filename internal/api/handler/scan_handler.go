package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// maxScanWait caps the long-poll so proxies in front of the kiosk do not
// cut the connection first.
const maxScanWait = 2 * time.Minute

// ScanHandler exposes the chip reader to the kiosk front end.
type ScanHandler struct {
	service ports.TerminalService
}

func NewScanHandler(service ports.TerminalService) *ScanHandler {
	return &ScanHandler{service: service}
}

// Next handles GET /v1/scans/next — waits for the next chip and resolves its holder.
//
// @Summary      Wait for the next chip scan
// @Tags         kiosk
// @Produce      json
// @Param        timeout  query     string  false  "Wait time, e.g. 30s or 30 (seconds)"
// @Success      200      {object}  scanResponse
// @Success      204      "no chip scanned before the timeout"
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  scanErrorResponse
// @Failure      404      {object}  scanErrorResponse
// @Failure      503      {object}  errorResponse
// @Router       /v1/scans/next [get]
func (h *ScanHandler) Next(c echo.Context) error {
	timeout, err := parseWait(c.QueryParam("timeout"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.AwaitScan(c.Request().Context(), timeout)
	switch {
	case errors.Is(err, domain.ErrScanTimeout):
		return c.NoContent(http.StatusNoContent)
	case res != nil && errors.Is(err, domain.ErrChipNotFound):
		return c.JSON(http.StatusNotFound, scanErrorResponse{Error: domain.ErrChipNotFound.Error(), ChipID: res.ChipID})
	case res != nil && errors.Is(err, domain.ErrChipInactive):
		return c.JSON(http.StatusForbidden, scanErrorResponse{Error: domain.ErrChipInactive.Error(), ChipID: res.ChipID})
	case err != nil:
		return err
	}

	return c.JSON(http.StatusOK, scanResponse{
		ChipID:          res.ChipID,
		PersonnelNumber: res.PersonnelNumber,
		DisplayName:     res.DisplayName,
		ScannedAt:       res.ScannedAt,
	})
}

// Submit handles POST /v1/scans — a chip id typed or read by the browser.
//
// @Summary      Submit a chip id from the browser
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body      submitScanRequest  true  "Chip id"
// @Success      202   {object}  submitScanResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/scans [post]
func (h *ScanHandler) Submit(c echo.Context) error {
	var req submitScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	accepted, err := h.service.SubmitScan(c.Request().Context(), req.ChipID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, submitScanResponse{Accepted: accepted})
}

// parseWait accepts a Go duration ("45s") or whole seconds ("45"). Empty
// means the terminal default.
func parseWait(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		secs, serr := strconv.Atoi(raw)
		if serr != nil {
			return 0, errors.New("timeout must be a duration such as 30s")
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, errors.New("timeout must be positive")
	}
	return min(d, maxScanWait), nil
}
