package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	// kiosk flow
	case errors.Is(err, domain.ErrChipNotFound):
		return http.StatusNotFound, domain.ErrChipNotFound.Error()
	case errors.Is(err, domain.ErrChipInactive):
		return http.StatusForbidden, domain.ErrChipInactive.Error()
	case errors.Is(err, domain.ErrInvalidChip),
		errors.Is(err, domain.ErrInvalidAction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrMissingPersonnel):
		return http.StatusUnprocessableEntity, domain.ErrMissingPersonnel.Error()
	case errors.Is(err, domain.ErrDuplicateBooking):
		return http.StatusConflict, domain.ErrDuplicateBooking.Error()
	case errors.Is(err, domain.ErrSubmitDisabled):
		return http.StatusConflict, domain.ErrSubmitDisabled.Error()
	case errors.Is(err, domain.ErrScanTimeout):
		return http.StatusRequestTimeout, domain.ErrScanTimeout.Error()
	case errors.Is(err, domain.ErrTransportClosed):
		return http.StatusServiceUnavailable, domain.ErrTransportClosed.Error()

	// HR platform; timeouts first, a timed out booking is also a failed one
	case errors.Is(err, domain.ErrTimeout):
		logUpstream(log, c, err)
		return http.StatusGatewayTimeout, domain.ErrTimeout.Error()
	case errors.Is(err, domain.ErrAuthenticationFailed):
		logUpstream(log, c, err)
		return http.StatusBadGateway, domain.ErrAuthenticationFailed.Error()
	case errors.Is(err, domain.ErrRemoteUnreachable):
		logUpstream(log, c, err)
		return http.StatusBadGateway, domain.ErrRemoteUnreachable.Error()
	case errors.Is(err, domain.ErrLookupFailed):
		logUpstream(log, c, err)
		return http.StatusBadGateway, domain.ErrLookupFailed.Error()
	case errors.Is(err, domain.ErrBookingFailed):
		logUpstream(log, c, err)
		var be *domain.BookingError
		if errors.As(err, &be) && be.StatusCode != 0 {
			return http.StatusBadGateway, fmt.Sprintf("%v (status %d)", domain.ErrBookingFailed, be.StatusCode)
		}
		return http.StatusBadGateway, domain.ErrBookingFailed.Error()

	// operators
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrOperatorNotFound):
		return http.StatusNotFound, "operator not found"
	case errors.Is(err, domain.ErrOperatorExists):
		return http.StatusConflict, "operator already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func logUpstream(log zerolog.Logger, c echo.Context, err error) {
	log.Warn().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("hr platform error")
}
