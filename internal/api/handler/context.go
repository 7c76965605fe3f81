package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/badgeclock/rfid-terminal/internal/api/middleware"
)

// ctxOperator extracts the claims injected by the Auth middleware. An empty
// role means the middleware did not run for this route.
func ctxOperator(c echo.Context) (username, role string, err error) {
	role, _ = c.Get(middleware.CtxRole).(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	username, _ = c.Get(middleware.CtxUsername).(string)
	return username, role, nil
}
