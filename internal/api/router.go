package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/api/handler"
	"github.com/badgeclock/rfid-terminal/internal/api/middleware"
	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// Deps are the services the router exposes.
type Deps struct {
	Terminal   ports.TerminalService
	Chips      ports.ChipService
	Auth       ports.AuthService
	BookingLog ports.BookingLogService
	JWTSecret  string
	// Probes are pinged by /health/ready, keyed by dependency name.
	Probes map[string]handler.Pinger
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(middleware.Metrics("/metrics"))

	// --- Handlers ---
	scanHandler := handler.NewScanHandler(d.Terminal)
	bookingHandler := handler.NewBookingHandler(d.Terminal)
	terminalHandler := handler.NewTerminalHandler(d.Terminal)
	chipHandler := handler.NewChipHandler(d.Chips, d.Logger)
	authHandler := handler.NewAuthHandler(d.Auth)
	bookingLogHandler := handler.NewBookingLogHandler(d.BookingLog)
	authMiddleware := middleware.Auth(d.JWTSecret)

	// --- Kiosk routes (served to the local front end) ---
	v1 := e.Group("/v1")
	v1.GET("/terminal", terminalHandler.Info)
	v1.GET("/scans/next", scanHandler.Next)
	v1.POST("/scans", scanHandler.Submit)
	v1.POST("/bookings", bookingHandler.Create)

	// --- Administration ---
	e.POST("/auth/login", authHandler.Login)

	admin := v1.Group("", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/operators", authHandler.Register)
	admin.GET("/chips", chipHandler.List)
	admin.GET("/chips/:chip_id", chipHandler.Get)
	admin.PUT("/chips/:chip_id", chipHandler.Put)
	admin.DELETE("/chips/:chip_id", chipHandler.Delete)
	admin.GET("/bookings", bookingLogHandler.List)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Probes)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
