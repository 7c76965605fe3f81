package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/badgeclock/rfid-terminal/internal/api/middleware"
	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

type stubTerminalService struct {
	awaitFn  func(ctx context.Context, timeout time.Duration) (*ports.ScanResult, error)
	submitFn func(ctx context.Context, chipID string) (bool, error)
	bookFn   func(ctx context.Context, in ports.BookInput) (*ports.BookOutput, error)
	info     ports.TerminalInfo
}

func (s *stubTerminalService) AwaitScan(ctx context.Context, timeout time.Duration) (*ports.ScanResult, error) {
	return s.awaitFn(ctx, timeout)
}

func (s *stubTerminalService) SubmitScan(ctx context.Context, chipID string) (bool, error) {
	return s.submitFn(ctx, chipID)
}

func (s *stubTerminalService) Book(ctx context.Context, in ports.BookInput) (*ports.BookOutput, error) {
	return s.bookFn(ctx, in)
}

func (s *stubTerminalService) Info() ports.TerminalInfo { return s.info }

type stubChipService struct {
	saveFn       func(ctx context.Context, in ports.SaveChipInput) (*domain.ChipMapping, error)
	getFn        func(ctx context.Context, chipID string) (*domain.ChipMapping, error)
	deactivateFn func(ctx context.Context, chipID string) error
	listFn       func(ctx context.Context, f ports.ListChipsFilter) (*ports.ListChipsResult, error)
}

func (s *stubChipService) Save(ctx context.Context, in ports.SaveChipInput) (*domain.ChipMapping, error) {
	return s.saveFn(ctx, in)
}

func (s *stubChipService) Get(ctx context.Context, chipID string) (*domain.ChipMapping, error) {
	return s.getFn(ctx, chipID)
}

func (s *stubChipService) Deactivate(ctx context.Context, chipID string) error {
	return s.deactivateFn(ctx, chipID)
}

func (s *stubChipService) List(ctx context.Context, f ports.ListChipsFilter) (*ports.ListChipsResult, error) {
	return s.listFn(ctx, f)
}

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, role string) (*domain.Operator, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.Operator, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, role string) (*domain.Operator, error) {
	return s.registerFn(ctx, username, password, role)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.Operator, error) {
	return s.loginFn(ctx, username, password)
}

type stubBookingLogService struct {
	historyFn func(ctx context.Context, personnelNumber string, since time.Time) ([]*domain.BookingLogEntry, error)
}

func (s *stubBookingLogService) History(ctx context.Context, personnelNumber string, since time.Time) ([]*domain.BookingLogEntry, error) {
	return s.historyFn(ctx, personnelNumber, since)
}

// newContext builds an echo context with the validator installed, the way
// the router configures it.
func newContext(method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asAdmin sets the claims the Auth middleware would inject.
func asAdmin(c echo.Context) {
	c.Set(middleware.CtxRole, domain.RoleAdmin)
	c.Set(middleware.CtxUsername, "admin")
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}
