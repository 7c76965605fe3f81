package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/api/handler"
	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

type fakeTerminal struct{}

func (fakeTerminal) AwaitScan(context.Context, time.Duration) (*ports.ScanResult, error) {
	return nil, domain.ErrScanTimeout
}

func (fakeTerminal) SubmitScan(context.Context, string) (bool, error) {
	return false, domain.ErrSubmitDisabled
}

func (fakeTerminal) Book(_ context.Context, in ports.BookInput) (*ports.BookOutput, error) {
	if !in.Action.Valid() {
		return nil, domain.ErrInvalidAction
	}
	return &ports.BookOutput{ChipID: in.ChipID, PersonnelNumber: "4711", Action: in.Action}, nil
}

func (fakeTerminal) Info() ports.TerminalInfo {
	return ports.TerminalInfo{Terminal: "t1", CompanyName: "ACME", Actions: domain.Actions}
}

type fakeChips struct{}

func (fakeChips) Save(_ context.Context, in ports.SaveChipInput) (*domain.ChipMapping, error) {
	return &domain.ChipMapping{ChipID: in.ChipID, PersonnelNumber: in.PersonnelNumber, Active: true}, nil
}

func (fakeChips) Get(context.Context, string) (*domain.ChipMapping, error) {
	return nil, domain.ErrChipNotFound
}

func (fakeChips) Deactivate(context.Context, string) error { return nil }

func (fakeChips) List(context.Context, ports.ListChipsFilter) (*ports.ListChipsResult, error) {
	return &ports.ListChipsResult{Page: 1, Limit: 20}, nil
}

type fakeAuth struct{}

func (fakeAuth) Register(_ context.Context, username, _, role string) (*domain.Operator, error) {
	return &domain.Operator{Username: username, Role: role}, nil
}

func (fakeAuth) Login(context.Context, string, string) (string, *domain.Operator, error) {
	return "", nil, domain.ErrInvalidCredentials
}

type fakeBookingLog struct{}

func (fakeBookingLog) History(_ context.Context, personnel string, _ time.Time) ([]*domain.BookingLogEntry, error) {
	return []*domain.BookingLogEntry{{ID: "e1", PersonnelNumber: personnel, Action: domain.ActionClockIn}}, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

const testSecret = "router-secret"

func newTestRouter() http.Handler {
	return NewRouter(Deps{
		Terminal:   fakeTerminal{},
		Chips:      fakeChips{},
		Auth:       fakeAuth{},
		BookingLog: fakeBookingLog{},
		JWTSecret:  testSecret,
		Probes:     map[string]handler.Pinger{"mongodb": okPinger{}},
		Logger:     zerolog.Nop(),
	})
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "op-1",
		"username": "someone",
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + signed
}

func serve(h http.Handler, method, target, body, auth string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_KioskRoutes(t *testing.T) {
	h := newTestRouter()

	if rec := serve(h, http.MethodGet, "/v1/terminal", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("terminal: expected 200, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/v1/scans/next?timeout=1s", "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("scan: expected 204, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodPost, "/v1/scans", `{"chip_id":"1"}`, ""); rec.Code != http.StatusConflict {
		t.Fatalf("submit: expected 409, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodPost, "/v1/bookings", `{"chip_id":"1","action":"clock_in"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("booking: expected 201, got %d", rec.Code)
	}
	rec := serve(h, http.MethodPost, "/v1/bookings", `{"chip_id":"1","action":"lunch"}`, "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid booking action") {
		t.Fatalf("invalid action: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AdminRoutesNeedAdminToken(t *testing.T) {
	h := newTestRouter()

	if rec := serve(h, http.MethodGet, "/v1/chips", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/v1/chips", "", bearer(t, domain.RoleTerminal)); rec.Code != http.StatusForbidden {
		t.Fatalf("terminal role: expected 403, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/v1/chips", "", bearer(t, domain.RoleAdmin)); rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/v1/chips/0001", "", bearer(t, domain.RoleAdmin)); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown chip: expected 404, got %d", rec.Code)
	}
	body := `{"personnel_number":"4711"}`
	if rec := serve(h, http.MethodPut, "/v1/chips/0001", body, bearer(t, domain.RoleAdmin)); rec.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodDelete, "/v1/chips/0001", "", bearer(t, domain.RoleAdmin)); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	op := `{"username":"kiosk","password":"long-enough","role":"terminal"}`
	if rec := serve(h, http.MethodPost, "/v1/operators", op, bearer(t, domain.RoleAdmin)); rec.Code != http.StatusCreated {
		t.Fatalf("operators: expected 201, got %d", rec.Code)
	}
}

func TestRouter_BookingHistoryIsAdminOnly(t *testing.T) {
	h := newTestRouter()
	target := "/v1/bookings?personnel_number=4711"

	if rec := serve(h, http.MethodGet, target, "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	if rec := serve(h, http.MethodGet, target, "", bearer(t, domain.RoleTerminal)); rec.Code != http.StatusForbidden {
		t.Fatalf("terminal role: expected 403, got %d", rec.Code)
	}
	rec := serve(h, http.MethodGet, target, "", bearer(t, domain.RoleAdmin))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"personnel_number":"4711"`) {
		t.Fatalf("admin: got %d %s", rec.Code, rec.Body.String())
	}
	// the kiosk booking route on the same path stays open
	if rec := serve(h, http.MethodPost, "/v1/bookings", `{"chip_id":"1","action":"clock_in"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("kiosk booking: expected 201, got %d", rec.Code)
	}
}

func TestRouter_LoginFailureIs401(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodPost, "/auth/login", `{"username":"a","password":"b"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_ProbesAndMetrics(t *testing.T) {
	h := newTestRouter()

	for _, path := range []string{"/health", "/health/ready"} {
		if rec := serve(h, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
	rec := serve(h, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "terminal_http_requests_total") {
		t.Fatalf("metrics endpoint missing request counter: %d", rec.Code)
	}
}
