package handler

import (
	"time"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Kiosk ---

type submitScanRequest struct {
	ChipID string `json:"chip_id" validate:"required,max=64"`
}

type submitScanResponse struct {
	Accepted bool `json:"accepted"`
}

type scanResponse struct {
	ChipID          string    `json:"chip_id"`
	PersonnelNumber string    `json:"personnel_number,omitempty"`
	DisplayName     string    `json:"display_name,omitempty"`
	ScannedAt       time.Time `json:"scanned_at"`
}

// scanErrorResponse keeps the chip id next to the error so the kiosk can
// show which badge was refused.
type scanErrorResponse struct {
	Error  string `json:"error"`
	ChipID string `json:"chip_id"`
}

type bookingRequest struct {
	ChipID string `json:"chip_id" validate:"required,max=64,chipid"`
	Action string `json:"action"  validate:"required"`
}

type bookingResponse struct {
	ChipID          string    `json:"chip_id"`
	PersonnelNumber string    `json:"personnel_number"`
	DisplayName     string    `json:"display_name"`
	Action          string    `json:"action"`
	BookedAt        time.Time `json:"booked_at"`
}

type terminalResponse struct {
	Terminal    string   `json:"terminal"`
	CompanyName string   `json:"company_name"`
	Reader      string   `json:"reader"`
	ReaderUp    bool     `json:"reader_up"`
	Actions     []string `json:"actions"`
}

// --- Administration ---

type saveChipRequest struct {
	PersonnelNumber string `json:"personnel_number" validate:"required,max=64"`
	FirstName       string `json:"first_name"       validate:"max=128"`
	LastName        string `json:"last_name"        validate:"max=128"`
}

type chipResponse struct {
	ChipID          string    `json:"chip_id"`
	PersonnelNumber string    `json:"personnel_number"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type listChipsResponse struct {
	Items      []chipResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

type registerOperatorRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,oneof=admin terminal"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token    string           `json:"token,omitempty"`
	Operator *domain.Operator `json:"operator,omitempty"`
}

func toChipResponse(m *domain.ChipMapping) chipResponse {
	return chipResponse{
		ChipID:          m.ChipID,
		PersonnelNumber: m.PersonnelNumber,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toListChipsResponse(r *ports.ListChipsResult) listChipsResponse {
	items := make([]chipResponse, 0, len(r.Items))
	for _, m := range r.Items {
		items = append(items, toChipResponse(m))
	}
	return listChipsResponse{
		Items:      items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}

func actionNames(actions []domain.BookingAction) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, string(a))
	}
	return out
}

type bookingHistoryResponse struct {
	PersonnelNumber string                    `json:"personnel_number"`
	Items           []*domain.BookingLogEntry `json:"items"`
}
