package ports

import (
	"context"
	"time"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// ScanResult is a scanned chip together with its holder.
type ScanResult struct {
	ChipID          string
	PersonnelNumber string
	DisplayName     string
	ScannedAt       time.Time
}

// BookInput is what the kiosk sends after the operator picked an action.
type BookInput struct {
	ChipID string
	Action domain.BookingAction
}

// BookOutput reports an accepted booking.
type BookOutput struct {
	ChipID          string
	PersonnelNumber string
	DisplayName     string
	Action          domain.BookingAction
	BookedAt        time.Time
}

// TerminalInfo describes the kiosk to its front end.
type TerminalInfo struct {
	Terminal    string
	CompanyName string
	Reader      string
	ReaderUp    bool
	Actions     []domain.BookingAction
}

// TerminalService is the scan → resolve → book flow of the kiosk.
type TerminalService interface {
	// AwaitScan waits for the next chip and resolves it. When resolution
	// fails the result still carries the chip id next to the error.
	AwaitScan(ctx context.Context, timeout time.Duration) (*ScanResult, error)
	// SubmitScan feeds a chip id into a reader that accepts submissions.
	// It reports false when the scan was dropped as a repeat.
	SubmitScan(ctx context.Context, chipID string) (bool, error)
	Book(ctx context.Context, input BookInput) (*BookOutput, error)
	Info() TerminalInfo
}
