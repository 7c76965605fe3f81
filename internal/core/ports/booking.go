package ports

import (
	"context"
	"time"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// BookingGateway submits one booking to the HR platform.
type BookingGateway interface {
	Book(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error)
	// Actions lists the actions the configured remote mapping supports.
	Actions() []domain.BookingAction
}

// BookingGuard rejects the same booking submitted twice in a short window,
// e.g. a double click on the kiosk.
type BookingGuard interface {
	// Acquire reports false when the same person/action was claimed recently.
	Acquire(ctx context.Context, personnelNumber string, action domain.BookingAction) (bool, error)
	// Release frees the claim so a failed booking can be retried at once.
	Release(ctx context.Context, personnelNumber string, action domain.BookingAction) error
}

// BookingLogRepository stores the local audit trail of booking attempts.
type BookingLogRepository interface {
	Insert(ctx context.Context, entry *domain.BookingLogEntry) error
	ListByPersonnelNumber(ctx context.Context, personnelNumber string, since time.Time) ([]*domain.BookingLogEntry, error)
}

// AuditSink accepts log entries for asynchronous persistence.
type AuditSink interface {
	Enqueue(entry *domain.BookingLogEntry)
}

// BookingLogService answers audit questions about past booking attempts.
type BookingLogService interface {
	// History returns the attempts of one person since the given instant,
	// newest first. A zero since selects the default lookback.
	History(ctx context.Context, personnelNumber string, since time.Time) ([]*domain.BookingLogEntry, error)
}
