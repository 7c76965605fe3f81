package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// DefaultHistoryLookback is used when the caller does not bound the query.
const DefaultHistoryLookback = 30 * 24 * time.Hour

type BookingLogService struct {
	repo   ports.BookingLogRepository
	now    func() time.Time
	logger zerolog.Logger
}

func NewBookingLogService(repo ports.BookingLogRepository, logger zerolog.Logger) *BookingLogService {
	return &BookingLogService{repo: repo, now: time.Now, logger: logger}
}

func (s *BookingLogService) History(ctx context.Context, personnelNumber string, since time.Time) ([]*domain.BookingLogEntry, error) {
	personnelNumber = strings.TrimSpace(personnelNumber)
	if personnelNumber == "" {
		return nil, domain.ErrMissingPersonnel
	}
	if since.IsZero() {
		since = s.now().Add(-DefaultHistoryLookback)
	}

	entries, err := s.repo.ListByPersonnelNumber(ctx, personnelNumber, since)
	if err != nil {
		s.logger.Error().Err(err).Str("personnel_number", personnelNumber).Msg("failed to read booking log")
		return nil, err
	}
	if entries == nil {
		entries = []*domain.BookingLogEntry{}
	}
	return entries, nil
}
