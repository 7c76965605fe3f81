package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

// TerminalConfig carries the kiosk identity.
type TerminalConfig struct {
	Terminal    string
	CompanyName string
	ScanTimeout time.Duration
}

// TerminalService runs the kiosk flow: wait for a chip, resolve its holder,
// book the selected action and leave an audit entry.
type TerminalService struct {
	cfg      TerminalConfig
	reader   ports.ChipReader
	resolver ports.ChipResolver
	gateway  ports.BookingGateway
	guard    ports.BookingGuard
	audit    ports.AuditSink
	now      func() time.Time
	newID    func() string
	logger   zerolog.Logger
}

// NewTerminalService wires the flow. guard and audit may be nil.
func NewTerminalService(
	cfg TerminalConfig,
	reader ports.ChipReader,
	resolver ports.ChipResolver,
	gateway ports.BookingGateway,
	guard ports.BookingGuard,
	audit ports.AuditSink,
	logger zerolog.Logger,
) *TerminalService {
	return &TerminalService{
		cfg:      cfg,
		reader:   reader,
		resolver: resolver,
		gateway:  gateway,
		guard:    guard,
		audit:    audit,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

func (s *TerminalService) AwaitScan(ctx context.Context, timeout time.Duration) (*ports.ScanResult, error) {
	if timeout <= 0 {
		timeout = s.cfg.ScanTimeout
	}
	chipID, err := s.reader.Next(ctx, timeout)
	if err != nil {
		return nil, err
	}

	res := &ports.ScanResult{ChipID: chipID, ScannedAt: s.now().UTC()}
	m, err := s.resolver.Resolve(ctx, chipID)
	if err != nil {
		s.logger.Warn().Err(err).Str("chip_id", chipID).Msg("scanned chip could not be resolved")
		return res, err
	}
	res.PersonnelNumber = m.PersonnelNumber
	res.DisplayName = m.DisplayName()
	return res, nil
}

func (s *TerminalService) SubmitScan(_ context.Context, chipID string) (bool, error) {
	sub, ok := s.reader.(ports.ChipSubmitter)
	if !ok {
		return false, domain.ErrSubmitDisabled
	}
	return sub.Submit(chipID), nil
}

// Book resolves the chip again, so a booking never trusts a personnel
// number coming from the client, then submits the action once.
func (s *TerminalService) Book(ctx context.Context, in ports.BookInput) (*ports.BookOutput, error) {
	if !slices.Contains(s.gateway.Actions(), in.Action) {
		metrics.BookingsTotal.WithLabelValues(string(in.Action), string(domain.OutcomeInvalidAction)).Inc()
		return nil, domain.ErrInvalidAction
	}

	m, err := s.resolver.Resolve(ctx, in.ChipID)
	if err != nil {
		return nil, err
	}

	log := s.logger.With().
		Str("chip_id", in.ChipID).
		Str("personnel_number", m.PersonnelNumber).
		Str("action", string(in.Action)).
		Logger()

	if s.guard != nil {
		acquired, gerr := s.guard.Acquire(ctx, m.PersonnelNumber, in.Action)
		switch {
		case gerr != nil:
			// without Redis the terminal still books
			log.Warn().Err(gerr).Msg("booking guard unavailable")
		case !acquired:
			log.Info().Msg("duplicate booking suppressed")
			s.record(in, m, domain.OutcomeDuplicate, 0, domain.ErrDuplicateBooking)
			return nil, domain.ErrDuplicateBooking
		}
	}

	result, err := s.gateway.Book(ctx, domain.BookingRequest{
		PersonnelNumber: m.PersonnelNumber,
		Action:          in.Action,
	})
	status := 0
	if result != nil {
		status = result.StatusCode
	}

	if err != nil {
		outcome := classifyBookingError(err)
		s.record(in, m, outcome, status, err)
		if s.guard != nil {
			if rerr := s.guard.Release(context.WithoutCancel(ctx), m.PersonnelNumber, in.Action); rerr != nil {
				log.Warn().Err(rerr).Msg("booking guard release failed")
			}
		}
		log.Error().Err(err).Str("outcome", string(outcome)).Msg("booking failed")
		return nil, err
	}

	s.record(in, m, domain.OutcomeSucceeded, status, nil)
	log.Info().Msg("booking succeeded")

	return &ports.BookOutput{
		ChipID:          in.ChipID,
		PersonnelNumber: m.PersonnelNumber,
		DisplayName:     m.DisplayName(),
		Action:          in.Action,
		BookedAt:        result.Completed.UTC(),
	}, nil
}

func (s *TerminalService) Info() ports.TerminalInfo {
	info := ports.TerminalInfo{
		Terminal:    s.cfg.Terminal,
		CompanyName: s.cfg.CompanyName,
		Actions:     s.gateway.Actions(),
	}
	if st, ok := s.reader.(ports.ChipReaderStatus); ok {
		info.Reader = st.Kind()
		info.ReaderUp = st.Running()
	}
	return info
}

func (s *TerminalService) record(in ports.BookInput, m *domain.ChipMapping, outcome domain.BookingOutcome, status int, err error) {
	metrics.BookingsTotal.WithLabelValues(string(in.Action), string(outcome)).Inc()
	if s.audit == nil {
		return
	}
	entry := &domain.BookingLogEntry{
		ID:              s.newID(),
		Terminal:        s.cfg.Terminal,
		ChipID:          in.ChipID,
		PersonnelNumber: m.PersonnelNumber,
		Action:          in.Action,
		Outcome:         outcome,
		StatusCode:      status,
		CreatedAt:       s.now().UTC(),
	}
	if err != nil {
		entry.Detail = err.Error()
	}
	s.audit.Enqueue(entry)
}

func classifyBookingError(err error) domain.BookingOutcome {
	switch {
	case errors.Is(err, domain.ErrInvalidAction):
		return domain.OutcomeInvalidAction
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return domain.OutcomeAuthFailed
	default:
		return domain.OutcomeFailed
	}
}
