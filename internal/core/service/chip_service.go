package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ChipService struct {
	repo   ports.ChipRepository
	logger zerolog.Logger
}

func NewChipService(repo ports.ChipRepository, logger zerolog.Logger) *ChipService {
	return &ChipService{repo: repo, logger: logger}
}

// Save assigns a chip to a person. Saving an existing chip id reassigns it
// and reactivates it.
func (s *ChipService) Save(ctx context.Context, input ports.SaveChipInput) (*domain.ChipMapping, error) {
	now := time.Now().UTC()
	m := &domain.ChipMapping{
		ChipID:          strings.TrimSpace(input.ChipID),
		PersonnelNumber: strings.TrimSpace(input.PersonnelNumber),
		FirstName:       strings.TrimSpace(input.FirstName),
		LastName:        strings.TrimSpace(input.LastName),
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if m.ChipID == "" {
		return nil, domain.ErrInvalidChip
	}
	if m.PersonnelNumber == "" {
		return nil, domain.ErrMissingPersonnel
	}

	if err := s.repo.Upsert(ctx, m); err != nil {
		s.logger.Error().Err(err).Str("chip_id", m.ChipID).Msg("failed to save chip mapping")
		return nil, err
	}
	s.logger.Info().Str("chip_id", m.ChipID).Str("personnel_number", m.PersonnelNumber).Msg("chip mapping saved")

	return s.repo.FindByChipID(ctx, m.ChipID)
}

func (s *ChipService) Get(ctx context.Context, chipID string) (*domain.ChipMapping, error) {
	return s.repo.FindByChipID(ctx, chipID)
}

// Deactivate keeps the mapping for the audit trail but stops it resolving.
func (s *ChipService) Deactivate(ctx context.Context, chipID string) error {
	if err := s.repo.SetActive(ctx, chipID, false); err != nil {
		return err
	}
	s.logger.Info().Str("chip_id", chipID).Msg("chip mapping deactivated")
	return nil
}

func (s *ChipService) List(ctx context.Context, f ports.ListChipsFilter) (*ports.ListChipsResult, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list chip mappings")
		return nil, err
	}

	return &ports.ListChipsResult{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}
