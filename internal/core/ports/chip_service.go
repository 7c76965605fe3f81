package ports

import (
	"context"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// SaveChipInput is the admin payload for assigning a chip.
type SaveChipInput struct {
	ChipID          string
	PersonnelNumber string
	FirstName       string
	LastName        string
}

// ListChipsResult is one page of chip mappings.
type ListChipsResult struct {
	Items      []*domain.ChipMapping
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ChipService is the admin use case for chip assignments.
type ChipService interface {
	Save(ctx context.Context, input SaveChipInput) (*domain.ChipMapping, error)
	Get(ctx context.Context, chipID string) (*domain.ChipMapping, error)
	Deactivate(ctx context.Context, chipID string) error
	List(ctx context.Context, filter ListChipsFilter) (*ListChipsResult, error)
}
