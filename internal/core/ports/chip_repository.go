package ports

import (
	"context"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// ChipResolver maps a chip identifier to the person it is assigned to.
type ChipResolver interface {
	// Resolve returns domain.ErrChipNotFound when nobody holds the chip.
	Resolve(ctx context.Context, chipID string) (*domain.ChipMapping, error)
}

// ListChipsFilter carries the query parameters of the chip listing.
type ListChipsFilter struct {
	Search     string // partial match on chip id, personnel number or name
	ActiveOnly bool
	Page       int // 1-based
	Limit      int
}

// ChipRepository persists chip mappings.
type ChipRepository interface {
	FindByChipID(ctx context.Context, chipID string) (*domain.ChipMapping, error)
	// Upsert creates the mapping or replaces the one with the same chip id.
	Upsert(ctx context.Context, m *domain.ChipMapping) error
	SetActive(ctx context.Context, chipID string, active bool) error
	List(ctx context.Context, filter ListChipsFilter) ([]*domain.ChipMapping, int64, error)
}
