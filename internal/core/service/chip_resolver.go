package service

import (
	"context"
	"errors"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

// LocalResolver resolves chips from the terminal's own chip mappings.
type LocalResolver struct {
	repo ports.ChipRepository
}

func NewLocalResolver(repo ports.ChipRepository) *LocalResolver {
	return &LocalResolver{repo: repo}
}

// Resolve returns domain.ErrChipInactive for deactivated mappings.
func (r *LocalResolver) Resolve(ctx context.Context, chipID string) (*domain.ChipMapping, error) {
	m, err := r.repo.FindByChipID(ctx, chipID)
	switch {
	case errors.Is(err, domain.ErrChipNotFound):
		metrics.ChipLookupsTotal.WithLabelValues("local", "not_found").Inc()
		return nil, err
	case err != nil:
		metrics.ChipLookupsTotal.WithLabelValues("local", "error").Inc()
		return nil, err
	case !m.Active:
		metrics.ChipLookupsTotal.WithLabelValues("local", "inactive").Inc()
		return nil, domain.ErrChipInactive
	}
	metrics.ChipLookupsTotal.WithLabelValues("local", "found").Inc()
	return m, nil
}
