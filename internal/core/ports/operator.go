package ports

import (
	"context"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// OperatorRepository persists management API accounts.
type OperatorRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Operator, error)
	Create(ctx context.Context, op *domain.Operator) (*domain.Operator, error)
}

// AuthService registers operators and issues API tokens.
type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.Operator, error)
	Login(ctx context.Context, username, password string) (string, *domain.Operator, error)
}
