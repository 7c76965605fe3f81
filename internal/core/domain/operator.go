package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleTerminal = "terminal"
)

// Operator is a person or kiosk allowed to use the management API.
type Operator struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
