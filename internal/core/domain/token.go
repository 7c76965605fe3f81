package domain

import "time"

// TokenState is the lifecycle state of the HR platform credential.
type TokenState string

const (
	TokenNone    TokenState = "no_token"
	TokenValid   TokenState = "valid"
	TokenExpired TokenState = "expired"
)

// AuthToken is a bearer credential returned by the HR platform login.
type AuthToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token must not be presented at now.
func (t *AuthToken) Expired(now time.Time) bool {
	return t == nil || !now.Before(t.ExpiresAt)
}
