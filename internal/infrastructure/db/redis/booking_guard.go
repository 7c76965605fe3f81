package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// DefaultGuardWindow is how long a booking blocks an identical one.
const DefaultGuardWindow = 10 * time.Second

// BookingGuard claims person/action pairs in Redis so a double tap on the
// kiosk books once.
// Key format: booking:<terminal>:<personnel_number>:<action>
type BookingGuard struct {
	client   redis.Cmdable
	terminal string
	window   time.Duration
}

// NewBookingGuard creates a guard; window <= 0 selects DefaultGuardWindow.
func NewBookingGuard(client redis.Cmdable, terminal string, window time.Duration) *BookingGuard {
	if window <= 0 {
		window = DefaultGuardWindow
	}
	return &BookingGuard{client: client, terminal: terminal, window: window}
}

// Acquire reports false when the pair was claimed within the window.
func (g *BookingGuard) Acquire(ctx context.Context, personnelNumber string, action domain.BookingAction) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(personnelNumber, action), time.Now().UTC().Format(time.RFC3339), g.window).Result()
	if err != nil {
		return false, fmt.Errorf("booking guard: %w", err)
	}
	return ok, nil
}

// Release drops the claim.
func (g *BookingGuard) Release(ctx context.Context, personnelNumber string, action domain.BookingAction) error {
	if err := g.client.Del(ctx, g.key(personnelNumber, action)).Err(); err != nil {
		return fmt.Errorf("booking guard release: %w", err)
	}
	return nil
}

func (g *BookingGuard) key(personnelNumber string, action domain.BookingAction) string {
	return fmt.Sprintf("booking:%s:%s:%s", g.terminal, personnelNumber, action)
}
