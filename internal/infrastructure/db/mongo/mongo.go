package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store groups the terminal's repositories over one database.
type Store struct {
	Client     *mongo.Client
	Chips      *ChipRepository
	BookingLog *BookingLogRepository
	Operators  *OperatorRepository
}

// Open connects and builds the repositories.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client, db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		Client:     client,
		Chips:      NewChipRepository(db),
		BookingLog: NewBookingLogRepository(db),
		Operators:  NewOperatorRepository(db),
	}, nil
}

// EnsureIndexes creates the indexes of every collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.Chips.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("chip_mappings indexes: %w", err)
	}
	if err := s.BookingLog.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("booking_log indexes: %w", err)
	}
	if err := s.Operators.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("operators indexes: %w", err)
	}
	return nil
}

// Ping reports whether the server answers; used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
