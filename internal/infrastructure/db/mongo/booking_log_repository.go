package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

const collectionBookingLog = "booking_log"

// BookingLogRepository implements ports.BookingLogRepository. The HR
// platform stays the system of record; this is the terminal's own trail.
type BookingLogRepository struct {
	col *mongo.Collection
}

func NewBookingLogRepository(db *mongo.Database) *BookingLogRepository {
	return &BookingLogRepository{col: db.Collection(collectionBookingLog)}
}

// Insert persists one attempt.
func (r *BookingLogRepository) Insert(ctx context.Context, entry *domain.BookingLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e := *entry
	e.CreatedAt = e.CreatedAt.UTC()
	if _, err := r.col.InsertOne(ctx, &e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// replayed entry
			return nil
		}
		return fmt.Errorf("insert booking log: %w", err)
	}
	return nil
}

// ListByPersonnelNumber returns the attempts of one person since the given
// instant, newest first.
func (r *BookingLogRepository) ListByPersonnelNumber(ctx context.Context, personnelNumber string, since time.Time) ([]*domain.BookingLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"personnel_number": personnelNumber,
		"created_at":       bson.M{"$gte": since.UTC()},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list booking log: %w", err)
	}
	defer cur.Close(ctx)

	var entries []*domain.BookingLogEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode booking log: %w", err)
	}
	return entries, nil
}

// EnsureIndexes creates the lookup index of the booking log.
func (r *BookingLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "personnel_number", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
