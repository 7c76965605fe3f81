package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

const collectionChips = "chip_mappings"

type ChipRepository struct {
	col *mongo.Collection
}

func NewChipRepository(db *mongo.Database) *ChipRepository {
	return &ChipRepository{col: db.Collection(collectionChips)}
}

type chipDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ChipID          string             `bson:"chip_id"`
	PersonnelNumber string             `bson:"personnel_number"`
	FirstName       string             `bson:"first_name"`
	LastName        string             `bson:"last_name"`
	Active          bool               `bson:"active"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func (d *chipDoc) toDomain() *domain.ChipMapping {
	return &domain.ChipMapping{
		ID:              d.ID.Hex(),
		ChipID:          d.ChipID,
		PersonnelNumber: d.PersonnelNumber,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Active:          d.Active,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// FindByChipID retrieves a mapping regardless of its active flag.
func (r *ChipRepository) FindByChipID(ctx context.Context, chipID string) (*domain.ChipMapping, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d chipDoc
	err := r.col.FindOne(ctx, bson.M{"chip_id": chipID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChipNotFound
		}
		return nil, fmt.Errorf("find chip: %w", err)
	}
	return d.toDomain(), nil
}

// Upsert writes m keyed by chip id. created_at is only set on insert.
func (r *ChipRepository) Upsert(ctx context.Context, m *domain.ChipMapping) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"personnel_number": m.PersonnelNumber,
			"first_name":       m.FirstName,
			"last_name":        m.LastName,
			"active":           m.Active,
			"updated_at":       m.UpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{
			"created_at": m.CreatedAt.UTC(),
		},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"chip_id": m.ChipID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert chip: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (r *ChipRepository) SetActive(ctx context.Context, chipID string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"chip_id": chipID},
		bson.M{"$set": bson.M{"active": active, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set chip active: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrChipNotFound
	}
	return nil
}

// List returns one page of mappings ordered by chip id, plus the total count.
func (r *ChipRepository) List(ctx context.Context, f ports.ListChipsFilter) ([]*domain.ChipMapping, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ActiveOnly {
		filter["active"] = true
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"chip_id": rx},
			bson.M{"personnel_number": rx},
			bson.M{"first_name": rx},
			bson.M{"last_name": rx},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count chips: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "chip_id", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list chips: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.ChipMapping, 0, f.Limit)
	for cur.Next(ctx) {
		var d chipDoc
		if err := cur.Decode(&d); err != nil {
			return nil, 0, fmt.Errorf("decode chip: %w", err)
		}
		items = append(items, d.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list chips: %w", err)
	}
	return items, total, nil
}

// EnsureIndexes creates the unique chip id index.
func (r *ChipRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "chip_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "personnel_number", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
