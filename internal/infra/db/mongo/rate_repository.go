package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayquote/internal/app/policies"
	domainpricing "stayquote/internal/domain/pricing"
)

// RateTableRepository reads duration tiers from the rate_tiers collection,
// one document per (room_category, min_duration_nights).
type RateTableRepository struct {
	col *mongo.Collection
}

func NewRateTableRepository(db *mongo.Database) *RateTableRepository {
	col := db.Collection("rate_tiers")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "room_category", Value: 1}, {Key: "min_duration_nights", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &RateTableRepository{col: col}
}

func (r *RateTableRepository) Tiers(ctx context.Context, category string) ([]domainpricing.RateTier, error) {
	opts := options.Find().SetSort(bson.D{{Key: "min_duration_nights", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"room_category": category}, opts)
	if err != nil {
		return nil, err
	}
	var docs []rateTierDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, policies.ErrCategoryNotFound
	}
	tiers := make([]domainpricing.RateTier, 0, len(docs))
	for _, doc := range docs {
		tier, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

// Upsert stores a tier keyed by category and minimum duration.
func (r *RateTableRepository) Upsert(ctx context.Context, tier domainpricing.RateTier) error {
	rate, err := toDecimal128(tier.NightlyRate)
	if err != nil {
		return err
	}
	filter := bson.M{"room_category": tier.RoomCategory, "min_duration_nights": tier.MinDurationNights}
	update := bson.M{"$set": bson.M{"nightly_rate": rate, "updated_at": time.Now().UTC()}}
	_, err = r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

type rateTierDocument struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty"`
	RoomCategory      string               `bson:"room_category"`
	MinDurationNights int                  `bson:"min_duration_nights"`
	NightlyRate       primitive.Decimal128 `bson:"nightly_rate"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

func (d rateTierDocument) toDomain() (domainpricing.RateTier, error) {
	rate, err := fromDecimal128(d.NightlyRate)
	if err != nil {
		return domainpricing.RateTier{}, err
	}
	return domainpricing.RateTier{
		RoomCategory:      d.RoomCategory,
		MinDurationNights: d.MinDurationNights,
		NightlyRate:       rate,
	}, nil
}

var _ policies.RateTableProvider = (*RateTableRepository)(nil)
