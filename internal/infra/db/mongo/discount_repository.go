package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayquote/internal/app/policies"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
)

// DiscountRepository reads discount rules ordered by creation time, then id,
// so that first-match selection is stable across replicas.
type DiscountRepository struct {
	col *mongo.Collection
}

func NewDiscountRepository(db *mongo.Database) *DiscountRepository {
	col := db.Collection("discount_rules")
	idx := mongo.IndexModel{Keys: bson.D{
		{Key: "active", Value: 1},
		{Key: "start_date", Value: 1},
		{Key: "end_date", Value: 1},
	}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &DiscountRepository{col: col}
}

// Rules returns active rules whose window contains today.
func (r *DiscountRepository) Rules(ctx context.Context, today time.Time) ([]domainpricing.DiscountRule, error) {
	day := daterange.Day(today)
	filter := bson.M{
		"active":     true,
		"start_date": bson.M{"$lte": day},
		"end_date":   bson.M{"$gte": day},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []discountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	rules := make([]domainpricing.DiscountRule, 0, len(docs))
	for _, doc := range docs {
		rule, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Insert stores a new rule, assigning ID and CreatedAt when absent.
func (r *DiscountRepository) Insert(ctx context.Context, rule domainpricing.DiscountRule) (domainpricing.DiscountRule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	pct, err := toDecimal128(rule.Percentage)
	if err != nil {
		return domainpricing.DiscountRule{}, err
	}
	doc := discountDocument{
		ID:          rule.ID,
		Name:        rule.Name,
		Active:      rule.Active,
		IsRoleBased: rule.IsRoleBased,
		Percentage:  pct,
		StartDate:   daterange.Day(rule.StartDate),
		EndDate:     daterange.Day(rule.EndDate),
		CreatedAt:   rule.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainpricing.DiscountRule{}, fmt.Errorf("%w: %s", policies.ErrDiscountExists, rule.ID)
		}
		return domainpricing.DiscountRule{}, err
	}
	return rule, nil
}

type discountDocument struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Active      bool                 `bson:"active"`
	IsRoleBased bool                 `bson:"is_role_based"`
	Percentage  primitive.Decimal128 `bson:"percentage"`
	StartDate   time.Time            `bson:"start_date"`
	EndDate     time.Time            `bson:"end_date"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func (d discountDocument) toDomain() (domainpricing.DiscountRule, error) {
	pct, err := fromDecimal128(d.Percentage)
	if err != nil {
		return domainpricing.DiscountRule{}, err
	}
	return domainpricing.DiscountRule{
		ID:          d.ID,
		Name:        d.Name,
		Active:      d.Active,
		IsRoleBased: d.IsRoleBased,
		Percentage:  pct,
		StartDate:   d.StartDate.UTC(),
		EndDate:     d.EndDate.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
	}, nil
}

var _ policies.DiscountRegistry = (*DiscountRepository)(nil)
