package policies

import (
	"context"
	"errors"
	"time"

	domainpricing "stayquote/internal/domain/pricing"
)

var (
	// ErrCategoryNotFound is returned by rate providers for unknown room categories.
	ErrCategoryNotFound = errors.New("policies: room category not found")
	// ErrDiscountExists is returned when a rule with the same ID is already stored.
	ErrDiscountExists = errors.New("policies: discount rule already exists")
)

// RateTableProvider exposes the duration tiers of a room category.
type RateTableProvider interface {
	Tiers(ctx context.Context, category string) ([]domainpricing.RateTier, error)
}

// DiscountRegistry returns discount rules in creation order. Implementations
// may pre-filter by today; callers filter again regardless.
type DiscountRegistry interface {
	Rules(ctx context.Context, today time.Time) ([]domainpricing.DiscountRule, error)
}

// Clock yields the current calendar day in the business time zone.
type Clock interface {
	Today() time.Time
	Now() time.Time
}
